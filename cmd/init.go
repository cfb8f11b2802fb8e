// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type initConfigData struct {
	DB struct {
		Path string `toml:"path"`
	} `toml:"db"`
	Import struct {
		Folder string `toml:"folder"`
	} `toml:"import"`
	Healthchecks struct {
		UUID string `toml:"uuid"`
	} `toml:"healthchecks"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather database and import settings and write a config file",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		cfg := initConfigData{}
		cfg.DB.Path = filepath.Join(home, ".kbodata.sqlite")

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Where should the kbodata SQLite database live?").
					Value(&cfg.DB.Path),

				huh.NewInput().
					Title("Default folder to import monthly KBO drops from (optional):").
					Value(&cfg.Import.Folder),

				huh.NewInput().
					Title("healthchecks.io check UUID for unattended runs (optional):").
					Value(&cfg.Healthchecks.UUID),
			),
		)

		if err := form.Run(); err != nil {
			log.Fatal().Err(err).Msg("error gathering configuration")
		}

		log.Info().Str("Path", cfg.DB.Path).Msg("creating database schema")
		db := openStoreAt(ctx, cfg.DB.Path)
		db.Close()
		log.Info().Msg("database schema created")

		configFN := filepath.Join(home, ".kbodata.toml")
		configData, err := toml.Marshal(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		if err := os.WriteFile(configFN, configData, 0o644); err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Str("ConfigFile", configFN).Msg("kbodata is ready to import")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
