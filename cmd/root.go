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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kbo-data/kbodata/store"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kbodata",
	Short: "kbodata imports and searches the Belgian KBO company registry",
	Long: `kbodata builds and maintains a local SQLite copy of the Belgian
Crossroads Bank for Enterprises (KBO/BCE) open-data export, and serves
identifier lookups and ranked free-text search against it.

The registry is published as a monthly full export plus daily incremental
deltas, each a folder of CSV files. kbodata ingests either shape into a
single embedded SQLite database, projecting every enterprise into a
denormalized document and an FTS5 index so lookups and searches never
join across the relational schema at read time.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.kbodata.toml)")
	rootCmd.PersistentFlags().String("db", "", "path to the kbodata SQLite database (default is $HOME/.kbodata.sqlite)")
	if err := viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("db")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for db failed")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".kbodata" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".kbodata")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}

// dbPath resolves the configured database path, defaulting to
// $HOME/.kbodata.sqlite when db.path is unset.
func dbPath() string {
	if p := viper.GetString("db.path"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kbodata.sqlite"
	}
	return filepath.Join(home, ".kbodata.sqlite")
}

// openStore opens the configured database, migrating it in place if needed.
func openStore(ctx context.Context) *store.DB {
	return openStoreAt(ctx, dbPath())
}

// openStoreAt opens the database at an explicit path, migrating it in
// place if needed.
func openStoreAt(ctx context.Context, path string) *store.DB {
	db, err := store.Open(ctx, path)
	if err != nil {
		log.Fatal().Err(err).Str("Path", path).Msg("could not open database")
	}
	return db
}
