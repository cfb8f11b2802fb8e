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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kbo-data/kbodata/orchestrator"
	"github.com/kbo-data/kbodata/progress"
)

var (
	rebuildDocuments bool
	rebuildFTS       bool
)

// rebuildCmd represents the rebuild command
var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild derived documents and/or the search index without re-ingesting CSVs",
	Long: `rebuild regenerates company_document and company_fts from the
relational store already on disk. Useful after a projection or tokenizer
change, without needing the original CSV drop.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		db := openStore(ctx)
		defer db.Close()

		if !rebuildDocuments && !rebuildFTS {
			rebuildDocuments, rebuildFTS = true, true
		}

		reporter := progress.NewReporter(consoleSink{}, 64)
		go reporter.Run(ctx)

		res, err := orchestrator.RebuildCache(ctx, db, rebuildDocuments, rebuildFTS, orchestrator.Options{
			Events:   reporter.Events(),
			Baseline: 1000,
		})
		close(reporter.Events())

		if err != nil {
			log.Fatal().Err(err).Msg("rebuild failed")
		}
		log.Info().Int("Imported", res.TotalImported).Int("Errors", res.TotalErrors).Dur("Duration", res.Duration).Msg("rebuild completed")
	},
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
	rebuildCmd.Flags().BoolVar(&rebuildDocuments, "documents", false, "rebuild company_document (default: both, if neither flag is given)")
	rebuildCmd.Flags().BoolVar(&rebuildFTS, "fts", false, "rebuild company_fts (default: both, if neither flag is given)")
}
