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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kbo-data/kbodata/csvsource"
	"github.com/kbo-data/kbodata/healthcheck"
	"github.com/kbo-data/kbodata/orchestrator"
	"github.com/kbo-data/kbodata/pipeline"
	"github.com/kbo-data/kbodata/progress"
	"github.com/kbo-data/kbodata/snapshot"
	"github.com/kbo-data/kbodata/store"
)

var (
	importIncremental bool
	importBaseline    int
	importDryRun      bool
)

// dryRunTables lists the CSV-backed fact tables in the same fixed order
// the orchestrator ingests them in, for --dry-run row estimates.
var dryRunTables = []string{"enterprise", "establishment", "branch", "address", "denomination", "contact", "activity"}

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <folder>",
	Short: "Import a KBO CSV drop into the database",
	Long: `import ingests a folder of KBO CSV files, updates the relational
store, and rebuilds the derived document and search index for every
enterprise affected.

A full import (the default) requires the database to be empty. Pass
--incremental for a daily delta drop containing *_insert.csv/*_delete.csv
pairs against an already-populated database.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		folder := args[0]

		if importDryRun {
			reportDryRun(folder, importIncremental)
			return
		}

		pinger := healthcheck.New()
		if err := pinger.Start(); err != nil {
			log.Warn().Err(err).Msg("health ping start failed")
		}

		// Incremental drops mutate the live file in place. A full import
		// builds a brand new database in a staged location first, so a
		// crash or a Ctrl-C midway through never corrupts the database
		// currently being served, per §4.15.
		var (
			res        pipeline.Result
			err        error
			stagedPath string
		)
		if importIncremental {
			db := openStore(ctx)
			res, err = runImport(ctx, db, folder, true)
			db.Close()
		} else {
			stagedPath = filepath.Join(os.TempDir(), "kbodata-"+uuid.NewString()+".sqlite")
			db := openStoreAt(ctx, stagedPath)
			res, err = runImport(ctx, db, folder, false)
			db.Close()
		}

		if err != nil {
			if pingErr := pinger.Fail(err.Error()); pingErr != nil {
				log.Warn().Err(pingErr).Msg("health ping fail failed")
			}
			if stagedPath != "" {
				os.Remove(stagedPath)
			}
			log.Fatal().Err(err).Msg("import failed")
		}

		summary := log.Info().Int("Imported", res.TotalImported).Int("Deleted", res.TotalDeleted).
			Int("Errors", res.TotalErrors).Dur("Duration", res.Duration)
		if res.Cancelled {
			summary.Msg("import cancelled")
			if stagedPath != "" {
				os.Remove(stagedPath)
			}
			return
		}
		summary.Msg("import completed")

		if stagedPath != "" {
			archiveName := fmt.Sprintf("kbodata-%s.sqlite", time.Now().UTC().Format("20060102-150405"))
			if pubErr := snapshot.Publish(stagedPath, dbPath(), archiveName); pubErr != nil {
				log.Error().Err(pubErr).Msg("could not publish staged snapshot")
				if pingErr := pinger.Fail(pubErr.Error()); pingErr != nil {
					log.Warn().Err(pingErr).Msg("health ping fail failed")
				}
				return
			}
		}

		if pingErr := pinger.Success(""); pingErr != nil {
			log.Warn().Err(pingErr).Msg("health ping success failed")
		}
	},
}

// runImport runs a full or incremental import against db, rendering
// progress through the console sink.
func runImport(ctx context.Context, db *store.DB, folder string, incremental bool) (pipeline.Result, error) {
	reporter := progress.NewReporter(consoleSink{}, 64)
	go reporter.Run(ctx)

	res, err := orchestrator.FullImport(ctx, db, folder, incremental, orchestrator.Options{
		Events:   reporter.Events(),
		Baseline: importBaseline,
	})
	close(reporter.Events())
	return res, err
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importIncremental, "incremental", false, "treat the folder as an incremental delta rather than a full snapshot")
	importCmd.Flags().IntVar(&importBaseline, "baseline", 1000, "fallback per-step row estimate for progress reporting")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "estimate row counts per table without opening or writing the database")
}

// reportDryRun sample-estimates row counts for every fact file in folder
// without touching the database, using the same sampling estimator the
// orchestrator uses to plan progress bars (C3).
func reportDryRun(folder string, incremental bool) {
	total := 0
	for _, table := range dryRunTables {
		file := table + ".csv"
		if incremental {
			file = table + "_insert.csv"
		}
		n, err := csvsource.EstimateRowCount(filepath.Join(folder, file))
		if err != nil {
			fmt.Printf("%-15s %s: %v\n", table, file, err)
			continue
		}
		total += n
		fmt.Printf("%-15s ~%d rows\n", table, n)
	}
	fmt.Printf("estimated total: ~%d rows\n", total)
}
