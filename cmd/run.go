// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kbo-data/kbodata/healthcheck"
	"github.com/kbo-data/kbodata/orchestrator"
	"github.com/kbo-data/kbodata/store"
)

var runInterval time.Duration

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [folder]",
	Short: "Run a single incremental import, or start the polling daemon",
	Long: `With a folder argument, run imports that one incremental bundle and
exits. With no arguments, run starts as a daemon: it polls the
import.folder configured by "kbodata init" for new dated subfolders and
imports each one it hasn't seen yet, in order, on the interval set by
--interval.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		db := openStore(ctx)
		defer db.Close()

		if len(args) == 1 {
			runIncrementalImport(ctx, db, args[0])
			return
		}

		watchFolder := viper.GetString("import.folder")
		if watchFolder == "" {
			log.Fatal().Msg("no folder argument given and import.folder is not configured; run `kbodata init` or pass a folder")
		}

		log.Info().Str("Folder", watchFolder).Dur("Interval", runInterval).Msg("starting import daemon")

		ticker := time.NewTicker(runInterval)
		defer ticker.Stop()

		pollOnce(ctx, db, watchFolder)
		for range ticker.C {
			pollOnce(ctx, db, watchFolder)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().DurationVar(&runInterval, "interval", time.Hour, "how often to poll the drop folder for a new incremental bundle")
}

// pollOnce lists watchFolder's dated subfolders and imports every one that
// sorts after the last folder recorded in meta, in order.
func pollOnce(ctx context.Context, db *store.DB, watchFolder string) {
	entries, err := os.ReadDir(watchFolder)
	if err != nil {
		log.Error().Err(err).Str("Folder", watchFolder).Msg("could not list drop folder")
		return
	}

	last, _, err := db.GetMeta(ctx, store.MetaLastImportFolder)
	if err != nil {
		log.Error().Err(err).Msg("could not read last import folder from meta")
		return
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	for _, name := range dirs {
		full := filepath.Join(watchFolder, name)
		if full <= last {
			continue
		}
		runIncrementalImport(ctx, db, full)
	}
}

// runIncrementalImport runs one incremental import against folder, pinging
// healthchecks.io around it the same way the interactive import command
// does.
func runIncrementalImport(ctx context.Context, db *store.DB, folder string) {
	pinger := healthcheck.New()
	if err := pinger.Start(); err != nil {
		log.Warn().Err(err).Msg("health ping start failed")
	}

	res, err := orchestrator.FullImport(ctx, db, folder, true, orchestrator.Options{Baseline: 1000})
	if err != nil {
		if pingErr := pinger.Fail(err.Error()); pingErr != nil {
			log.Warn().Err(pingErr).Msg("health ping fail failed")
		}
		log.Error().Err(err).Str("Folder", folder).Msg("scheduled import failed")
		return
	}

	log.Info().Str("Folder", folder).Int("Imported", res.TotalImported).
		Int("Deleted", res.TotalDeleted).Int("Errors", res.TotalErrors).Msg("scheduled import completed")
	if pingErr := pinger.Success(""); pingErr != nil {
		log.Warn().Err(pingErr).Msg("health ping success failed")
	}
}
