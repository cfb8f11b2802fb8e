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
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/xeonx/timeago"

	"github.com/kbo-data/kbodata/runhistory"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display table counts and recent run history for the database",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		db := openStore(ctx)
		defer db.Close()

		counts, err := db.TableCounts(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read table counts")
		}

		runs, err := runhistory.Recent(ctx, db, 10)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read run history")
		}

		summary := buildSummary(db.Path(), counts, runs)

		r, _ := glamour.NewTermRenderer(
			// detect background color and pick either the default dark or light theme
			glamour.WithAutoStyle(),
			// wrap output at specific width (default is 80)
			glamour.WithWordWrap(80),
		)

		out, err := r.Render(summary)
		if err != nil {
			log.Fatal().Err(err).Msg("could not render summary document")
		}

		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

// buildSummary renders table counts and recent run history as markdown,
// the same document shape the teacher's library.Summary produces for
// its subscription/observation tables.
func buildSummary(path string, counts map[string]int, runs []runhistory.Run) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", path)

	fmt.Fprintf(&sb, "## Table Counts\n\n")
	tables := make([]string, 0, len(counts))
	for t := range counts {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	for _, t := range tables {
		fmt.Fprintf(&sb, "- %s: %d\n", t, counts[t])
	}

	fmt.Fprintf(&sb, "\n## Recent Runs\n\n")
	if len(runs) == 0 {
		sb.WriteString("No runs recorded yet.\n")
		return sb.String()
	}
	for _, r := range runs {
		status := "in progress"
		if r.FinishedAt != nil {
			status = fmt.Sprintf("finished %s", timeago.English.Format(*r.FinishedAt))
			if r.Cancelled {
				status += " (cancelled)"
			}
		}
		fmt.Fprintf(&sb, "- [%s] %s started %s, %s — imported=%d deleted=%d errors=%d\n",
			r.Mode, r.Folder, timeago.English.Format(r.StartedAt), status,
			r.ImportedCount, r.DeletedCount, r.ErrorCount)
	}

	return sb.String()
}
