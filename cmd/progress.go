// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"

	"github.com/kbo-data/kbodata/progress"
)

// consoleSink renders pipeline events as single log-style lines, the CLI's
// interactive counterpart to the structured zerolog output the rest of
// kbodata uses for everything else.
type consoleSink struct{}

func (consoleSink) Render(ev progress.Event) {
	switch e := ev.(type) {
	case progress.Plan:
		fmt.Printf("plan: %d task(s) for %s\n", len(e.Tasks), e.Folder)
	case progress.TaskPlanned:
		fmt.Printf("  %s: starting (~%d rows)\n", e.TaskLabel, e.EstimatedTotal)
	case progress.Progress:
		fmt.Printf("  %s: %d/%d\n", e.TaskLabel, e.Processed, e.EstimatedTotal)
	case progress.TaskCompleted:
		if e.Cancelled {
			fmt.Printf("  %s: cancelled\n", e.TaskLabel)
			return
		}
		fmt.Printf("  %s: imported=%d deleted=%d errors=%d (%s)\n", e.TaskLabel, e.Imported, e.Deleted, e.Errors, e.Duration)
	case progress.Completed:
		fmt.Printf("done: imported=%d deleted=%d errors=%d (%s)\n", e.TotalImported, e.TotalDeleted, e.TotalErrors, e.Duration)
	}
}
