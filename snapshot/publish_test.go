// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestPublishSwapsStagedFileIntoLivePath(t *testing.T) {
	viper.Set("backblaze.bucket", "")
	dir := t.TempDir()
	staged := filepath.Join(dir, "staged.sqlite")
	live := filepath.Join(dir, "live.sqlite")

	if err := os.WriteFile(staged, []byte("snapshot-bytes"), 0o644); err != nil {
		t.Fatalf("write staged: %v", err)
	}

	if err := Publish(staged, live, "2026-08"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Fatalf("expected staged file to be moved away, stat err=%v", err)
	}
	content, err := os.ReadFile(live)
	if err != nil {
		t.Fatalf("read live: %v", err)
	}
	if string(content) != "snapshot-bytes" {
		t.Fatalf("unexpected live content: %q", content)
	}
}

func TestPublishFailsWhenStagedFileMissing(t *testing.T) {
	viper.Set("backblaze.bucket", "")
	dir := t.TempDir()
	staged := filepath.Join(dir, "missing.sqlite")
	live := filepath.Join(dir, "live.sqlite")

	if err := Publish(staged, live, "2026-08"); err == nil {
		t.Fatalf("expected publish to fail when staged file does not exist")
	}
}
