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

// Package snapshot implements the blue/green publish step of a successful
// full import (A5, §4.15): the finished SQLite file is swapped into the
// live serving path with an atomic rename, and optionally archived to
// Backblaze B2 under the import timestamp. Incremental imports mutate the
// live file in place and never call Publish.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kothar/go-backblaze"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// ErrBucketNotFound is returned when the configured Backblaze bucket does
// not exist.
var ErrBucketNotFound = errors.New("bucket not found")

// Publish atomically swaps stagedPath into livePath (same-filesystem
// os.Rename is atomic on POSIX) and, if Backblaze credentials are
// configured, archives a copy under archiveName.
func Publish(stagedPath, livePath, archiveName string) error {
	if err := os.Rename(stagedPath, livePath); err != nil {
		return fmt.Errorf("swap staged snapshot into %s: %w", livePath, err)
	}

	bucketName := viper.GetString("backblaze.bucket")
	if bucketName == "" {
		return nil
	}
	return archive(livePath, bucketName, archiveName)
}

// archive uploads the file at path to bucketName under archiveName,
// mirroring the teacher's icon/logo archival upload but keyed by import
// timestamp instead of asset ticker.
func archive(path, bucketName, archiveName string) error {
	b2, err := backblaze.NewB2(backblaze.Credentials{
		KeyID:          viper.GetString("backblaze.application_id"),
		ApplicationKey: viper.GetString("backblaze.application_key"),
	})
	if err != nil {
		log.Error().Err(err).Str("BucketName", bucketName).Msg("authorize backblaze failed")
		return err
	}

	bucket, err := b2.Bucket(bucketName)
	if err != nil {
		log.Error().Err(err).Str("BucketName", bucketName).Msg("lookup bucket failed")
		return err
	}
	if bucket == nil {
		log.Error().Str("BucketName", bucketName).Msg("bucket does not exist")
		return ErrBucketNotFound
	}

	reader, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open snapshot for archive: %w", err)
	}
	defer reader.Close()

	outName := fmt.Sprintf("%s/%s", archiveName, filepath.Base(path))
	file, err := bucket.UploadFile(outName, map[string]string{}, reader)
	if err != nil {
		log.Error().Err(err).Str("FileName", outName).Str("BucketName", bucketName).Msg("save snapshot to backblaze failed")
		return err
	}

	log.Info().Str("FileName", file.Name).Int64("Size", file.ContentLength).Str("ID", file.ID).Msg("archived snapshot to backblaze")
	return nil
}
