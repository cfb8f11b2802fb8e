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
package csvsource

import (
	"bufio"
	"errors"
	"io"
	"math"
	"os"
)

// sampleCapSmall and sampleCapLarge are the first/second sampling
// thresholds from §4.3: read up to 100 data lines first; if the file is
// still going, re-sample up to 1000.
const (
	sampleCapSmall = 100
	sampleCapLarge = 1000
)

// EstimateRowCount implements the byte-sampling estimator of §4.3: read the
// header, sample a bounded number of data lines, and extrapolate from the
// remaining file size. If the sample cap is not reached before EOF, the
// count is exact. A missing file estimates to zero rows.
func EstimateRowCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	fileSize := info.Size()

	r := bufio.NewReader(f)

	header, err := r.ReadString('\n')
	if errors.Is(err, io.EOF) && header == "" {
		return 0, nil // empty file: header only, no data
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	headerBytes := int64(len(header))

	exact, sampled, sampleBytes, err := sampleLines(r, sampleCapSmall)
	if err != nil {
		return 0, err
	}
	if exact {
		return sampled, nil
	}

	// Sample cap reached without EOF: widen the sample for larger files.
	moreExact, moreSampled, moreBytes, err := sampleLines(r, sampleCapLarge-sampleCapSmall)
	if err != nil {
		return 0, err
	}
	sampled += moreSampled
	sampleBytes += moreBytes
	if moreExact {
		return sampled, nil
	}

	if sampled == 0 {
		return 0, nil
	}

	avgBytesPerLine := float64(sampleBytes) / float64(sampled)
	remaining := fileSize - headerBytes - sampleBytes
	if remaining <= 0 || avgBytesPerLine <= 0 {
		return sampled, nil
	}

	estimate := sampled + int(math.Ceil(float64(remaining)/avgBytesPerLine))
	return estimate, nil
}

// sampleLines reads up to cap lines from r, returning whether EOF was hit
// within the cap (in which case the count is exact), how many lines were
// read, and their total byte length.
func sampleLines(r *bufio.Reader, cap int) (exact bool, count int, byteLen int64, err error) {
	for count < cap {
		line, readErr := r.ReadString('\n')
		byteLen += int64(len(line))
		if len(line) > 0 {
			count++
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return true, count, byteLen, nil
			}
			return false, count, byteLen, readErr
		}
	}
	return false, count, byteLen, nil
}
