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

// Package healthcheck pings healthchecks.io around an import run (A6), so
// an unattended monthly cron import that silently stops running (rather
// than failing loudly) still trips an alert. Unlike the teacher, which
// creates one check per subscription and pauses/resumes it around
// subscribe/unsubscribe, this package pings a single, pre-existing check
// per deployment: start/success/failure of each run, not lifecycle of a
// subscription.
package healthcheck

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"
)

// ErrStatus is returned when healthchecks.io responds with an unexpected
// status code.
var ErrStatus = errors.New("status code is invalid")

const defaultBaseURL = "https://hc-ping.com"

// Pinger sends lifecycle pings for a single healthchecks.io check, keyed
// by the UUID configured at healthchecks.uuid (a ping UUID here, not an
// API key — healthchecks.io's ping endpoint needs no authentication
// beyond the UUID in the URL).
type Pinger struct {
	client  *resty.Client
	baseURL string
	uuid    string
}

// New creates a Pinger for the check UUID configured in healthchecks.uuid.
// If the configuration value is blank every ping is a silent no-op, so
// callers need no separate "are health pings enabled" branch.
func New() *Pinger {
	return &Pinger{client: resty.New(), baseURL: defaultBaseURL, uuid: viper.GetString("healthchecks.uuid")}
}

// newWithBase builds a Pinger against an arbitrary base URL, for testing
// against a local httptest server instead of the real healthchecks.io.
func newWithBase(baseURL, uuid string) *Pinger {
	return &Pinger{client: resty.New(), baseURL: baseURL, uuid: uuid}
}

// Start pings the check's /start endpoint when an import run begins.
func (p *Pinger) Start() error {
	return p.ping("/start", "")
}

// Success pings the check's bare endpoint, reporting a completed run, with
// summary as the request body for the check's log.
func (p *Pinger) Success(summary string) error {
	return p.ping("", summary)
}

// Fail pings the check's /fail endpoint, reporting a failed run, with
// summary as the request body.
func (p *Pinger) Fail(summary string) error {
	return p.ping("/fail", summary)
}

func (p *Pinger) ping(suffix, body string) error {
	if p.uuid == "" {
		return nil
	}
	resp, err := p.client.R().SetBody(body).Post(fmt.Sprintf("%s/%s%s", p.baseURL, p.uuid, suffix))
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}
	return nil
}
