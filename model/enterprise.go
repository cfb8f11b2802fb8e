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
package model

import "time"

// Enterprise is a row of the `enterprise` table.
type Enterprise struct {
	EnterpriseNumber     string
	JuridicalSituationID int64
	TypeOfEnterpriseID   int64
	JuridicalFormID      *int64
	JuridicalFormCACID   *int64
	StartDate            time.Time
}

// Establishment is a row of the `establishment` table.
type Establishment struct {
	EstablishmentNumber string
	StartDate           time.Time
	EnterpriseNumber    string
}

// Branch is a row of the `branch` table.
type Branch struct {
	ID               int64
	StartDate        time.Time
	EnterpriseNumber string
}
