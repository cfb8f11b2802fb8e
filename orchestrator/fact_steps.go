// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package orchestrator

import (
	"strconv"
	"strings"

	"github.com/kbo-data/kbodata/codecache"
	"github.com/kbo-data/kbodata/mapper"
	"github.com/kbo-data/kbodata/model"
	"github.com/kbo-data/kbodata/pipeline"
	"github.com/kbo-data/kbodata/store"
)

func enterpriseStep(folder string, incremental bool, cacheRef *CacheRef) pipeline.Step {
	return &factStep[model.EnterpriseRow, model.Enterprise]{
		stepName:    "Enterprises",
		table:       "enterprise",
		folder:      folder,
		incremental: incremental,
		cacheRef:    cacheRef,
		mapFn:       mapper.Enterprise,
		insertFn:    (*store.DB).InsertEnterprises,
		keyFn:       func(e model.Enterprise) []string { return []string{e.EnterpriseNumber} },
	}
}

func establishmentStep(folder string, incremental bool, cacheRef *CacheRef) pipeline.Step {
	return &factStep[model.EstablishmentRow, model.Establishment]{
		stepName:    "Establishments",
		table:       "establishment",
		folder:      folder,
		incremental: incremental,
		cacheRef:    cacheRef,
		mapFn: func(r model.EstablishmentRow, _ *codecache.Cache) (model.Establishment, bool, []string) {
			return mapper.Establishment(r)
		},
		insertFn: (*store.DB).InsertEstablishments,
		keyFn:    func(e model.Establishment) []string { return []string{e.EstablishmentNumber} },
	}
}

func branchStep(folder string, incremental bool, cacheRef *CacheRef) pipeline.Step {
	return &factStep[model.BranchRow, model.Branch]{
		stepName:    "Branches",
		table:       "branch",
		folder:      folder,
		incremental: incremental,
		cacheRef:    cacheRef,
		mapFn: func(r model.BranchRow, _ *codecache.Cache) (model.Branch, bool, []string) {
			return mapper.Branch(r)
		},
		insertFn: (*store.DB).InsertBranches,
		keyFn:    func(b model.Branch) []string { return []string{strconv.FormatInt(b.ID, 10)} },
	}
}

func addressStep(folder string, incremental bool, cacheRef *CacheRef) pipeline.Step {
	return &factStep[model.AddressRow, model.Address]{
		stepName:    "Addresses",
		table:       "address",
		folder:      folder,
		incremental: incremental,
		cacheRef:    cacheRef,
		mapFn:       mapper.Address,
		insertFn:    (*store.DB).InsertAddresses,
		keyFn: func(a model.Address) []string {
			return []string{a.EntityNumber, strconv.FormatInt(a.TypeOfAddressID, 10)}
		},
	}
}

func denominationStep(folder string, incremental bool, cacheRef *CacheRef) pipeline.Step {
	return &factStep[model.DenominationRow, model.Denomination]{
		stepName:    "Denominations",
		table:       "denomination",
		folder:      folder,
		incremental: incremental,
		cacheRef:    cacheRef,
		mapFn:       mapper.Denomination,
		insertFn:    (*store.DB).InsertDenominations,
		keyFn: func(d model.Denomination) []string {
			return []string{d.EntityNumber, strconv.FormatInt(d.LanguageID, 10), strconv.FormatInt(d.TypeOfDenominationID, 10)}
		},
	}
}

func contactStep(folder string, incremental bool, cacheRef *CacheRef) pipeline.Step {
	return &factStep[model.ContactRow, model.Contact]{
		stepName:    "Contacts",
		table:       "contact",
		folder:      folder,
		incremental: incremental,
		cacheRef:    cacheRef,
		mapFn:       mapper.Contact,
		insertFn:    (*store.DB).InsertContacts,
		keyFn: func(c model.Contact) []string {
			return []string{c.EntityNumber, strconv.FormatInt(c.EntityContactID, 10), strconv.FormatInt(c.ContactTypeID, 10)}
		},
	}
}

func activityStep(folder string, incremental bool, cacheRef *CacheRef) pipeline.Step {
	return &factStep[model.ActivityRow, model.Activity]{
		stepName:    "Activities",
		table:       "activity",
		folder:      folder,
		incremental: incremental,
		cacheRef:    cacheRef,
		mapFn:       mapper.Activity,
		insertFn:    (*store.DB).InsertActivities,
		keyFn: func(a model.Activity) []string {
			return []string{
				a.EntityNumber,
				strconv.FormatInt(a.ActivityGroupID, 10),
				strconv.FormatInt(a.ClassificationID, 10),
				strconv.FormatInt(a.NaceCodeID, 10),
			}
		},
	}
}

// factStepOrder is the fixed dependency order of §4.13: enterprises before
// everything that references them, establishments and branches before
// addresses/denominations/contacts/activities (which key on entity_number
// without a foreign-key distinction between the three parent kinds).
var factStepOrder = []string{
	"enterprise", "establishment", "branch", "address", "denomination", "contact", "activity",
}

var factStepConstructors = map[string]func(folder string, incremental bool, cacheRef *CacheRef) pipeline.Step{
	"enterprise":    enterpriseStep,
	"establishment": establishmentStep,
	"branch":        branchStep,
	"address":       addressStep,
	"denomination":  denominationStep,
	"contact":       contactStep,
	"activity":      activityStep,
}

// factSteps assembles the fact-table steps in their fixed order, restricted
// to the tables named in only when it is non-empty (the import_files
// restricted-subset path of §4.13); a nil or empty only selects all seven.
func factSteps(folder string, incremental bool, cacheRef *CacheRef, only []string) []pipeline.Step {
	wanted := toTableSet(only)
	var steps []pipeline.Step
	for _, table := range factStepOrder {
		if wanted != nil && !wanted[table] {
			continue
		}
		steps = append(steps, factStepConstructors[table](folder, incremental, cacheRef))
	}
	return steps
}

func toTableSet(tables []string) map[string]bool {
	if len(tables) == 0 {
		return nil
	}
	set := make(map[string]bool, len(tables))
	for _, t := range tables {
		set[strings.ToLower(t)] = true
	}
	return set
}
