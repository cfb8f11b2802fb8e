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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kbo-data/kbodata/query"
	"github.com/kbo-data/kbodata/querybuild"
)

var (
	searchLanguage    string
	searchSkip        int
	searchTake        int
	searchName        string
	searchStreet      string
	searchHouseNumber string
	searchPostalCode  string
	searchCity        string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the registry by free text or by structured address fields",
	Long: `search ranks candidates with BM25 over tokenized names, addresses,
and activity descriptions when given a free-text query. Passing any of
--name, --street, --house-number, --postal-code, or --city instead runs
the unranked structured search of §6.6, matching on those fields alone.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		db := openStore(ctx)
		defer db.Close()

		structured := searchName != "" || searchStreet != "" || searchHouseNumber != "" ||
			searchPostalCode != "" || searchCity != ""

		var (
			companies []*query.Company
			err       error
		)

		if structured {
			criteria := querybuild.Criteria{
				Name:        searchName,
				Street:      searchStreet,
				HouseNumber: searchHouseNumber,
				PostalCode:  searchPostalCode,
				City:        searchCity,
			}
			companies, err = query.NewFullText(db).SearchStructured(ctx, criteria, searchLanguage, searchSkip, searchTake)
		} else {
			if len(args) != 1 {
				log.Fatal().Msg("search requires a query argument, or at least one of --name/--street/--house-number/--postal-code/--city")
			}
			companies, err = query.NewFullText(db).Search(ctx, args[0], searchLanguage, searchSkip, searchTake)
		}

		if err != nil {
			log.Fatal().Err(err).Msg("search failed")
		}
		if len(companies) == 0 {
			fmt.Println("no matches")
			return
		}
		renderCompanies(companies)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchLanguage, "lang", "NL", "preferred language for code descriptions (NL, FR, EN, DE)")
	searchCmd.Flags().IntVar(&searchSkip, "skip", 0, "number of results to skip")
	searchCmd.Flags().IntVar(&searchTake, "take", 10, "number of results to return (max 25)")
	searchCmd.Flags().StringVar(&searchName, "name", "", "structured search: denomination substring")
	searchCmd.Flags().StringVar(&searchStreet, "street", "", "structured search: street substring (NL or FR)")
	searchCmd.Flags().StringVar(&searchHouseNumber, "house-number", "", "structured search: house number substring")
	searchCmd.Flags().StringVar(&searchPostalCode, "postal-code", "", "structured search: exact postal code")
	searchCmd.Flags().StringVar(&searchCity, "city", "", "structured search: city/municipality substring (NL or FR)")
}
