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

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kbo-data/kbodata/query"
)

var lookupLanguage string

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <enterprise-number>",
	Short: "Resolve a single enterprise number to its company document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		db := openStore(ctx)
		defer db.Close()

		company, err := query.NewLookup(db).GetCompany(ctx, args[0], lookupLanguage)
		if err != nil {
			log.Fatal().Err(err).Str("EnterpriseNumber", args[0]).Msg("lookup failed")
		}
		if company == nil {
			fmt.Println("no enterprise found with that number")
			return
		}

		renderCompanies([]*query.Company{company})
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().StringVar(&lookupLanguage, "lang", "NL", "preferred language for code descriptions (NL, FR, EN, DE)")
}

// renderCompanies renders a batch of companies as markdown through
// glamour, the same terminal renderer the teacher uses for its summary
// output.
func renderCompanies(companies []*query.Company) {
	md := "\n"
	for _, c := range companies {
		md += fmt.Sprintf("# %s\n\n", c.EnterpriseNumber)
		if len(c.Names) > 0 {
			md += fmt.Sprintf("**%s** (%s)\n\n", c.Names[0].Name, c.Names[0].Type)
		}
		md += fmt.Sprintf("- Juridical situation: %s\n", c.JuridicalSituation)
		md += fmt.Sprintf("- Type of enterprise: %s\n", c.TypeOfEnterprise)
		if c.JuridicalForm != "" {
			md += fmt.Sprintf("- Juridical form: %s\n", c.JuridicalForm)
		}
		md += fmt.Sprintf("- Start date: %s\n", c.StartDate)
		for _, a := range c.Addresses {
			if a.Street == "" && a.City == "" {
				continue
			}
			md += fmt.Sprintf("- Address (%s): %s %s, %s %s, %s\n", a.Type, a.Street, a.HouseNumber, a.PostalCode, a.City, a.Country)
		}
		for _, act := range c.Activities {
			md += fmt.Sprintf("- Activity: %s (%s) %s\n", act.NaceCode, act.Classification, act.Description)
		}
		md += "\n"
	}

	out, err := glamour.Render(md, "dark")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
