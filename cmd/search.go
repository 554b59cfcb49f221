package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/sourcing-cli/internal/export"
	"github.com/sells-group/sourcing-cli/internal/model"
)

// criteriaFlags binds the shared buy-box flags and returns a builder that
// reads them back into a model.Criteria.
func criteriaFlags(cmd *cobra.Command) func() model.Criteria {
	var c model.Criteria

	cmd.Flags().StringVar(&c.Sector, "sector", "", "target sector (e.g. \"Dental clinics\")")
	cmd.Flags().StringVar(&c.Keywords, "keywords", "", "keyword filter")
	cmd.Flags().StringVar(&c.Location, "location", "", "target location (city, state, or empty for nationwide)")
	cmd.Flags().IntVar(&c.MinEmployees, "min-employees", 0, "minimum employee count")
	cmd.Flags().IntVar(&c.MaxEmployees, "max-employees", 0, "maximum employee count")
	cmd.Flags().Float64Var(&c.MinRevenue, "min-revenue", 0, "minimum revenue/asking price in dollars")
	cmd.Flags().Float64Var(&c.MaxRevenue, "max-revenue", 0, "maximum revenue/asking price in dollars")
	cmd.Flags().StringSliceVar(&c.Sources, "sources", nil, "restrict to named sources")

	return func() model.Criteria { return c }
}

var searchXLSX string

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search all sources for acquisition targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		criteria := searchCriteria()
		results, _ := env.aggregator.Search(cmd.Context(), criteria)

		if searchXLSX != "" {
			if err := export.WriteResults(searchXLSX, results); err != nil {
				return err
			}
			fmt.Printf("Wrote %d results to %s\n", len(results), searchXLSX)
			return nil
		}

		printResults(results)
		return nil
	},
}

func printResults(results []model.SourcedCompany) {
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}
	for i, co := range results {
		score := "-"
		if co.FitScore != nil {
			score = fmt.Sprintf("%d", *co.FitScore)
		}
		fmt.Printf("%3d. [%s] %s (%s)\n", i+1, score, co.Name, co.Source)
		if co.Location != "" {
			fmt.Printf("     %s\n", co.Location)
		}
		if len(co.FitReasons) > 0 {
			fmt.Printf("     %s\n", strings.Join(co.FitReasons, " | "))
		}
		if co.SourceURL != "" {
			fmt.Printf("     %s\n", co.SourceURL)
		}
	}
	fmt.Printf("\n%d results\n", len(results))
}

var searchCriteria func() model.Criteria

func init() {
	searchCriteria = criteriaFlags(searchCmd)
	searchCmd.Flags().StringVar(&searchXLSX, "xlsx", "", "write results to an XLSX workbook instead of stdout")
	rootCmd.AddCommand(searchCmd)
}
