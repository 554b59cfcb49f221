package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/sourcing-cli/internal/export"
	"github.com/sells-group/sourcing-cli/internal/model"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run a search and export ranked results to XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		results, _ := env.aggregator.Search(cmd.Context(), exportCriteria())
		if err := export.WriteResults(exportOut, results); err != nil {
			return err
		}
		fmt.Printf("Wrote %d results to %s\n", len(results), exportOut)
		return nil
	},
}

var exportCriteria func() model.Criteria

func init() {
	exportCriteria = criteriaFlags(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "results.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
