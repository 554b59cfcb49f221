package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/sourcing-cli/internal/model"
)

var enrichAll bool

var enrichCmd = &cobra.Command{
	Use:   "enrich [company-id]",
	Short: "Find principal-owner contact info for stored companies",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if enrichAll {
			companies, err := env.store.ListCompanies(cmd.Context(), 10000, 0)
			if err != nil {
				return err
			}
			ids := make([]string, len(companies))
			for i, co := range companies {
				ids[i] = co.ID
			}

			res, err := env.enricher.EnrichMany(cmd.Context(), ids)
			if err != nil {
				return err
			}
			fmt.Printf("Enriched %d of %d companies (%d failed, %d skipped)\n",
				res.Enriched, res.Total, res.Failed, res.Skipped)
			return nil
		}

		if len(args) == 0 {
			return eris.New("company id required unless --all is set")
		}

		res, err := env.enricher.EnrichCompany(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var enrichStatusCmd = &cobra.Command{
	Use:   "status <company-id>",
	Short: "Show the enrichment status of a company's principal owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		status, contact, err := env.enricher.Status(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"status": status, "contact": contact})
	},
}

var enrichAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Store a company for later enrichment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		location, _ := cmd.Flags().GetString("location")
		website, _ := cmd.Flags().GetString("website")
		co := &model.Company{Name: args[0], Location: location, Website: website}
		if err := env.store.CreateCompany(cmd.Context(), co); err != nil {
			return err
		}
		fmt.Println(co.ID)
		return nil
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}

func init() {
	enrichCmd.Flags().BoolVar(&enrichAll, "all", false, "enrich every stored company without an enriched owner")
	enrichAddCmd.Flags().String("location", "", "company location")
	enrichAddCmd.Flags().String("website", "", "company website")
	enrichCmd.AddCommand(enrichStatusCmd, enrichAddCmd)
	rootCmd.AddCommand(enrichCmd)
}
