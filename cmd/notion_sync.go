package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sourcing-cli/internal/model"
	"github.com/sells-group/sourcing-cli/pkg/notion"
)

var notionTop int

var notionSyncCmd = &cobra.Command{
	Use:   "notion-sync",
	Short: "Push the top search results into the Notion lead database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Notion.Token == "" || cfg.Notion.LeadDB == "" {
			zap.L().Info("notion not configured, skipping sync")
			return nil
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		results, _ := env.aggregator.Search(cmd.Context(), notionCriteria())
		if len(results) > notionTop {
			results = results[:notionTop]
		}

		client := notion.NewClient(cfg.Notion.Token)
		created, err := notion.SyncLeads(cmd.Context(), client, cfg.Notion.LeadDB, results)
		if err != nil {
			return err
		}
		fmt.Printf("Created %d leads in Notion (%d already present)\n", created, len(results)-created)
		return nil
	},
}

var notionCriteria func() model.Criteria

func init() {
	notionCriteria = criteriaFlags(notionSyncCmd)
	notionSyncCmd.Flags().IntVar(&notionTop, "top", 20, "number of top-ranked results to sync")
	rootCmd.AddCommand(notionSyncCmd)
}
