package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sourcing-cli/internal/model"
)

// LeadPageRequest builds a page create request for a sourced company in the
// lead database. Expected database schema: Name (title), Source, Sector,
// Location (rich text), Fit Score (number), URL (url), Reasons (rich text).
func LeadPageRequest(dbID string, co model.SourcedCompany) *notionapi.PageCreateRequest {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: co.Name}}},
		},
		"Source": notionapi.SelectProperty{
			Select: notionapi.Option{Name: co.Source},
		},
	}
	if co.Sector != "" {
		props["Sector"] = richText(co.Sector)
	}
	if co.Location != "" {
		props["Location"] = richText(co.Location)
	}
	if co.FitScore != nil {
		score := float64(*co.FitScore)
		props["Fit Score"] = notionapi.NumberProperty{Number: score}
	}
	if co.SourceURL != "" {
		props["URL"] = notionapi.URLProperty{URL: co.SourceURL}
	}
	if len(co.FitReasons) > 0 {
		props["Reasons"] = richText(strings.Join(co.FitReasons, "; "))
	}

	return &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: notionapi.DatabaseID(dbID)},
		Properties: props,
	}
}

func richText(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: s}}},
	}
}

// SyncLeads pushes companies into the lead database, skipping names that
// already exist. Returns the number of pages created.
func SyncLeads(ctx context.Context, c Client, dbID string, companies []model.SourcedCompany) (int, error) {
	created := 0
	for _, co := range companies {
		exists, err := leadExists(ctx, c, dbID, co.Name)
		if err != nil {
			return created, eris.Wrap(err, "notion: check existing lead")
		}
		if exists {
			zap.L().Debug("lead already in notion", zap.String("name", co.Name))
			continue
		}

		if _, err := c.CreatePage(ctx, LeadPageRequest(dbID, co)); err != nil {
			return created, eris.Wrapf(err, "notion: create lead %q", co.Name)
		}
		created++
	}
	return created, nil
}

func leadExists(ctx context.Context, c Client, dbID, name string) (bool, error) {
	resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Name",
			RichText: &notionapi.TextFilterCondition{Equals: name},
		},
		PageSize: 1,
	})
	if err != nil {
		return false, err
	}
	return len(resp.Results) > 0, nil
}
