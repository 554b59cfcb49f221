// Package export writes ranked sourcing results to spreadsheet files for
// hand-off to deal teams.
package export

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/sourcing-cli/internal/model"
)

var resultColumns = []string{
	"Rank", "Score", "Name", "Source", "Sector", "Location",
	"Revenue", "Asking Price", "Employees", "Website", "Listing URL",
	"Description", "Fit Reasons",
}

// WriteResults writes scored results to an XLSX workbook at path, one row
// per company in the order given (callers pass them ranked).
func WriteResults(path string, results []model.SourcedCompany) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Results")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range resultColumns {
		cell := header.AddCell()
		cell.Value = col
		style := cell.GetStyle()
		style.Font.Bold = true
		style.ApplyFont = true
	}

	for i, co := range results {
		score := ""
		if co.FitScore != nil {
			score = strconv.Itoa(*co.FitScore)
		}
		row := sheet.AddRow()
		for _, v := range []string{
			strconv.Itoa(i + 1),
			score,
			co.Name,
			co.Source,
			co.Sector,
			co.Location,
			co.Revenue,
			co.AskingPrice,
			co.Employees,
			co.Website,
			co.SourceURL,
			co.Description,
			strings.Join(co.FitReasons, "; "),
		} {
			row.AddCell().Value = v
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}
