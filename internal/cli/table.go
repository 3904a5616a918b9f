package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/forPelevin/jumpcut/internal/domain/editplan"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderSummary tabulates removed time per category followed by totals.
func renderSummary(p editplan.Plan) string {
	title := cases.Title(language.English)
	var rows [][]string
	for _, r := range p.Summary() {
		rows = append(rows, []string{title.String(r.Category.String()), seconds(r.Seconds), fmt.Sprint(r.Count)})
	}
	rows = append(rows,
		[]string{"Removed", seconds(p.RemovedDuration), fmt.Sprint(len(p.RemoveSegments()))},
		[]string{"Kept", seconds(p.EditedDuration), fmt.Sprint(len(p.KeepSegments()))},
		[]string{"Original", seconds(p.OriginalDuration), fmt.Sprint(len(p.Segments))},
	)
	return renderTable(
		[]string{"Category", "Seconds", "Segments"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	)
}

func seconds(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
