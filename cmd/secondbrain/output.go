package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/knowledge"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const previewRunes = 60

// colorize reports whether w is a terminal.
func colorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isTerminal(file)
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, colored bool) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if colored {
		tw.SetStyle(table.StyleColoredBright)
	} else {
		tw.SetStyle(table.StyleRounded)
	}

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

func entityTable(entities []core.Entity, colored bool) string {
	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, []string{e.Name, string(e.Type), e.Description})
	}
	return renderTable([]string{"Entity", "Type", "Description"}, rows, nil, colored)
}

func cardTable(cards []*core.Card, colored bool) string {
	rows := make([][]string, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, []string{
			c.ID,
			c.Type.String(),
			preview(c.Title),
			strings.Join(c.Tags, ", "),
			c.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return renderTable([]string{"ID", "Type", "Title", "Tags", "Created"}, rows, nil, colored)
}

func connectionTable(connections []core.Connection, colored bool) string {
	rows := make([][]string, 0, len(connections))
	for _, c := range connections {
		rows = append(rows, []string{
			fmt.Sprintf("%s %s", strings.ToLower(string(c.SourceType)), c.SourceID),
			string(c.Type),
			fmt.Sprintf("%s %s", strings.ToLower(string(c.TargetType)), c.TargetID),
			fmt.Sprintf("%.2f", c.Strength),
			c.Description,
		})
	}
	return renderTable(
		[]string{"From", "Connection", "To", "Strength", "Description"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		colored)
}

func positionTable(positions []knowledge.NodePosition, colored bool) string {
	rows := make([][]string, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, []string{
			strings.ToLower(string(p.Type)),
			p.ID,
			fmt.Sprintf("%.1f", p.X),
			fmt.Sprintf("%.1f", p.Y),
		})
	}
	return renderTable(
		[]string{"Node", "ID", "X", "Y"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
		colored)
}

// modelTable lists the catalog, marking models whose provider has credentials.
func modelTable(models []ai.ModelCapability, configured []ai.Provider, colored bool) string {
	ready := make(map[ai.Provider]bool, len(configured))
	for _, p := range configured {
		ready[p] = true
	}

	rows := make([][]string, 0, len(models))
	for _, m := range models {
		types := make([]string, 0, len(m.ContentTypes))
		for _, ct := range m.ContentTypes {
			types = append(types, ct.String())
		}
		mark := ""
		if ready[m.Provider] {
			mark = "yes"
		}
		rows = append(rows, []string{
			m.ID,
			m.Provider.String(),
			m.CostTier.String(),
			fmt.Sprintf("%.2f", m.Reliability),
			fmt.Sprintf("%d", m.MaxTokens),
			strings.Join(types, ", "),
			mark,
		})
	}
	return renderTable(
		[]string{"Model", "Provider", "Cost", "Reliability", "Max tokens", "Content", "Configured"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
		colored)
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= previewRunes {
		return s
	}
	return string(runes[:previewRunes-3]) + "..."
}
