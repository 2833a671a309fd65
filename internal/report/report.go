// Package report aggregates batch analysis results and renders them as
// tables or CSV.
package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"cardsight/internal/analyze"
)

// Entry is one aggregated row: how many query images matched a card.
type Entry struct {
	CardID string
	Count  int
}

// Summary aggregates batch results.
type Summary struct {
	Entries []Entry

	// Undefined counts query images whose top score fell below the
	// classification threshold.
	Undefined int

	// Total is the number of analyzed images.
	Total int
}

// Aggregate counts identifications per card over a batch. Undefined
// results are counted separately, not attributed to any card. Entries
// come out sorted by descending count, card ID as tiebreak.
func Aggregate(results []analyze.Result) *Summary {
	counts := make(map[string]int)
	s := &Summary{Total: len(results)}
	for i := range results {
		id := results[i].TopID()
		if id == "" {
			s.Undefined++
			continue
		}
		counts[id]++
	}
	for id, n := range counts {
		s.Entries = append(s.Entries, Entry{CardID: id, Count: n})
	}
	sort.Slice(s.Entries, func(i, j int) bool {
		if s.Entries[i].Count != s.Entries[j].Count {
			return s.Entries[i].Count > s.Entries[j].Count
		}
		return s.Entries[i].CardID < s.Entries[j].CardID
	})
	return s
}

// RenderTable renders the summary as a human-readable table.
func (s *Summary) RenderTable() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	// The default style uppercases footer cells; keep the "undefined"
	// row in the same casing the CSV export uses.
	tw.Style().Format.Footer = text.FormatDefault
	tw.AppendHeader(table.Row{"Card", "Count"})
	for _, e := range s.Entries {
		tw.AppendRow(table.Row{e.CardID, e.Count})
	}
	if s.Undefined > 0 {
		tw.AppendFooter(table.Row{"undefined", s.Undefined})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// WriteCSV writes the summary as a delimited table, one row per card
// plus an "undefined" row when applicable.
func (s *Summary) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"card_id", "count"}); err != nil {
		return err
	}
	for _, e := range s.Entries {
		if err := cw.Write([]string{e.CardID, strconv.Itoa(e.Count)}); err != nil {
			return err
		}
	}
	if s.Undefined > 0 {
		if err := cw.Write([]string{"undefined", strconv.Itoa(s.Undefined)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
