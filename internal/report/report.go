// Package report renders the end-of-run summary: corpus size, distinct
// keyword counts and the status histogram.
package report

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"movie_keywords/internal/filter"
	"movie_keywords/internal/keywords"
	"movie_keywords/internal/logger"
)

// Render writes the summary tables to w.
func Render(w io.Writer, acc *keywords.Accumulator) {
	sets := table.NewWriter()
	sets.SetOutputMirror(w)
	sets.SetStyle(table.StyleLight)
	sets.SetTitle("Keyword sets")
	sets.AppendHeader(table.Row{"Set", "Unique"})
	for _, kind := range keywords.Kinds() {
		sets.AppendRow(table.Row{kind.String(), acc.Len(kind)})
	}
	sets.Render()

	statuses := table.NewWriter()
	statuses.SetOutputMirror(w)
	statuses.SetStyle(table.StyleLight)
	statuses.SetTitle("Movies by status")
	statuses.AppendHeader(table.Row{"Status", "Movies"})
	for _, s := range filter.Statuses() {
		statuses.AppendRow(table.Row{s.String(), acc.Count(s)})
	}
	statuses.AppendFooter(table.Row{"TOTAL", strconv.Itoa(acc.Total())})
	statuses.Render()
}

// Log emits the same summary as structured log lines.
func Log(log logger.Logger, acc *keywords.Accumulator) {
	log.Info("movies processed", logger.Int("total", acc.Total()))
	for _, kind := range keywords.Kinds() {
		log.Info("unique keywords", logger.String("set", kind.String()), logger.Int("count", acc.Len(kind)))
	}
	for _, s := range filter.Statuses() {
		log.Info("status count", logger.String("status", s.String()), logger.Int("count", acc.Count(s)))
	}
}
