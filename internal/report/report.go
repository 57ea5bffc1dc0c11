// Package report collects per-identity outcomes of a run and renders them as
// a terminal table.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"clustrmaps-go-crawler/internal/models"
)

type Outcome string

const (
	Skipped  Outcome = "skipped"
	NotFound Outcome = "not found"
	Done     Outcome = "done"
	Failed   Outcome = "failed"
)

type Entry struct {
	Index    int
	Identity models.Identity
	Outcome  Outcome
	URL      string
	Listings int
	Details  int
	Err      string
}

type Summary struct {
	RunID   string
	Entries []Entry
}

func (s *Summary) Add(e Entry) { s.Entries = append(s.Entries, e) }

func (s *Summary) Count(o Outcome) int {
	n := 0
	for _, e := range s.Entries {
		if e.Outcome == o {
			n++
		}
	}
	return n
}

// Fetches is the number of listing and detail pages requested.
func (s *Summary) Fetches() int {
	n := 0
	for _, e := range s.Entries {
		if e.Outcome == Skipped || e.URL == "" {
			continue
		}
		n += 1 + e.Details
	}
	return n
}

func (s *Summary) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if s.RunID != "" {
		t.SetTitle("run " + s.RunID)
	}
	t.AppendHeader(table.Row{"#", "Identity", "Outcome", "Listings", "Details", "Note"})
	for _, e := range s.Entries {
		note := e.URL
		if e.Err != "" {
			note = e.Err
		}
		t.AppendRow(table.Row{e.Index, e.Identity.String(), string(e.Outcome), e.Listings, e.Details, note})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d done", s.Count(Done)),
		fmt.Sprintf("%d not found", s.Count(NotFound)), fmt.Sprintf("%d skipped", s.Count(Skipped)), ""})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
