
package models

import (
	"strings"
)

// NotAvailable is written for every field whose source node is missing.
const NotAvailable = "N/A"

// ListSeparator joins multi-valued fields in output tables.
const ListSeparator = " | "

var MainColumns = []string{"name", "age", "address", "state", "associated_persons", "phone", "details_url"}

var QuickFactsColumns = []string{"name", "emails", "phone_numbers", "source_url"}

// Record is one row of an output table.
type Record interface {
	Field(column string) string
}

type Identity struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	State     string `json:"state,omitempty"`
}

func (id Identity) HasState() bool { return id.State != "" }

// Key is the base filename shared by every output file of the identity.
func (id Identity) Key() string {
	key := id.FirstName + "_" + id.LastName
	if id.HasState() {
		key += "_" + strings.ReplaceAll(id.State, " ", "_")
	}
	return key
}

func (id Identity) String() string {
	s := id.FirstName + " " + id.LastName
	if id.HasState() {
		s += " in " + id.State
	}
	return s
}

// ListingRecord is one person entry of a listing page. Empty strings mean the
// node was absent; they are rendered as NotAvailable.
type ListingRecord struct {
	Name              string   `json:"name"`
	Age               string   `json:"age"`
	Address           string   `json:"address"`
	State             string   `json:"state"`
	AssociatedPersons []string `json:"associated_persons,omitempty"`
	Phone             string   `json:"phone"`
	DetailsURL        string   `json:"details_url,omitempty"`
}

func (r ListingRecord) HasDetails() bool { return r.DetailsURL != "" }

func (r ListingRecord) Field(column string) string {
	switch column {
	case "name":
		return orNA(r.Name)
	case "age":
		return orNA(r.Age)
	case "address":
		return orNA(r.Address)
	case "state":
		return orNA(r.State)
	case "associated_persons":
		return joinOrNA(r.AssociatedPersons)
	case "phone":
		return orNA(r.Phone)
	case "details_url":
		return orNA(r.DetailsURL)
	}
	return NotAvailable
}

// QuickFacts holds the contact facts of one detail page. Emails and
// PhoneNumbers are deduplicated and sorted.
type QuickFacts struct {
	Name         string   `json:"name"`
	Emails       []string `json:"emails,omitempty"`
	PhoneNumbers []string `json:"phone_numbers,omitempty"`
	SourceURL    string   `json:"source_url"`
}

func (q QuickFacts) Field(column string) string {
	switch column {
	case "name":
		return orNA(q.Name)
	case "emails":
		return joinOrNA(q.Emails)
	case "phone_numbers":
		return joinOrNA(q.PhoneNumbers)
	case "source_url":
		return orNA(q.SourceURL)
	}
	return NotAvailable
}

const (
	LabelFound    = "found"
	LabelNotFound = "not_found"
)

type Classification struct {
	Label  string            `json:"label"`
	Reason map[string]string `json:"reason,omitempty"`
}

func (c Classification) NotFound() bool { return c.Label == LabelNotFound }

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func joinOrNA(items []string) string {
	if len(items) == 0 {
		return NotAvailable
	}
	return strings.Join(items, ListSeparator)
}
