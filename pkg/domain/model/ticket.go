package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/secmon-lab/ticketlens/pkg/domain/types"
)

// Ticket is a read-only view of a support ticket owned by the external
// ticket store. Resolution is empty when the ticket is unresolved.
type Ticket struct {
	ID          int64
	Subject     string
	Description string
	Resolution  string
	Status      types.TicketStatus
	CreatedAt   time.Time
}

// embeddingField maps a canonical embedding input field to the ordered list
// of accepted external names. The bare name wins over the prefixed one.
type embeddingField struct {
	label string
	names []string
}

var embeddingFields = []embeddingField{
	{label: "Subject", names: []string{"subject", "ticket_subject"}},
	{label: "Issue", names: []string{"description", "ticket_description"}},
	{label: "Resolution", names: []string{"resolution", "ticket_resolution"}},
}

// ComposeEmbeddingText builds the canonical embedding input from a loosely
// shaped ticket record. Each present field renders as "{Label}: {value}" on
// its own line in fixed order. A field is absent when no accepted name is
// set, the value is nil, or the value trims to an empty string. Returns ""
// when nothing is present. Pure; never fails.
func ComposeEmbeddingText(record map[string]any) string {
	var lines []string
	for _, f := range embeddingFields {
		if v, ok := lookupField(record, f.names); ok {
			lines = append(lines, f.label+": "+v)
		}
	}
	return strings.Join(lines, "\n")
}

// lookupField tries each accepted name in order. The first name present in
// the record decides the outcome: nil or blank values do not fall through
// to later names.
func lookupField(record map[string]any, names []string) (string, bool) {
	for _, name := range names {
		v, ok := record[name]
		if !ok {
			continue
		}
		if v == nil {
			return "", false
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s == "" {
			return "", false
		}
		return s, true
	}
	return "", false
}

// EmbeddingText composes the canonical embedding input for the ticket.
func (t *Ticket) EmbeddingText() string {
	return ComposeEmbeddingText(map[string]any{
		"subject":     t.Subject,
		"description": t.Description,
		"resolution":  t.Resolution,
	})
}
