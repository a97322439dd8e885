package types

import "strings"

// TicketStatus is the status value carried by a ticket record. The ticket
// store is external and the value set is not enforced here; only "resolved"
// has semantic weight for the embedding pipeline.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// IsResolved reports whether the status marks the ticket as resolved.
// Comparison is case-insensitive because upstream data is free-form.
func (s TicketStatus) IsResolved() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(TicketStatusResolved))
}
