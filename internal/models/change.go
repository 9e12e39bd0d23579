package models

// ChangeType identifies the kind of store mutation
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeMoved   ChangeType = "moved"
	ChangeDeleted ChangeType = "deleted"
)

// Change is emitted after a mutation commits. Event is a copy of the record
// after the change (before it, for deletes). PreviousDate is set for moves.
type Change struct {
	Type         ChangeType `json:"type"`
	Event        *Event     `json:"event"`
	PreviousDate string     `json:"previousDate,omitempty"`
}

// Dates returns the partitions touched by the change
func (c Change) Dates() []string {
	if c.Event == nil {
		return nil
	}
	if c.PreviousDate != "" && c.PreviousDate != c.Event.Date {
		return []string{c.PreviousDate, c.Event.Date}
	}
	return []string{c.Event.Date}
}
