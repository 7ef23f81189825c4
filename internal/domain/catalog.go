package domain

import "strings"

// Chapel a bookable venue of a parish
type Chapel struct {
	ID       int64
	ParishID int64
	Name     string
	IsBase   bool
	Active   bool
}

// EventVariant bookable configuration of a liturgical event at a chapel,
// joined with its chapel-event, event, chapel and parish
type EventVariant struct {
	ID              int64
	ChapelEventID   int64
	EventID         int64
	ChapelID        int64
	ParishID        int64
	Name            string
	Description     string
	Price           float64
	MaxCapacity     int
	DurationMinutes int

	EventName        string
	EventDescription string
	ChapelName       string
	ParishName       string
	PrimaryColor     *string
	SecondaryColor   *string

	Active            bool
	ChapelEventActive bool
	ChapelActive      bool
}

// IsBookable returns true if the variant and every level above it are active
func (v *EventVariant) IsBookable() bool {
	return v.Active && v.ChapelEventActive && v.ChapelActive && v.DurationMinutes > 0
}

// RequirementKind source of a requirement
type RequirementKind string

const (
	RequirementBase   RequirementKind = "BASE"
	RequirementChapel RequirementKind = "CHAPEL"
)

// RequirementSource an active requirement definition (base or chapel-specific)
type RequirementSource struct {
	ID          int64
	Kind        RequirementKind
	Name        string
	Description string
}

// Snapshot returns a frozen copy of the requirement for a reservation
func (r *RequirementSource) Snapshot() ReservationRequirement {
	id := r.ID
	snapshot := ReservationRequirement{
		Name:        r.Name,
		Description: r.Description,
		Completed:   false,
	}
	if r.Kind == RequirementBase {
		snapshot.BaseRequirementID = &id
	} else {
		snapshot.ChapelRequirementID = &id
	}
	return snapshot
}

// Profile personal data of a user
type Profile struct {
	UserID          int64
	FirstNames      string
	PaternalSurname string
	MaternalSurname *string
}

// FullName returns "first names + paternal surname [+ maternal surname]"
func (p *Profile) FullName() string {
	parts := []string{strings.TrimSpace(p.FirstNames), strings.TrimSpace(p.PaternalSurname)}
	if p.MaternalSurname != nil {
		parts = append(parts, strings.TrimSpace(*p.MaternalSurname))
	}

	nonEmpty := parts[:0]
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, " ")
}
