package myschool

import (
	"strings"
	"time"

	appLog "roomcal/internal/log"
	"roomcal/internal/model"
)

// defaultEventName labels bookings whose items carry no name.
const defaultEventName = "Réservation"

// ShapeHandler resolves which sessions an item contributes. The API has
// two item shapes (see Item); handlers select between them.
type ShapeHandler interface {
	Sessions(it Item) []Session
}

// AutoShape picks the nested-sessions shape when an item carries a
// sessions list and falls back to treating the item as a single flat
// session otherwise. This is the default handler.
type AutoShape struct{}

func (AutoShape) Sessions(it Item) []Session {
	if len(it.Sessions) > 0 {
		return it.Sessions
	}
	return []Session{{Start: it.Start, End: it.End}}
}

// NestedShape only honors the sessions list; flat items yield nothing.
type NestedShape struct{}

func (NestedShape) Sessions(it Item) []Session {
	return it.Sessions
}

// Normalizer converts raw payloads into calendar events.
type Normalizer struct {
	Shape ShapeHandler
	UID   UIDStrategy
}

// NewNormalizer returns a Normalizer with the default shape handler and
// the given UID strategy.
func NewNormalizer(uid UIDStrategy) *Normalizer {
	return &Normalizer{Shape: AutoShape{}, UID: uid}
}

// Normalize flattens one payload into calendar events.
//
// Tolerance rules for upstream data quality: sessions missing either
// bound are dropped silently, unparseable or inverted (start after end)
// sessions are dropped with a warning. None of these abort the run.
func (n *Normalizer) Normalize(p *Payload, defaultLocation string) []model.CalendarEvent {
	if p == nil {
		return nil
	}

	events := make([]model.CalendarEvent, 0, len(p.Data))

	for _, it := range p.Data {
		name := it.Name
		if name == "" {
			name = defaultEventName
		}

		location := defaultLocation
		roomLink := ""
		if len(it.Rooms) > 0 {
			if it.Rooms[0].Name != "" {
				location = it.Rooms[0].Name
			}
			roomLink = it.Rooms[0].MapwizeLink
		}

		description := buildDescription(it.Author, roomLink)

		for _, s := range n.Shape.Sessions(it) {
			if s.Start == "" || s.End == "" {
				// Upstream legitimately ships half-open sessions; skip.
				appLog.Debug("skipping session with missing bound", "item_id", it.ID.String())
				continue
			}

			begin, err := time.Parse(time.RFC3339, s.Start)
			if err != nil {
				appLog.Warn("skipping session with unparseable start", "item_id", it.ID.String(), "start", s.Start)
				continue
			}
			end, err := time.Parse(time.RFC3339, s.End)
			if err != nil {
				appLog.Warn("skipping session with unparseable end", "item_id", it.ID.String(), "end", s.End)
				continue
			}
			if begin.After(end) {
				appLog.Warn("skipping session with inverted bounds", "item_id", it.ID.String(), "start", s.Start, "end", s.End)
				continue
			}

			events = append(events, model.CalendarEvent{
				UID:         n.UID.UID(it.ID.String(), s.Start, s.End, location, name),
				Name:        name,
				Begin:       begin,
				End:         end,
				Location:    location,
				Description: description,
				URL:         roomLink,
			})
		}
	}

	return events
}

// buildDescription renders "Réservé par : <first last>" with empty name
// parts dropped, plus the room map link on a second line when present.
func buildDescription(a *Author, roomLink string) string {
	parts := make([]string, 0, 2)
	if a != nil {
		if a.Firstname != "" {
			parts = append(parts, a.Firstname)
		}
		if a.Lastname != "" {
			parts = append(parts, a.Lastname)
		}
	}

	desc := strings.TrimSpace("Réservé par : " + strings.Join(parts, " "))
	if roomLink != "" {
		desc += "\nPlan salle : " + roomLink
	}
	return desc
}
