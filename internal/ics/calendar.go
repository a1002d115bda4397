package ics

import (
	"sort"

	ical "github.com/arran4/golang-ical"

	"roomcal/internal/model"
)

// Calendar is a named, UID-keyed set of events. Insertion order is
// irrelevant; adding an event with an already-present UID replaces it,
// which keeps per-room and aggregate calendars consistent when the same
// booking arrives twice.
type Calendar struct {
	Name string

	events map[string]model.CalendarEvent
}

// NewCalendar creates an empty calendar with the given display name.
func NewCalendar(name string) *Calendar {
	return &Calendar{
		Name:   name,
		events: make(map[string]model.CalendarEvent),
	}
}

// Add inserts an event, keyed by UID.
func (c *Calendar) Add(ev model.CalendarEvent) {
	c.events[ev.UID] = ev
}

// AddAll inserts every event in evs.
func (c *Calendar) AddAll(evs []model.CalendarEvent) {
	for _, ev := range evs {
		c.Add(ev)
	}
}

// Len reports the number of distinct events.
func (c *Calendar) Len() int {
	return len(c.events)
}

// UIDs returns the set of event UIDs.
func (c *Calendar) UIDs() map[string]bool {
	out := make(map[string]bool, len(c.events))
	for uid := range c.events {
		out[uid] = true
	}
	return out
}

// Events returns the events in a stable order: by begin instant, then by
// UID. Stable ordering keeps serialization byte-identical across runs on
// unchanged input.
func (c *Calendar) Events() []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Begin.Equal(out[j].Begin) {
			return out[i].Begin.Before(out[j].Begin)
		}
		return out[i].UID < out[j].UID
	})
	return out
}

// Serialize renders the calendar as an iCalendar document with an
// X-WR-CALNAME line carrying the display name. DTSTAMP is pinned to each
// event's begin instant rather than wall-clock now so unchanged upstream
// data serializes to identical bytes.
func (c *Calendar) Serialize() string {
	cal := ical.NewCalendar()
	cal.SetXWRCalName(c.Name)

	for _, ev := range c.Events() {
		ve := cal.AddEvent(ev.UID)
		ve.SetDtStampTime(ev.Begin.UTC())
		ve.SetStartAt(ev.Begin.UTC())
		ve.SetEndAt(ev.End.UTC())
		ve.SetSummary(ev.Name)
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.URL != "" {
			ve.SetURL(ev.URL)
		}
	}

	return cal.Serialize()
}
