package myschool

import "encoding/json"

// Payload is the planning API response for one room query.
type Payload struct {
	Data []Item `json:"data"`
	Meta Meta   `json:"meta"`
}

// Meta carries the optional resource title returned with withTitle=true.
type Meta struct {
	Title string `json:"title"`
}

// Item is one booking entry. The API has shipped two shapes over time:
// items carrying a Sessions list (item-level fields shared by every
// session), and flat items whose Start/End live on the item itself.
// ShapeHandler resolves which applies.
type Item struct {
	ID     json.Number `json:"id"`
	Name   string      `json:"name"`
	Rooms  []RoomRef   `json:"rooms"`
	Author *Author     `json:"author"`

	Sessions []Session `json:"sessions"`

	// Flat-shape bounds. Ignored when Sessions is non-empty.
	Start string `json:"start"`
	End   string `json:"end"`
}

// RoomRef is the room annotation embedded in a booking item.
type RoomRef struct {
	Name string `json:"name"`
	// MapwizeLink points at the campus-map entry for the room.
	MapwizeLink string `json:"mapwizeLink"`
}

// Author is the person who made the booking.
type Author struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Session is a single booked interval. Start/End are RFC 3339 strings
// with explicit UTC offsets; either may be absent upstream.
type Session struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
