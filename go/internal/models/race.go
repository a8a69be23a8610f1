package models

// RaceEvent represents one race instance. It scopes chip and reader
// mappings as well as live subscriptions. The vendor relay addresses
// events by their numeric identifier.
type RaceEvent struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
