package app

// Event names for frontend communication.
const (
	EventLabel      = "label"
	EventClear      = "clear"
	EventAppearance = "appearance"
	EventStatus     = "status"
)
