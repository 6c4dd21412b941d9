package selection

import "time"

// State of the selection grid.
type State int

const (
	Idle State = iota
	// SingleSelecting is entered by a plain click and immediately advances to
	// PendingPriceConfirmation.
	SingleSelecting
	MultiSelecting
	PendingPriceConfirmation
	ConfirmingDeselect
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SingleSelecting:
		return "single_selecting"
	case MultiSelecting:
		return "multi_selecting"
	case PendingPriceConfirmation:
		return "pending_price_confirmation"
	case ConfirmingDeselect:
		return "confirming_deselect"
	}
	return "unknown"
}

// Event is an input of the grid state machine. Keyboard modifiers arrive as
// ModifierDown/ModifierUp values like any other input.
type Event interface {
	eventName() string
}

// Click on a date x room cell.
type Click struct {
	Date   time.Time
	RoomID uint
}

// ModifierDown is the multi-select modifier key being pressed.
type ModifierDown struct{}

// ModifierUp is the multi-select modifier key being released.
type ModifierUp struct{}

// ToggleMultiSelect switches the explicit multi-select mode.
type ToggleMultiSelect struct {
	On bool
}

// OpenPriceDialog asks for a price for the pending cells in multi-select mode.
type OpenPriceDialog struct{}

// SubmitPrice is the raw text typed into the price dialog.
type SubmitPrice struct {
	Input string
}

// Cancel closes the open dialog.
type Cancel struct{}

// HeaderClick bulk selects (or deselects) every clickable date of a room.
type HeaderClick struct {
	RoomID uint
}

// ConfirmDeselect removes the committed cell awaiting confirmation.
type ConfirmDeselect struct{}

// UndoLastCommit reverts the most recent change to the committed cells.
type UndoLastCommit struct{}

// Discard drops every uncommitted piece of state, as when leaving the grid.
type Discard struct{}

func (Click) eventName() string             { return "click" }
func (ModifierDown) eventName() string      { return "modifier_down" }
func (ModifierUp) eventName() string        { return "modifier_up" }
func (ToggleMultiSelect) eventName() string { return "toggle_multi_select" }
func (OpenPriceDialog) eventName() string   { return "open_price_dialog" }
func (SubmitPrice) eventName() string       { return "submit_price" }
func (Cancel) eventName() string            { return "cancel" }
func (HeaderClick) eventName() string       { return "header_click" }
func (ConfirmDeselect) eventName() string   { return "confirm_deselect" }
func (UndoLastCommit) eventName() string    { return "undo_last_commit" }
func (Discard) eventName() string           { return "discard" }

// Name returns the wire name of an event.
func Name(ev Event) string {
	return ev.eventName()
}
