package game

import "errors"

// Rejected actions. Each leaves the session untouched and carries a
// message fit to show the player.
var (
	ErrUnknownMode      = errors.New("unknown game mode")
	ErrUnknownScenario  = errors.New("unknown scenario")
	ErrUnknownStep      = errors.New("unknown step")
	ErrPlayerName       = errors.New("please enter a name of 1–40 characters")
	ErrInvalidSlot      = errors.New("slot index is out of range")
	ErrSlotOccupied     = errors.New("that slot already holds a step")
	ErrScenarioMismatch = errors.New("this piece doesn't belong to the current scenario")
	ErrStepPlaced       = errors.New("that step is already placed")
	ErrNoSelection      = errors.New("please select a piece first")
	ErrFrozen           = errors.New("this scenario has been confirmed and can no longer change")
	ErrPolicy           = errors.New("action is not available in this game mode")
	ErrIncomplete       = errors.New("every step must be in its correct slot first")
	ErrAcknowledged     = errors.New("this scenario is already confirmed")
)
