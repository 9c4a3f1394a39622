// Package port holds the definition of a physical port
package port

// StateType represents the level of a digital line.
type StateType int

const (
	// High indicates a logical 1.
	High StateType = 1
	// Low indicates a logical 0.
	Low StateType = 0
	// Invalid indicates an unknown or invalid state.
	Invalid StateType = -1
)

// Line is a single digital output line.
// The radio encoder drives it bit by bit; implementations must switch
// levels without buffering or queueing.
type Line interface {
	// High drives the line to the high level.
	High()
	// Low drives the line to the low level.
	Low()
	// Close releases the line.
	Close() error
}
