package reader

import (
	"context"
	"log"
	"time"
)

// Scan is one raw card read.  Payload carries whatever text the card's data
// blocks held; serial readers only report the UID.
type Scan struct {
	UID     string
	Payload string
}

// CardReader is the interface for all card reader implementations.
//
// Read waits up to timeout for a card and returns (nil, nil) when none was
// presented.  A zero timeout polls without waiting; a negative timeout blocks
// until a card is read or ctx is cancelled.  The scan loop always passes a
// short positive timeout so Stop stays responsive.
//
// Close releases reader resources and is safe to call more than once.
type CardReader interface {
	Read(ctx context.Context, timeout time.Duration) (*Scan, error)
	Close() error
}

// Config holds common configuration for reader implementations.
type Config struct {
	Type   string // "auto", "serial", "mock"
	Device string // e.g. "/dev/serial0"
	Baud   int
}

// New creates a CardReader for the given configuration.
//
// "auto" probes for real hardware and falls back to a mock reader when the
// serial device cannot be opened; the fallback is a logged, typed result of
// the probe, not error-driven control flow in the caller.  The boolean return
// reports whether real hardware is attached.
func New(cfg Config, logger *log.Logger) (CardReader, bool, error) {
	switch cfg.Type {
	case "mock":
		return NewMock(), false, nil
	case "serial":
		r, err := NewSerial(cfg.Device, cfg.Baud)
		if err != nil {
			return nil, false, err
		}
		return r, true, nil
	default: // "auto"
		r, err := NewSerial(cfg.Device, cfg.Baud)
		if err != nil {
			logger.Printf("serial reader unavailable (%v), falling back to mock reader", err)
			return NewMock(), false, nil
		}
		return r, true, nil
	}
}
