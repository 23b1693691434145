package reader

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// frameInterval paces re-reads while waiting out a Read timeout.
const frameInterval = 50 * time.Millisecond

// Serial reads proximity cards from a serial RFID module.
// Frame format: [0x02][0x09][data x6][xor checksum][0x03].
type Serial struct {
	port   *serial.Port
	device string

	mu     sync.Mutex
	closed bool
}

func NewSerial(device string, baud int) (*Serial, error) {
	if baud <= 0 {
		baud = 115200
	}
	c := &serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: frameInterval,
	}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}

	return &Serial{port: port, device: device}, nil
}

func (s *Serial) Read(ctx context.Context, timeout time.Duration) (*Scan, error) {
	deadline := time.Now().Add(timeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		uid, err := s.readFrame()
		if err != nil {
			return nil, err
		}
		if uid != 0 {
			return &Scan{UID: strconv.FormatUint(uid, 10)}, nil
		}

		if timeout == 0 {
			return nil, nil
		}
		if timeout > 0 && !time.Now().Before(deadline) {
			return nil, nil
		}
	}
}

// readFrame attempts a single framed read.  Returns 0 on timeout, partial or
// corrupt frames; the module retransmits while a card is in the field.
func (s *Serial) readFrame() (uint64, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, fmt.Errorf("serial %s: reader closed", s.device)
	}
	port := s.port
	s.mu.Unlock()

	buff := make([]byte, 9)
	n, err := port.Read(buff)
	if err != nil || n != 9 {
		return 0, nil
	}

	if !bytes.Equal(buff[0:2], []byte{0x02, 0x09}) {
		return 0, nil
	}
	if buff[8] != 0x03 {
		return 0, nil
	}

	data := buff[1:7]
	xor := data[0]
	for i := 1; i < len(data); i++ {
		xor ^= data[i]
	}
	if xor != buff[7] {
		return 0, nil
	}

	uid := (uint64(data[2]) << 24) | (uint64(data[3]) << 16) | (uint64(data[4]) << 8) | uint64(data[5])
	return uid, nil
}

func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.port == nil {
		return nil
	}
	s.closed = true
	return s.port.Close()
}
