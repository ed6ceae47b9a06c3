// Package slidelight streams a user-picked color to an RGB LED controller
// over a serial connection.
package slidelight

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	"libdb.so/slidelight/colorwire"
	"libdb.so/slidelight/internal/serialport"
)

// ErrNotConnected is returned by Send when no port is open.
var ErrNotConnected = errors.New("not connected")

// Status is a snapshot of the transmitter's connection.
type Status struct {
	// Device is the device of the open port. It is empty when not connected.
	Device string
	// Frames is the number of frames written to the current port.
	Frames int
	// LastFrame is the last frame written to the current port.
	LastFrame string
	// Err is the error of the last failed connect or write. It is cleared
	// when a new connect is attempted.
	Err error
}

// Connected returns true if a port is open.
func (s Status) Connected() bool {
	return s.Device != ""
}

// Transmitter writes the color in a ColorState to a serial port every time
// it changes. Writes are fire-and-forget: the controller never replies.
type Transmitter struct {
	state  *ColorState
	opener serialport.Opener
	baud   int
	logger *slog.Logger

	mu     sync.Mutex
	port   serialport.Port
	status Status

	installed     chan struct{}
	statusChanged chan struct{}
}

// NewTransmitter creates a new transmitter for the given state. Ports are
// opened with opener at the configured baud rate.
func NewTransmitter(cfg *Config, opener serialport.Opener, state *ColorState, logger *slog.Logger) (*Transmitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &Transmitter{
		state:         state,
		opener:        opener,
		baud:          cfg.Baud,
		logger:        logger,
		installed:     make(chan struct{}, 1),
		statusChanged: make(chan struct{}, 1),
	}, nil
}

// Status returns the current connection status.
func (t *Transmitter) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// StatusChanged returns a channel that receives a value after the status
// changes. Changes are coalesced like ColorState.Changed.
func (t *Transmitter) StatusChanged() <-chan struct{} {
	return t.statusChanged
}

// Connect opens the given device and makes it the write handle, closing the
// previous one. The current color is sent as soon as Run picks the new
// handle up. On failure the error is also kept in the status.
func (t *Transmitter) Connect(ctx context.Context, device string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	t.status.Err = nil
	t.mu.Unlock()
	t.notifyStatus()

	t.logger.Debug("opening serial port", "device", device, "baud", t.baud)

	port, err := t.opener.Open(device, t.baud)
	if err != nil {
		err = errors.Wrap(err, "failed to open serial port")
		t.logger.Warn("failed to connect", "device", device, "error", err)

		t.mu.Lock()
		t.status.Err = err
		t.mu.Unlock()
		t.notifyStatus()
		return err
	}

	t.mu.Lock()
	old := t.port
	t.port = port
	t.status = Status{Device: device}
	t.mu.Unlock()

	if old != nil {
		t.closePort(old)
	}

	select {
	case t.installed <- struct{}{}:
	default:
	}
	t.notifyStatus()

	t.logger.Info("connected", "device", device)
	return nil
}

// Disconnect closes the current port, if any.
func (t *Transmitter) Disconnect() {
	t.mu.Lock()
	port := t.port
	t.port = nil
	t.status.Device = ""
	t.status.Frames = 0
	t.status.LastFrame = ""
	t.mu.Unlock()

	if port != nil {
		t.closePort(port)
		t.notifyStatus()
	}
}

// Send writes the current color to the port now. A failed write closes the
// port; there is no retry.
func (t *Transmitter) Send() error {
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()

	if port == nil {
		return ErrNotConnected
	}

	color := t.state.Color()
	frame := colorwire.Frame(color)

	if err := colorwire.WriteFrame(port, color); err != nil {
		t.logger.Warn("failed to write frame", "frame", frame, "error", err)

		t.mu.Lock()
		current := t.port == port
		if current {
			t.port = nil
			t.status = Status{Err: err}
		}
		t.mu.Unlock()

		// The port may already have been replaced by a new connection, which
		// closes the old one.
		if current {
			t.closePort(port)
			t.notifyStatus()
		}
		return err
	}

	t.logger.Debug("wrote frame", "frame", frame)

	t.mu.Lock()
	if t.port == port {
		t.status.Frames++
		t.status.LastFrame = frame
	}
	t.mu.Unlock()
	t.notifyStatus()

	return nil
}

// Run sends the color each time it changes or a new port is connected. It
// blocks until the given context is canceled, then closes the port.
func (t *Transmitter) Run(ctx context.Context) error {
	defer t.Disconnect()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.state.Changed():
		case <-t.installed:
		}

		// Changes made while disconnected are dropped. The current color is
		// sent once a port is installed.
		if err := t.Send(); err != nil && !errors.Is(err, ErrNotConnected) {
			t.logger.Debug("dropped connection after write failure", "error", err)
		}
	}
}

func (t *Transmitter) closePort(port serialport.Port) {
	t.logger.Debug("closing serial port")
	if err := port.Close(); err != nil {
		t.logger.Warn("failed to close serial port", "error", err)
	}
}

func (t *Transmitter) notifyStatus() {
	select {
	case t.statusChanged <- struct{}{}:
	default:
	}
}
