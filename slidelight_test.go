package slidelight

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"libdb.so/slidelight/internal/serialport"
	"libdb.so/slidelight/led"
)

type fakePort struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	closed   bool
	writeErr error
}

func (p *fakePort) Read(b []byte) (int, error) { return 0, io.EOF }

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, io.ErrClosedPipe
	}
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.buf.Write(b)
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePort) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.String()
}

func (p *fakePort) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

type fakeOpener struct {
	mu     sync.Mutex
	ports  map[string]*fakePort
	opened []string
	bauds  []int
}

func newFakeOpener(devices ...string) *fakeOpener {
	o := &fakeOpener{ports: make(map[string]*fakePort)}
	for _, dev := range devices {
		o.ports[dev] = &fakePort{}
	}
	return o
}

func (o *fakeOpener) Open(device string, baud int) (serialport.Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.opened = append(o.opened, device)
	o.bauds = append(o.bauds, baud)

	p, ok := o.ports[device]
	if !ok {
		return nil, errors.Errorf("open %s: no such file or directory", device)
	}
	return p, nil
}

func newTestTransmitter(t *testing.T, opener serialport.Opener, initial led.RGBColor) (*Transmitter, *ColorState) {
	t.Helper()

	state := NewColorState(initial)
	tx, err := NewTransmitter(DefaultConfig(), opener, state, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return tx, state
}

func runTransmitter(t *testing.T, tx *Transmitter) (cancel func() error) {
	t.Helper()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tx.Run(ctx) }()

	return func() error {
		stop()
		select {
		case err := <-done:
			return err
		case <-time.After(time.Second):
			t.Fatal("transmitter did not stop")
			return nil
		}
	}
}

func waitForFrames(t *testing.T, p *fakePort, want string) {
	t.Helper()
	require.Eventually(t, func() bool { return p.String() == want },
		time.Second, time.Millisecond, "port contents %q, want %q", p.String(), want)
}

func TestNewTransmitterInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Baud = -1

	_, err := NewTransmitter(cfg, newFakeOpener(), NewColorState(DefaultColor), slog.Default())
	assert.Error(t, err)
}

func TestTransmitterSendsOnConnectAndChange(t *testing.T) {
	opener := newFakeOpener("/dev/ttyACM0")
	port := opener.ports["/dev/ttyACM0"]

	tx, state := newTestTransmitter(t, opener, DefaultColor)
	stop := runTransmitter(t, tx)

	require.NoError(t, tx.Connect(context.Background(), "/dev/ttyACM0"))
	waitForFrames(t, port, "120:0:0|")

	state.Set(led.Green, 5)
	waitForFrames(t, port, "120:0:0|120:5:0|")

	state.Set(led.Blue, 255)
	waitForFrames(t, port, "120:0:0|120:5:0|120:5:255|")

	require.Eventually(t, func() bool { return tx.Status().Frames == 3 },
		time.Second, time.Millisecond)

	status := tx.Status()
	assert.True(t, status.Connected())
	assert.Equal(t, "/dev/ttyACM0", status.Device)
	assert.Equal(t, "120:5:255|", status.LastFrame)
	assert.NoError(t, status.Err)

	assert.Equal(t, []int{115200}, opener.bauds)

	err := stop()
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.True(t, port.isClosed(), "port must be closed after Run returns")
}

func TestTransmitterSendNotConnected(t *testing.T) {
	tx, state := newTestTransmitter(t, newFakeOpener(), DefaultColor)
	state.Set(led.Red, 1)

	err := tx.Send()
	assert.True(t, errors.Is(err, ErrNotConnected), "got %v", err)
	assert.False(t, tx.Status().Connected())
}

func TestTransmitterConnectFailure(t *testing.T) {
	opener := newFakeOpener("/dev/ttyUSB1")
	tx, _ := newTestTransmitter(t, opener, DefaultColor)

	err := tx.Connect(context.Background(), "/dev/ttyUSB0")
	require.Error(t, err)

	status := tx.Status()
	assert.False(t, status.Connected())
	require.Error(t, status.Err)
	assert.Contains(t, status.Err.Error(), "no such file or directory")

	select {
	case <-tx.StatusChanged():
	default:
		t.Fatal("expected a status notification")
	}

	require.NoError(t, tx.Connect(context.Background(), "/dev/ttyUSB1"))
	status = tx.Status()
	assert.NoError(t, status.Err, "a new attempt clears the previous error")
	assert.Equal(t, "/dev/ttyUSB1", status.Device)
}

func TestTransmitterConnectCanceled(t *testing.T) {
	opener := newFakeOpener("/dev/ttyACM0")
	tx, _ := newTestTransmitter(t, opener, DefaultColor)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tx.Connect(ctx, "/dev/ttyACM0")
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Empty(t, opener.opened)
}

func TestTransmitterReconnectClosesPrevious(t *testing.T) {
	opener := newFakeOpener("/dev/ttyACM0", "/dev/ttyACM1")
	first := opener.ports["/dev/ttyACM0"]
	second := opener.ports["/dev/ttyACM1"]

	tx, state := newTestTransmitter(t, opener, led.RGB(1, 2, 3))

	require.NoError(t, tx.Connect(context.Background(), "/dev/ttyACM0"))
	require.NoError(t, tx.Send())
	assert.Equal(t, "1:2:3|", first.String())

	require.NoError(t, tx.Connect(context.Background(), "/dev/ttyACM1"))
	assert.True(t, first.isClosed())

	state.Set(led.Red, 9)
	require.NoError(t, tx.Send())
	assert.Equal(t, "9:2:3|", second.String())
	assert.Equal(t, "1:2:3|", first.String())

	assert.Equal(t, 1, tx.Status().Frames, "frame count is per connection")
}

func TestTransmitterWriteFailureDropsPort(t *testing.T) {
	opener := newFakeOpener("/dev/ttyACM0")
	port := opener.ports["/dev/ttyACM0"]
	port.writeErr = io.ErrUnexpectedEOF

	tx, _ := newTestTransmitter(t, opener, DefaultColor)
	require.NoError(t, tx.Connect(context.Background(), "/dev/ttyACM0"))

	err := tx.Send()
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), "got %v", err)

	status := tx.Status()
	assert.False(t, status.Connected())
	assert.Error(t, status.Err)
	assert.True(t, port.isClosed())

	err = tx.Send()
	assert.True(t, errors.Is(err, ErrNotConnected), "no retry after a failed write: %v", err)
	assert.Equal(t, []string{"/dev/ttyACM0"}, opener.opened, "no reconnect after a failed write")
}

func TestTransmitterDisconnect(t *testing.T) {
	opener := newFakeOpener("/dev/ttyACM0")
	port := opener.ports["/dev/ttyACM0"]

	tx, _ := newTestTransmitter(t, opener, DefaultColor)
	require.NoError(t, tx.Connect(context.Background(), "/dev/ttyACM0"))

	tx.Disconnect()
	assert.True(t, port.isClosed())
	assert.False(t, tx.Status().Connected())

	// Disconnecting twice is fine.
	tx.Disconnect()
}
