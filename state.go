package slidelight

import (
	"sync"

	"libdb.so/slidelight/led"
)

// ColorState holds the color picked by the user. It is safe for concurrent
// use.
type ColorState struct {
	mu      sync.Mutex
	color   led.RGBColor
	changed chan struct{}
}

// NewColorState creates a new ColorState starting at the given color.
func NewColorState(initial led.RGBColor) *ColorState {
	return &ColorState{
		color:   initial,
		changed: make(chan struct{}, 1),
	}
}

// Color returns the current color.
func (s *ColorState) Color() led.RGBColor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.color
}

// Set sets a single channel. v is clamped to 0-255. It returns true if the
// color changed.
func (s *ColorState) Set(ch led.Channel, v int) bool {
	s.mu.Lock()
	c := s.color.With(ch, v)
	changed := c != s.color
	s.color = c
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return changed
}

// SetColor sets all channels at once. It returns true if the color changed.
func (s *ColorState) SetColor(c led.RGBColor) bool {
	s.mu.Lock()
	changed := c != s.color
	s.color = c
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return changed
}

// Changed returns a channel that receives a value after the color changes.
// Multiple changes between receives are coalesced into one, so receivers
// should call Color after waking up. There is only one channel, so only one
// receiver should wait on it.
func (s *ColorState) Changed() <-chan struct{} {
	return s.changed
}

func (s *ColorState) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
