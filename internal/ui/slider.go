package ui

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"libdb.so/slidelight/led"
)

const (
	sliderLabelWidth = 8
	sliderValueWidth = 10
	minTrackWidth    = 8
)

// Slider is a horizontal slider for a single color channel with values
// between 0 and 255.
type Slider struct {
	Label   string
	Channel led.Channel
	Accent  tcell.Color
	// OnChange is called with the new value whenever the value changes.
	OnChange func(int)

	value int
	entry string // digits typed but not committed yet

	// track geometry from the last Draw, for mouse input
	trackX, trackY, trackW int
}

// NewSlider creates a new slider.
func NewSlider(label string, ch led.Channel, accent tcell.Color, value int) *Slider {
	return &Slider{
		Label:   label,
		Channel: ch,
		Accent:  accent,
		value:   int(led.Clamp(value)),
	}
}

// Value returns the current value.
func (s *Slider) Value() int {
	return s.value
}

// SetValue sets the value, clamped to 0-255. OnChange is called if the value
// changed.
func (s *Slider) SetValue(v int) {
	v = int(led.Clamp(v))
	if v == s.value {
		return
	}
	s.value = v
	if s.OnChange != nil {
		s.OnChange(v)
	}
}

// Nudge moves the slider by delta.
func (s *Slider) Nudge(delta int) {
	s.SetValue(s.value + delta)
}

// HandleKey handles a key press while the slider is focused. It returns false
// if the key is not for the slider.
func (s *Slider) HandleKey(key tcell.Key, r rune, step int) bool {
	switch key {
	case tcell.KeyLeft:
		s.Nudge(-1)
	case tcell.KeyRight:
		s.Nudge(+1)
	case tcell.KeyPgDn:
		s.Nudge(-step)
	case tcell.KeyPgUp:
		s.Nudge(+step)
	case tcell.KeyHome:
		s.SetValue(0)
	case tcell.KeyEnd:
		s.SetValue(255)
	case tcell.KeyEnter:
		if s.entry == "" {
			return false
		}
		v, _ := strconv.Atoi(s.entry)
		s.entry = ""
		s.SetValue(v)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if s.entry == "" {
			return false
		}
		s.entry = s.entry[:len(s.entry)-1]
	case tcell.KeyRune:
		if r < '0' || r > '9' || len(s.entry) == 3 {
			return false
		}
		s.entry += string(r)
	default:
		return false
	}
	return true
}

// Blur discards any uncommitted digits.
func (s *Slider) Blur() {
	s.entry = ""
}

// HandleClick sets the value from a click at the given screen position. It
// returns false if the position is not on the track.
func (s *Slider) HandleClick(x, y int) bool {
	if s.trackW == 0 || y != s.trackY || x < s.trackX || x >= s.trackX+s.trackW {
		return false
	}
	if s.trackW == 1 {
		s.SetValue(255)
		return true
	}
	s.SetValue(((x-s.trackX)*255 + (s.trackW-1)/2) / (s.trackW - 1))
	return true
}

// Draw draws the slider at the given position.
func (s *Slider) Draw(scr tcell.Screen, x, y, width int, focused bool) {
	labelStyle := tcell.StyleDefault.Foreground(s.Accent)
	prefix := "  "
	if focused {
		labelStyle = labelStyle.Bold(true)
		prefix = "> "
	}
	drawText(scr, x, y, labelStyle, prefix+s.Label)

	s.trackX = x + sliderLabelWidth
	s.trackY = y
	s.trackW = width - sliderLabelWidth - sliderValueWidth
	if s.trackW < minTrackWidth {
		s.trackW = minTrackWidth
	}

	filled := (s.value*s.trackW + 127) / 255
	fillStyle := tcell.StyleDefault.Foreground(s.Accent)
	emptyStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for i := 0; i < s.trackW; i++ {
		if i < filled {
			scr.SetContent(s.trackX+i, y, '█', nil, fillStyle)
		} else {
			scr.SetContent(s.trackX+i, y, '─', nil, emptyStyle)
		}
	}

	value := fmt.Sprintf(" %3d", s.value)
	if s.entry != "" {
		value += " ← " + s.entry
	}
	drawText(scr, s.trackX+s.trackW, y, tcell.StyleDefault, value)
}

func drawText(scr tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		scr.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
