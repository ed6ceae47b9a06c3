// Package led describes the color of a single RGB LED.
package led

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Channel is one of the three color channels of an LED.
type Channel uint8

const (
	Red Channel = iota
	Green
	Blue
)

// Channels lists all channels in wire order.
var Channels = [3]Channel{Red, Green, Blue}

// String returns the lowercase name of the channel.
func (ch Channel) String() string {
	switch ch {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("Channel(%d)", ch)
	}
}

// RGBColor is a color with 8 bits per channel.
type RGBColor [3]uint8

var (
	_ encoding.TextUnmarshaler = (*RGBColor)(nil)
	_ encoding.TextMarshaler   = RGBColor{}
)

// RGB creates a new RGBColor.
func RGB(r, g, b uint8) RGBColor {
	return RGBColor{r, g, b}
}

// Clamp clamps v into the range of a single channel.
func Clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// R returns the red channel.
func (c RGBColor) R() uint8 { return c[Red] }

// G returns the green channel.
func (c RGBColor) G() uint8 { return c[Green] }

// B returns the blue channel.
func (c RGBColor) B() uint8 { return c[Blue] }

// Get returns the value of the given channel.
func (c RGBColor) Get(ch Channel) uint8 {
	return c[ch]
}

// With returns a copy of c with the given channel set to v. v is clamped.
func (c RGBColor) With(ch Channel, v int) RGBColor {
	c[ch] = Clamp(v)
	return c
}

// CSS returns the color as a CSS rgb() function, e.g. "rgb(120, 0, 0)".
func (c RGBColor) CSS() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c[Red], c[Green], c[Blue])
}

// Colorful converts the color to a colorful.Color.
func (c RGBColor) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c[Red]) / 255,
		G: float64(c[Green]) / 255,
		B: float64(c[Blue]) / 255,
	}
}

// Hex returns the color as "#rrggbb".
func (c RGBColor) Hex() string {
	return c.Colorful().Hex()
}

// String implements fmt.Stringer.
func (c RGBColor) String() string {
	return fmt.Sprintf("%d:%d:%d", c[Red], c[Green], c[Blue])
}

// MarshalText implements encoding.TextMarshaler.
func (c RGBColor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *RGBColor) UnmarshalText(text []byte) error {
	v, err := ParseRGBColor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseRGBColor parses a color. It accepts "R:G:B", "R:G:B|", "R,G,B" with
// decimal channels, or a "#rrggbb" or "#rgb" hex string.
func ParseRGBColor(s string) (RGBColor, error) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "#") {
		cf, err := colorful.Hex(s)
		if err != nil {
			return RGBColor{}, errors.Wrapf(err, "invalid hex color %q", s)
		}
		r, g, b := cf.RGB255()
		return RGB(r, g, b), nil
	}

	sep := ":"
	if strings.Contains(s, ",") {
		sep = ","
	}

	parts := strings.Split(strings.TrimSuffix(s, "|"), sep)
	if len(parts) != 3 {
		return RGBColor{}, fmt.Errorf("invalid color %q: expected 3 channels, got %d", s, len(parts))
	}

	var c RGBColor
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return RGBColor{}, errors.Wrapf(err, "invalid %s channel", Channels[i])
		}
		if v < 0 || v > 255 {
			return RGBColor{}, fmt.Errorf("%s channel %d out of range 0-255", Channels[i], v)
		}
		c[i] = uint8(v)
	}

	return c, nil
}
