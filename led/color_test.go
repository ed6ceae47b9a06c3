package led

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, uint8(0), Clamp(-4))
	assert.Equal(t, uint8(0), Clamp(0))
	assert.Equal(t, uint8(200), Clamp(200))
	assert.Equal(t, uint8(255), Clamp(255))
	assert.Equal(t, uint8(255), Clamp(1000))
}

func TestRGBColorWith(t *testing.T) {
	c := RGB(120, 0, 0)
	c2 := c.With(Blue, 300)

	assert.Equal(t, RGB(120, 0, 0), c, "With must not modify the receiver")
	assert.Equal(t, RGB(120, 0, 255), c2)
	assert.Equal(t, uint8(255), c2.Get(Blue))
	assert.Equal(t, uint8(120), c2.R())
}

func TestRGBColorCSS(t *testing.T) {
	assert.Equal(t, "rgb(120, 0, 0)", RGB(120, 0, 0).CSS())
	assert.Equal(t, "rgb(255, 255, 255)", RGB(255, 255, 255).CSS())
}

func TestRGBColorHex(t *testing.T) {
	assert.Equal(t, "#780000", RGB(120, 0, 0).Hex())
	assert.Equal(t, "#00aa00", RGB(0, 0xaa, 0).Hex())
}

func TestParseRGBColor(t *testing.T) {
	tests := []struct {
		in   string
		want RGBColor
	}{
		{"120:0:0", RGB(120, 0, 0)},
		{"1:2:3|", RGB(1, 2, 3)},
		{" 10, 20 ,30 ", RGB(10, 20, 30)},
		{"#0000aa", RGB(0, 0, 0xaa)},
		{"#f80", RGB(0xff, 0x88, 0x00)},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			c, err := ParseRGBColor(test.in)
			require.NoError(t, err)
			assert.Equal(t, test.want, c)
		})
	}
}

func TestParseRGBColorInvalid(t *testing.T) {
	for _, in := range []string{"", "1:2", "1:2:3:4", "a:b:c", "0:256:0", "-1:0:0", "#zzzzzz"} {
		_, err := ParseRGBColor(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestRGBColorText(t *testing.T) {
	var c RGBColor
	require.NoError(t, c.UnmarshalText([]byte("#ff0000")))
	assert.Equal(t, RGB(255, 0, 0), c)

	text, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "255:0:0", string(text))
}

func TestChannelString(t *testing.T) {
	assert.Equal(t, "red", Red.String())
	assert.Equal(t, "green", Green.String())
	assert.Equal(t, "blue", Blue.String())
	assert.Equal(t, "Channel(7)", Channel(7).String())
}
