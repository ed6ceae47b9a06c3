// Package colorwire implements the LED color wire format. Each frame is the
// decimal channels of a color separated by Separator and terminated by
// Delimiter, e.g. "120:0:0|".
package colorwire

import (
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"libdb.so/slidelight/led"
)

const (
	// Separator separates the channels of a frame.
	Separator = ':'
	// Delimiter terminates a frame.
	Delimiter = '|'
	// MaxFrameLen is the length of the longest valid frame, "255:255:255|".
	MaxFrameLen = 12
)

// ErrMalformedFrame is returned when a frame cannot be parsed.
var ErrMalformedFrame = errors.New("malformed frame")

// AppendFrame appends the frame for c to dst.
func AppendFrame(dst []byte, c led.RGBColor) []byte {
	for i, ch := range led.Channels {
		if i > 0 {
			dst = append(dst, Separator)
		}
		dst = strconv.AppendUint(dst, uint64(c.Get(ch)), 10)
	}
	return append(dst, Delimiter)
}

// Frame returns the frame for c as a string.
func Frame(c led.RGBColor) string {
	var buf [MaxFrameLen]byte
	return string(AppendFrame(buf[:0], c))
}

// WriteFrame writes the frame for c to w in a single Write call.
func WriteFrame(w io.Writer, c led.RGBColor) error {
	var buf [MaxFrameLen]byte
	frame := AppendFrame(buf[:0], c)

	n, err := w.Write(frame)
	if err != nil {
		return errors.Wrap(err, "failed to write frame")
	}
	if n != len(frame) {
		return errors.Wrapf(io.ErrShortWrite, "wrote %d of %d frame bytes", n, len(frame))
	}

	return nil
}

// ReadFrame reads the next frame from r. The delimiter is always consumed, so
// after a malformed frame the next call starts at the following frame. An
// io.EOF is returned as-is if r ends before any byte of a new frame is read.
func ReadFrame(r io.ByteReader) (led.RGBColor, error) {
	var buf [MaxFrameLen]byte
	frame := buf[:0]
	overflow := false

	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && len(frame) > 0 {
				return led.RGBColor{}, io.ErrUnexpectedEOF
			}
			return led.RGBColor{}, err
		}

		if b == Delimiter {
			break
		}

		if len(frame) == MaxFrameLen-1 {
			overflow = true
			continue
		}
		frame = append(frame, b)
	}

	if overflow {
		return led.RGBColor{}, errors.Wrap(ErrMalformedFrame, "frame too long")
	}

	return ParseFrame(frame)
}

// ParseFrame parses a single frame body. The trailing delimiter is optional.
func ParseFrame(frame []byte) (led.RGBColor, error) {
	frame = bytes.TrimSuffix(frame, []byte{Delimiter})

	parts := bytes.Split(frame, []byte{Separator})
	if len(parts) != len(led.Channels) {
		return led.RGBColor{}, errors.Wrapf(ErrMalformedFrame,
			"%q has %d channels", frame, len(parts))
	}

	var c led.RGBColor
	for i, part := range parts {
		if len(part) == 0 || len(part) > 3 {
			return led.RGBColor{}, errors.Wrapf(ErrMalformedFrame,
				"%q has invalid %s channel", frame, led.Channels[i])
		}

		v, err := strconv.ParseUint(string(part), 10, 8)
		if err != nil {
			return led.RGBColor{}, errors.Wrapf(ErrMalformedFrame,
				"%q has invalid %s channel: %v", frame, led.Channels[i], err)
		}
		c[i] = uint8(v)
	}

	return c, nil
}
