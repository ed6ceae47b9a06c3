// Package serialport opens serial ports through one of several drivers.
package serialport

import (
	"io"
	"sort"

	"github.com/pkg/errors"
)

// DefaultBaud is the baud rate the LED controller listens at.
const DefaultBaud = 115200

// Port is an open serial port.
type Port interface {
	io.ReadWriteCloser
}

// Opener opens serial ports.
type Opener interface {
	// Open opens the device at the given baud rate.
	Open(device string, baud int) (Port, error)
}

// OpenerFunc is a function that implements Opener.
type OpenerFunc func(device string, baud int) (Port, error)

// Open implements Opener.
func (f OpenerFunc) Open(device string, baud int) (Port, error) {
	return f(device, baud)
}

// ErrUnknownDriver is returned by Get for drivers that are not registered.
var ErrUnknownDriver = errors.New("unknown serial driver")

// DefaultDriver is the driver used when none is configured.
const DefaultDriver = "bugst"

var drivers = map[string]Opener{
	"bugst": OpenerFunc(openBugst),
	"tarm":  OpenerFunc(openTarm),
}

// Get returns the opener for the driver with the given name.
func Get(name string) (Opener, error) {
	if name == "" {
		name = DefaultDriver
	}
	o, ok := drivers[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDriver, "%q", name)
	}
	return o, nil
}

// Drivers returns the names of all drivers, sorted.
func Drivers() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
