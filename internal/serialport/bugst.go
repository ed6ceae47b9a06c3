package serialport

import (
	"sort"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

func openBugst(device string, baud int) (Port, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", device)
	}
	return port, nil
}

// Info describes a serial port found on the system.
type Info struct {
	// Name is the device path, e.g. /dev/ttyACM0.
	Name string
	// IsUSB is true if the port is a USB serial adapter. VID, PID and
	// Product are only set for USB ports.
	IsUSB   bool
	VID     string
	PID     string
	Product string
}

// Label returns a one-line description of the port.
func (i Info) Label() string {
	if !i.IsUSB {
		return i.Name
	}
	label := i.Name + " [" + i.VID + ":" + i.PID + "]"
	if i.Product != "" {
		label += " " + i.Product
	}
	return label
}

// List lists the serial ports on the system, sorted by name.
func List() ([]Info, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "failed to enumerate serial ports")
	}

	ports := make([]Info, len(details))
	for i, d := range details {
		ports[i] = Info{
			Name:    d.Name,
			IsUSB:   d.IsUSB,
			VID:     d.VID,
			PID:     d.PID,
			Product: d.Product,
		}
	}

	sort.Slice(ports, func(i, j int) bool {
		return ports[i].Name < ports[j].Name
	})

	return ports, nil
}
