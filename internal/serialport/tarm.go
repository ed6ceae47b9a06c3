package serialport

import (
	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

func openTarm(device string, baud int) (Port, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name: device,
		Baud: baud,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", device)
	}
	return port, nil
}
