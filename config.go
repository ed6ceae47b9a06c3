package slidelight

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"libdb.so/slidelight/internal/serialport"
	"libdb.so/slidelight/led"
)

// DefaultColor is the color the sliders start at when none is configured.
var DefaultColor = led.RGB(120, 0, 0)

// Config is the configuration for slidelight.
type Config struct {
	// Device is the path to the serial device of the LED controller.
	// This is usually /dev/ttyUSB0 or /dev/ttyACM0. If empty, the user picks
	// a device when connecting.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
	// Driver is the serial driver to use, either "bugst" or "tarm".
	Driver string `toml:"driver"`
	// Color is the initial color. If nil, DefaultColor is used.
	Color *led.RGBColor `toml:"color,omitempty"`
	// Step is how much a slider moves on Page Up and Page Down.
	Step int `toml:"step"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Baud:   serialport.DefaultBaud,
		Driver: serialport.DefaultDriver,
		Step:   16,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}

	if c.Step < 1 || c.Step > 255 {
		return fmt.Errorf("step %d out of range 1-255", c.Step)
	}

	if _, err := serialport.Get(c.Driver); err != nil {
		return err
	}

	return nil
}

// InitialColor returns the color the sliders start at.
func (c *Config) InitialColor() led.RGBColor {
	if c.Color != nil {
		return *c.Color
	}
	return DefaultColor
}

// Opener returns the serial port opener for the configured driver.
func (c *Config) Opener() (serialport.Opener, error) {
	return serialport.Get(c.Driver)
}

// ParseConfig parses a configuration from a reader. Fields missing from the
// file are set to their default values.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	config.fillDefaults()
	return &config, nil
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Baud == 0 {
		c.Baud = def.Baud
	}
	if c.Driver == "" {
		c.Driver = def.Driver
	}
	if c.Step == 0 {
		c.Step = def.Step
	}
}
