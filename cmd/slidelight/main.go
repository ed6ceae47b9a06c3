package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"libdb.so/slidelight"
	"libdb.so/slidelight/colorwire"
	"libdb.so/slidelight/internal/serialport"
	"libdb.so/slidelight/internal/ui"
	"libdb.so/slidelight/led"
)

const defaultConfig = "slidelight.toml"

var (
	config  = defaultConfig
	verbose = false
	logFile = ""
	device  = ""
	baud    = 0
	driver  = ""
	pick    = false
	list    = false
	setColor  = ""
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.StringVar(&logFile, "log", logFile, "log file for the interactive mode")
	pflag.StringVarP(&device, "device", "d", device, "serial device, overrides the config")
	pflag.IntVarP(&baud, "baud", "b", baud, "baud rate, overrides the config")
	pflag.StringVar(&driver, "driver", driver, fmt.Sprintf("serial driver %v, overrides the config", serialport.Drivers()))
	pflag.BoolVar(&pick, "pick", pick, "always pick the serial port from a list")
	pflag.BoolVar(&list, "list", list, "list serial ports and exit")
	pflag.StringVar(&setColor, "set", setColor, "send a single color (R:G:B or #rrggbb) and exit")
}

func main() {
	pflag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	interactive := !list && setColor == ""

	logger, closeLog, err := newLogger(interactive)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	if list {
		return listPorts()
	}

	cfg, err := readConfig()
	if err != nil {
		return err
	}

	opener, err := cfg.Opener()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if !interactive {
		return sendOnce(ctx, cfg, opener)
	}

	state := slidelight.NewColorState(cfg.InitialColor())

	tx, err := slidelight.NewTransmitter(cfg, opener, state, logger)
	if err != nil {
		return fmt.Errorf("failed to create transmitter: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	app := ui.NewApp(screen, state, tx, ui.Options{
		Device: cfg.Device,
		Pick:   pick,
		Step:   cfg.Step,
	}, logger)

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return tx.Run(ctx)
	})
	errg.Go(func() error {
		// Quitting the UI stops the transmitter.
		defer stop()
		return app.Run(ctx)
	})

	if err := errg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func sendOnce(ctx context.Context, cfg *slidelight.Config, opener serialport.Opener) error {
	color, err := led.ParseRGBColor(setColor)
	if err != nil {
		return err
	}

	if cfg.Device == "" {
		return errors.New("--set needs a device, use --device or set device in the config")
	}

	state := slidelight.NewColorState(color)

	tx, err := slidelight.NewTransmitter(cfg, opener, state, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create transmitter: %w", err)
	}
	defer tx.Disconnect()

	if err := tx.Connect(ctx, cfg.Device); err != nil {
		return err
	}

	if err := tx.Send(); err != nil {
		return err
	}

	slog.Info("sent color", "device", cfg.Device, "frame", colorwire.Frame(color))
	return nil
}

func listPorts() error {
	ports, err := serialport.List()
	if err != nil {
		return err
	}

	if len(ports) == 0 {
		fmt.Fprintln(os.Stderr, "no serial ports found")
		return nil
	}

	for _, port := range ports {
		fmt.Println(port.Label())
	}

	return nil
}

func newLogger(interactive bool) (*slog.Logger, func(), error) {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closer := func() {}

	// The terminal belongs to the UI in interactive mode.
	if interactive {
		w = io.Discard
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to open log file: %w", err)
			}
			w = f
			closer = func() { f.Close() }
		}
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))

	return logger, closer, nil
}

func readConfig() (*slidelight.Config, error) {
	cfg, err := parseConfigFile()
	if err != nil {
		return nil, err
	}

	if device != "" {
		cfg.Device = device
	}
	if baud != 0 {
		cfg.Baud = baud
	}
	if driver != "" {
		cfg.Driver = driver
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func parseConfigFile() (*slidelight.Config, error) {
	f, err := os.Open(config)
	if err != nil {
		// The default config file is optional.
		if errors.Is(err, fs.ErrNotExist) && !pflag.CommandLine.Changed("config") {
			return slidelight.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return slidelight.ParseConfig(f)
}
