// Command slidelight-echo pretends to be the LED controller. It reads color
// frames from a serial device and prints them, which is handy with one end
// of a pty pair:
//
//	socat -d -d pty,raw,echo=0 pty,raw,echo=0
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"libdb.so/slidelight/colorwire"
	"libdb.so/slidelight/internal/serialport"
)

var (
	baud    = serialport.DefaultBaud
	driver  = serialport.DefaultDriver
	verbose = false
)

func init() {
	pflag.IntVarP(&baud, "baud", "b", baud, "baud rate")
	pflag.StringVar(&driver, "driver", driver, fmt.Sprintf("serial driver %v", serialport.Drivers()))
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] device\n", os.Args[0])
		pflag.PrintDefaults()
	}
}

func main() {
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(pflag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(device string) error {
	opener, err := serialport.Get(driver)
	if err != nil {
		return err
	}

	port, err := opener.Open(device, baud)
	if err != nil {
		return err
	}
	defer port.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		<-ctx.Done()
		slog.Debug("closing serial port")
		port.Close()
		return ctx.Err()
	})
	errg.Go(func() error {
		return echo(ctx, port, os.Stdout)
	})

	if err := errg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// echo prints each frame read from r as its CSS color until r ends or ctx is
// canceled. Malformed frames are logged and skipped.
func echo(ctx context.Context, r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)

	for ctx.Err() == nil {
		c, err := colorwire.ReadFrame(br)
		if err != nil {
			if errors.Is(err, colorwire.ErrMalformedFrame) {
				slog.Warn("skipping malformed frame", "error", err)
				continue
			}
			if errors.Is(err, io.EOF) && ctx.Err() == nil {
				return errors.New("serial port closed")
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read frame: %w", err)
		}

		slog.Debug("received frame", "frame", colorwire.Frame(c))
		fmt.Fprintf(w, "%s %s\n", c.CSS(), c.Hex())
	}

	return ctx.Err()
}
