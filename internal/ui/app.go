// Package ui implements the terminal interface of slidelight.
package ui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"libdb.so/slidelight"
	"libdb.so/slidelight/colorwire"
	"libdb.so/slidelight/internal/serialport"
	"libdb.so/slidelight/led"
)

// Connector is the part of slidelight.Transmitter used by the UI.
type Connector interface {
	Connect(ctx context.Context, device string) error
	Disconnect()
	Status() slidelight.Status
	StatusChanged() <-chan struct{}
}

var _ Connector = (*slidelight.Transmitter)(nil)

// Options configures an App.
type Options struct {
	// Device is connected to directly instead of showing the port picker.
	Device string
	// Pick forces the port picker even if Device is set.
	Pick bool
	// Step is how much Page Up and Page Down move a slider.
	Step int
	// ListPorts lists the ports shown in the picker. It defaults to
	// serialport.List.
	ListPorts func() ([]serialport.Info, error)
}

// App is the terminal application.
type App struct {
	screen tcell.Screen
	state  *slidelight.ColorState
	conn   Connector
	opts   Options
	logger *slog.Logger

	sliders [3]*Slider
	focus   int
	picker  *portPicker

	ctx context.Context // set while running, for connecting from events
}

// NewApp creates a new App drawing to the given initialized screen.
func NewApp(screen tcell.Screen, state *slidelight.ColorState, conn Connector, opts Options, logger *slog.Logger) *App {
	if opts.ListPorts == nil {
		opts.ListPorts = serialport.List
	}
	if opts.Step < 1 {
		opts.Step = 16
	}

	a := &App{
		screen: screen,
		state:  state,
		conn:   conn,
		opts:   opts,
		logger: logger,
		ctx:    context.Background(),
	}

	color := state.Color()
	a.sliders = [3]*Slider{
		NewSlider("Red", led.Red, tcell.NewHexColor(0xAA0000), int(color.R())),
		NewSlider("Green", led.Green, tcell.NewHexColor(0x00AA00), int(color.G())),
		NewSlider("Blue", led.Blue, tcell.NewHexColor(0x0000AA), int(color.B())),
	}
	for _, s := range a.sliders {
		ch := s.Channel
		s.OnChange = func(v int) { a.state.Set(ch, v) }
	}

	return a
}

// Run runs the event loop until the user quits or ctx is canceled. The
// caller owns the screen and must call Fini after Run returns.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	a.screen.EnableMouse()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	a.draw()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !a.handleEvent(ev) {
				return nil
			}
		case <-a.conn.StatusChanged():
		}
		a.draw()
	}
}

// handleEvent handles a terminal event. It returns false if the app should
// quit.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		return a.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			a.handleClick(x, y)
		}
	}
	return true
}

func (a *App) handleKey(key tcell.Key, r rune) bool {
	if key == tcell.KeyCtrlC {
		return false
	}

	if a.picker != nil {
		a.handlePickerKey(key, r)
		return true
	}

	if a.sliders[a.focus].HandleKey(key, r, a.opts.Step) {
		return true
	}

	switch key {
	case tcell.KeyEscape:
		return false
	case tcell.KeyTab, tcell.KeyDown:
		a.setFocus(a.focus + 1)
	case tcell.KeyBacktab, tcell.KeyUp:
		a.setFocus(a.focus - 1)
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case 'c':
			a.connect()
		case 'd':
			a.conn.Disconnect()
		}
	}

	return true
}

func (a *App) handlePickerKey(key tcell.Key, r rune) {
	switch key {
	case tcell.KeyEscape:
		a.picker = nil
	case tcell.KeyUp, tcell.KeyBacktab:
		a.picker.move(-1)
	case tcell.KeyDown, tcell.KeyTab:
		a.picker.move(+1)
	case tcell.KeyEnter:
		if port, ok := a.picker.selected(); ok {
			a.picker = nil
			a.connectTo(port.Name)
		}
	case tcell.KeyRune:
		if r == 'r' {
			a.picker.refresh()
		}
	}
}

func (a *App) handleClick(x, y int) {
	if a.picker != nil {
		return
	}
	for i, s := range a.sliders {
		if s.HandleClick(x, y) {
			a.setFocus(i)
			return
		}
	}
}

func (a *App) setFocus(i int) {
	a.sliders[a.focus].Blur()
	a.focus = (i + len(a.sliders)) % len(a.sliders)
}

func (a *App) connect() {
	if a.opts.Device != "" && !a.opts.Pick {
		a.connectTo(a.opts.Device)
		return
	}
	a.picker = newPortPicker(a.opts.ListPorts)
	if a.picker.err != nil {
		a.logger.Warn("failed to list serial ports", "error", a.picker.err)
	}
}

func (a *App) connectTo(device string) {
	ctx := a.ctx
	// Opening may block; the status notification redraws once it is done.
	go func() {
		if err := a.conn.Connect(ctx, device); err != nil {
			a.logger.Debug("connect failed", "device", device, "error", err)
		}
	}()
}

func (a *App) draw() {
	a.screen.Clear()
	width, _ := a.screen.Size()

	const x = 2
	y := 1

	drawText(a.screen, x, y, tcell.StyleDefault.Bold(true), "slidelight")
	y++

	status := a.conn.Status()
	if status.Connected() {
		drawText(a.screen, x, y, tcell.StyleDefault.Foreground(tcell.ColorGreen),
			fmt.Sprintf("Connected to %s, %d frames sent", status.Device, status.Frames))
	} else {
		drawText(a.screen, x, y, tcell.StyleDefault.Foreground(tcell.ColorGray),
			"Not connected, press c to connect")
	}
	y += 2

	if a.picker != nil {
		a.picker.draw(a.screen, x, y)
		a.screen.Show()
		return
	}

	for i, s := range a.sliders {
		s.Draw(a.screen, x, y, width-2*x, i == a.focus)
		y++
	}
	y++

	color := a.state.Color()
	swatch := tcell.StyleDefault.Background(
		tcell.NewRGBColor(int32(color.R()), int32(color.G()), int32(color.B())))
	for i := 0; i < 6; i++ {
		a.screen.SetContent(x+i, y, ' ', nil, swatch)
		a.screen.SetContent(x+i, y+1, ' ', nil, swatch)
	}
	drawText(a.screen, x+8, y, tcell.StyleDefault,
		fmt.Sprintf("%s  %s  %s", color.CSS(), color.Hex(), formatHSV(color)))
	drawText(a.screen, x+8, y+1, tcell.StyleDefault.Foreground(tcell.ColorGray),
		"wire "+colorwire.Frame(color))
	y += 3

	if status.Err != nil {
		drawText(a.screen, x, y, tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true), "Error Message")
		drawText(a.screen, x, y+1, tcell.StyleDefault.Foreground(tcell.ColorRed), status.Err.Error())
		y += 3
	}

	drawText(a.screen, x, y, tcell.StyleDefault.Foreground(tcell.ColorGray),
		"Tab/Up/Down select   Left/Right/PgUp/PgDn/Home/End or digits+Enter adjust   c connect   d disconnect   q quit")

	a.screen.Show()
}

func formatHSV(c led.RGBColor) string {
	h, s, v := c.Colorful().Hsv()
	return fmt.Sprintf("hsv(%.0f°, %.0f%%, %.0f%%)", h, s*100, v*100)
}
