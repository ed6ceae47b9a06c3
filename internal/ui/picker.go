package ui

import (
	"github.com/gdamore/tcell/v2"
	"libdb.so/slidelight/internal/serialport"
)

// portPicker lets the user choose a serial port.
type portPicker struct {
	list  func() ([]serialport.Info, error)
	ports []serialport.Info
	err   error
	sel   int
}

func newPortPicker(list func() ([]serialport.Info, error)) *portPicker {
	p := &portPicker{list: list}
	p.refresh()
	return p
}

func (p *portPicker) refresh() {
	p.ports, p.err = p.list()
	if p.sel >= len(p.ports) {
		p.sel = 0
	}
}

func (p *portPicker) selected() (serialport.Info, bool) {
	if len(p.ports) == 0 {
		return serialport.Info{}, false
	}
	return p.ports[p.sel], true
}

func (p *portPicker) move(delta int) {
	if len(p.ports) == 0 {
		return
	}
	p.sel = (p.sel + delta + len(p.ports)) % len(p.ports)
}

func (p *portPicker) draw(scr tcell.Screen, x, y int) int {
	drawText(scr, x, y, tcell.StyleDefault.Bold(true), "Select a serial port")
	y += 2

	switch {
	case p.err != nil:
		drawText(scr, x, y, tcell.StyleDefault.Foreground(tcell.ColorRed), p.err.Error())
		y++
	case len(p.ports) == 0:
		drawText(scr, x, y, tcell.StyleDefault.Foreground(tcell.ColorGray), "(no serial ports found)")
		y++
	}

	for i, port := range p.ports {
		style := tcell.StyleDefault
		prefix := "  "
		if i == p.sel {
			style = style.Reverse(true)
			prefix = "> "
		}
		drawText(scr, x, y, style, prefix+port.Label())
		y++
	}

	y++
	drawText(scr, x, y, tcell.StyleDefault.Foreground(tcell.ColorGray),
		"Up/Down select   Enter connect   r refresh   Esc cancel")
	return y + 1
}
