// Package cga drives the text-mode screen: an 80x25 grid of
// character/attribute cell pairs with a hardware cursor kept in the CRT
// controller's register file, reached through the index/data port pair.
package cga

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Xeadriel/hhuTOS/kernel/cpu"
)

// Color is one of the 16 CGA colors. Only the lower three bits are usable
// for backgrounds; bit 7 of the attribute byte selects blinking instead.
type Color uint8

const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Pink
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightPink
	Yellow
	White
)

const (
	Rows    = 25
	Columns = 80

	// BufSize is the size in bytes of the cell buffer: one character byte
	// and one attribute byte per cell.
	BufSize = Rows * Columns * 2
)

const (
	indexPort = 0x3d4
	dataPort  = 0x3d5

	cursorStartReg = 0x0a
	cursorEndReg   = 0x0b
	cursorHighReg  = 14
	cursorLowReg   = 15
)

// StdAttr is the default attribute byte: white on black, no blink.
var StdAttr = Attribute(Black, White, false)

// Attribute builds an attribute byte from background, foreground and blink.
func Attribute(bg, fg Color, blink bool) uint8 {
	var b uint8
	if blink {
		b = 1 << 7
	}
	return b | (uint8(bg)&0x7)<<4 | uint8(fg)&0xf
}

// CGA is the text screen driver. The cell buffer normally lives in memory
// carved out of the kernel heap by the startup sequence; the cursor lives
// in CRT controller registers behind the port bus.
type CGA struct {
	buf   []byte
	index cpu.IoPort
	data  cpu.IoPort
}

// New creates a driver over the given cell buffer, which must hold exactly
// BufSize bytes. A nil bus gets an emulated CRT controller.
func New(buf []byte, bus cpu.PortBus) *CGA {
	if len(buf) != BufSize {
		panic("cga: cell buffer must hold exactly 80x25 cells")
	}
	if bus == nil {
		bus = &crtc{}
	}
	return &CGA{
		buf:   buf,
		index: cpu.NewIoPort(bus, indexPort),
		data:  cpu.NewIoPort(bus, dataPort),
	}
}

// Clear blanks the whole screen and homes the cursor.
func (c *CGA) Clear() {
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			c.Show(x, y, ' ', StdAttr)
		}
	}
	c.SetPos(0, 0)
}

// Show displays ch at position x,y with the given attribute. Positions
// outside the screen are ignored.
func (c *CGA) Show(x, y int, ch byte, attr uint8) {
	if x < 0 || x >= Columns || y < 0 || y >= Rows {
		return
	}
	pos := (y*Columns + x) * 2
	c.buf[pos] = ch
	c.buf[pos+1] = attr
}

// EnableCursor programs the cursor's scanline shape in the CRT controller.
func (c *CGA) EnableCursor() {
	c.index.Outb(cursorStartReg)
	c.data.Outb(0x0d)
	c.index.Outb(cursorEndReg)
	c.data.Outb(0x0f)
}

// GetPos reads the cursor position back from the CRT controller.
func (c *CGA) GetPos() (x, y int) {
	c.index.Outb(cursorLowReg)
	pos := uint16(c.data.Inb())
	c.index.Outb(cursorHighReg)
	pos |= uint16(c.data.Inb()) << 8
	return int(pos) % Columns, int(pos) / Columns
}

// SetPos moves the cursor, clamped to the screen.
func (c *CGA) SetPos(x, y int) {
	if x < 0 {
		x = 0
	}
	if x >= Columns {
		x = Columns - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= Rows {
		y = Rows - 1
	}
	pos := uint16(y*Columns + x)
	c.index.Outb(cursorLowReg)
	c.data.Outb(uint8(pos))
	c.index.Outb(cursorHighReg)
	c.data.Outb(uint8(pos >> 8))
}

// PrintByte writes b at the cursor with the given colors, handling line
// wrap, newline and scrolling.
func (c *CGA) PrintByte(b byte, bg, fg Color, blink bool) {
	x, y := c.GetPos()

	if b == '\n' {
		x = 0
		y++
		if y >= Rows {
			c.ScrollUp()
			y = Rows - 1
		}
	} else {
		c.Show(x, y, b, Attribute(bg, fg, blink))
		x++
		if x >= Columns {
			x = 0
			y++
			if y >= Rows {
				c.ScrollUp()
				y = Rows - 1
			}
		}
	}
	c.SetPos(x, y)
}

// Write implements io.Writer using the standard attribute, so formatted
// output can be sent straight to the screen.
func (c *CGA) Write(p []byte) (int, error) {
	for _, b := range p {
		c.PrintByte(b, Black, White, false)
	}
	return len(p), nil
}

// Print writes a string at the cursor with explicit colors.
func (c *CGA) Print(s string, bg, fg Color) {
	for i := 0; i < len(s); i++ {
		c.PrintByte(s[i], bg, fg, false)
	}
}

// ScrollUp moves every text line up by one, blanks the bottom line and
// parks the cursor at its start.
func (c *CGA) ScrollUp() {
	copy(c.buf, c.buf[Columns*2:])
	last := (Rows - 1) * Columns * 2
	for x := 0; x < Columns; x++ {
		c.buf[last+2*x] = ' '
		c.buf[last+2*x+1] = StdAttr
	}
	c.SetPos(0, Rows-1)
}

// Render writes the visible text content line by line, for showing the
// emulated screen on a host terminal. Trailing blanks are trimmed.
func (c *CGA) Render(w io.Writer) error {
	line := make([]byte, Columns)
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			line[x] = c.buf[(y*Columns+x)*2]
		}
		if _, err := fmt.Fprintf(w, "%s\n", bytes.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// crtc emulates the CRT controller's register file behind the index/data
// port pair.
type crtc struct {
	index uint8
	regs  [256]uint8
}

func (c *crtc) Outb(port uint16, value uint8) {
	switch port {
	case indexPort:
		c.index = value
	case dataPort:
		c.regs[c.index] = value
	}
}

func (c *crtc) Inb(port uint16) uint8 {
	if port == dataPort {
		return c.regs[c.index]
	}
	return c.index
}
