// Package cpu models the processor facilities device drivers depend on, in
// particular port-mapped I/O. The real hardware is out of reach here, so
// devices plug an emulated bus in behind the same two instructions the
// drivers would use on metal.
package cpu

// PortBus is the pair of I/O instructions drivers use to talk to devices.
type PortBus interface {
	Outb(port uint16, value uint8)
	Inb(port uint16) uint8
}

// IoPort is a handle to one fixed port number on a bus.
type IoPort struct {
	bus  PortBus
	port uint16
}

// NewIoPort binds the given port number on bus.
func NewIoPort(bus PortBus, port uint16) IoPort {
	return IoPort{bus: bus, port: port}
}

// Outb writes value to the port.
func (p IoPort) Outb(value uint8) {
	p.bus.Outb(p.port, value)
}

// Inb reads a byte from the port.
func (p IoPort) Inb() uint8 {
	return p.bus.Inb(p.port)
}

// LatchBus is a trivial PortBus that stores the last byte written to each
// port and returns it on read. Good enough for devices whose registers
// behave like latches.
type LatchBus struct {
	regs map[uint16]uint8
}

// NewLatchBus returns an empty LatchBus; unwritten ports read as zero.
func NewLatchBus() *LatchBus {
	return &LatchBus{regs: make(map[uint16]uint8)}
}

func (b *LatchBus) Outb(port uint16, value uint8) {
	b.regs[port] = value
}

func (b *LatchBus) Inb(port uint16) uint8 {
	return b.regs[port]
}
