// Package pcspk produces beep sounds with the PC speaker. The speaker is
// fed a square wave by counter 2 of the programmable interval timer; a tone
// is played by programming the counter with the frequency divisor and
// opening the speaker gate in the PPI port.
package pcspk

import (
	"time"

	"github.com/Xeadriel/hhuTOS/kernel/cpu"
)

const (
	portCtrl  = 0x43
	portData2 = 0x42
	portPPI   = 0x61
)

// pitBaseFrequency is the input clock of the programmable interval timer
// in Hz.
const pitBaseFrequency = 1193182

// pitCounter2Mode3 selects counter 2, lobyte/hibyte access, mode 3 (square
// wave generator), binary counting.
const pitCounter2Mode3 = 0b10110110

// Note frequencies in Hz, three octaves.
const (
	C0  = 130
	C0X = 138
	D0  = 146
	D0X = 155
	E0  = 164
	F0  = 174
	F0X = 185
	G0  = 196
	G0X = 207
	A0  = 220
	A0X = 233
	B0  = 246

	C1  = 261
	C1X = 277
	D1  = 293
	D1X = 311
	E1  = 329
	F1  = 349
	F1X = 369
	G1  = 391
	G1X = 415
	A1  = 440
	A1X = 466
	B1  = 493

	C2  = 523
	C2X = 554
	D2  = 587
	D2X = 622
	E2  = 659
	F2  = 698
	F2X = 739
	G2  = 783
	G2X = 830
	A2  = 880
	A2X = 923
	B2  = 987
	C3  = 1046
)

// Speaker drives the PC speaker through the PIT and PPI ports.
type Speaker struct {
	ctrl  cpu.IoPort
	data2 cpu.IoPort
	ppi   cpu.IoPort
	sleep func(time.Duration)
}

// New creates a speaker driver on the given port bus.
func New(bus cpu.PortBus) *Speaker {
	return &Speaker{
		ctrl:  cpu.NewIoPort(bus, portCtrl),
		data2: cpu.NewIoPort(bus, portData2),
		ppi:   cpu.NewIoPort(bus, portPPI),
		sleep: time.Sleep,
	}
}

// Play emits the frequency in Hz for the given duration, then silences the
// speaker. Frequency 0 just turns the speaker off.
func (s *Speaker) Play(frequency int, duration time.Duration) {
	if frequency == 0 {
		s.Off()
		return
	}

	divisor := pitBaseFrequency / frequency
	s.ctrl.Outb(pitCounter2Mode3)
	s.data2.Outb(uint8(divisor))
	s.data2.Outb(uint8(divisor >> 8))

	s.On()
	s.sleep(duration)
	s.Off()
}

// On opens the speaker gate: bit 0 connects counter 2 to the speaker, bit 1
// enables the output.
func (s *Speaker) On() {
	v := s.ppi.Inb()
	s.ppi.Outb(v | 0x03)
}

// Off closes the speaker gate.
func (s *Speaker) Off() {
	v := s.ppi.Inb()
	s.ppi.Outb(v &^ 0x03)
}
