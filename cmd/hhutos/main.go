// Command hhutos boots the emulated kernel: it initializes the heap
// allocator, brings up the text screen and runs the demo programs the way
// the startup sequence does on metal.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/Xeadriel/hhuTOS/devices/cga"
	"github.com/Xeadriel/hhuTOS/devices/pcspk"
	"github.com/Xeadriel/hhuTOS/kernel/allocator"
	"github.com/Xeadriel/hhuTOS/kernel/cpu"
	"github.com/Xeadriel/hhuTOS/kernel/mem"
)

func main() {
	var cfg allocator.Config
	cfg.RegisterFlags(flag.CommandLine)
	sound := flag.Bool("sound", false, "Play the boot melody on the emulated speaker.")
	flag.Parse()

	logger := level.NewFilter(log.NewLogfmtLogger(os.Stderr), level.AllowInfo())

	if err := allocator.Init(cfg, logger); err != nil {
		level.Error(logger).Log("msg", "initializing heap allocator", "err", err)
		os.Exit(1)
	}

	screen, err := newScreen()
	if err != nil {
		level.Error(logger).Log("msg", "bringing up text screen", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "CGA cleared and ready")

	textDemo(screen)
	heapDemo(screen)

	if *sound {
		soundDemo(logger)
	}

	if err := screen.Render(os.Stdout); err != nil {
		level.Error(logger).Log("msg", "rendering screen", "err", err)
		os.Exit(1)
	}
	fmt.Println()
	allocator.Dump(os.Stdout)
}

// newScreen carves the cell buffer out of the kernel heap and brings up
// the driver, like the boot code mapping the video memory.
func newScreen() (*cga.CGA, error) {
	addr, err := allocator.Allocate(allocator.Layout{Size: cga.BufSize, Align: 16})
	if err != nil {
		return nil, err
	}
	screen := cga.New(allocator.Region().Bytes(addr, cga.BufSize), nil)
	screen.Clear()
	screen.EnableCursor()
	return screen, nil
}

func textDemo(screen *cga.CGA) {
	screen.Print("hhuTOS\n", cga.Black, cga.LightGreen)
	fmt.Fprintf(screen, "columns=%d rows=%d\n", cga.Columns, cga.Rows)
	screen.Print("attributes: ", cga.Black, cga.White)
	for fg := cga.Black; fg <= cga.White; fg++ {
		screen.PrintByte('#', cga.Black, fg, false)
	}
	fmt.Fprint(screen, "\n\n")
}

// heapDemo exercises the allocator the way the demo program does: a few
// allocations, a dump, releases, and reuse of the freed blocks.
func heapDemo(screen *cga.CGA) {
	fmt.Fprint(screen, "heap demo\n")

	layout := allocator.Layout{Size: 64, Align: 8}
	var addrs []uint64
	for i := 0; i < 4; i++ {
		addr, err := allocator.Allocate(layout)
		if err != nil {
			fmt.Fprintf(screen, "  alloc failed: %v\n", err)
			return
		}
		// Use the memory: fill the block with a recognizable byte.
		mem.Set(allocator.Region().Bytes(addr, layout.Size), byte(0x40+i))
		fmt.Fprintf(screen, "  block %d at %#x\n", i, addr)
		addrs = append(addrs, addr)
	}

	fmt.Fprint(screen, "releasing blocks 1 and 2\n")
	allocator.Release(addrs[1], layout)
	allocator.Release(addrs[2], layout)

	reused, err := allocator.Allocate(layout)
	if err != nil {
		fmt.Fprintf(screen, "  realloc failed: %v\n", err)
		return
	}
	fmt.Fprintf(screen, "reallocated at %#x\n", reused)

	// The screen is an io.Writer, so the diagnostic dump goes straight
	// to the console like on metal.
	allocator.Dump(screen)
}

func soundDemo(logger log.Logger) {
	speaker := pcspk.New(cpu.NewLatchBus())
	scale := []int{pcspk.C1, pcspk.D1, pcspk.E1, pcspk.F1, pcspk.G1, pcspk.A1, pcspk.B1, pcspk.C2}
	for _, note := range scale {
		speaker.Play(note, 150*time.Millisecond)
	}
	level.Info(logger).Log("msg", "played scale on emulated speaker", "notes", len(scale))
}
