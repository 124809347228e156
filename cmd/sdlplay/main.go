// Command sdlplay is the interactive SDL2 front end. Grounded on the
// teacher's cmd/gones/main.go: stdlib flag-based CLI, log-level and
// per-component logging flags, ROM-argument handling.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nescore/pkg/cartridge"
	"github.com/nescore/pkg/core"
	"github.com/nescore/pkg/gui"
	"github.com/nescore/pkg/logger"
)

func main() {
	var (
		logLevel  = flag.String("log-level", "info", "log level (off, error, warn, info, debug, trace)")
		logCPU    = flag.Bool("cpu-log", false, "enable CPU logging")
		logPPU    = flag.Bool("ppu-log", false, "enable PPU logging")
		logAPU    = flag.Bool("apu-log", false, "enable APU logging")
		logMapper = flag.Bool("mapper-log", false, "enable mapper logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <rom_file>\n\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr, "\nControls: Z=A X=B A=Select S=Start Arrows=D-pad ESC=Quit F3=toggle FPS")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	romFile := flag.Arg(0)

	sinks := logger.New(logger.LevelFromString(*logLevel), os.Stdout)
	sinks.CPU, sinks.PPU, sinks.APU, sinks.Mapper = *logCPU, *logPPU, *logAPU, *logMapper

	f, err := os.Open(romFile)
	if err != nil {
		log.Fatalf("failed to open ROM file: %v", err)
	}
	defer f.Close()

	cart, err := cartridge.Load(f)
	if err != nil {
		log.Fatalf("failed to load ROM: %v", err)
	}

	sys := core.New(sinks)
	sys.LoadCartridge(cart)

	win, err := gui.New(sys, sinks)
	if err != nil {
		log.Fatalf("failed to create window: %v", err)
	}
	defer win.Destroy()

	win.Run()
}
