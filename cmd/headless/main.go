// Command headless runs a ROM for a fixed number of frames with no
// display, for regression and nestest-style runs. Grounded on the
// teacher's cmd/headless_debug (frame-by-frame stepping, per-frame cycle
// logging) and cmd/rom_analyzer (framebuffer pixel-histogram summary),
// folded into one tool behind stdlib flag the way cmd/gones's --headless
// path already does.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nescore/pkg/audiodump"
	"github.com/nescore/pkg/cartridge"
	"github.com/nescore/pkg/core"
	"github.com/nescore/pkg/logger"
)

func main() {
	var (
		logLevel  = flag.String("log-level", "info", "log level (off, error, warn, info, debug, trace)")
		frames    = flag.Int("frames", 600, "number of frames to run")
		wavOut    = flag.String("wav-out", "", "write captured audio to this WAV file (empty disables)")
		rawOut    = flag.String("framebuffer-out", "", "write the final frame's raw ARGB8888 bytes to this file (empty disables)")
		histogram = flag.Bool("histogram", false, "print a pixel-color histogram of the final frame")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <rom_file>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	romFile := flag.Arg(0)

	sinks := logger.New(logger.LevelFromString(*logLevel), os.Stdout)

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

	var wav *audiodump.Writer
	if *wavOut != "" {
		wf, err := os.Create(*wavOut)
		if err != nil {
			log.Fatalf("failed to create WAV output file: %v", err)
		}
		defer wf.Close()
		wav, err = audiodump.New(wf)
		if err != nil {
			log.Fatalf("failed to init WAV writer: %v", err)
		}
		defer wav.Close()
	}

	start := time.Now()
	for i := 0; i < *frames; i++ {
		sys.StepFrame()
		if wav != nil {
			if err := wav.WriteSamples(sys.AudioSamples()); err != nil {
				log.Fatalf("failed to write audio samples: %v", err)
			}
		}
	}
	sinks.LogInfo("ran %d frames in %v", *frames, time.Since(start))

	if *rawOut != "" {
		if err := writeRawFramebuffer(*rawOut, sys.FrameBuffer()); err != nil {
			log.Fatalf("failed to write framebuffer: %v", err)
		}
	}
	if *histogram {
		printHistogram(sys.FrameBuffer())
	}
}

func writeRawFramebuffer(path string, pixels []uint32) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, p := range pixels {
		if _, err := file.Write([]byte{byte(p >> 24), byte(p >> 16), byte(p >> 8), byte(p)}); err != nil {
			return err
		}
	}
	return nil
}

func printHistogram(pixels []uint32) {
	counts := make(map[uint32]int)
	for _, p := range pixels {
		counts[p]++
	}
	total := len(pixels)
	fmt.Printf("total pixels: %d, unique colors: %d\n", total, len(counts))
	for color, count := range counts {
		pct := float64(count) / float64(total) * 100
		if pct > 1.0 {
			fmt.Printf("  0x%08X: %d pixels (%.1f%%)\n", color, count, pct)
		}
	}
}
