// Package gui is the SDL2 presentation layer: a window, a streaming
// texture for the PPU framebuffer, and an audio device fed from the APU's
// sample buffer. Grounded on the teacher's pkg/gui.NESGUI (window/texture
// setup, keyboard-to-controller mapping, F32LSB-with-S16LSB-fallback audio
// negotiation, QueueAudio buffering strategy) but restated around
// core.Core instead of nes.NES and logger.Sinks instead of the teacher's
// package-level logger globals, with the debug/test-pattern instrumentation
// trimmed since it served the teacher's own bring-up, not this emulator's.
package gui

import (
	"fmt"
	"runtime"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/nescore/pkg/controller"
	"github.com/nescore/pkg/core"
	"github.com/nescore/pkg/logger"
)

const (
	WindowWidth  = 256 * 3
	WindowHeight = 240 * 3
	WindowTitle  = "NES emulator"

	AudioSampleRate = 44100
	AudioBufferSize = 1024
	AudioChannels   = 1
	AudioFormat     = sdl.AUDIO_F32LSB

	// TargetFPS is the NTSC NES's actual frame rate: 1789773/29780.5.
	TargetFPS = 60.0988
)

var FrameTime = time.Duration(16639267) * time.Nanosecond

// keymap is the default Z/X/A/S + arrow-keys control scheme.
var keymap = map[sdl.Keycode]int{
	sdl.K_z:     controller.ButtonA,
	sdl.K_x:     controller.ButtonB,
	sdl.K_a:     controller.ButtonSelect,
	sdl.K_s:     controller.ButtonStart,
	sdl.K_UP:    controller.ButtonUp,
	sdl.K_DOWN:  controller.ButtonDown,
	sdl.K_LEFT:  controller.ButtonLeft,
	sdl.K_RIGHT: controller.ButtonRight,
}

// Window owns the SDL window/renderer/texture/audio device driving one
// running Core.
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	core *core.Core
	log  *logger.Sinks

	running bool

	audioDevice sdl.AudioDeviceID
	audioSpec   *sdl.AudioSpec

	fpsCounter int
	fpsTimer   time.Time
	currentFPS float64
	showFPS    bool
}

// New creates an SDL window bound to the given Core.
func New(c *core.Core, log *logger.Sinks) (*Window, error) {
	if log == nil {
		log = logger.Nop()
	}
	runtime.LockOSThread()

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, err
	}

	window, err := sdl.CreateWindow(WindowTitle, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		WindowWidth, WindowHeight, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, err
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, err
	}
	renderer.SetDrawBlendMode(sdl.BLENDMODE_NONE)

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, 256, 240)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, err
	}
	texture.SetBlendMode(sdl.BLENDMODE_NONE)

	w := &Window{
		window:   window,
		renderer: renderer,
		texture:  texture,
		core:     c,
		log:      log,
		running:  true,
		fpsTimer: time.Now(),
		showFPS:  true,
	}

	if err := w.initAudio(); err != nil {
		log.LogError("audio init failed, continuing without sound: %v", err)
	}

	return w, nil
}

// Destroy tears down every SDL resource this Window owns.
func (w *Window) Destroy() {
	if w.audioDevice != 0 {
		sdl.CloseAudioDevice(w.audioDevice)
	}
	if w.texture != nil {
		w.texture.Destroy()
	}
	if w.renderer != nil {
		w.renderer.Destroy()
	}
	if w.window != nil {
		w.window.Destroy()
	}
	sdl.Quit()
}

// Run drives the event/update/render loop until the window is closed.
func (w *Window) Run() {
	frameCount := 0
	start := time.Now()

	for w.running {
		w.handleEvents()
		w.update()
		w.render()

		frameCount++
		target := start.Add(time.Duration(frameCount) * FrameTime)
		if now := time.Now(); now.Before(target) {
			time.Sleep(target.Sub(now))
		}
	}
}

func (w *Window) handleEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			w.running = false
		case *sdl.KeyboardEvent:
			w.handleKeyboard(e)
		}
	}
}

func (w *Window) handleKeyboard(event *sdl.KeyboardEvent) {
	pressed := event.State == sdl.PRESSED
	if button, ok := keymap[event.Keysym.Sym]; ok {
		w.core.SetButton(0, button, pressed)
		return
	}
	switch event.Keysym.Sym {
	case sdl.K_ESCAPE:
		w.running = false
	case sdl.K_F3:
		if pressed {
			w.showFPS = !w.showFPS
		}
	}
}

func (w *Window) update() {
	w.core.StepFrame()
	w.queueAudio()
	w.updateFPS()
}

func (w *Window) render() {
	pixels := w.core.FrameBuffer()
	w.texture.Update(nil, unsafe.Pointer(&pixels[0]), 256*4)

	w.renderer.SetDrawColor(0, 0, 0, 255)
	w.renderer.Clear()
	w.renderer.Copy(w.texture, nil, nil)

	if w.showFPS {
		w.window.SetTitle(fmt.Sprintf("%s - FPS: %.1f", WindowTitle, w.currentFPS))
	}
	w.renderer.Present()
}

func (w *Window) initAudio() error {
	want := &sdl.AudioSpec{Freq: AudioSampleRate, Format: AudioFormat, Channels: AudioChannels, Samples: AudioBufferSize}
	var have sdl.AudioSpec
	device, err := sdl.OpenAudioDevice("", false, want, &have, sdl.AUDIO_ALLOW_ANY_CHANGE)
	if err != nil {
		want.Format = sdl.AUDIO_S16LSB
		device, err = sdl.OpenAudioDevice("", false, want, &have, sdl.AUDIO_ALLOW_ANY_CHANGE)
		if err != nil {
			return fmt.Errorf("open audio device: %w", err)
		}
	}
	w.audioDevice = device
	w.audioSpec = &have
	sdl.PauseAudioDevice(device, false)
	return nil
}

func (w *Window) queueAudio() {
	if w.audioDevice == 0 {
		return
	}
	samples := w.core.AudioSamples()
	if len(samples) == 0 {
		return
	}

	queued := sdl.GetQueuedAudioSize(w.audioDevice)
	maxBytes := uint32(AudioBufferSize * 4 * 2)
	if queued >= maxBytes {
		return
	}

	var data []byte
	switch w.audioSpec.Format {
	case sdl.AUDIO_F32LSB:
		data = make([]byte, len(samples)*4)
		for i, s := range samples {
			bits := *(*uint32)(unsafe.Pointer(&s))
			data[i*4+0] = byte(bits)
			data[i*4+1] = byte(bits >> 8)
			data[i*4+2] = byte(bits >> 16)
			data[i*4+3] = byte(bits >> 24)
		}
	case sdl.AUDIO_S16LSB:
		data = make([]byte, len(samples)*2)
		for i, s := range samples {
			if s > 1.0 {
				s = 1.0
			} else if s < -1.0 {
				s = -1.0
			}
			v := int16(s * 32767)
			data[i*2+0] = byte(v)
			data[i*2+1] = byte(v >> 8)
		}
	}
	if len(data) > 0 {
		sdl.QueueAudio(w.audioDevice, data)
	}
}

func (w *Window) updateFPS() {
	w.fpsCounter++
	elapsed := time.Since(w.fpsTimer)
	if elapsed >= 500*time.Millisecond {
		w.currentFPS = float64(w.fpsCounter) / elapsed.Seconds()
		w.fpsCounter = 0
		w.fpsTimer = time.Now()
	}
}
