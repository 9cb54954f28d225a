// Package emu wires the decoder, CPU, Bus, and their PPU/timer/DMA/joypad
// sub-components into the orchestrator loop spec.md §5 describes, and
// implements the stable Core API external shells (a window, a test harness,
// cmd/goomba) consume.
package emu

import (
	"io"

	"github.com/teskje/goomba/internal/bus"
	"github.com/teskje/goomba/internal/cart"
	"github.com/teskje/goomba/internal/cpu"
	"github.com/teskje/goomba/internal/joypad"
	"github.com/teskje/goomba/internal/state"
)

// Button names one of the eight physical inputs.
type Button int

const (
	ButtonUp Button = iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonA
	ButtonB
	ButtonStart
	ButtonSelect
)

var buttonMask = [...]byte{
	ButtonUp:     joypad.Up,
	ButtonDown:   joypad.Down,
	ButtonLeft:   joypad.Left,
	ButtonRight:  joypad.Right,
	ButtonA:      joypad.A,
	ButtonB:      joypad.B,
	ButtonStart:  joypad.Start,
	ButtonSelect: joypad.Select,
}

// Emulator is the orchestrator: it owns the CPU and Bus (which in turn owns
// the cartridge, PPU, timer, DMA, and joypad) and drives them one machine
// cycle at a time.
type Emulator struct {
	cfg    Config
	rom    []byte
	header *cart.Header
	bus    *bus.Bus
	cpu    *cpu.CPU
	fb     []byte
}

// Load parses rom as a cartridge image, or — if it begins with the
// savestate magic tag — restores a previously encoded Emulator in full,
// including its original cartridge image.
func Load(rom []byte, ram []byte, cfg Config) (*Emulator, error) {
	if state.IsSavestate(rom) {
		snap, err := state.Decode(rom)
		if err != nil {
			return nil, err
		}
		e, err := newFromROM(snap.ROM, cfg)
		if err != nil {
			return nil, err
		}
		if err := state.Apply(e.cpu, e.bus, snap); err != nil {
			return nil, err
		}
		return e, nil
	}

	e, err := newFromROM(rom, cfg)
	if err != nil {
		return nil, err
	}
	if len(ram) > 0 {
		if bb, ok := e.bus.Cart().(cart.BatteryBacked); ok {
			bb.LoadRAM(ram)
		}
	}
	return e, nil
}

func newFromROM(rom []byte, cfg Config) (*Emulator, error) {
	header, err := cart.ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	c, err := cart.New(rom)
	if err != nil {
		return nil, err
	}
	b := bus.New(c)
	return &Emulator{cfg: cfg, rom: rom, header: header, bus: b, cpu: cpu.New(b)}, nil
}

// Header returns the parsed cartridge header.
func (e *Emulator) Header() *cart.Header { return e.header }

// FrameBuffer returns the last rendered frame as RGBA bytes without
// advancing emulation.
func (e *Emulator) FrameBuffer() []byte { return e.fb }

// SetSerialWriter attaches a sink for bytes written to the serial port
// (0xFF01/0xFF02), used by conformance tests that read pass/fail text off
// the serial line.
func (e *Emulator) SetSerialWriter(w io.Writer) { e.bus.SetSerialWriter(w) }

// PressButton/ReleaseButton update joypad state; an interrupt is raised on
// a newly-pressed direction or action line per spec.md §4.8/§9.
func (e *Emulator) PressButton(b Button)   { e.bus.PressButton(buttonMask[b]) }
func (e *Emulator) ReleaseButton(b Button) { e.bus.ReleaseButton(buttonMask[b]) }

// tick advances Timer, CPU, DMA, and PPU by exactly one machine cycle, in
// the order spec.md §5 specifies.
func (e *Emulator) tick() error {
	e.bus.TickTimer()
	if err := e.cpu.Step(); err != nil {
		return err
	}
	e.bus.StepDMA()
	for i := 0; i < 4; i++ {
		e.bus.StepPPU()
	}
	return nil
}

// RenderFrame advances the core until the PPU completes a frame and returns
// it as RGBA bytes.
func (e *Emulator) RenderFrame() ([]byte, error) {
	for {
		if err := e.tick(); err != nil {
			return nil, err
		}
		if f := e.bus.PPU().ConsumeFrame(); f != nil {
			e.fb = f.WriteInto(e.fb)
			return e.fb, nil
		}
	}
}

// StepFrameNoRender advances one frame's worth of cycles without requiring
// the LCD to be on, for conformance tests whose ROMs never enable the
// display (used by the Blargg harnesses in blargg_test.go and cmd/goomba).
func (e *Emulator) StepFrameNoRender() error {
	const cyclesPerFrame = 17556 // 70224 dots / 4 dots per machine cycle
	for i := 0; i < cyclesPerFrame; i++ {
		if err := e.tick(); err != nil {
			return err
		}
	}
	return nil
}

// SaveState encodes the full, self-contained Emulator state.
func (e *Emulator) SaveState() ([]byte, error) {
	return state.Encode(e.rom, e.cpu, e.bus)
}

// SaveRAM returns the cartridge's external RAM, or nil if the mapper has
// none (e.g. RomOnly).
func (e *Emulator) SaveRAM() []byte {
	if bb, ok := e.bus.Cart().(cart.BatteryBacked); ok {
		return bb.SaveRAM()
	}
	return nil
}

// DumpRAM returns the console's work RAM plus high RAM, mainly useful for
// debugging tools rather than persistence.
func (e *Emulator) DumpRAM() []byte {
	buf := make([]byte, 0, 0x2000+0x7F)
	for addr := 0xC000; addr <= 0xDFFF; addr++ {
		buf = append(buf, e.bus.Read(uint16(addr)))
	}
	for addr := 0xFF80; addr <= 0xFFFE; addr++ {
		buf = append(buf, e.bus.Read(uint16(addr)))
	}
	return buf
}
