// Package bus implements the single 16-bit CPU address space, routing reads
// and writes to the cartridge mapper, video/timer/DMA/joypad
// sub-components, work RAM, high RAM, and the interrupt registers.
package bus

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/teskje/goomba/internal/cart"
	"github.com/teskje/goomba/internal/dma"
	"github.com/teskje/goomba/internal/joypad"
	"github.com/teskje/goomba/internal/ppu"
	"github.com/teskje/goomba/internal/timer"
)

type Bus struct {
	cart cart.Cartridge

	wram [0x2000]byte // 0xC000-0xDFFF, echoed at 0xE000-0xFDFF
	hram [0x7F]byte   // 0xFF80-0xFFFE

	ppu    *ppu.PPU
	timer  *timer.Timer
	dma    *dma.DMA
	joypad *joypad.Joypad

	ie    byte // 0xFFFF
	ifReg byte // 0xFF0F, low 5 bits used

	sb, sc byte // serial data/control, 0xFF01/0xFF02
	sw     io.Writer
}

// SetSerialWriter attaches a sink that receives each byte written via a
// completed serial transfer. Conformance test ROMs (e.g. Blargg's suite)
// report pass/fail text this way in the absence of a link cable partner.
func (b *Bus) SetSerialWriter(w io.Writer) { b.sw = w }

func New(c cart.Cartridge) *Bus {
	b := &Bus{cart: c, timer: timer.New(), dma: dma.New(), joypad: joypad.New()}
	b.ppu = ppu.New(func(bit int) { b.ifReg |= 1 << uint(bit) })
	return b
}

func (b *Bus) PPU() *ppu.PPU       { return b.ppu }
func (b *Bus) Cart() cart.Cartridge { return b.cart }

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return b.ppu.CPURead(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr >= 0xE000 && addr <= 0xFDFF:
		return b.wram[addr-0x2000-0xC000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if b.dma.Active() {
			return 0xFF
		}
		return b.ppu.CPURead(addr)
	case addr == 0xFF00:
		return b.joypad.Read()
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return 0x7E | (b.sc & 0x81)
	case addr == 0xFF04:
		return b.timer.DIV()
	case addr == 0xFF05:
		return b.timer.TIMA()
	case addr == 0xFF06:
		return b.timer.TMA()
	case addr == 0xFF07:
		return 0xF8 | b.timer.TAC()
	case addr == 0xFF0F:
		return 0xE0 | (b.ifReg & 0x1F)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return 0xFF // audio: not emulated (Non-goal)
	case addr == 0xFF46:
		return b.dma.Register()
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return b.ppu.CPURead(addr)
	case addr == 0xFF50:
		return 0xFF
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.ie
	default:
		return 0xFF
	}
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr >= 0x8000 && addr <= 0x9FFF:
		b.ppu.CPUWrite(addr, value)
	case addr >= 0xA000 && addr <= 0xBFFF:
		b.cart.Write(addr, value)
	case addr >= 0xC000 && addr <= 0xDFFF:
		b.wram[addr-0xC000] = value
	case addr >= 0xE000 && addr <= 0xFDFF:
		b.wram[addr-0x2000-0xC000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if b.dma.Active() {
			return
		}
		b.ppu.CPUWrite(addr, value)
	case addr == 0xFF00:
		b.joypad.WriteSelect(value)
		b.syncJoypadIRQ()
	case addr == 0xFF01:
		b.sb = value
	case addr == 0xFF02:
		b.sc = value & 0x81
		if b.sc&0x80 != 0 {
			if b.sw != nil {
				b.sw.Write([]byte{b.sb})
			}
			b.ifReg |= 1 << 3 // serial transfer complete, modeled as instantaneous
			b.sc &^= 0x80
		}
	case addr == 0xFF04:
		b.timer.WriteDIV()
	case addr == 0xFF05:
		b.timer.WriteTIMA(value)
	case addr == 0xFF06:
		b.timer.WriteTMA(value)
	case addr == 0xFF07:
		b.timer.WriteTAC(value)
	case addr == 0xFF0F:
		b.ifReg = value & 0x1F
	case addr >= 0xFF10 && addr <= 0xFF3F:
		// audio: not emulated (Non-goal)
	case addr == 0xFF46:
		b.dma.Trigger(value)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		b.ppu.CPUWrite(addr, value)
	case addr == 0xFF50:
		// boot ROM disable: no boot ROM is emulated (Non-goal)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
	case addr == 0xFFFF:
		b.ie = value
	}
}

// WriteOAM implements dma.Bus, bypassing the CPU-facing OAM lock that DMA
// itself is exempt from.
func (b *Bus) WriteOAM(offset uint16, v byte) { b.ppu.OAMWrite(offset, v) }

// TickTimer advances the timer by one machine cycle and folds any overflow
// interrupt into IF. Call once per orchestrator tick, before CPU.Step.
func (b *Bus) TickTimer() {
	b.timer.Tick()
	if b.timer.TakeIRQ() {
		b.ifReg |= 1 << 2
	}
}

// StepDMA advances an in-flight OAM transfer by one byte.
func (b *Bus) StepDMA() { b.dma.Step(b) }

// StepPPU advances the PPU by one dot.
func (b *Bus) StepPPU() { b.ppu.Step() }

func (b *Bus) PressButton(mask byte) {
	b.joypad.Press(mask)
	b.syncJoypadIRQ()
}

func (b *Bus) ReleaseButton(mask byte) {
	b.joypad.Release(mask)
	b.syncJoypadIRQ()
}

func (b *Bus) syncJoypadIRQ() {
	if b.joypad.TakeIRQ() {
		b.ifReg |= 1 << 4
	}
}

type snapshot struct {
	WRAM   [0x2000]byte
	HRAM   [0x7F]byte
	IE, IF byte
	SB, SC byte
	PPU    []byte
	Timer  timer.State
	DMA    dma.State
	Joypad joypad.State
	Cart   []byte
}

func (b *Bus) SaveState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(snapshot{
		WRAM: b.wram, HRAM: b.hram, IE: b.ie, IF: b.ifReg, SB: b.sb, SC: b.sc,
		PPU: b.ppu.SaveState(), Timer: b.timer.SaveState(), DMA: b.dma.SaveState(),
		Joypad: b.joypad.SaveState(), Cart: b.cart.SaveState(),
	})
	return buf.Bytes()
}

func (b *Bus) LoadState(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	b.wram, b.hram = s.WRAM, s.HRAM
	b.ie, b.ifReg, b.sb, b.sc = s.IE, s.IF, s.SB, s.SC
	b.ppu.LoadState(s.PPU)
	b.timer.LoadState(s.Timer)
	b.dma.LoadState(s.DMA)
	b.joypad.LoadState(s.Joypad)
	b.cart.LoadState(s.Cart)
	return nil
}
