// Package cpu implements the SM83-compatible CPU core: register file, flag
// semantics, interrupt dispatch, HALT, and the micro-op queue that schedules
// every decoded instruction across the memory-bus cycles it actually takes.
package cpu

import "github.com/teskje/goomba/internal/bitops"

// Flag bit positions within F; the low nibble of F always reads zero.
const (
	flagZ byte = 1 << 7
	flagN byte = 1 << 6
	flagH byte = 1 << 5
	flagC byte = 1 << 4
)

// Registers is the SM83 register file: eight 8-bit registers (A and F form
// the AF pair), SP, and PC.
type Registers struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte
	SP   uint16
	PC   uint16
}

// ResetPostBoot sets the documented post-boot register state (the boot ROM
// itself is never emulated).
func (r *Registers) ResetPostBoot() {
	r.A, r.F = 0x01, flagZ
	r.B, r.C = 0x00, 0x13
	r.D, r.E = 0x00, 0xD8
	r.H, r.L = 0x01, 0x4D
	r.SP = 0xFFFE
	r.PC = 0x0100
}

func (r *Registers) AF() uint16  { return bitops.Word(r.A, r.F&0xF0) }
func (r *Registers) SetAF(v uint16) { r.A = bitops.HighByte(v); r.F = bitops.LowByte(v) & 0xF0 }
func (r *Registers) BC() uint16  { return bitops.Word(r.B, r.C) }
func (r *Registers) SetBC(v uint16) { r.B, r.C = bitops.HighByte(v), bitops.LowByte(v) }
func (r *Registers) DE() uint16  { return bitops.Word(r.D, r.E) }
func (r *Registers) SetDE(v uint16) { r.D, r.E = bitops.HighByte(v), bitops.LowByte(v) }
func (r *Registers) HL() uint16  { return bitops.Word(r.H, r.L) }
func (r *Registers) SetHL(v uint16) { r.H, r.L = bitops.HighByte(v), bitops.LowByte(v) }

func (r *Registers) FlagZ() bool { return r.F&flagZ != 0 }
func (r *Registers) FlagN() bool { return r.F&flagN != 0 }
func (r *Registers) FlagH() bool { return r.F&flagH != 0 }
func (r *Registers) FlagC() bool { return r.F&flagC != 0 }

func (r *Registers) setFlags(z, n, h, c bool) {
	var f byte
	if z {
		f |= flagZ
	}
	if n {
		f |= flagN
	}
	if h {
		f |= flagH
	}
	if c {
		f |= flagC
	}
	r.F = f
}
