// Package timer implements the DMG hardware timer: a free-running 16-bit
// internal counter (whose top byte is the visible DIV register) and the
// TIMA/TMA/TAC counter that increments on a falling edge of a TAC-selected
// bit of that counter, reloading from TMA and raising an interrupt four
// cycles after it overflows.
package timer

import "github.com/teskje/goomba/internal/bitops"

// tacBit maps each TAC clock-select value to the internal-counter bit the
// timer watches for a falling edge.
var tacBit = [4]uint{9, 3, 5, 7}

type Timer struct {
	internal uint16 // DIV = internal >> 8
	tima     byte
	tma      byte
	tac      byte

	reloadPending bool
	reloadDelay   int

	irq bool // latched for the orchestrator to fold into IF bit 2
}

func New() *Timer { return &Timer{} }

func (t *Timer) DIV() byte { return byte(t.internal >> 8) }
func (t *Timer) TIMA() byte { return t.tima }
func (t *Timer) TMA() byte  { return t.tma }
func (t *Timer) TAC() byte  { return t.tac }

// WriteDIV resets the internal counter to zero, as real hardware does for
// any write to the DIV register regardless of value.
func (t *Timer) WriteDIV() { t.internal = 0 }

func (t *Timer) WriteTIMA(v byte) {
	if t.reloadDelay > 0 {
		// A write during the reload-delay window cancels the pending reload.
		t.reloadPending = false
		t.reloadDelay = 0
	}
	t.tima = v
}

func (t *Timer) WriteTMA(v byte) { t.tma = v }
func (t *Timer) WriteTAC(v byte) { t.tac = v & 0x07 }

// enabled reports whether TAC bit 2 currently gates the timer.
func (t *Timer) enabled() bool { return bitops.Bit(t.tac, 2) }

func (t *Timer) timerInputBit() bool {
	bit := tacBit[t.tac&0x03]
	return bitops.Bit(t.internal, bit) && t.enabled()
}

// Tick advances the timer by one machine cycle (4 internal T-cycles, as on
// real hardware). Call once per CPU.Step.
func (t *Timer) Tick() {
	if t.reloadPending {
		t.reloadDelay--
		if t.reloadDelay <= 0 {
			t.tima = t.tma
			t.irq = true
			t.reloadPending = false
		}
	}

	before := t.timerInputBit()
	t.internal += 4
	after := t.timerInputBit()

	if before && !after {
		t.incrementTIMA()
	}
}

func (t *Timer) incrementTIMA() {
	t.tima++
	if t.tima == 0 {
		t.reloadPending = true
		t.reloadDelay = 1
	}
}

// TakeIRQ reports and clears a pending timer interrupt.
func (t *Timer) TakeIRQ() bool {
	v := t.irq
	t.irq = false
	return v
}

type State struct {
	Internal      uint16
	TIMA, TMA, TAC byte
	ReloadPending bool
	ReloadDelay   int
}

func (t *Timer) SaveState() State {
	return State{t.internal, t.tima, t.tma, t.tac, t.reloadPending, t.reloadDelay}
}

func (t *Timer) LoadState(s State) {
	t.internal, t.tima, t.tma, t.tac = s.Internal, s.TIMA, s.TMA, s.TAC
	t.reloadPending, t.reloadDelay = s.ReloadPending, s.ReloadDelay
}
