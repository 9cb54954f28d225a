// Package joypad implements the JOYP register at 0xFF00: button state is
// tracked as an active-high bitmask and exposed through the hardware's
// active-low, select-gated read encoding, raising an interrupt on any
// 1->0 transition of the visible nibble.
package joypad

const (
	Right     = 1 << 0
	Left      = 1 << 1
	Up        = 1 << 2
	Down      = 1 << 3
	A         = 1 << 4
	B         = 1 << 5
	Select    = 1 << 6
	Start     = 1 << 7
)

type Joypad struct {
	selectBits byte // bits 5-4 as last written to JOYP
	pressed    byte // bitmask of currently pressed buttons (1=pressed)
	lowerLatch byte // last computed active-low lower nibble, for edge detection
	irq        bool
}

func New() *Joypad { return &Joypad{selectBits: 0x30, lowerLatch: 0x0F} }

// Read returns the JOYP register value: bits 7-6 always set, bits 5-4 the
// last-written select, bits 3-0 the active-low button state for whichever
// group (or groups) is currently selected.
func (j *Joypad) Read() byte {
	return 0xC0 | (j.selectBits & 0x30) | j.lowerNibble()
}

func (j *Joypad) lowerNibble() byte {
	nibble := byte(0x0F)
	if j.selectBits&0x10 == 0 { // P14 low selects D-pad
		if j.pressed&Right != 0 {
			nibble &^= 0x01
		}
		if j.pressed&Left != 0 {
			nibble &^= 0x02
		}
		if j.pressed&Up != 0 {
			nibble &^= 0x04
		}
		if j.pressed&Down != 0 {
			nibble &^= 0x08
		}
	}
	if j.selectBits&0x20 == 0 { // P15 low selects buttons
		if j.pressed&A != 0 {
			nibble &^= 0x01
		}
		if j.pressed&B != 0 {
			nibble &^= 0x02
		}
		if j.pressed&Select != 0 {
			nibble &^= 0x04
		}
		if j.pressed&Start != 0 {
			nibble &^= 0x08
		}
	}
	return nibble
}

// WriteSelect latches bits 5-4 of JOYP and re-evaluates the interrupt edge.
func (j *Joypad) WriteSelect(value byte) {
	j.selectBits = value & 0x30
	j.refresh()
}

// SetPressed replaces the full button state (set bits are pressed) and
// re-evaluates the interrupt edge.
func (j *Joypad) SetPressed(mask byte) {
	j.pressed = mask
	j.refresh()
}

func (j *Joypad) Press(mask byte) {
	j.pressed |= mask
	j.refresh()
}

func (j *Joypad) Release(mask byte) {
	j.pressed &^= mask
	j.refresh()
}

func (j *Joypad) refresh() {
	newLower := j.lowerNibble()
	if falling := j.lowerLatch &^ newLower; falling != 0 {
		j.irq = true
	}
	j.lowerLatch = newLower
}

// TakeIRQ reports and clears a pending joypad interrupt.
func (j *Joypad) TakeIRQ() bool {
	v := j.irq
	j.irq = false
	return v
}

type State struct {
	SelectBits byte
	Pressed    byte
	LowerLatch byte
}

func (j *Joypad) SaveState() State {
	return State{j.selectBits, j.pressed, j.lowerLatch}
}

func (j *Joypad) LoadState(s State) {
	j.selectBits, j.pressed, j.lowerLatch = s.SelectBits, s.Pressed, s.LowerLatch
}
