package cpu

import (
	"testing"

	"github.com/teskje/goomba/internal/bus"
	"github.com/teskje/goomba/internal/cart"
)

func setHeaderChecksum(rom []byte) {
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	rom[0x014D] = sum
}

func newTestCPU(t *testing.T, program []byte) *CPU {
	t.Helper()
	rom := make([]byte, 0x8000)
	copy(rom[0x100:], program)
	rom[0x147] = 0x00 // ROM ONLY
	rom[0x148] = 0x00 // 32KB
	rom[0x149] = 0x00 // no RAM
	setHeaderChecksum(rom)
	c, err := cart.New(rom)
	if err != nil {
		t.Fatalf("cart.New: %v", err)
	}
	b := bus.New(c)
	return New(b)
}

func stepN(c *CPU, n int) {
	for i := 0; i < n; i++ {
		c.Step()
	}
}

func TestLDRegImmTwoCycles(t *testing.T) {
	c := newTestCPU(t, []byte{0x3E, 0x42}) // LD A,0x42
	stepN(c, 2)
	if c.A != 0x42 {
		t.Fatalf("A = %#x, want 0x42", c.A)
	}
	if !c.QueueEmpty() {
		t.Fatalf("queue not drained after 2 cycles")
	}
}

func TestLDRegRegOneCycle(t *testing.T) {
	c := newTestCPU(t, []byte{0x06, 0x07, 0x41}) // LD B,7 ; LD B,C(0x41)
	stepN(c, 2)
	if c.B != 7 {
		t.Fatalf("B = %d, want 7", c.B)
	}
	c.Step() // fetch LD B,C
	if c.B != c.C {
		t.Fatalf("B=%d C=%d, want equal after LD B,C", c.B, c.C)
	}
}

func TestAddAHL(t *testing.T) {
	c := newTestCPU(t, []byte{0x86}) // ADD A,(HL)
	c.A = 0x10
	c.SetHL(0xC000)
	c.Bus().Write(0xC000, 0x05)
	stepN(c, 2)
	if c.A != 0x15 {
		t.Fatalf("A = %#x, want 0x15", c.A)
	}
}

func TestIncDecFlags(t *testing.T) {
	c := newTestCPU(t, []byte{0x3C}) // INC A
	c.A = 0xFF
	stepN(c, 1)
	if c.A != 0 || !c.FlagZ() || !c.FlagH() {
		t.Fatalf("INC A from 0xFF: A=%#x Z=%v H=%v", c.A, c.FlagZ(), c.FlagH())
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	c := newTestCPU(t, []byte{0xC5, 0xD1}) // PUSH BC ; POP DE
	c.SetBC(0x1234)
	stepN(c, 4)
	stepN(c, 3)
	if c.DE() != 0x1234 {
		t.Fatalf("DE = %#x, want 0x1234", c.DE())
	}
	if c.SP != 0xFFFE {
		t.Fatalf("SP = %#x, want 0xFFFE after balanced push/pop", c.SP)
	}
}

func TestCallRet(t *testing.T) {
	program := make([]byte, 0x20)
	program[0] = 0xCD // CALL 0x0110
	program[1] = 0x10
	program[2] = 0x01
	program[0x10] = 0xC9 // RET
	c := newTestCPU(t, program)
	stepN(c, 6)
	if c.PC != 0x0110 {
		t.Fatalf("PC = %#x, want 0x0110 after CALL", c.PC)
	}
	stepN(c, 4)
	if c.PC != 0x0103 {
		t.Fatalf("PC = %#x, want 0x0103 after RET", c.PC)
	}
}

func TestJrConditionalNotTakenIsTwoCycles(t *testing.T) {
	c := newTestCPU(t, []byte{0x20, 0x05, 0x00}) // JR NZ,+5 ; NOP
	c.setFlags(true, false, false, false)        // Z set, so NZ is false
	stepN(c, 2)
	if c.PC != 0x0102 {
		t.Fatalf("PC = %#x, want 0x0102 (fallthrough)", c.PC)
	}
}

func TestHaltWakesOnPendingInterrupt(t *testing.T) {
	c := newTestCPU(t, []byte{0x76}) // HALT
	stepN(c, 1)
	if !c.Halted() {
		t.Fatalf("expected CPU to be halted")
	}
	c.Bus().Write(0xFFFF, 0x01) // IE: vblank
	c.Bus().Write(0xFF0F, 0x01) // IF: vblank pending
	c.Step()
	if c.Halted() {
		t.Fatalf("expected CPU to wake from HALT once an interrupt is pending")
	}
}

func TestInvalidOpcodePropagatesError(t *testing.T) {
	c := newTestCPU(t, []byte{0xD3}) // invalid
	if err := c.Step(); err == nil {
		t.Fatalf("expected an error for an invalid opcode")
	}
}

func TestInterruptDispatchVectorsAndClearsIF(t *testing.T) {
	c := newTestCPU(t, []byte{0x00}) // NOP
	c.IME = true
	c.Bus().Write(0xFFFF, 0x01)
	c.Bus().Write(0xFF0F, 0x01)
	startSP := c.SP
	stepN(c, 6) // 5 yields (2 waits, 2 pushes, 1 wait); the non-yielding SetPCFromVector retires with the 5th, and the 6th fetches at the vector
	if c.SP != startSP-2 {
		t.Fatalf("SP = %#x, want %#x after the return address is pushed", c.SP, startSP-2)
	}
	if c.Bus().Read(0xFF0F)&0x01 != 0 {
		t.Fatalf("expected the vblank IF bit to be cleared by dispatch")
	}
	if c.IME {
		t.Fatalf("expected IME cleared during dispatch")
	}
}
