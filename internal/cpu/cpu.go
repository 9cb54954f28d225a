package cpu

import (
	"github.com/teskje/goomba/internal/bus"
	"github.com/teskje/goomba/internal/decoder"
)

const queueCapacity = 8

// Interrupt source bits, in priority order, and their dispatch vectors.
const (
	IntVBlank = 0
	IntStat   = 1
	IntTimer  = 2
	IntSerial = 3
	IntJoypad = 4
)

var interruptVectors = [5]uint16{0x40, 0x48, 0x50, 0x58, 0x60}

// CPU is a transient view over the register file and micro-op queue; it
// holds no storage beyond that and a pointer to the shared Bus.
type CPU struct {
	Registers

	IME       bool
	eiPending bool
	halted    bool

	queue     [queueCapacity]uop
	queueHead int
	queueLen  int

	stash     byte   // inter-micro-op byte buffer for HL-indirect reads
	pendingPC uint16 // PC target assembled by PopHi, consumed by SetPCFromPop

	fetchBuf [3]byte
	fetchLen int

	curInst decoder.Instruction

	bus *bus.Bus
}

// New constructs a CPU wired to the given Bus, with registers at their
// documented post-boot state.
func New(b *bus.Bus) *CPU {
	c := &CPU{bus: b}
	c.ResetPostBoot()
	return c
}

// Bus exposes the underlying bus for tools and tests.
func (c *CPU) Bus() *bus.Bus { return c.bus }

// Halted reports whether the CPU is parked waiting for an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// QueueEmpty reports whether the micro-op queue is empty. It always holds
// true right before a fetch-decode begins.
func (c *CPU) QueueEmpty() bool { return c.queueLen == 0 }

func (c *CPU) pushOp(op uop) {
	idx := (c.queueHead + c.queueLen) % queueCapacity
	c.queue[idx] = op
	c.queueLen++
}

func (c *CPU) popOp() (uop, bool) {
	if c.queueLen == 0 {
		return uop{}, false
	}
	op := c.queue[c.queueHead]
	c.queueHead = (c.queueHead + 1) % queueCapacity
	c.queueLen--
	return op, true
}

func (c *CPU) peekOp() uop {
	return c.queue[c.queueHead]
}

func (c *CPU) dropQueue() {
	c.queueHead, c.queueLen = 0, 0
}

// pendingInterrupts returns IE & IF masked to the five defined bits.
func (c *CPU) pendingInterrupts() byte {
	return c.bus.Read(0xFFFF) & c.bus.Read(0xFF0F) & 0x1F
}

func (c *CPU) highestPendingInterrupt() int {
	p := c.pendingInterrupts()
	for bit := 0; bit < 5; bit++ {
		if p&(1<<uint(bit)) != 0 {
			return bit
		}
	}
	return -1
}

// Step executes CPU work for exactly one machine cycle. It drains one
// bus-consuming (or explicit-Wait) micro-op, then keeps draining any
// trailing micro-ops that don't touch the bus — they retire for free in the
// same cycle as the access that queued them, same as on hardware — stopping
// as soon as the next queued op would need a cycle of its own. When the
// queue is empty it either services a pending interrupt, begins fetching the
// next instruction, or — if halted with nothing pending — does nothing. An
// error (an invalid opcode) propagates to the orchestrator, which aborts the
// frame in progress.
func (c *CPU) Step() error {
	if c.halted {
		if c.pendingInterrupts() != 0 {
			c.halted = false
		} else {
			return nil
		}
	}

	if c.queueLen == 0 {
		// The pending flag from EI is applied only after this
		// dispatch-or-fetch decision, so the instruction fetched here
		// always runs to completion before interrupts can preempt it —
		// EI's one-instruction delay.
		if c.IME && c.pendingInterrupts() != 0 {
			c.beginInterruptDispatch()
		} else {
			c.fetchLen = 0
			c.pushOp(uop{kind: uopFetchDecode})
		}
		if c.eiPending {
			c.IME = true
			c.eiPending = false
		}
	}

	consumedCycle := false
	for {
		if c.queueLen == 0 {
			return nil
		}
		if consumedCycle && c.peekOp().kind.yieldsBus() {
			return nil
		}
		op, _ := c.popOp()
		yield, err := c.exec(op)
		if err != nil {
			c.dropQueue()
			return err
		}
		if yield {
			consumedCycle = true
		}
	}
}

// beginInterruptDispatch queues the 5-cycle interrupt acknowledgement
// sequence: two internal cycles, the two-byte PC push, and a final internal
// cycle during which PC is set to the vector and the IF bit cleared.
func (c *CPU) beginInterruptDispatch() {
	c.IME = false
	c.pushOp(uop{kind: uopWait})
	c.pushOp(uop{kind: uopWait})
	c.pushOp(uop{kind: uopPushHi, reg16: decoder.RNone16})
	c.pushOp(uop{kind: uopPushLo, reg16: decoder.RNone16})
	c.pushOp(uop{kind: uopWait})
	c.pushOp(uop{kind: uopSetPCFromVector})
}

// decodeIncremental reads one more opcode byte (a bus access — this method
// is only ever invoked from exec(uopFetchDecode), so its caller already
// treats the call as a yield) and attempts to decode the accumulated bytes.
// On ErrTooFewBytes it re-queues itself so the next Step call reads the next
// byte; this is the CPU-side recovery the spec assigns to TooFewBytes. Any
// other decode error (an invalid opcode) is returned to the orchestrator.
func (c *CPU) decodeIncremental() error {
	b := c.bus.Read(c.PC)
	c.PC++
	c.fetchBuf[c.fetchLen] = b
	c.fetchLen++

	inst, err := decoder.Decode(c.fetchBuf[:c.fetchLen])
	if err == nil {
		c.curInst = inst
		c.expand(inst)
		return nil
	}
	if derr, ok := err.(*decoder.Error); ok && derr.Kind == decoder.ErrTooFewBytes {
		c.pushOp(uop{kind: uopFetchDecode})
		return nil
	}
	return err
}
