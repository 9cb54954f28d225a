package cpu

import "github.com/teskje/goomba/internal/decoder"

// UopState mirrors uop with exported fields so it can cross a gob boundary;
// the queue must survive a snapshot mid-instruction, since the spec allows
// snapshotting at any machine-cycle boundary, not only between instructions.
type UopState struct {
	Kind      uopKind
	Reg       decoder.Reg8
	Src       decoder.Reg8
	Reg16     decoder.Reg16
	Mem       decoder.Mem16
	Rot       rotKind
	Alu       aluKind
	BitOp     bitOpKind
	Bit       byte
	Imm8      byte
	Imm16     uint16
	Addr      uint16
	FromStash bool
	UseImm    bool
}

func toUopState(u uop) UopState {
	return UopState{
		Kind: u.kind, Reg: u.reg, Src: u.src, Reg16: u.reg16, Mem: u.mem,
		Rot: u.rot, Alu: u.alu, BitOp: u.bitOp, Bit: u.bit,
		Imm8: u.imm8, Imm16: u.imm16, Addr: u.addr,
		FromStash: u.fromStash, UseImm: u.useImm,
	}
}

func fromUopState(s UopState) uop {
	return uop{
		kind: s.Kind, reg: s.Reg, src: s.Src, reg16: s.Reg16, mem: s.Mem,
		rot: s.Rot, alu: s.Alu, bitOp: s.BitOp, bit: s.Bit,
		imm8: s.Imm8, imm16: s.Imm16, addr: s.Addr,
		fromStash: s.FromStash, useImm: s.UseImm,
	}
}

// State is the CPU's full snapshot-serializable state, used by
// internal/state's aggregate codec.
type State struct {
	Registers Registers
	IME       bool
	EIPending bool
	Halted    bool

	Queue     [queueCapacity]UopState
	QueueHead int
	QueueLen  int

	Stash     byte
	PendingPC uint16
	FetchBuf  [3]byte
	FetchLen  int
	CurInst   decoder.Instruction
}

func (c *CPU) SaveState() State {
	s := State{
		Registers: c.Registers, IME: c.IME, EIPending: c.eiPending, Halted: c.halted,
		QueueHead: c.queueHead, QueueLen: c.queueLen,
		Stash: c.stash, PendingPC: c.pendingPC,
		FetchBuf: c.fetchBuf, FetchLen: c.fetchLen, CurInst: c.curInst,
	}
	for i, op := range c.queue {
		s.Queue[i] = toUopState(op)
	}
	return s
}

func (c *CPU) LoadState(s State) {
	c.Registers = s.Registers
	c.IME, c.eiPending, c.halted = s.IME, s.EIPending, s.Halted
	c.queueHead, c.queueLen = s.QueueHead, s.QueueLen
	c.stash, c.pendingPC = s.Stash, s.PendingPC
	c.fetchBuf, c.fetchLen, c.curInst = s.FetchBuf, s.FetchLen, s.CurInst
	for i, op := range s.Queue {
		c.queue[i] = fromUopState(op)
	}
}
