package cpu

import "github.com/teskje/goomba/internal/decoder"

// evalCond reports whether a jump/call/ret condition currently holds.
func (c *CPU) evalCond(cond decoder.Cond) bool {
	switch cond {
	case decoder.CondZ:
		return c.FlagZ()
	case decoder.CondNZ:
		return !c.FlagZ()
	case decoder.CondC:
		return c.FlagC()
	case decoder.CondNC:
		return !c.FlagC()
	default:
		return true
	}
}

// expand pushes the micro-ops for the remaining cycles of a just-decoded
// instruction — everything beyond the opcode-byte reads that fetchDecode
// already accounted for. Every immediate field on inst is a concrete value,
// since decode only just succeeded against the full instruction stream.
func (c *CPU) expand(inst decoder.Instruction) {
	switch inst.Kind {
	case decoder.KNOP, decoder.KStop:
		// nothing left to do

	case decoder.KHalt:
		c.pushOp(uop{kind: uopHalt})

	case decoder.KDi:
		c.pushOp(uop{kind: uopDi})
	case decoder.KEi:
		c.pushOp(uop{kind: uopEi})
	case decoder.KDaa:
		c.pushOp(uop{kind: uopDaa})
	case decoder.KCpl:
		c.pushOp(uop{kind: uopCpl})
	case decoder.KScf:
		c.pushOp(uop{kind: uopScf})
	case decoder.KCcf:
		c.pushOp(uop{kind: uopCcf})

	case decoder.KLD8:
		c.expandLD8(inst)
	case decoder.KLD16:
		c.expandLD16(inst)
	case decoder.KLDa16SP:
		c.pushOp(uop{kind: uopWriteSPLow, addr: inst.Imm16})
		c.pushOp(uop{kind: uopWriteSPHigh, addr: inst.Imm16})
	case decoder.KLDHLSPOffset:
		c.pushOp(uop{kind: uopWait})
		c.pushOp(uop{kind: uopLdSpOff, imm8: inst.Imm8})
	case decoder.KADDSPOffset:
		c.pushOp(uop{kind: uopWait})
		c.pushOp(uop{kind: uopWait})
		c.pushOp(uop{kind: uopAddSpOff, imm8: inst.Imm8})

	case decoder.KPush:
		c.pushOp(uop{kind: uopWait})
		c.pushOp(uop{kind: uopPushHi, reg16: inst.Dst16})
		c.pushOp(uop{kind: uopPushLo, reg16: inst.Dst16})
	case decoder.KPop:
		c.pushOp(uop{kind: uopPopLo, reg16: inst.Dst16})
		c.pushOp(uop{kind: uopPopHi, reg16: inst.Dst16})

	case decoder.KAdd, decoder.KAdc, decoder.KSub, decoder.KSbc,
		decoder.KAnd, decoder.KOr, decoder.KXor, decoder.KCp:
		c.expandALU(inst)

	case decoder.KAddHL:
		c.pushOp(uop{kind: uopWait})
		c.pushOp(uop{kind: uopAddHL, reg16: inst.Src16})
	case decoder.KInc16:
		c.pushOp(uop{kind: uopWait})
		c.pushOp(uop{kind: uopIncW, reg16: inst.Dst16})
	case decoder.KDec16:
		c.pushOp(uop{kind: uopWait})
		c.pushOp(uop{kind: uopDecW, reg16: inst.Dst16})

	case decoder.KInc8:
		c.expandIncDec8(inst.Dst, true)
	case decoder.KDec8:
		c.expandIncDec8(inst.Dst, false)

	case decoder.KRlc, decoder.KRl, decoder.KRrc, decoder.KRr,
		decoder.KSla, decoder.KSra, decoder.KSwap, decoder.KSrl:
		c.expandRotCB(inst)
	case decoder.KRlcA:
		c.pushOp(uop{kind: uopRot, rot: rotRlcA})
	case decoder.KRlA:
		c.pushOp(uop{kind: uopRot, rot: rotRlA})
	case decoder.KRrcA:
		c.pushOp(uop{kind: uopRot, rot: rotRrcA})
	case decoder.KRrA:
		c.pushOp(uop{kind: uopRot, rot: rotRrA})

	case decoder.KBit:
		c.expandBitOp(inst, bitOpTest)
	case decoder.KRes:
		c.expandBitOp(inst, bitOpRes)
	case decoder.KSet:
		c.expandBitOp(inst, bitOpSet)

	case decoder.KJp:
		if c.evalCond(inst.Cond) {
			c.pushOp(uop{kind: uopWait})
			c.pushOp(uop{kind: uopSetPC, imm16: inst.Imm16})
		}
	case decoder.KJpHL:
		c.pushOp(uop{kind: uopSetPCFromHL})
	case decoder.KJr:
		if c.evalCond(inst.Cond) {
			c.pushOp(uop{kind: uopWait})
			c.pushOp(uop{kind: uopJumpR, imm8: inst.Imm8})
		}
	case decoder.KCall:
		if c.evalCond(inst.Cond) {
			c.pushOp(uop{kind: uopWait})
			c.pushOp(uop{kind: uopPushHi, reg16: decoder.RNone16})
			c.pushOp(uop{kind: uopPushLo, reg16: decoder.RNone16})
			c.pushOp(uop{kind: uopSetPC, imm16: inst.Imm16})
		}
	case decoder.KRet:
		if inst.Cond == decoder.CondNone {
			c.pushOp(uop{kind: uopPopLo, reg16: decoder.RNone16})
			c.pushOp(uop{kind: uopPopHi, reg16: decoder.RNone16})
			c.pushOp(uop{kind: uopWait})
			c.pushOp(uop{kind: uopSetPCFromPop})
		} else {
			c.pushOp(uop{kind: uopWait})
			if c.evalCond(inst.Cond) {
				c.pushOp(uop{kind: uopPopLo, reg16: decoder.RNone16})
				c.pushOp(uop{kind: uopPopHi, reg16: decoder.RNone16})
				c.pushOp(uop{kind: uopWait})
				c.pushOp(uop{kind: uopSetPCFromPop})
			}
		}
	case decoder.KReti:
		c.pushOp(uop{kind: uopPopLo, reg16: decoder.RNone16})
		c.pushOp(uop{kind: uopPopHi, reg16: decoder.RNone16})
		c.pushOp(uop{kind: uopWait})
		c.pushOp(uop{kind: uopSetPCFromPop})
		c.pushOp(uop{kind: uopSetIME})
	case decoder.KRst:
		c.pushOp(uop{kind: uopWait})
		c.pushOp(uop{kind: uopPushHi, reg16: decoder.RNone16})
		c.pushOp(uop{kind: uopPushLo, reg16: decoder.RNone16})
		c.pushOp(uop{kind: uopSetPC, imm16: uint16(inst.RST)})
	}
}

func (c *CPU) expandLD8(inst decoder.Instruction) {
	if inst.Mem != decoder.MemNone {
		if inst.Src == decoder.RA {
			c.pushOp(uop{kind: uopMemWrite, mem: inst.Mem, imm8: inst.Imm8, addr: inst.Imm16})
		} else {
			c.pushOp(uop{kind: uopMemRead, mem: inst.Mem, imm8: inst.Imm8, addr: inst.Imm16})
		}
		return
	}
	if inst.Src == decoder.RImm {
		if inst.Dst == decoder.RHL {
			c.pushOp(uop{kind: uopStoreToHLImm, imm8: inst.Imm8})
		} else {
			c.pushOp(uop{kind: uopLD8Imm, reg: inst.Dst, imm8: inst.Imm8})
		}
		return
	}
	if inst.Dst == decoder.RHL {
		c.pushOp(uop{kind: uopStoreToHL, reg: inst.Src})
		return
	}
	if inst.Src == decoder.RHL {
		c.pushOp(uop{kind: uopLoadFromHL, reg: inst.Dst})
		return
	}
	c.pushOp(uop{kind: uopLD8RegReg, reg: inst.Dst, src: inst.Src})
}

func (c *CPU) expandLD16(inst decoder.Instruction) {
	if inst.Dst16 == decoder.RSP && inst.Src16 == decoder.RHL16 {
		c.pushOp(uop{kind: uopWait})
		c.pushOp(uop{kind: uopSetReg16Reg16})
		return
	}
	c.pushOp(uop{kind: uopSetReg16Imm, reg16: inst.Dst16, imm16: inst.Imm16})
}

func (c *CPU) expandALU(inst decoder.Instruction) {
	k := aluKindFor(inst.Kind)
	if inst.Src == decoder.RImm {
		c.pushOp(uop{kind: uopAlu, alu: k, useImm: true, imm8: inst.Imm8})
		return
	}
	if inst.Src == decoder.RHL {
		c.pushOp(uop{kind: uopLoadFromHLStash})
		c.pushOp(uop{kind: uopAlu, alu: k, fromStash: true})
		return
	}
	c.pushOp(uop{kind: uopAlu, alu: k, reg: inst.Src})
}

func aluKindFor(k decoder.Kind) aluKind {
	switch k {
	case decoder.KAdd:
		return aluAdd
	case decoder.KAdc:
		return aluAdc
	case decoder.KSub:
		return aluSub
	case decoder.KSbc:
		return aluSbc
	case decoder.KAnd:
		return aluAnd
	case decoder.KOr:
		return aluOr
	case decoder.KXor:
		return aluXor
	default:
		return aluCp
	}
}

func (c *CPU) expandIncDec8(reg decoder.Reg8, isInc bool) {
	if reg != decoder.RHL {
		if isInc {
			c.pushOp(uop{kind: uopInc8, reg: reg})
		} else {
			c.pushOp(uop{kind: uopDec8, reg: reg})
		}
		return
	}
	c.pushOp(uop{kind: uopLoadFromHLStash})
	if isInc {
		c.pushOp(uop{kind: uopInc8, fromStash: true})
	} else {
		c.pushOp(uop{kind: uopDec8, fromStash: true})
	}
	c.pushOp(uop{kind: uopStoreToHLStash})
}

func (c *CPU) expandRotCB(inst decoder.Instruction) {
	rk := rotKindFor(inst.Kind)
	if inst.Dst != decoder.RHL {
		c.pushOp(uop{kind: uopRot, rot: rk, reg: inst.Dst})
		return
	}
	c.pushOp(uop{kind: uopLoadFromHLStash})
	c.pushOp(uop{kind: uopRot, rot: rk, fromStash: true})
	c.pushOp(uop{kind: uopStoreToHLStash})
}

func rotKindFor(k decoder.Kind) rotKind {
	switch k {
	case decoder.KRlc:
		return rotRlc
	case decoder.KRrc:
		return rotRrc
	case decoder.KRl:
		return rotRl
	case decoder.KRr:
		return rotRr
	case decoder.KSla:
		return rotSla
	case decoder.KSra:
		return rotSra
	case decoder.KSwap:
		return rotSwap
	default:
		return rotSrl
	}
}

func (c *CPU) expandBitOp(inst decoder.Instruction, op bitOpKind) {
	if inst.Dst != decoder.RHL {
		c.pushOp(uop{kind: uopBitOp, bitOp: op, reg: inst.Dst, bit: inst.Bit})
		return
	}
	c.pushOp(uop{kind: uopLoadFromHLStash})
	c.pushOp(uop{kind: uopBitOp, bitOp: op, fromStash: true, bit: inst.Bit})
	if op != bitOpTest {
		c.pushOp(uop{kind: uopStoreToHLStash})
	}
}
