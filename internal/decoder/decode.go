package decoder

import "github.com/teskje/goomba/internal/bitops"

// Decode turns a 1-3 byte instruction-stream prefix into an Instruction. buf
// holds exactly as many bytes as the caller currently has available; Decode
// determines how many the opcode actually needs and reports ErrTooFewBytes or
// ErrTooManyBytes if buf's length doesn't match.
func Decode(buf []byte) (Instruction, error) {
	if len(buf) == 0 {
		return Instruction{}, &Error{Kind: ErrTooFewBytes}
	}
	op := buf[0]

	if op == 0xCB {
		return decodeCB(buf)
	}
	if invalidOpcodes[op] {
		return Instruction{}, &Error{Kind: ErrInvalidOpcode, Value: op}
	}

	length := opcodeLength(op)
	if len(buf) < int(length) {
		return Instruction{}, &Error{Kind: ErrTooFewBytes}
	}
	if len(buf) > int(length) {
		return Instruction{}, &Error{Kind: ErrTooManyBytes}
	}

	switch {
	case op >= 0x40 && op <= 0x7F:
		return decodeLDMatrix(op), nil
	case op >= 0x80 && op <= 0xBF:
		return decodeALUMatrix(op), nil
	default:
		return decodeSingle(op, buf)
	}
}

// opcodeLength reports how many bytes (including the opcode itself) a
// single-byte-prefixed (non-CB) opcode occupies.
func opcodeLength(op byte) byte {
	switch op {
	// 3-byte: 16-bit immediate
	case 0x01, 0x11, 0x21, 0x31, // LD rr,d16
		0x08,       // LD (a16),SP
		0xC2, 0xC3, 0xC4, 0xCA, 0xCC, 0xCD, // JP/CALL a16
		0xD2, 0xD4, 0xDA, 0xDC,
		0xEA, 0xFA: // LD (a16),A / LD A,(a16)
		return 3
	// 2-byte: 8-bit immediate or displacement
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x36, 0x3E, // LD r,d8 / LD (HL),d8
		0x10,                   // STOP
		0x18, 0x20, 0x28, 0x30, 0x38, // JR [cc],e
		0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE, // ALU A,d8
		0xE0, 0xF0, // LDH (a8),A / A,(a8)
		0xE8, 0xF8: // ADD SP,e8 / LD HL,SP+e8
		return 2
	default:
		return 1
	}
}

func decodeLDMatrix(op byte) Instruction {
	if op == 0x76 {
		return Instruction{Kind: KHalt, Length: 1}
	}
	dst := reg8FromBits(bitops.Bits(op, 3, 5))
	src := reg8FromBits(op & 7)
	return Instruction{Kind: KLD8, Dst: dst, Src: src, Length: 1}
}

var aluKinds = [8]Kind{KAdd, KAdc, KSub, KSbc, KAnd, KXor, KOr, KCp}

func decodeALUMatrix(op byte) Instruction {
	kind := aluKinds[(op>>3)&7]
	src := reg8FromBits(op & 7)
	return Instruction{Kind: kind, Dst: RA, Src: src, Length: 1}
}

// aluImmOpcodes maps the eight "ALU A,d8" opcodes to their ALU kind.
var aluImmOpcodes = map[byte]Kind{
	0xC6: KAdd, 0xCE: KAdc, 0xD6: KSub, 0xDE: KSbc,
	0xE6: KAnd, 0xEE: KXor, 0xF6: KOr, 0xFE: KCp,
}

func decodeSingle(op byte, buf []byte) (Instruction, error) {
	switch op {
	case 0x00:
		return Instruction{Kind: KNOP, Length: 1}, nil
	case 0x01, 0x11, 0x21, 0x31:
		return Instruction{Kind: KLD16, Dst16: reg16FromBitsSP(op >> 4), Imm16: le16(buf[1], buf[2]), Length: 3}, nil
	case 0x02:
		return Instruction{Kind: KLD8, Mem: MemBC, Src: RA, Length: 1}, nil
	case 0x12:
		return Instruction{Kind: KLD8, Mem: MemDE, Src: RA, Length: 1}, nil
	case 0x22:
		return Instruction{Kind: KLD8, Mem: MemHLI, Src: RA, Length: 1}, nil
	case 0x32:
		return Instruction{Kind: KLD8, Mem: MemHLD, Src: RA, Length: 1}, nil
	case 0x0A:
		return Instruction{Kind: KLD8, Dst: RA, Mem: MemBC, Length: 1}, nil
	case 0x1A:
		return Instruction{Kind: KLD8, Dst: RA, Mem: MemDE, Length: 1}, nil
	case 0x2A:
		return Instruction{Kind: KLD8, Dst: RA, Mem: MemHLI, Length: 1}, nil
	case 0x3A:
		return Instruction{Kind: KLD8, Dst: RA, Mem: MemHLD, Length: 1}, nil
	case 0x03, 0x13, 0x23, 0x33:
		return Instruction{Kind: KInc16, Dst16: reg16FromBitsSP(op >> 4), Length: 1}, nil
	case 0x0B, 0x1B, 0x2B, 0x3B:
		return Instruction{Kind: KDec16, Dst16: reg16FromBitsSP(op >> 4), Length: 1}, nil
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C:
		return Instruction{Kind: KInc8, Dst: reg8FromBits(bitops.Bits(op, 3, 5)), Length: 1}, nil
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D:
		return Instruction{Kind: KDec8, Dst: reg8FromBits(bitops.Bits(op, 3, 5)), Length: 1}, nil
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x36, 0x3E:
		return Instruction{Kind: KLD8, Dst: reg8FromBits(bitops.Bits(op, 3, 5)), Src: RImm, Imm8: buf[1], Length: 2}, nil
	case 0x09, 0x19, 0x29, 0x39:
		return Instruction{Kind: KAddHL, Src16: reg16FromBitsSP(op >> 4), Length: 1}, nil
	case 0x08:
		return Instruction{Kind: KLDa16SP, Imm16: le16(buf[1], buf[2]), Length: 3}, nil
	case 0x07:
		return Instruction{Kind: KRlcA, Length: 1}, nil
	case 0x0F:
		return Instruction{Kind: KRrcA, Length: 1}, nil
	case 0x17:
		return Instruction{Kind: KRlA, Length: 1}, nil
	case 0x1F:
		return Instruction{Kind: KRrA, Length: 1}, nil
	case 0x10:
		return Instruction{Kind: KStop, Length: 2}, nil
	case 0x18:
		return Instruction{Kind: KJr, Cond: CondNone, Imm8: buf[1], Length: 2}, nil
	case 0x20, 0x28, 0x30, 0x38:
		return Instruction{Kind: KJr, Cond: condFromBits(op >> 3), Imm8: buf[1], Length: 2}, nil
	case 0x27:
		return Instruction{Kind: KDaa, Length: 1}, nil
	case 0x2F:
		return Instruction{Kind: KCpl, Length: 1}, nil
	case 0x37:
		return Instruction{Kind: KScf, Length: 1}, nil
	case 0x3F:
		return Instruction{Kind: KCcf, Length: 1}, nil
	case 0xC0, 0xC8, 0xD0, 0xD8:
		return Instruction{Kind: KRet, Cond: condFromBits(op >> 3), Length: 1}, nil
	case 0xC9:
		return Instruction{Kind: KRet, Cond: CondNone, Length: 1}, nil
	case 0xD9:
		return Instruction{Kind: KReti, Length: 1}, nil
	case 0xC1, 0xD1, 0xE1, 0xF1:
		return Instruction{Kind: KPop, Dst16: reg16FromBitsAF(op >> 4), Length: 1}, nil
	case 0xC5, 0xD5, 0xE5, 0xF5:
		return Instruction{Kind: KPush, Dst16: reg16FromBitsAF(op >> 4), Length: 1}, nil
	case 0xC2, 0xCA, 0xD2, 0xDA:
		return Instruction{Kind: KJp, Cond: condFromBits(op >> 3), Imm16: le16(buf[1], buf[2]), Length: 3}, nil
	case 0xC3:
		return Instruction{Kind: KJp, Cond: CondNone, Imm16: le16(buf[1], buf[2]), Length: 3}, nil
	case 0xE9:
		return Instruction{Kind: KJpHL, Length: 1}, nil
	case 0xC4, 0xCC, 0xD4, 0xDC:
		return Instruction{Kind: KCall, Cond: condFromBits(op >> 3), Imm16: le16(buf[1], buf[2]), Length: 3}, nil
	case 0xCD:
		return Instruction{Kind: KCall, Cond: CondNone, Imm16: le16(buf[1], buf[2]), Length: 3}, nil
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		return Instruction{Kind: KRst, RST: op - 0xC7, Length: 1}, nil
	case 0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE:
		return Instruction{Kind: aluImmOpcodes[op], Dst: RA, Src: RImm, Imm8: buf[1], Length: 2}, nil
	case 0xE0:
		return Instruction{Kind: KLD8, Mem: MemHighImm, Src: RA, Imm8: buf[1], Length: 2}, nil
	case 0xF0:
		return Instruction{Kind: KLD8, Dst: RA, Mem: MemHighImm, Imm8: buf[1], Length: 2}, nil
	case 0xE2:
		return Instruction{Kind: KLD8, Mem: MemHighC, Src: RA, Length: 1}, nil
	case 0xF2:
		return Instruction{Kind: KLD8, Dst: RA, Mem: MemHighC, Length: 1}, nil
	case 0xEA:
		return Instruction{Kind: KLD8, Mem: MemImm16, Src: RA, Imm16: le16(buf[1], buf[2]), Length: 3}, nil
	case 0xFA:
		return Instruction{Kind: KLD8, Dst: RA, Mem: MemImm16, Imm16: le16(buf[1], buf[2]), Length: 3}, nil
	case 0xE8:
		return Instruction{Kind: KADDSPOffset, Imm8: buf[1], Length: 2}, nil
	case 0xF8:
		return Instruction{Kind: KLDHLSPOffset, Imm8: buf[1], Length: 2}, nil
	case 0xF9:
		return Instruction{Kind: KLD16, Dst16: RSP, Src16: RHL16, Length: 1}, nil
	case 0xF3:
		return Instruction{Kind: KDi, Length: 1}, nil
	case 0xFB:
		return Instruction{Kind: KEi, Length: 1}, nil
	default:
		return Instruction{}, &Error{Kind: ErrInvalidOpcode, Value: op}
	}
}

var cbGroupKinds = [8]Kind{KRlc, KRrc, KRl, KRr, KSla, KSra, KSwap, KSrl}

func decodeCB(buf []byte) (Instruction, error) {
	if len(buf) < 2 {
		return Instruction{}, &Error{Kind: ErrTooFewBytes}
	}
	if len(buf) > 2 {
		return Instruction{}, &Error{Kind: ErrTooManyBytes}
	}
	cb := buf[1]
	reg := reg8FromBits(bitops.Bits(cb, 0, 2))
	if cb < 0x40 {
		kind := cbGroupKinds[bitops.Bits(cb, 3, 5)]
		return Instruction{Kind: kind, Dst: reg, Length: 2}, nil
	}
	bit := bitops.Bits(cb, 3, 5)
	switch cb >> 6 {
	case 1:
		return Instruction{Kind: KBit, Dst: reg, Bit: bit, Length: 2}, nil
	case 2:
		return Instruction{Kind: KRes, Dst: reg, Bit: bit, Length: 2}, nil
	default:
		return Instruction{Kind: KSet, Dst: reg, Bit: bit, Length: 2}, nil
	}
}

func le16(lo, hi byte) uint16 { return uint16(lo) | uint16(hi)<<8 }
