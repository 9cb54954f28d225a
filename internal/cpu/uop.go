package cpu

import "github.com/teskje/goomba/internal/decoder"

// uopKind tags a single primitive action the CPU performs in one call to
// Step. Names follow the spec's canonical micro-op set. Because fetch-decode
// reads one instruction byte per yield and only calls expand once the
// decoder has a complete Instruction, every immediate value an expanded
// instruction needs (Imm8, Imm16, Bit, RST) is already a concrete literal by
// the time expand runs — the queue only needs to carry the *remaining*
// cycles: internal delays (Wait) and the instruction's actual memory
// accesses and register-file effects.
type uopKind int

const (
	uopFetchDecode uopKind = iota
	uopWait            // an explicit yield with no bus access (internal delay)
	uopLD8RegReg       // reg-to-reg 8-bit move, no bus access
	uopLD8Imm          // register = literal imm8, no bus access
	uopLoadFromHL      // reg = mem[HL]
	uopStoreToHL       // mem[HL] = reg
	uopStoreToHLImm    // mem[HL] = literal imm8
	uopLoadFromHLStash // stash = mem[HL], for ALU/INC/DEC/rotate/BIT bodies
	uopStoreToHLStash  // mem[HL] = stash
	uopMemRead         // A = mem[addr] for the Mem16 addressing modes
	uopMemWrite        // mem[addr] = A for the Mem16 addressing modes
	uopSetReg16Imm     // reg16 = literal imm16
	uopSetReg16Reg16   // SP = HL (the only reg16-from-reg16 move)
	uopWriteSPLow      // (a16) = low byte of SP
	uopWriteSPHigh     // (a16+1) = high byte of SP
	uopLdSpOff         // HL = SP + signed(imm8), with flags
	uopAddSpOff        // SP = SP + signed(imm8), with flags
	uopPushHi
	uopPushLo
	uopPopLo
	uopPopHi
	uopAlu // ALU A,operand: reg (register), fromStash (via HL read), or imm8 literal
	uopAddHL
	uopIncW
	uopDecW
	uopInc8
	uopDec8
	uopRot    // CB rotate/shift groups and the A-only short forms
	uopBitOp  // BIT/RES/SET
	uopSetPC  // PC = imm16 (JP) or RST vector
	uopSetPCFromHL
	uopJumpR // PC += signed(imm8)
	uopSetPCFromPop
	uopSetIME
	uopHalt
	uopDaa
	uopCpl
	uopScf
	uopCcf
	uopDi
	uopEi
	uopStop
	uopSetPCFromVector // interrupt dispatch: PC = vector, clears the IF bit
)

// rotKind distinguishes the eight CB rotate/shift groups plus the four
// A-specific short forms.
type rotKind int

const (
	rotRlc rotKind = iota
	rotRrc
	rotRl
	rotRr
	rotSla
	rotSra
	rotSwap
	rotSrl
	rotRlcA
	rotRlA
	rotRrcA
	rotRrA
)

// aluKind distinguishes the eight 8-bit ALU operations.
type aluKind int

const (
	aluAdd aluKind = iota
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluOr
	aluXor
	aluCp
)

// bitOpKind distinguishes BIT/RES/SET.
type bitOpKind int

const (
	bitOpTest bitOpKind = iota
	bitOpRes
	bitOpSet
)

// yieldsBus reports whether a micro-op of this kind accesses the bus (or is
// an explicit internal-delay Wait), consuming the machine cycle it runs in.
// Trailing micro-ops that don't — register moves, flag updates, PC
// assignments computed from an already-fetched operand — retire for free in
// that same cycle instead of needing one of their own.
func (k uopKind) yieldsBus() bool {
	switch k {
	case uopFetchDecode, uopWait,
		uopLoadFromHL, uopStoreToHL, uopStoreToHLImm,
		uopLoadFromHLStash, uopStoreToHLStash,
		uopMemRead, uopMemWrite,
		uopWriteSPLow, uopWriteSPHigh,
		uopPushHi, uopPushLo, uopPopLo, uopPopHi:
		return true
	default:
		return false
	}
}

// uop is a single queued primitive: a kind tag plus the small set of operand
// fields any kind might need. Unused fields are zero.
type uop struct {
	kind      uopKind
	reg       decoder.Reg8
	src       decoder.Reg8
	reg16     decoder.Reg16
	mem       decoder.Mem16
	rot       rotKind
	alu       aluKind
	bitOp     bitOpKind
	bit       byte
	imm8      byte
	imm16     uint16
	addr      uint16
	fromStash bool
	useImm    bool
}
