package decoder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teskje/goomba/internal/decoder"
)

func TestDecodeInvalidOpcodes(t *testing.T) {
	for _, op := range []byte{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD} {
		_, err := decoder.Decode([]byte{op})
		require.Error(t, err)
		var derr *decoder.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, decoder.ErrInvalidOpcode, derr.Kind)
	}
}

func TestDecodeTooFewAndTooManyBytes(t *testing.T) {
	_, err := decoder.Decode([]byte{0x01}) // LD BC,d16 needs 3 bytes
	var derr *decoder.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, decoder.ErrTooFewBytes, derr.Kind)

	_, err = decoder.Decode([]byte{0x00, 0x00}) // NOP is 1 byte
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, decoder.ErrTooManyBytes, derr.Kind)

	_, err = decoder.Decode([]byte{0xCB}) // CB prefix always needs a 2nd byte
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, decoder.ErrTooFewBytes, derr.Kind)
}

func TestDecodeLDMatrixAndHALT(t *testing.T) {
	inst, err := decoder.Decode([]byte{0x41}) // LD B,C
	require.NoError(t, err)
	assert.Equal(t, decoder.KLD8, inst.Kind)
	assert.Equal(t, decoder.RB, inst.Dst)
	assert.Equal(t, decoder.RC, inst.Src)

	inst, err = decoder.Decode([]byte{0x76}) // carved-out HALT
	require.NoError(t, err)
	assert.Equal(t, decoder.KHalt, inst.Kind)

	inst, err = decoder.Decode([]byte{0x7E}) // LD A,(HL) via matrix src=6
	require.NoError(t, err)
	assert.Equal(t, decoder.RHL, inst.Src)
}

func TestDecodeALUMatrixAndImmediate(t *testing.T) {
	inst, err := decoder.Decode([]byte{0x80}) // ADD A,B
	require.NoError(t, err)
	assert.Equal(t, decoder.KAdd, inst.Kind)
	assert.Equal(t, decoder.RB, inst.Src)

	inst, err = decoder.Decode([]byte{0xBE}) // CP (HL)
	require.NoError(t, err)
	assert.Equal(t, decoder.KCp, inst.Kind)
	assert.Equal(t, decoder.RHL, inst.Src)

	inst, err = decoder.Decode([]byte{0xC6, 0x05}) // ADD A,5
	require.NoError(t, err)
	assert.Equal(t, decoder.KAdd, inst.Kind)
	assert.Equal(t, decoder.RImm, inst.Src)
	assert.Equal(t, byte(5), inst.Imm8)
}

func TestDecodeCBSubgroups(t *testing.T) {
	inst, err := decoder.Decode([]byte{0xCB, 0x00}) // RLC B
	require.NoError(t, err)
	assert.Equal(t, decoder.KRlc, inst.Kind)
	assert.Equal(t, decoder.RB, inst.Dst)

	inst, err = decoder.Decode([]byte{0xCB, 0x46}) // BIT 0,(HL)
	require.NoError(t, err)
	assert.Equal(t, decoder.KBit, inst.Kind)
	assert.Equal(t, byte(0), inst.Bit)
	assert.Equal(t, decoder.RHL, inst.Dst)

	inst, err = decoder.Decode([]byte{0xCB, 0xFF}) // SET 7,A
	require.NoError(t, err)
	assert.Equal(t, decoder.KSet, inst.Kind)
	assert.Equal(t, byte(7), inst.Bit)
	assert.Equal(t, decoder.RA, inst.Dst)
}

func TestDecode16BitAndControlFlow(t *testing.T) {
	inst, err := decoder.Decode([]byte{0x21, 0x34, 0x12}) // LD HL,0x1234
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), inst.Imm16)

	inst, err = decoder.Decode([]byte{0xC3, 0x00, 0x02}) // JP 0x0200
	require.NoError(t, err)
	assert.Equal(t, decoder.KJp, inst.Kind)
	assert.Equal(t, decoder.CondNone, inst.Cond)

	inst, err = decoder.Decode([]byte{0x20, 0xFE}) // JR NZ,-2
	require.NoError(t, err)
	assert.Equal(t, decoder.CondNZ, inst.Cond)

	inst, err = decoder.Decode([]byte{0xCF}) // RST 08
	require.NoError(t, err)
	assert.Equal(t, byte(0x08), inst.RST)
}

// Decode is pure and deterministic: decoding the same bytes twice yields an
// identical Instruction, and the textual disassembly is stable.
func TestDecodeRoundTripDeterminism(t *testing.T) {
	samples := [][]byte{
		{0x00}, {0x41}, {0x76}, {0x7E}, {0x80}, {0xBE},
		{0xC6, 0x05}, {0x21, 0x34, 0x12}, {0xC3, 0x00, 0x02},
		{0x20, 0xFE}, {0xCF}, {0xCB, 0x00}, {0xCB, 0x46}, {0xCB, 0xFF},
		{0xE0, 0x10}, {0xF0, 0x10}, {0xEA, 0x00, 0xC0}, {0xFA, 0x00, 0xC0},
		{0xE8, 0x05}, {0xF8, 0xFB}, {0x08, 0x00, 0xC0},
	}
	for _, buf := range samples {
		a, err := decoder.Decode(buf)
		require.NoError(t, err)
		b, err := decoder.Decode(buf)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.NotEmpty(t, a.String())
	}
}
