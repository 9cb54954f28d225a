package joypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadReflectsDPadWhenSelected(t *testing.T) {
	j := New()
	j.WriteSelect(0x20) // select D-pad (P14 low, P15 high)
	j.SetPressed(Right | Up)
	want := byte(0xC0 | 0x20 | 0x0A) // bits 0 (right) and 2 (up) cleared
	assert.Equal(t, want, j.Read())
}

func TestReadReflectsButtonsWhenSelected(t *testing.T) {
	j := New()
	j.WriteSelect(0x10) // select buttons (P15 low, P14 high)
	j.SetPressed(A | Start)
	want := byte(0xC0 | 0x10 | 0x06) // bits 0 (A) and 3 (start) cleared
	assert.Equal(t, want, j.Read())
}

func TestNoButtonsSelectedReadsAllOnes(t *testing.T) {
	j := New()
	j.WriteSelect(0x30)
	j.SetPressed(A | Right)
	assert.Equal(t, byte(0x0F), j.Read()&0x0F, "lower nibble when neither group is selected")
}

func TestPressTriggersFallingEdgeInterrupt(t *testing.T) {
	j := New()
	j.WriteSelect(0x20) // D-pad selected
	require.False(t, j.TakeIRQ(), "no interrupt expected before any press")
	j.Press(Down)
	require.True(t, j.TakeIRQ(), "expected interrupt on press while D-pad selected")
	assert.False(t, j.TakeIRQ(), "TakeIRQ should clear the latch")
}

func TestPressWithGroupUnselectedDoesNotInterrupt(t *testing.T) {
	j := New()
	j.WriteSelect(0x10) // buttons selected, D-pad not
	j.Press(Down)
	assert.False(t, j.TakeIRQ(), "pressing an unselected group's button must not interrupt")
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	j := New()
	j.WriteSelect(0x20)
	j.SetPressed(Left)
	snap := j.SaveState()

	j2 := New()
	j2.LoadState(snap)
	assert.Equal(t, j.Read(), j2.Read())
}
