package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteIntoProducesExpectedByteCount(t *testing.T) {
	f := New()
	buf := f.WriteInto(nil)
	assert.Len(t, buf, Width*Height*4)
}

func TestWriteIntoEncodesShadesAndOpaqueAlpha(t *testing.T) {
	f := New()
	f.Set(0, 0, Black)
	f.Set(1, 0, White)
	buf := f.WriteInto(nil)

	assert.Equal(t, []byte{0x20, 0x20, 0x20, 0xFF}, buf[0:4], "pixel 0 should be opaque black")
	assert.Equal(t, []byte{0xE0, 0xE0, 0xE0, 0xFF}, buf[4:8], "pixel 1 should be opaque white")
}

func TestWriteIntoReusesCapacityWithoutReallocating(t *testing.T) {
	f := New()
	buf := make([]byte, 0, Width*Height*4)
	out := f.WriteInto(buf)
	assert.Len(t, out, Width*Height*4)
	assert.Same(t, &buf[:1][0], &out[0], "expected WriteInto to reuse buf's backing array")
}
