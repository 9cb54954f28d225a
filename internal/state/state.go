// Package state implements the aggregate snapshot codec: the CPU and Bus
// state (which in turn owns the cartridge, PPU, timer, DMA, and joypad
// state) encoded behind the 17-byte "goomba:savestate\n" magic tag required
// by spec.md §6.
package state

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/teskje/goomba/internal/bus"
	"github.com/teskje/goomba/internal/cpu"
)

// Magic is the literal 17-byte tag prefixing every encoded snapshot.
const Magic = "goomba:savestate\n"

// CodecError wraps a gob or tag-validation failure.
type CodecError struct{ Cause error }

func (e *CodecError) Error() string { return fmt.Sprintf("state: %v", e.Cause) }
func (e *CodecError) Unwrap() error { return e.Cause }

// Snapshot is the full serializable aggregate state: the original cartridge
// image (so a snapshot is self-contained per spec.md §6's `load` contract),
// CPU registers and micro-op queue, and the opaque Bus encoding (which
// recursively carries cartridge-mapper, PPU, timer, DMA, and joypad state).
type Snapshot struct {
	ROM []byte
	CPU cpu.State
	Bus []byte
}

// IsSavestate reports whether data begins with the savestate magic tag, the
// test emu.Load uses to distinguish a snapshot from a raw cartridge image.
func IsSavestate(data []byte) bool {
	return len(data) >= len(Magic) && string(data[:len(Magic)]) == Magic
}

// Encode captures rom, c, and b into a tagged, gob-encoded, self-contained
// snapshot.
func Encode(rom []byte, c *cpu.CPU, b *bus.Bus) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	snap := Snapshot{ROM: rom, CPU: c.SaveState(), Bus: b.SaveState()}
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, &CodecError{Cause: err}
	}
	return buf.Bytes(), nil
}

// Decode validates the magic tag and unmarshals the snapshot that follows.
func Decode(data []byte) (Snapshot, error) {
	if !IsSavestate(data) {
		return Snapshot{}, &CodecError{Cause: errors.New("missing goomba savestate tag")}
	}
	var snap Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data[len(Magic):])).Decode(&snap); err != nil {
		return Snapshot{}, &CodecError{Cause: err}
	}
	return snap, nil
}

// Apply restores a decoded snapshot into a live CPU/Bus pair.
func Apply(c *cpu.CPU, b *bus.Bus, snap Snapshot) error {
	c.LoadState(snap.CPU)
	return b.LoadState(snap.Bus)
}
