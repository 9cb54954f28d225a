package emu

// Config carries settings that affect emulation behavior but not its
// correctness against the spec. Model and StatQuirks are reserved for a
// future CGB mode and STAT-blocking quirk toggle; only DMG behavior (the
// zero value of Model) is implemented today.
type Config struct {
	Trace      bool // set by cmd/goomba's run --trace; nothing in the core or cmd/goomba reads it, so no trace is produced
	Model      string
	StatQuirks bool
}
