package cart

import (
	"bytes"
	"encoding/gob"
)

// MBC3 implements ROM banking up to 2MB and RAM banking up to 32KB. The
// real-time-clock registers are accepted but not emulated: see DESIGN.md.
type MBC3 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBank    byte
	ramBank    byte
}

func NewMBC3(rom []byte, ramSize int) *MBC3 {
	m := &MBC3{rom: rom, romBank: 1}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank & 0x7F)
		if bank == 0 {
			bank = 1
		}
		off := bank*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		off := int(m.ramBank&0x03)*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		v := value & 0x7F
		if v == 0 {
			v = 1
		}
		m.romBank = v
	case addr < 0x6000:
		if value <= 0x03 {
			m.ramBank = value
		}
	case addr < 0x8000:
		// RTC latch: no-op without an implemented clock.
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		off := int(m.ramBank&0x03)*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

type mbc3State struct {
	RamEnabled bool
	RomBank    byte
	RamBank    byte
	RAM        []byte
}

func (m *MBC3) SaveState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(mbc3State{
		RamEnabled: m.ramEnabled, RomBank: m.romBank, RamBank: m.ramBank, RAM: m.ram,
	})
	return buf.Bytes()
}

func (m *MBC3) LoadState(data []byte) {
	var s mbc3State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	m.ramEnabled, m.romBank, m.ramBank = s.RamEnabled, s.RomBank, s.RamBank
	if len(s.RAM) == len(m.ram) {
		copy(m.ram, s.RAM)
	}
}

func (m *MBC3) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *MBC3) LoadRAM(data []byte) {
	if len(m.ram) == 0 {
		return
	}
	copy(m.ram, data)
}
