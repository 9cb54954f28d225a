package cart

import (
	"bytes"
	"encoding/gob"
)

// MBC1 implements ROM banking up to 2MB and RAM banking up to 32KB. As on
// the real chip, a zero in the low five bank bits selects 1 before the upper
// two bits are applied, so banks 0x20/0x40/0x60 map to 0x21/0x41/0x61 at
// 0x4000-0x7FFF; in mode 1 they appear at 0x0000-0x3FFF instead.
type MBC1 struct {
	rom []byte
	ram []byte

	romBankLow5       byte
	ramBankOrRomHigh2 byte
	ramEnabled        bool
	modeSelect        byte
}

func NewMBC1(rom []byte, ramSize int) *MBC1 {
	m := &MBC1{rom: rom, romBankLow5: 1}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if m.modeSelect == 0 {
			return m.romByte(0, addr)
		}
		bank := int(m.ramBankOrRomHigh2&0x03) << 5
		return m.romByte(bank, addr)
	case addr < 0x8000:
		return m.romByte(int(m.effectiveROMBank()), addr-0x4000)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		return m.ram[m.ramOffset(addr)]
	default:
		return 0xFF
	}
}

func (m *MBC1) romByte(bank int, addr uint16) byte {
	off := bank*0x4000 + int(addr)
	if off < len(m.rom) {
		return m.rom[off]
	}
	return 0xFF
}

func (m *MBC1) ramOffset(addr uint16) int {
	ramBank := 0
	if m.modeSelect == 1 {
		ramBank = int(m.ramBankOrRomHigh2 & 0x03)
	}
	off := ramBank*0x2000 + int(addr-0xA000)
	if off >= len(m.ram) {
		return 0
	}
	return off
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		m.romBankLow5 = value & 0x1F
		if m.romBankLow5 == 0 {
			m.romBankLow5 = 1
		}
	case addr < 0x6000:
		m.ramBankOrRomHigh2 = value & 0x03
	case addr < 0x8000:
		m.modeSelect = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		m.ram[m.ramOffset(addr)] = value
	}
}

func (m *MBC1) effectiveROMBank() byte {
	high := m.ramBankOrRomHigh2 & 0x03
	return m.romBankLow5 | (high << 5)
}

type mbc1State struct {
	RomBankLow5       byte
	RamBankOrRomHigh2 byte
	RamEnabled        bool
	ModeSelect        byte
	RAM               []byte
}

func (m *MBC1) SaveState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(mbc1State{
		RomBankLow5: m.romBankLow5, RamBankOrRomHigh2: m.ramBankOrRomHigh2,
		RamEnabled: m.ramEnabled, ModeSelect: m.modeSelect, RAM: m.ram,
	})
	return buf.Bytes()
}

func (m *MBC1) LoadState(data []byte) {
	var s mbc1State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	m.romBankLow5, m.ramBankOrRomHigh2 = s.RomBankLow5, s.RamBankOrRomHigh2
	m.ramEnabled, m.modeSelect = s.RamEnabled, s.ModeSelect
	if len(s.RAM) == len(m.ram) {
		copy(m.ram, s.RAM)
	}
}

func (m *MBC1) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *MBC1) LoadRAM(data []byte) {
	if len(m.ram) == 0 {
		return
	}
	copy(m.ram, data)
}
