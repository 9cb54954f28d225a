package cart

import (
	"bytes"
	"encoding/gob"
)

// MBC5 implements 9-bit ROM banking (up to 8MB) and 4-bit RAM banking (up
// to 128KB). Unlike MBC1/MBC3, bank 0 is a legal switchable-area selection.
type MBC5 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBank    uint16 // 9 bits
	ramBank    byte   // 4 bits
}

func NewMBC5(rom []byte, ramSize int) *MBC5 {
	m := &MBC5{rom: rom, romBank: 1}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC5) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		off := int(m.romBank)*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		off := int(m.ramBank&0x0F)*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC5) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(value)
	case addr < 0x4000:
		m.romBank = m.romBank&0x0FF | uint16(value&0x01)<<8
	case addr < 0x6000:
		m.ramBank = value & 0x0F
	case addr < 0x8000:
		// unused
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		off := int(m.ramBank&0x0F)*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

type mbc5State struct {
	RamEnabled bool
	RomBank    uint16
	RamBank    byte
	RAM        []byte
}

func (m *MBC5) SaveState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(mbc5State{
		RamEnabled: m.ramEnabled, RomBank: m.romBank, RamBank: m.ramBank, RAM: m.ram,
	})
	return buf.Bytes()
}

func (m *MBC5) LoadState(data []byte) {
	var s mbc5State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	m.ramEnabled, m.romBank, m.ramBank = s.RamEnabled, s.RomBank, s.RamBank
	if len(s.RAM) == len(m.ram) {
		copy(m.ram, s.RAM)
	}
}

func (m *MBC5) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *MBC5) LoadRAM(data []byte) {
	if len(m.ram) == 0 {
		return
	}
	copy(m.ram, data)
}
