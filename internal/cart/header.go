// Package cart implements cartridge header parsing and the memory-bank
// controllers (mappers) the Bus delegates ROM/external-RAM accesses to.
package cart

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const headerEnd = 0x014F

// Header is the parsed contents of the cartridge header at 0x0100-0x014F.
type Header struct {
	Title          string
	CGBFlag        byte
	CartType       byte
	CartTypeStr    string
	ROMSizeCode    byte
	ROMSizeBytes   int
	ROMBanks       int
	RAMSizeCode    byte
	RAMSizeBytes   int
	OldLicensee    byte
	ROMVersion     byte
	HeaderChecksum byte
	GlobalChecksum uint16
}

// InvalidHeaderChecksumError reports a header whose stored checksum does not
// match the recomputed value, per spec.md §4.4.
type InvalidHeaderChecksumError struct {
	Computed, Stored byte
}

func (e *InvalidHeaderChecksumError) Error() string {
	return fmt.Sprintf("cart: invalid header checksum (computed 0x%02X, stored 0x%02X)", e.Computed, e.Stored)
}

// InvalidRomSizeError reports a ROM-size code this core does not recognize.
type InvalidRomSizeError struct {
	Code byte
}

func (e *InvalidRomSizeError) Error() string {
	return fmt.Sprintf("cart: invalid ROM size code 0x%02X", e.Code)
}

// InvalidRamSizeError reports a RAM-size code this core does not recognize.
type InvalidRamSizeError struct {
	Code byte
}

func (e *InvalidRamSizeError) Error() string {
	return fmt.Sprintf("cart: invalid RAM size code 0x%02X", e.Code)
}

// ParseHeader reads the cartridge header out of a ROM image, validating the
// header checksum and the ROM/RAM size codes per spec.md §4.4. A ROM that
// fails any of these checks returns the matching typed error instead of a
// Header.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd+1 {
		return nil, fmt.Errorf("cart: ROM too small to contain a header (%d bytes)", len(rom))
	}

	if !HeaderChecksumOK(rom) {
		return nil, &InvalidHeaderChecksumError{Computed: computeHeaderChecksum(rom), Stored: rom[0x014D]}
	}

	title := strings.TrimRight(string(rom[0x0134:0x0144]), "\x00")
	h := &Header{
		Title:          title,
		CGBFlag:        rom[0x0143],
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		OldLicensee:    rom[0x014B],
		ROMVersion:     rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
	}

	romSize, romBanks, ok := decodeROMSize(h.ROMSizeCode)
	if !ok {
		return nil, &InvalidRomSizeError{Code: h.ROMSizeCode}
	}
	h.ROMSizeBytes, h.ROMBanks = romSize, romBanks

	ramSize, ok := decodeRAMSize(h.RAMSizeCode)
	if !ok {
		return nil, &InvalidRamSizeError{Code: h.RAMSizeCode}
	}
	h.RAMSizeBytes = ramSize

	h.CartTypeStr = cartTypeString(h.CartType)
	return h, nil
}

// HeaderChecksumOK recomputes the header checksum over 0x0134-0x014C.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) < 0x014E {
		return false
	}
	return computeHeaderChecksum(rom) == rom[0x014D]
}

func computeHeaderChecksum(rom []byte) byte {
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum
}

func decodeROMSize(code byte) (size, banks int, ok bool) {
	switch code {
	case 0x00:
		return 32 * 1024, 2, true
	case 0x01:
		return 64 * 1024, 4, true
	case 0x02:
		return 128 * 1024, 8, true
	case 0x03:
		return 256 * 1024, 16, true
	case 0x04:
		return 512 * 1024, 32, true
	case 0x05:
		return 1 * 1024 * 1024, 64, true
	case 0x06:
		return 2 * 1024 * 1024, 128, true
	case 0x07:
		return 4 * 1024 * 1024, 256, true
	case 0x08:
		return 8 * 1024 * 1024, 512, true
	default:
		return 0, 0, false
	}
}

func decodeRAMSize(code byte) (size int, ok bool) {
	switch code {
	case 0x00:
		return 0, true
	case 0x02:
		return 8 * 1024, true
	case 0x03:
		return 32 * 1024, true
	case 0x04:
		return 128 * 1024, true
	case 0x05:
		return 64 * 1024, true
	default:
		return 0, false
	}
}

func cartTypeString(code byte) string {
	switch code {
	case 0x00:
		return "ROM ONLY"
	case 0x01, 0x02, 0x03:
		return "MBC1"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "MBC3"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "MBC5"
	default:
		return fmt.Sprintf("unknown (0x%02X)", code)
	}
}
