package cart

import "fmt"

// Cartridge is the minimal interface the Bus needs for ROM and external-RAM
// accesses. Addresses are CPU addresses, not bank-relative offsets.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
	SaveState() []byte
	LoadState(data []byte)
}

// BatteryBacked is implemented by mappers with persistent external RAM.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// UnsupportedMapperError reports a cartridge header naming a mapper this
// core does not implement. Unlike silently falling back to ROM ONLY, this
// fails loudly: a game needing banking that never happens looks like
// corruption, not a clean error.
type UnsupportedMapperError struct {
	CartType byte
}

func (e *UnsupportedMapperError) Error() string {
	return fmt.Sprintf("cart: unsupported mapper type 0x%02X", e.CartType)
}

// New parses the ROM header and constructs the matching mapper.
func New(rom []byte) (Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	switch h.CartType {
	case 0x00:
		return NewROMOnly(rom), nil
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, h.RAMSizeBytes), nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, h.RAMSizeBytes), nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, h.RAMSizeBytes), nil
	default:
		return nil, &UnsupportedMapperError{CartType: h.CartType}
	}
}
