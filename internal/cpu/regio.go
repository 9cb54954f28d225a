package cpu

import "github.com/teskje/goomba/internal/decoder"

// getReg8Direct reads an 8-bit register-file slot without touching the bus.
// It must not be called with RHL or RImm.
func (c *CPU) getReg8Direct(r decoder.Reg8) byte {
	switch r {
	case decoder.RB:
		return c.B
	case decoder.RC:
		return c.C
	case decoder.RD:
		return c.D
	case decoder.RE:
		return c.E
	case decoder.RH:
		return c.H
	case decoder.RL:
		return c.L
	case decoder.RA:
		return c.A
	default:
		return 0
	}
}

func (c *CPU) setReg8Direct(r decoder.Reg8, v byte) {
	switch r {
	case decoder.RB:
		c.B = v
	case decoder.RC:
		c.C = v
	case decoder.RD:
		c.D = v
	case decoder.RE:
		c.E = v
	case decoder.RH:
		c.H = v
	case decoder.RL:
		c.L = v
	case decoder.RA:
		c.A = v
	}
}

func (c *CPU) getReg16(r decoder.Reg16) uint16 {
	switch r {
	case decoder.RBC:
		return c.BC()
	case decoder.RDE:
		return c.DE()
	case decoder.RHL16:
		return c.HL()
	case decoder.RSP:
		return c.SP
	case decoder.RAF:
		return c.AF()
	default:
		return 0
	}
}

func (c *CPU) setReg16(r decoder.Reg16, v uint16) {
	switch r {
	case decoder.RBC:
		c.SetBC(v)
	case decoder.RDE:
		c.SetDE(v)
	case decoder.RHL16:
		c.SetHL(v)
	case decoder.RSP:
		c.SP = v
	case decoder.RAF:
		c.SetAF(v)
	}
}
