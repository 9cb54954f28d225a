package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teskje/goomba/internal/emu"
)

func newDumpRAMCmd() *cobra.Command {
	var (
		romPath string
		ramPath string
		frames  int
		outPath string
		battery bool
	)

	cmd := &cobra.Command{
		Use:   "dump-ram",
		Short: "run a ROM for N frames and dump RAM to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if romPath == "" || outPath == "" {
				return fmt.Errorf("--rom and --out are required")
			}
			rom, err := os.ReadFile(romPath)
			if err != nil {
				return fmt.Errorf("read rom: %w", err)
			}
			var ram []byte
			if ramPath != "" {
				if ram, err = os.ReadFile(ramPath); err != nil {
					return fmt.Errorf("read ram: %w", err)
				}
			}

			e, err := emu.Load(rom, ram, emu.Config{})
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			for i := 0; i < frames; i++ {
				if _, err := e.RenderFrame(); err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
			}

			dump := e.DumpRAM()
			if battery {
				if ramData := e.SaveRAM(); ramData != nil {
					dump = ramData
				} else {
					return fmt.Errorf("cartridge has no battery-backed RAM")
				}
			}

			if err := atomicWriteFile(outPath, dump); err != nil {
				return fmt.Errorf("write dump: %w", err)
			}
			fmt.Printf("wrote %s (%d bytes)\n", outPath, len(dump))
			return nil
		},
	}

	cmd.Flags().StringVar(&romPath, "rom", "", "path to ROM (.gb)")
	cmd.Flags().StringVar(&ramPath, "ram", "", "optional battery-RAM dump to preload")
	cmd.Flags().IntVar(&frames, "frames", 0, "frames to run before dumping")
	cmd.Flags().StringVar(&outPath, "out", "", "output dump path")
	cmd.Flags().BoolVar(&battery, "battery", false, "dump cartridge battery RAM instead of console work/high RAM")
	return cmd
}
