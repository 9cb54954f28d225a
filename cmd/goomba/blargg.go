package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teskje/goomba/internal/emu"
)

func newBlarggCmd() *cobra.Command {
	var maxFrames int

	cmd := &cobra.Command{
		Use:   "blargg [rom]",
		Short: "run a Blargg-style conformance ROM and report pass/fail from its serial output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			romPath := args[0]
			rom, err := os.ReadFile(romPath)
			if err != nil {
				return fmt.Errorf("read rom: %w", err)
			}

			e, err := emu.Load(rom, nil, emu.Config{})
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}

			var ser bytes.Buffer
			e.SetSerialWriter(&ser)

			for i := 0; i < maxFrames; i++ {
				if err := e.StepFrameNoRender(); err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
				out := ser.String()
				if strings.Contains(strings.ToLower(out), "passed") {
					fmt.Printf("%s: PASSED\n", filepath.Base(romPath))
					return nil
				}
				if strings.Contains(strings.ToLower(out), "failed") {
					fmt.Printf("%s: FAILED\n%s\n", filepath.Base(romPath), out)
					return fmt.Errorf("conformance failure")
				}
			}
			return fmt.Errorf("timeout waiting for serial verdict; last output:\n%s", ser.String())
		},
	}

	cmd.Flags().IntVar(&maxFrames, "max-frames", 1800, "frames to run before giving up")
	return cmd
}
