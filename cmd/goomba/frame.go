package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/teskje/goomba/internal/emu"
	"github.com/teskje/goomba/internal/frame"
)

func newFrameCmd() *cobra.Command {
	var (
		romPath string
		ramPath string
		frames  int
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "frame",
		Short: "run a ROM for N frames and write the final frame to a PNG",
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

			var fb []byte
			if frames <= 0 {
				frames = 1
			}
			for i := 0; i < frames; i++ {
				if fb, err = e.RenderFrame(); err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
			}

			if err := writeFramePNG(fb, outPath); err != nil {
				return fmt.Errorf("write PNG: %w", err)
			}
			fmt.Printf("wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&romPath, "rom", "", "path to ROM (.gb)")
	cmd.Flags().StringVar(&ramPath, "ram", "", "optional battery-RAM dump to preload")
	cmd.Flags().IntVar(&frames, "frames", 60, "frames to run before capturing")
	cmd.Flags().StringVar(&outPath, "out", "", "output PNG path")
	return cmd
}

func writeFramePNG(pix []byte, path string) error {
	img := &image.RGBA{
		Pix:    append([]byte(nil), pix...),
		Stride: 4 * frame.Width,
		Rect:   image.Rect(0, 0, frame.Width, frame.Height),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
