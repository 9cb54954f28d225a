package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teskje/goomba/internal/emu"
)

func newSavestateCmd() *cobra.Command {
	var (
		romPath string
		ramPath string
		frames  int
		outPath string
		savRAM  bool
	)

	cmd := &cobra.Command{
		Use:   "savestate",
		Short: "run a ROM for N frames and write a savestate snapshot",
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

			data, err := e.SaveState()
			if err != nil {
				return fmt.Errorf("encode savestate: %w", err)
			}
			if err := atomicWriteFile(outPath, data); err != nil {
				return fmt.Errorf("write savestate: %w", err)
			}
			fmt.Printf("wrote %s\n", outPath)

			if savRAM {
				if ramData := e.SaveRAM(); ramData != nil {
					savPath := outPath + ".sav"
					if err := atomicWriteFile(savPath, ramData); err != nil {
						return fmt.Errorf("write battery RAM: %w", err)
					}
					fmt.Printf("wrote %s\n", savPath)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&romPath, "rom", "", "path to ROM (.gb), or an existing savestate to resume from")
	cmd.Flags().StringVar(&ramPath, "ram", "", "optional battery-RAM dump to preload")
	cmd.Flags().IntVar(&frames, "frames", 0, "frames to run before snapshotting")
	cmd.Flags().StringVar(&outPath, "out", "", "output savestate path")
	cmd.Flags().BoolVar(&savRAM, "save-ram", true, "also write battery RAM alongside the savestate")
	return cmd
}

// atomicWriteFile writes data to a .tmp sibling of path, then renames it
// into place, so a reader never observes a partially-written file.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
