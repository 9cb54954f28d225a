package main

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teskje/goomba/internal/emu"
)

func newRunCmd() *cobra.Command {
	var (
		romPath string
		ramPath string
		frames  int
		until   string
		timeout time.Duration
		trace   bool
		expect  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a ROM headlessly for a fixed number of frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			if romPath == "" {
				return fmt.Errorf("--rom is required")
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

			e, err := emu.Load(rom, ram, emu.Config{Trace: trace})
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}

			var ser bytes.Buffer
			if until != "" {
				e.SetSerialWriter(&ser)
			}

			deadline := time.Time{}
			if timeout > 0 {
				deadline = time.Now().Add(timeout)
			}

			start := time.Now()
			if frames <= 0 {
				frames = 1
			}
			for i := 0; i < frames; i++ {
				if _, err := e.RenderFrame(); err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
				if until != "" && strings.Contains(strings.ToLower(ser.String()), strings.ToLower(until)) {
					log.Printf("detected %q in serial output after %d frames", until, i+1)
					break
				}
				if !deadline.IsZero() && time.Now().After(deadline) {
					return fmt.Errorf("timeout after %s", time.Since(start).Truncate(time.Millisecond))
				}
			}

			fb := e.FrameBuffer()
			crc := crc32.ChecksumIEEE(fb)
			log.Printf("done: frames=%d elapsed=%s fb_crc32=%08x", frames, time.Since(start).Truncate(time.Millisecond), crc)

			if expect != "" {
				want := strings.TrimPrefix(strings.ToLower(expect), "0x")
				got := fmt.Sprintf("%08x", crc)
				if got != want {
					return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&romPath, "rom", "", "path to ROM (.gb)")
	cmd.Flags().StringVar(&ramPath, "ram", "", "optional battery-RAM dump to preload")
	cmd.Flags().IntVar(&frames, "frames", 300, "frames to run")
	cmd.Flags().StringVar(&until, "until", "", "stop early when serial output contains this substring (case-insensitive)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "optional wall-clock timeout; 0 disables")
	cmd.Flags().BoolVar(&trace, "trace", false, "reserved for instruction tracing")
	cmd.Flags().StringVar(&expect, "expect", "", "assert the final framebuffer's CRC32 (hex)")
	return cmd
}
