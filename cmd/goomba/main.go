// Command goomba is the external CLI shell around the goomba core: a
// headless runner, a Blargg-style conformance driver, and savestate/RAM
// tooling. It is the analogue of the teacher's cmd/gbemu (headless +
// framebuffer dump) and cmd/cpurunner (serial-output-driven conformance
// loop), merged into one cobra multi-command binary.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "goomba",
		Short: "a DMG core CLI: run, inspect, and snapshot Game Boy ROMs",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newFrameCmd())
	root.AddCommand(newSavestateCmd())
	root.AddCommand(newDumpRAMCmd())
	root.AddCommand(newBlarggCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
