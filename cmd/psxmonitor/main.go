// psxmonitor - interactive GDB-stub and VRAM inspection harness
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/intuitionamiga/psxcore/gdbstub"
	"github.com/intuitionamiga/psxcore/raster"
)

func main() {
	listenAddr := flag.String("listen", "127.0.0.1:2345", "GDB stub listen address")
	dumpPath := flag.String("dump-vram", "", "Write a PNG thumbnail of an all-zero VRAM buffer to this path and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: psxmonitor [options]\n\nInteractive harness for the GDB stub and rasterizer.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *dumpPath != "" {
		if err := dumpVRAM(*dumpPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runShell(*listenAddr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// dumpVRAM connects to nothing and reads no backend: it runs a zero-filled
// VRAM-sized buffer through raster.ShufflePixels and writes the result
// out, so the PNG is always blank (fully transparent).
func dumpVRAM(path string) error {
	vram := make([]uint16, raster.VRAMWidth*raster.VRAMHeight)
	return writeVRAMPNG(path, raster.ShufflePixels(vram), raster.VRAMWidth, raster.VRAMHeight)
}

func runShell(listenAddr string) error {
	cfg := gdbstub.Config{ListenAddr: listenAddr}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fmt.Fprintf(os.Stderr, "psxmonitor: listening on %s (no interactive terminal, output only)\n", listenAddr)
		_, err := gdbstub.ListenAndAccept(cfg)
		return err
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(os.Stdin, "psxmonitor> ")
	fmt.Fprintf(t, "listening for a GDB client on %s\r\n", listenAddr)

	sess, err := gdbstub.ListenAndAccept(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(t, "client connected; type \"quit\" to stop watching")

	for {
		line, err := t.ReadLine()
		if err != nil {
			return nil
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		fmt.Fprintf(t, "unrecognized command %q (session %p is served by the stub itself)\r\n", line, sess)
	}
}
