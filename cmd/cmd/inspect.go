// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package cmd

import (
	"os"

	"github.com/ostafen/fatlens/internal/disk"
	"github.com/ostafen/fatlens/internal/logger"
	"github.com/ostafen/fatlens/internal/mmap"
	"github.com/spf13/cobra"
)

func DefineInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "inspect <image>",
		Short:        "Open a disk image and inspect its first FAT16 partition",
		Long: `The 'inspect' command memory-maps a disk image or device, binds the first
FAT16 partition found in its MBR, and starts an interactive prompt for
walking FAT chains, listing directories and dumping cluster bytes.
The image is never written to.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunInspect,
	}

	cmd.Flags().String("log-level", "INFO", "minimum severity of diagnostics printed to stderr")

	return cmd
}

func RunInspect(cmd *cobra.Command, args []string) error {
	path := disk.NormalizeVolumePath(args[0])

	logLevel, _ := cmd.Flags().GetString("log-level")
	log := logger.New(os.Stderr, logger.ParseLevel(logLevel))

	mf, err := mmap.NewMmapFile(path)
	if err != nil {
		return err
	}
	defer mf.Close()

	// Setup errors (no MBR, no FAT16 partition, unusable BPB) are fatal:
	// there is nothing to inspect without a bound volume.
	vol, err := disk.OpenVolume(disk.Image(mf.Data))
	if err != nil {
		return err
	}

	vol.Summary(os.Stdout)
	return RunPrompt(vol, os.Stdin, os.Stdout, log)
}
