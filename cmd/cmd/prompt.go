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
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ostafen/fatlens/internal/disk"
	"github.com/ostafen/fatlens/internal/logger"
)

type session struct {
	vol *disk.Volume
	out io.Writer
	log *logger.Logger
}

// Handlers return false to leave the prompt loop.
type commandHandler func(s *session, args string) bool

type promptCommand struct {
	name    string
	help    string
	handler commandHandler
}

// The command surface is a fixed table; no command is ever registered at
// runtime.
var promptCommands []promptCommand

func init() {
	promptCommands = []promptCommand{
		{"mbr", "Show partition/MBR/FAT layout info", cmdMBRInfo},
		{"root", "List root directory entries", cmdRootScan},
		{"dir", "List a subdirectory by start cluster (dir <cluster>)", cmdDirScan},
		{"clus", "Follow FAT chain from a starting cluster (clus <cluster>)", cmdFollowCluster},
		{"dump", "Hex dump a single data cluster (dump <cluster>)", cmdDumpCluster},
		{"help", "Show available commands", cmdHelp},
		{"quit", "Exit the tool", cmdQuit},
		{"exit", "Exit the tool", cmdQuit},
	}
}

func findCommand(name string) *promptCommand {
	for i := range promptCommands {
		if promptCommands[i].name == name {
			return &promptCommands[i]
		}
	}
	return nil
}

// RunPrompt reads commands from in until quit/exit or EOF. Command output
// goes to out; diagnostics go through the logger. A failed command never
// ends the session.
func RunPrompt(vol *disk.Volume, in io.Reader, out io.Writer, log *logger.Logger) error {
	s := &session{vol: vol, out: out, log: log}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		name, args, _ := strings.Cut(line, " ")
		args = strings.TrimSpace(args)

		command := findCommand(name)
		if command == nil {
			fmt.Fprintf(out, "Unknown command %q. Type \"help\" for commands.\n", name)
			continue
		}

		if !command.handler(s, args) {
			return nil
		}
	}
}

// parseClusterArg accepts a decimal or 0x-prefixed hexadecimal cluster
// number fitting a uint16.
func parseClusterArg(args string) (uint16, bool) {
	if args == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(args, 0, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}

// report routes a command error to stderr. Chain corruption kinds were
// already rendered inline by the walker, so they are demoted to debug.
func (s *session) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, disk.ErrBadCluster) ||
		errors.Is(err, disk.ErrInvalidCluster) ||
		errors.Is(err, disk.ErrCycleDetected) {
		s.log.Debugf("%v", err)
		return
	}
	s.log.Errorf("%v", err)
}

func cmdMBRInfo(s *session, args string) bool {
	s.vol.Summary(s.out)
	return true
}

func cmdRootScan(s *session, args string) bool {
	s.report(s.vol.WalkRootDir(s.out))
	return true
}

func cmdDirScan(s *session, args string) bool {
	clus, ok := parseClusterArg(args)
	if !ok || clus < 2 {
		fmt.Fprintln(s.out, "usage: dir <cluster>   (cluster >= 2, decimal or 0x-hex)")
		return true
	}
	s.report(s.vol.WalkDir(s.out, clus))
	return true
}

func cmdFollowCluster(s *session, args string) bool {
	clus, ok := parseClusterArg(args)
	if !ok {
		fmt.Fprintln(s.out, "usage: clus <cluster>   (decimal or 0x-hex)")
		return true
	}
	s.report(s.vol.WalkChain(s.out, clus))
	return true
}

func cmdDumpCluster(s *session, args string) bool {
	clus, ok := parseClusterArg(args)
	if !ok {
		fmt.Fprintln(s.out, "usage: dump <cluster>   (decimal or 0x-hex)")
		return true
	}
	// A failed dump prints nothing inline, so every kind is logged as an error.
	if err := s.vol.DumpCluster(s.out, clus); err != nil {
		s.log.Errorf("%v", err)
	}
	return true
}

func cmdHelp(s *session, args string) bool {
	fmt.Fprintln(s.out, "Commands:")
	for _, c := range promptCommands {
		fmt.Fprintf(s.out, "  %-5s %s\n", c.name, c.help)
	}
	return true
}

func cmdQuit(s *session, args string) bool {
	return false
}
