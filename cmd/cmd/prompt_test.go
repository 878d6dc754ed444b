package cmd

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/ostafen/fatlens/internal/disk"
	"github.com/ostafen/fatlens/internal/logger"
	"github.com/stretchr/testify/require"
)

// testVolume builds a minimal in-memory MBR+FAT16 image: one partition at
// LBA 1, 512-byte sectors, one sector per cluster.
func testVolume(t *testing.T) *disk.Volume {
	t.Helper()

	buf := make([]byte, 17*512)

	entry := buf[446:]
	entry[4] = 0x06
	binary.LittleEndian.PutUint32(entry[8:], 1)
	binary.LittleEndian.PutUint32(entry[12:], 16)
	buf[510], buf[511] = 0x55, 0xAA

	b := 512
	binary.LittleEndian.PutUint16(buf[b+11:], 512) // bytes/sec
	buf[b+13] = 1                                  // sec/clus
	binary.LittleEndian.PutUint16(buf[b+14:], 1)   // reserved
	buf[b+16] = 1                                  // fats
	binary.LittleEndian.PutUint16(buf[b+17:], 16)  // root entries
	binary.LittleEndian.PutUint16(buf[b+19:], 16)  // total sectors
	binary.LittleEndian.PutUint16(buf[b+22:], 1)   // sectors/fat
	buf[b+510], buf[b+511] = 0x55, 0xAA

	vol, err := disk.OpenVolume(disk.Image(buf))
	require.NoError(t, err)
	return vol
}

func TestParseClusterArg(t *testing.T) {
	tests := []struct {
		in   string
		want uint16
		ok   bool
	}{
		{"10", 10, true},
		{"0x10", 16, true},
		{"0", 0, true},
		{"65535", 65535, true},
		{"65536", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"-1", 0, false},
		{"10 junk", 0, false},
	}
	for _, tc := range tests {
		got, ok := parseClusterArg(tc.in)
		require.Equal(t, tc.ok, ok, "input %q", tc.in)
		if ok {
			require.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestFindCommand(t *testing.T) {
	require.NotNil(t, findCommand("clus"))
	require.NotNil(t, findCommand("quit"))
	require.NotNil(t, findCommand("exit"))
	require.Nil(t, findCommand("scan"))
}

func TestRunPrompt(t *testing.T) {
	vol := testVolume(t)

	in := strings.NewReader("mbr\nhelp\nbogus\n\nquit\n")
	var out bytes.Buffer
	log := logger.New(io.Discard, logger.ErrorLevel)

	require.NoError(t, RunPrompt(vol, in, &out, log))

	s := out.String()
	require.Contains(t, s, "MBR: selected partition 0 type=0x06 startLBA=1 sectors=16")
	require.Contains(t, s, "Commands:")
	require.Contains(t, s, `Unknown command "bogus"`)
}

func TestRunPrompt_EOFLeavesLoop(t *testing.T) {
	vol := testVolume(t)

	var out bytes.Buffer
	log := logger.New(io.Discard, logger.ErrorLevel)
	require.NoError(t, RunPrompt(vol, strings.NewReader(""), &out, log))
}

func TestRunPrompt_CommandErrorKeepsSessionAlive(t *testing.T) {
	vol := testVolume(t)

	// dump of an out-of-range cluster fails, but the prompt keeps going
	in := strings.NewReader("dump 0x4000\nmbr\nquit\n")
	var out, errOut bytes.Buffer
	log := logger.New(&errOut, logger.ErrorLevel)

	require.NoError(t, RunPrompt(vol, in, &out, log))
	require.Contains(t, errOut.String(), "[ERROR]")
	require.Contains(t, out.String(), "MBR: selected partition 0")
}
