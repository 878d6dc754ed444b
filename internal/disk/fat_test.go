package disk_test

import (
	"bytes"
	"testing"

	"github.com/ostafen/fatlens/internal/disk"
	"github.com/stretchr/testify/require"
)

func TestFATEntry(t *testing.T) {
	ti := newTestImage(t, defaultParams())
	ti.setFAT(2, 0x1234)
	vol := ti.volume()

	v, err := vol.FATEntry(2)
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), v)

	// reserved slots are readable too
	_, err = vol.FATEntry(0)
	require.NoError(t, err)
}

func TestFATEntry_OutOfBounds(t *testing.T) {
	vol := newTestImage(t, defaultParams()).volume()

	_, err := vol.FATEntry(0xFFFF)
	require.ErrorIs(t, err, disk.ErrOutOfBounds)
}

func TestWalkChain_ReservedStart(t *testing.T) {
	vol := newTestImage(t, defaultParams()).volume()

	var buf bytes.Buffer
	require.NoError(t, vol.WalkChain(&buf, 0))
	require.NoError(t, vol.WalkChain(&buf, 1))
	require.Empty(t, buf.String())
}

func TestWalkChain_ImmediateEOC(t *testing.T) {
	ti := newTestImage(t, defaultParams())
	ti.setFAT(2, 0xFFFF)
	vol := ti.volume()

	var buf bytes.Buffer
	require.NoError(t, vol.WalkChain(&buf, 2))
	require.Empty(t, buf.String())
}

func TestWalkChain_ShortChainSuppressesSummary(t *testing.T) {
	ti := newTestImage(t, defaultParams())
	ti.setFAT(2, 3)
	ti.setFAT(3, 0xFFFF)
	vol := ti.volume()

	var buf bytes.Buffer
	require.NoError(t, vol.WalkChain(&buf, 2))
	require.Equal(t, "  FAT[2] = 0x0003\n", buf.String())
}

func TestWalkChain_LongChainElided(t *testing.T) {
	ti := newTestImage(t, defaultParams())
	ti.setFAT(2, 3)
	ti.setFAT(3, 4)
	ti.setFAT(4, 5)
	ti.setFAT(5, 0xFFFF)
	vol := ti.volume()

	var buf bytes.Buffer
	require.NoError(t, vol.WalkChain(&buf, 2))

	want := "  FAT[2] = 0x0003\n" +
		"  ...\n" +
		"  FAT[5] = 0xffff [EOC]\n"
	require.Equal(t, want, buf.String())
}

func TestWalkChain_BadCluster(t *testing.T) {
	ti := newTestImage(t, defaultParams())
	ti.setFAT(2, 3)
	ti.setFAT(3, 0xFFF7)
	vol := ti.volume()

	var buf bytes.Buffer
	err := vol.WalkChain(&buf, 2)
	require.ErrorIs(t, err, disk.ErrBadCluster)
	require.Contains(t, buf.String(), "bad cluster marker 0xfff7 at FAT[3]")
}

func TestWalkChain_InvalidNextCluster(t *testing.T) {
	ti := newTestImage(t, defaultParams())
	ti.setFAT(2, 3)
	ti.setFAT(3, 1)
	vol := ti.volume()

	var buf bytes.Buffer
	err := vol.WalkChain(&buf, 2)
	require.ErrorIs(t, err, disk.ErrInvalidCluster)
	require.Contains(t, buf.String(), "invalid next cluster 1 at FAT[3]")
}

func TestWalkChain_CycleDetected(t *testing.T) {
	ti := newTestImage(t, defaultParams())
	ti.setFAT(2, 3)
	ti.setFAT(3, 4)
	ti.setFAT(4, 2)
	vol := ti.volume()

	var buf bytes.Buffer
	err := vol.WalkChain(&buf, 2)
	require.ErrorIs(t, err, disk.ErrCycleDetected)
	require.Contains(t, buf.String(), "  FAT[2] = 0x0003\n")
	require.Contains(t, buf.String(), "cycle detected")
}

func TestWalkChain_SelfLoop(t *testing.T) {
	ti := newTestImage(t, defaultParams())
	ti.setFAT(2, 2)
	vol := ti.volume()

	var buf bytes.Buffer
	err := vol.WalkChain(&buf, 2)
	require.ErrorIs(t, err, disk.ErrCycleDetected)
}

func TestWalkChain_TerminatesOnAdversarialFAT(t *testing.T) {
	ti := newTestImage(t, defaultParams())
	vol := ti.volume()

	// every FAT slot points at another valid data cluster, so every walk
	// must end in a detected cycle rather than diverge
	seed := uint32(12345)
	for c := uint16(0); uint32(c) <= vol.Clusters+1; c++ {
		seed = seed*1664525 + 1013904223
		ti.setFAT(c, uint16(2+seed%vol.Clusters))
	}

	for start := uint16(2); uint32(start) <= vol.Clusters+1; start++ {
		var buf bytes.Buffer
		err := vol.WalkChain(&buf, start)
		require.ErrorIs(t, err, disk.ErrCycleDetected, "start %d", start)
	}
}

func TestWalkChain_DirectoryGuard(t *testing.T) {
	ti := newTestImage(t, defaultParams())
	ti.setFAT(2, 3)
	ti.setFAT(3, 0xFFFF)
	ti.writeRecord(ti.clusterOff(2), dirRecord(".", "", 0x10, 2, 0))
	ti.writeRecord(ti.clusterOff(2)+32, dirRecord("..", "", 0x10, 0, 0))
	vol := ti.volume()

	var buf bytes.Buffer
	require.NoError(t, vol.WalkChain(&buf, 2))
	require.Empty(t, buf.String())
}
