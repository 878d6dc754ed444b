package disk_test

import (
	"encoding/binary"
	"testing"

	"github.com/ostafen/fatlens/internal/disk"
	"github.com/stretchr/testify/require"
)

func buildMBR(entries ...[16]byte) []byte {
	buf := make([]byte, 512)
	for i, e := range entries {
		copy(buf[446+i*16:], e[:])
	}
	buf[510], buf[511] = 0x55, 0xAA
	return buf
}

func partEntry(partType byte, lbaStart, lbaCount uint32) [16]byte {
	var e [16]byte
	e[4] = partType
	binary.LittleEndian.PutUint32(e[8:], lbaStart)
	binary.LittleEndian.PutUint32(e[12:], lbaCount)
	return e
}

func TestParseMBR(t *testing.T) {
	mbr, err := disk.ParseMBR(buildMBR(partEntry(0x06, 63, 20000)))
	require.NoError(t, err)

	require.Equal(t, uint16(0xAA55), mbr.ReadSignature())

	e := &mbr.PartitionEntries[0]
	require.Equal(t, disk.PartitionTypeFAT16GreaterThan32MB, e.PartitionType)
	require.Equal(t, uint32(63), e.ReadStartLBA())
	require.Equal(t, uint32(20000), e.ReadTotalSectors())
}

func TestParseMBR_InvalidSignature(t *testing.T) {
	buf := buildMBR(partEntry(0x06, 63, 20000))
	buf[510], buf[511] = 0x00, 0x00

	_, err := disk.ParseMBR(buf)
	require.ErrorIs(t, err, disk.ErrMBRInvalid)
}

func TestParseMBR_ShortBuffer(t *testing.T) {
	_, err := disk.ParseMBR(make([]byte, 100))
	require.ErrorIs(t, err, disk.ErrMBRInvalid)
}

func TestMBRPartition_IsFAT16(t *testing.T) {
	for _, typ := range []disk.MBRPartition{0x04, 0x06, 0x0E} {
		require.True(t, typ.IsFAT16(), "type 0x%02x", uint8(typ))
	}
	for _, typ := range []disk.MBRPartition{0x00, 0x01, 0x05, 0x07, 0x0B, 0x0C, 0x83} {
		require.False(t, typ.IsFAT16(), "type 0x%02x", uint8(typ))
	}
}

func TestSelectFAT16Partition(t *testing.T) {
	mbr, err := disk.ParseMBR(buildMBR(
		partEntry(0x83, 100, 500), // Linux, skipped
		partEntry(0x06, 0, 500),   // FAT16 but zero start LBA, skipped
		partEntry(0x0E, 63, 0),    // FAT16 but zero sector count, skipped
		partEntry(0x04, 63, 2000), // first usable FAT16 entry
	))
	require.NoError(t, err)

	part, err := disk.SelectFAT16Partition(mbr)
	require.NoError(t, err)
	require.Equal(t, 3, part.Index)
	require.Equal(t, disk.PartitionTypeFAT16LessThan32MB, part.Type)
	require.Equal(t, uint32(63), part.LBAStart)
	require.Equal(t, uint32(2000), part.LBACount)
}

func TestSelectFAT16Partition_FirstOfMany(t *testing.T) {
	mbr, err := disk.ParseMBR(buildMBR(
		partEntry(0x06, 63, 2000),
		partEntry(0x0E, 3000, 2000),
	))
	require.NoError(t, err)

	part, err := disk.SelectFAT16Partition(mbr)
	require.NoError(t, err)
	require.Equal(t, 0, part.Index)
	require.Equal(t, uint32(63), part.LBAStart)
}

func TestSelectFAT16Partition_NoneFound(t *testing.T) {
	mbr, err := disk.ParseMBR(buildMBR(
		partEntry(0x83, 100, 500),
		partEntry(0x0B, 700, 500),
	))
	require.NoError(t, err)

	_, err = disk.SelectFAT16Partition(mbr)
	require.ErrorIs(t, err, disk.ErrNoFAT16)
}
