package disk_test

import (
	"encoding/binary"
	"testing"

	"github.com/ostafen/fatlens/internal/disk"
	"github.com/stretchr/testify/require"
)

// imgParams describes the synthetic MBR+FAT16 image the tests operate on.
type imgParams struct {
	partType    byte
	lbaStart    uint32
	bytesPerSec uint16
	secPerClus  uint8
	rsvd        uint16
	numFATs     uint8
	rootEntCnt  uint16
	fatSz16     uint16
	totSec16    uint16
	totSec32    uint32 // used only when totSec16 == 0
}

// defaultParams yields a compact layout: fatStart=1, rootStart=2,
// dataStart=3, 13 data clusters, 8704 bytes total.
func defaultParams() imgParams {
	return imgParams{
		partType:    0x06,
		lbaStart:    1,
		bytesPerSec: 512,
		secPerClus:  1,
		rsvd:        1,
		numFATs:     1,
		rootEntCnt:  16,
		fatSz16:     1,
		totSec16:    16,
	}
}

type testImage struct {
	t   *testing.T
	p   imgParams
	buf []byte

	fatStart  uint32
	rootStart uint32
	dataStart uint32
}

func newTestImage(t *testing.T, p imgParams) *testImage {
	t.Helper()

	rootDirSectors := (uint32(p.rootEntCnt)*32 + uint32(p.bytesPerSec) - 1) / uint32(p.bytesPerSec)
	fatStart := uint32(p.rsvd)
	rootStart := fatStart + uint32(p.numFATs)*uint32(p.fatSz16)
	dataStart := rootStart + rootDirSectors

	totSec := uint32(p.totSec16)
	if totSec == 0 {
		totSec = p.totSec32
	}
	buf := make([]byte, (uint64(p.lbaStart)+uint64(totSec))*512)

	// MBR: one partition entry plus the boot signature.
	entry := buf[446:]
	entry[4] = p.partType
	binary.LittleEndian.PutUint32(entry[8:], p.lbaStart)
	binary.LittleEndian.PutUint32(entry[12:], totSec)
	buf[510], buf[511] = 0x55, 0xAA

	// BPB at the partition's first sector.
	b := int(p.lbaStart) * 512
	binary.LittleEndian.PutUint16(buf[b+11:], p.bytesPerSec)
	buf[b+13] = p.secPerClus
	binary.LittleEndian.PutUint16(buf[b+14:], p.rsvd)
	buf[b+16] = p.numFATs
	binary.LittleEndian.PutUint16(buf[b+17:], p.rootEntCnt)
	binary.LittleEndian.PutUint16(buf[b+19:], p.totSec16)
	buf[b+21] = 0xF8
	binary.LittleEndian.PutUint16(buf[b+22:], p.fatSz16)
	binary.LittleEndian.PutUint32(buf[b+32:], p.totSec32)
	buf[b+510], buf[b+511] = 0x55, 0xAA

	return &testImage{
		t:         t,
		p:         p,
		buf:       buf,
		fatStart:  fatStart,
		rootStart: rootStart,
		dataStart: dataStart,
	}
}

func (ti *testImage) image() disk.Image {
	return disk.Image(ti.buf)
}

func (ti *testImage) volume() *disk.Volume {
	ti.t.Helper()

	vol, err := disk.OpenVolume(ti.image())
	require.NoError(ti.t, err)
	return vol
}

func (ti *testImage) fatOff(cluster uint16) int {
	base := (uint64(ti.p.lbaStart) + uint64(ti.fatStart)) * uint64(ti.p.bytesPerSec)
	return int(base) + 2*int(cluster)
}

func (ti *testImage) setFAT(cluster, val uint16) {
	binary.LittleEndian.PutUint16(ti.buf[ti.fatOff(cluster):], val)
}

func (ti *testImage) clusterOff(c uint16) int {
	sector := uint64(ti.p.lbaStart) + uint64(ti.dataStart) + uint64(c-2)*uint64(ti.p.secPerClus)
	return int(sector * uint64(ti.p.bytesPerSec))
}

// rootOff returns the byte offset of the idx-th root directory record.
// The root region is addressed in raw 512-byte LBAs, like the MBR.
func (ti *testImage) rootOff(idx int) int {
	return int((uint64(ti.p.lbaStart)+uint64(ti.rootStart))*512) + idx*32
}

func (ti *testImage) writeRecord(off int, rec []byte) {
	copy(ti.buf[off:], rec)
}

// dirRecord builds a 32-byte directory record with a space-padded 8.3 name.
func dirRecord(stem, ext string, attr byte, clus uint16, size uint32) []byte {
	rec := make([]byte, 32)
	for i := 0; i < 11; i++ {
		rec[i] = ' '
	}
	copy(rec[:8], stem)
	copy(rec[8:11], ext)
	rec[11] = attr
	binary.LittleEndian.PutUint16(rec[26:], clus)
	binary.LittleEndian.PutUint32(rec[28:], size)
	return rec
}
