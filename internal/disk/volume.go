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
package disk

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"unicode"
)

// Volume holds the FAT16 layout derived from the BPB of the selected
// partition. It is immutable after construction; every inspection
// operation borrows it read-only.
type Volume struct {
	img  Image
	part Partition

	// BPB fields, widened to uint32 so the layout arithmetic below
	// cannot overflow intermediate products.
	BytesPerSec uint32
	SecPerClus  uint32
	RsvdSecCnt  uint32
	NumFATs     uint32
	RootEntCnt  uint32
	FATSz16     uint32
	TotSec      uint32

	// Region starts, in sectors relative to the partition start.
	FATStart       uint32
	RootStart      uint32
	DataStart      uint32
	RootDirSectors uint32

	DataSectors uint32
	Clusters    uint32
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

// OpenVolume binds the first FAT16 partition of an MBR-partitioned image.
// It fails if the image carries no valid MBR, no FAT16 partition entry, or
// a BPB the layout math cannot be derived from. Any of these errors is
// fatal to an inspection session.
func OpenVolume(img Image) (*Volume, error) {
	header, err := img.Slice(0, MBRSize)
	if err != nil {
		return nil, fmt.Errorf("%w: image smaller than an MBR", ErrMBRInvalid)
	}

	mbr, err := ParseMBR(header)
	if err != nil {
		return nil, err
	}

	part, err := SelectFAT16Partition(mbr)
	if err != nil {
		return nil, err
	}
	return BuildVolume(img, part)
}

// BuildVolume reads the BPB at the first sector of the given partition and
// derives the volume layout. The partition start is addressed in 512-byte
// LBAs even when the BPB later declares a larger logical sector size; the
// MBR knows nothing about the filesystem it points at.
func BuildVolume(img Image, part Partition) (*Volume, error) {
	pOff := uint64(part.LBAStart) * MBRSize

	sector, err := img.Slice(pOff, FATBootSectorSize)
	if err != nil {
		return nil, fmt.Errorf("%w: partition start at byte %d beyond end of image", ErrBPBInvalid, pOff)
	}

	bs, err := ReadFATBootSector(sector)
	if err != nil {
		return nil, err
	}

	bytesPerSec := uint32(bs.SectorSize)
	secPerClus := uint32(bs.SecPerClus)

	switch bytesPerSec {
	case 512, 1024, 2048, 4096:
	default:
		return nil, fmt.Errorf("%w: bytes per sector %d is not a valid power-of-two sector size", ErrBPBInvalid, bytesPerSec)
	}
	if secPerClus == 0 {
		return nil, fmt.Errorf("%w: sectors per cluster is zero", ErrBPBInvalid)
	}

	totSec := uint32(bs.TotSec16)
	if totSec == 0 {
		totSec = bs.TotSec32
	}

	v := &Volume{
		img:  img,
		part: part,

		BytesPerSec: bytesPerSec,
		SecPerClus:  secPerClus,
		RsvdSecCnt:  uint32(bs.RsvdSecCnt),
		NumFATs:     uint32(bs.NumFATs),
		RootEntCnt:  uint32(bs.RootEntCnt),
		FATSz16:     uint32(bs.FATSz16),
		TotSec:      totSec,
	}

	v.RootDirSectors = ceilDiv(v.RootEntCnt*DirEntrySize, v.BytesPerSec)
	v.FATStart = v.RsvdSecCnt
	v.RootStart = v.RsvdSecCnt + v.NumFATs*v.FATSz16
	v.DataStart = v.RootStart + v.RootDirSectors
	v.DataSectors = v.TotSec - (v.RsvdSecCnt + v.NumFATs*v.FATSz16 + v.RootDirSectors)
	v.Clusters = v.DataSectors / v.SecPerClus

	return v, nil
}

// Part returns the MBR partition entry the volume was built from.
func (v *Volume) Part() Partition {
	return v.part
}

// ClusterSize returns the size of a data cluster in bytes.
func (v *Volume) ClusterSize() uint32 {
	return v.BytesPerSec * v.SecPerClus
}

// ClusterByteOffset returns the byte offset of data cluster c within the
// image. Data clusters are numbered from 2; callers must not pass the
// reserved cluster numbers 0 and 1.
func (v *Volume) ClusterByteOffset(c uint16) uint64 {
	sector := uint64(v.part.LBAStart) + uint64(v.DataStart) + uint64(c-2)*uint64(v.SecPerClus)
	return sector * uint64(v.BytesPerSec)
}

// clusterSlice returns the raw bytes of data cluster c.
func (v *Volume) clusterSlice(c uint16) ([]byte, error) {
	if c < 2 {
		return nil, fmt.Errorf("%w: data cluster %d (clusters are numbered from 2)", ErrInvalidCluster, c)
	}
	return v.img.Slice(v.ClusterByteOffset(c), uint64(v.ClusterSize()))
}

// ClusterInImage reports whether the full byte range of data cluster c
// lies within the image.
func (v *Volume) ClusterInImage(c uint16) bool {
	_, err := v.clusterSlice(c)
	return err == nil
}

// Summary writes the partition, layout and BPB overview shown by the
// "mbr" prompt command.
func (v *Volume) Summary(w io.Writer) {
	fmt.Fprintf(w, "MBR: selected partition %d type=0x%02x startLBA=%d sectors=%d\n",
		v.part.Index, uint8(v.part.Type), v.part.LBAStart, v.part.LBACount)
	fmt.Fprintf(w, "Derived: dataSectors=%d clusterCount=%d\n", v.DataSectors, v.Clusters)
	fmt.Fprintf(w, "Layout (relative to partition): FATStart=%d RootStart=%d DataStart=%d RootDirSectors=%d\n",
		v.FATStart, v.RootStart, v.DataStart, v.RootDirSectors)
	fmt.Fprintf(w, "BPB: bytes/sec=%d sec/clus=%d rsvd=%d fats=%d rootEnt=%d fatsz=%d totsec=%d\n",
		v.BytesPerSec, v.SecPerClus, v.RsvdSecCnt, v.NumFATs, v.RootEntCnt, v.FATSz16, v.TotSec)
}

// NormalizeVolumePath checks if a given path is a Windows volume path
// and normalizes it to \\.\C: format if running on Windows.
// Otherwise, returns the path unchanged.
func NormalizeVolumePath(path string) string {
	if runtime.GOOS != "windows" {
		return path // Only normalize on Windows
	}

	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, "/", `\`)
	upper := strings.ToUpper(path)

	// Already a raw volume path like \\.\C:
	if strings.HasPrefix(upper, `\\.\`) {
		return upper
	}

	// Handle paths like "C:" or "C:\" (must be drive letter only)
	if len(upper) >= 2 && upper[1] == ':' && unicode.IsLetter(rune(upper[0])) {
		// Normalize to \\.\C:
		return `\\.\` + strings.ToUpper(string(upper[0])) + `:`
	}

	return path // Not a volume path
}
