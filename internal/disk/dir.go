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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DirEntrySize is the fixed size of an on-disk directory record.
//
// Record layout: name(11) attr(1) ntres(1) crtTimeTenths(1) crtTime(2)
// crtDate(2) lstAccDate(2) fstClusHi(2) wrtTime(2) wrtDate(2) fstClusLo(2)
// fileSize(4), all multi-byte fields little-endian. The high cluster word
// is always zero on FAT16 and is ignored.
const DirEntrySize = 32

// DirEntry is a decoded live directory record. Timestamps are not carried;
// the inspector has no use for them.
type DirEntry struct {
	Name      [11]byte // raw 8.3 name, space-padded
	Attr      uint8
	FstClusLo uint16
	FileSize  uint32
}

func decodeDirEntry(rec []byte) DirEntry {
	var e DirEntry
	copy(e.Name[:], rec[0:11])
	e.Attr = rec[11]
	e.FstClusLo = binary.LittleEndian.Uint16(rec[26:28])
	e.FileSize = binary.LittleEndian.Uint32(rec[28:32])
	return e
}

// IsDir reports whether the entry names a subdirectory.
func (e *DirEntry) IsDir() bool {
	return e.Attr&ATTR_DIR != 0
}

// DisplayName returns the decoded 8.3 name, with a " (DIR)" marker for
// extensionless subdirectories.
func (e *DirEntry) DisplayName() string {
	return Format83(e.Name[:], e.IsDir())
}

// BaseName returns the decoded 8.3 name without any directory marker,
// suitable for use as a path component.
func (e *DirEntry) BaseName() string {
	return Format83(e.Name[:], false)
}

// Format83 decodes a raw 11-byte 8.3 name: an 8-byte stem and a 3-byte
// extension, each padded right with spaces. A stored first byte of 0x05
// denotes a real 0xE5. Extensionless directory names are suffixed with
// " (DIR)", except for the "." and ".." entries.
func Format83(name11 []byte, isDir bool) string {
	stem := strings.TrimRight(string(name11[:8]), " ")
	ext := strings.TrimRight(string(name11[8:11]), " ")

	if len(stem) > 0 && stem[0] == KANJI_ESCAPE {
		stem = string(byte(DELETED_FLAG)) + stem[1:]
	}

	if ext != "" {
		return stem + "." + ext
	}
	if isDir && !strings.HasPrefix(stem, ".") {
		return stem + " (DIR)"
	}
	return stem
}

// forEachEntry decodes up to count fixed-size records from recs, invoking
// fn for each live entry. Deleted records, long-file-name fragments and
// volume labels are skipped. The returned bool is true once the
// end-of-directory sentinel has been seen; no further record of the
// directory, in this or any later cluster, may be read past it.
func forEachEntry(recs []byte, count int, fn func(e DirEntry) error) (bool, error) {
	for i := 0; i < count; i++ {
		rec := recs[i*DirEntrySize : (i+1)*DirEntrySize]

		if rec[0] == 0x00 { // end marker
			return true, nil
		}
		if rec[0] == DELETED_FLAG { // deleted
			continue
		}
		if rec[11] == ATTR_EXT { // lfn fragment
			continue
		}
		if rec[11]&ATTR_VOLUME != 0 { // volume label
			continue
		}

		if err := fn(decodeDirEntry(rec)); err != nil {
			return false, err
		}
	}
	return false, nil
}

// ListDir returns the live entries of a directory. Cluster 0 denotes the
// fixed root directory region; any cluster >= 2 is walked as a
// subdirectory chain, advancing through the FAT and stopping on a
// terminal entry. The walk visits at most clusters+1 clusters, so it
// terminates even when the FAT encodes a loop.
func (v *Volume) ListDir(cluster uint16) ([]DirEntry, error) {
	var entries []DirEntry
	collect := func(e DirEntry) error {
		entries = append(entries, e)
		return nil
	}

	if cluster == 0 {
		// The root region is addressed in raw 512-byte LBAs, like the
		// partition start. See DESIGN.md on this asymmetry.
		rootOff := (uint64(v.part.LBAStart) + uint64(v.RootStart)) * MBRSize
		recs, err := v.img.Slice(rootOff, uint64(v.RootEntCnt)*DirEntrySize)
		if err != nil {
			return nil, err
		}
		_, err = forEachEntry(recs, int(v.RootEntCnt), collect)
		return entries, err
	}
	if cluster < 2 {
		return nil, fmt.Errorf("%w: directory cluster %d", ErrInvalidCluster, cluster)
	}

	recsPerCluster := int(v.ClusterSize()) / DirEntrySize
	cur := cluster

	for steps := uint32(0); ; steps++ {
		if steps > v.Clusters {
			return nil, fmt.Errorf("%w: directory started at cluster %d", ErrChainTooLong, cluster)
		}

		recs, err := v.clusterSlice(cur)
		if err != nil {
			return nil, err
		}
		done, err := forEachEntry(recs, recsPerCluster, collect)
		if err != nil {
			return nil, err
		}
		if done {
			return entries, nil
		}

		next, err := v.FATEntry(cur)
		if err != nil {
			return nil, err
		}
		if fat16IsTerminal(next) {
			return entries, nil
		}
		cur = next
	}
}

// WalkRootDir lists the root directory, printing one summary line per
// entry followed by the FAT chain of the entry's start cluster.
func (v *Volume) WalkRootDir(w io.Writer) error {
	fmt.Fprintln(w, "root scan:")
	return v.walkDirEntries(w, 0)
}

// WalkDir lists the subdirectory spanning the cluster chain that starts
// at cluster, in the same format as WalkRootDir.
func (v *Volume) WalkDir(w io.Writer, cluster uint16) error {
	if cluster < 2 {
		return fmt.Errorf("%w: directory cluster %d", ErrInvalidCluster, cluster)
	}
	fmt.Fprintf(w, "directory scan of cluster %d:\n", cluster)
	return v.walkDirEntries(w, cluster)
}

func (v *Volume) walkDirEntries(w io.Writer, cluster uint16) error {
	entries, err := v.ListDir(cluster)
	if err != nil {
		return err
	}

	for i := range entries {
		e := &entries[i]
		fmt.Fprintf(w, "%-12s clus=%d size=%d attr=%02x\n",
			e.DisplayName(), e.FstClusLo, e.FileSize, e.Attr)

		// Chain corruption under one entry is reported inline by
		// WalkChain and must not stop the listing; a failed image
		// access does.
		if err := v.WalkChain(w, e.FstClusLo); err != nil && errors.Is(err, ErrOutOfBounds) {
			return err
		}
	}
	return nil
}

// LooksLikeDirectory reports whether the cluster plausibly holds a
// directory: every FAT16 subdirectory cluster begins with the "." and
// ".." entries, so the probe checks the first two records for a leading
// '.' with the directory attribute bit. Clusters whose byte range falls
// outside the image are never directory-like.
func (v *Volume) LooksLikeDirectory(cluster uint16) bool {
	if cluster < 2 {
		return false
	}
	recs, err := v.clusterSlice(cluster)
	if err != nil {
		return false
	}

	for i := 0; i < 2; i++ {
		rec := recs[i*DirEntrySize : (i+1)*DirEntrySize]
		if rec[0] == '.' && rec[11]&ATTR_DIR != 0 {
			return true
		}
	}
	return false
}
