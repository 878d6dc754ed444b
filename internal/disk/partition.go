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

import "fmt"

// Partition is the MBR partition table entry selected for inspection,
// reduced to the fields the FAT16 layout math needs.
type Partition struct {
	Index    int          // Position in the MBR partition table (0..3)
	Type     MBRPartition // Partition type ID
	LBAStart uint32       // First sector of the partition, in 512-byte LBAs
	LBACount uint32       // Number of sectors in the partition
}

// SelectFAT16Partition scans the MBR partition table in index order and
// returns the first entry with a FAT16 type and a nonzero start LBA and
// sector count. Entries of any other type are ignored.
func SelectFAT16Partition(mbr *MBR) (Partition, error) {
	for i, e := range mbr.PartitionEntries {
		lbaStart := e.ReadStartLBA()
		lbaCount := e.ReadTotalSectors()

		if e.PartitionType.IsFAT16() && lbaStart != 0 && lbaCount != 0 {
			return Partition{
				Index:    i,
				Type:     e.PartitionType,
				LBAStart: lbaStart,
				LBACount: lbaCount,
			}, nil
		}
	}
	return Partition{}, fmt.Errorf("%w: scanned %d entries", ErrNoFAT16, len(mbr.PartitionEntries))
}
