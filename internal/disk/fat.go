package disk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// File/Directory Entry Flags
const (
	DELETED_FLAG = 0xE5 // Marks a file/directory as deleted when in name[0]
	KANJI_ESCAPE = 0x05 // Stored in name[0] when the real first byte is 0xE5
)

// File/Directory Attributes (bit flags)
const (
	ATTR_RO     = 1  // Read-only
	ATTR_HIDDEN = 2  // Hidden
	ATTR_SYS    = 4  // System file
	ATTR_VOLUME = 8  // Volume label entry
	ATTR_DIR    = 16 // Directory
	ATTR_ARCH   = 32 // Archive bit
)

// ATTR_EXT marks a long-file-name fragment when it is the whole attribute byte.
const ATTR_EXT = ATTR_RO | ATTR_HIDDEN | ATTR_SYS | ATTR_VOLUME

// FAT16 chain markers. Entries 0 and 1 of the FAT are reserved; data
// clusters are numbered from 2. Any entry value >= FAT16_EOC terminates a
// chain; exactly FAT16_BAD flags an unusable cluster.
const (
	FAT16_BAD = 0xFFF7
	FAT16_EOC = 0xFFF8
)

// FATBootSectorSize is the size of the FAT boot sector holding the BPB.
const FATBootSectorSize = 0x200 // 512 bytes

// FATBootSector represents the FAT16 partition boot sector together with
// its BIOS Parameter Block. Field order matches the on-disk layout; the
// struct is decoded from the raw sector with binary.Read, so all
// multi-byte fields are read little-endian regardless of host order.
type FATBootSector struct {
	Jmp        [3]byte  // 0x00 Boot strap short or near jump
	OEMName    [8]byte  // 0x03 OEM name/version
	SectorSize uint16   // 0x0B Bytes per logical sector
	SecPerClus uint8    // 0x0D Sectors/cluster
	RsvdSecCnt uint16   // 0x0E Reserved sectors
	NumFATs    uint8    // 0x10 Number of FATs
	RootEntCnt uint16   // 0x11 Root directory entries
	TotSec16   uint16   // 0x13 Number of sectors, if it fits 16 bits
	Media      uint8    // 0x15 Media code (unused)
	FATSz16    uint16   // 0x16 Sectors/FAT
	SecPerTrk  uint16   // 0x18 Sectors per track (informational)
	NumHeads   uint16   // 0x1A Number of heads (informational)
	HiddSec    uint32   // 0x1C Hidden sectors (unused)
	TotSec32   uint32   // 0x20 Total number of sectors, if TotSec16 == 0
	DrvNum     uint8    // 0x24 Drive number
	Reserved1  uint8    // 0x25 Reserved
	BootSig    uint8    // 0x26 Extended boot signature (0x29)
	VolID      [4]byte  // 0x27 Volume serial number
	VolLab     [11]byte // 0x2B Volume label
	FilSysType [8]byte  // 0x36 Filesystem type ("FAT16   ")

	// Rest of the boot sector padding and marker
	BootCode [448]byte // 0x3E Boot code padding
	Marker   uint16    // 0x1FE Boot sector signature (0xAA55)
}

// ReadFATBootSector decodes a raw 512-byte partition boot sector.
// The 0xAA55 marker is not enforced here: layout validation is the job of
// BuildVolume, and plenty of hand-built FAT16 images in the wild omit the
// marker while still carrying a usable BPB.
func ReadFATBootSector(data []byte) (*FATBootSector, error) {
	if len(data) != FATBootSectorSize {
		return nil, fmt.Errorf("%w: expected %d byte boot sector, got %d bytes",
			ErrBPBInvalid, FATBootSectorSize, len(data))
	}

	var bs FATBootSector
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &bs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBPBInvalid, err)
	}
	return &bs, nil
}

func fat16IsEOC(v uint16) bool {
	return v >= FAT16_EOC
}

// fat16IsTerminal reports whether v cannot be followed as a chain link:
// EOC, the bad-cluster marker, or one of the two reserved cluster numbers.
func fat16IsTerminal(v uint16) bool {
	return v < 2 || v >= FAT16_BAD
}

// FATEntry reads the FAT16 entry for the given cluster number from the
// first FAT. The cluster is not validated against the data region on
// purpose: any FAT slot may be inspected, including the two reserved
// entries. Only the computed byte offset is bounds-checked.
func (v *Volume) FATEntry(cluster uint16) (uint16, error) {
	base := (uint64(v.part.LBAStart) + uint64(v.FATStart)) * uint64(v.BytesPerSec)
	return v.img.ReadU16(base + 2*uint64(cluster))
}

// WalkChain follows the cluster chain starting at start and writes each
// hop in human-readable form. Long chains are elided: the first link is
// printed, then an ellipsis and the final link once the end of chain is
// reached. Chains shorter than three links print no trailing summary.
//
// Start clusters below 2 and clusters holding a directory produce no
// output; directory chains are rendered by WalkDir instead.
//
// Termination is guaranteed for adversarial FATs: Floyd's tortoise-and-hare
// runs over the chain, with the hare refusing to advance past a terminal
// value so it cannot wrap into a false cycle. A detected cycle, a bad
// cluster marker, or a reserved cluster number mid-chain is reported on w
// and returned as the matching sentinel error.
func (v *Volume) WalkChain(w io.Writer, start uint16) error {
	if start < 2 {
		return nil
	}
	if v.LooksLikeDirectory(start) {
		return nil
	}

	tortoise, hare := start, start
	cur := start

	for n := 0; ; n++ {
		next, err := v.FATEntry(cur)
		if err != nil {
			return err
		}

		if n == 0 && next < FAT16_EOC {
			fmt.Fprintf(w, "  FAT[%d] = 0x%04x\n", cur, next)
		}

		if fat16IsEOC(next) {
			if n > 2 {
				fmt.Fprintf(w, "  ...\n")
				fmt.Fprintf(w, "  FAT[%d] = 0x%04x [EOC]\n", cur, next)
			}
			return nil
		}
		if next >= FAT16_BAD {
			fmt.Fprintf(w, "  bad cluster marker 0x%04x at FAT[%d]\n", next, cur)
			return fmt.Errorf("%w: FAT[%d] = 0x%04x", ErrBadCluster, cur, next)
		}
		if next < 2 {
			fmt.Fprintf(w, "  invalid next cluster %d at FAT[%d]\n", next, cur)
			return fmt.Errorf("%w: FAT[%d] = %d", ErrInvalidCluster, cur, next)
		}

		tortoise = next

		// Two hare steps per tortoise step. The hare stops advancing the
		// moment it holds a terminal value.
		for i := 0; i < 2 && !fat16IsTerminal(hare); i++ {
			hare, err = v.FATEntry(hare)
			if err != nil {
				return err
			}
		}
		if hare == tortoise && !fat16IsTerminal(hare) {
			fmt.Fprintf(w, "  corrupted chain: cycle detected at cluster %d\n", hare)
			return fmt.Errorf("%w: chains meet at cluster %d", ErrCycleDetected, hare)
		}

		cur = next
	}
}
