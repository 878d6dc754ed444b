package mmap

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// MmapFile represents a read-only memory-mapped file region.
type MmapFile struct {
	Data     []byte   // The memory-mapped byte slice
	File     *os.File // The underlying opened file
	FileSize int      // Total size of the underlying file
}

// NewMmapFile maps the whole of the file or raw disk device at filePath
// read-only. Mapping a raw device (e.g. /dev/sda) usually requires root
// privileges.
func NewMmapFile(filePath string) (*MmapFile, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	// Seeking to the end yields the size of block devices too, whose
	// Stat size is zero.
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get size of %q: %w", filePath, err)
	}
	fileSize := int(size)

	if fileSize == 0 {
		f.Close()
		return nil, fmt.Errorf("file %q is empty, cannot mmap", filePath)
	}

	// PROT_READ: pages may only be read; the inspector never writes.
	// MAP_PRIVATE: the mapping is ours alone and carries no changes back.
	data, err := unix.Mmap(int(f.Fd()), 0, fileSize, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap file %q (%d bytes): %w", filePath, fileSize, err)
	}

	return &MmapFile{
		Data:     data,
		File:     f,
		FileSize: fileSize,
	}, nil
}

// Close unmaps the memory region and closes the underlying file.
func (mr *MmapFile) Close() error {
	var err error
	if mr.Data != nil {
		err = unix.Munmap(mr.Data)
		if err != nil {
			return fmt.Errorf("failed to munmap: %w", err)
		}
		mr.Data = nil // Clear the reference to the unmapped memory
	}

	if mr.File != nil {
		closeErr := mr.File.Close()
		if closeErr != nil {
			if err != nil { // If munmap also failed, return a combined error
				return fmt.Errorf("failed to munmap (%w) and close file (%v)", err, closeErr)
			}
			return fmt.Errorf("failed to close file: %w", closeErr)
		}
		mr.File = nil
	}
	return nil
}
