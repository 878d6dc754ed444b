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

// Image is a read-only view of a raw disk image, typically backed by a
// memory-mapped file. Every access is bounds-checked against the image
// length. Multi-byte fetches assemble bytes explicitly, so no alignment
// is assumed for any offset.
type Image []byte

// Len returns the total image size in bytes.
func (img Image) Len() uint64 {
	return uint64(len(img))
}

// Slice returns the n bytes starting at off.
func (img Image) Slice(off, n uint64) ([]byte, error) {
	if off > img.Len() || n > img.Len()-off {
		return nil, fmt.Errorf("%w: [%d, %d) with image size %d", ErrOutOfBounds, off, off+n, img.Len())
	}
	return img[off : off+n], nil
}

// ReadU8 returns the byte at off.
func (img Image) ReadU8(off uint64) (uint8, error) {
	b, err := img.Slice(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 returns the little-endian uint16 at off.
func (img Image) ReadU16(off uint64) (uint16, error) {
	b, err := img.Slice(off, 2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadU32 returns the little-endian uint32 at off.
func (img Image) ReadU32(off uint64) (uint32, error) {
	b, err := img.Slice(off, 4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}
