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
	"errors"
	"fmt"
	"io"
)

// ChainReader serves the content of a file as an io.ReaderAt. The FAT
// chain is resolved once, at construction time, into a flat list of
// cluster byte offsets; reads after that touch only the image. At most
// clusters+1 links are followed, so construction terminates even when
// the FAT encodes a loop.
type ChainReader struct {
	vol     *Volume
	size    int64
	extents []uint64 // byte offset of each chain cluster, in order
}

// NewChainReader resolves the chain starting at start, covering size
// bytes. A chain that ends before covering size truncates the reader to
// the bytes actually reachable.
func NewChainReader(v *Volume, start uint16, size uint32) (*ChainReader, error) {
	clusterSize := uint64(v.ClusterSize())
	need := (uint64(size) + clusterSize - 1) / clusterSize

	extents := make([]uint64, 0, need)
	cur := start
	for uint64(len(extents)) < need {
		if uint32(len(extents)) > v.Clusters {
			return nil, fmt.Errorf("%w: file chain started at cluster %d", ErrChainTooLong, start)
		}
		if cur < 2 {
			return nil, fmt.Errorf("%w: cluster %d in file chain", ErrInvalidCluster, cur)
		}
		if !v.ClusterInImage(cur) {
			return nil, fmt.Errorf("%w: cluster %d beyond end of image", ErrOutOfBounds, cur)
		}
		extents = append(extents, v.ClusterByteOffset(cur))

		next, err := v.FATEntry(cur)
		if err != nil {
			return nil, err
		}
		if fat16IsEOC(next) {
			break
		}
		if next >= FAT16_BAD {
			return nil, fmt.Errorf("%w: FAT[%d] = 0x%04x", ErrBadCluster, cur, next)
		}
		cur = next
	}

	if got := uint64(len(extents)) * clusterSize; got < uint64(size) {
		size = uint32(got)
	}
	return &ChainReader{vol: v, size: int64(size), extents: extents}, nil
}

// Size returns the number of readable bytes.
func (r *ChainReader) Size() int64 {
	return r.size
}

// ReadAt implements io.ReaderAt over the resolved chain.
func (r *ChainReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("chainreader: negative read offset")
	}
	if off >= r.size {
		return 0, io.EOF
	}

	clusterSize := int64(r.vol.ClusterSize())

	n := 0
	for n < len(p) && off < r.size {
		idx := off / clusterSize
		within := off % clusterSize

		avail := clusterSize - within
		if rem := r.size - off; avail > rem {
			avail = rem
		}
		if want := int64(len(p) - n); avail > want {
			avail = want
		}

		data, err := r.vol.img.Slice(r.extents[idx]+uint64(within), uint64(avail))
		if err != nil {
			return n, err
		}
		copy(p[n:], data)

		n += int(avail)
		off += avail
	}

	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
