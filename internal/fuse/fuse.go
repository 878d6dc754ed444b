//go:build linux
// +build linux

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
package fuse

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/ostafen/fatlens/internal/disk"
)

// FatFS exposes a read-only view of the FAT16 volume tree.
type FatFS struct {
	vol *disk.Volume
}

func (f *FatFS) Root() (fs.Node, error) {
	return &Dir{vol: f.vol, cluster: rootCluster}, nil
}

// rootCluster addresses the fixed root directory region, which has no
// cluster of its own on FAT16.
const rootCluster = 0

// Dir implements both fs.Node and fs.HandleReadDirAller over a directory:
// the root region, or a subdirectory cluster chain.
type Dir struct {
	vol     *disk.Volume
	cluster uint16
}

func (*Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	entries, err := d.vol.ListDir(d.cluster)
	if err != nil {
		return nil, fuse.EIO
	}

	for i := range entries {
		e := &entries[i]
		if isDotEntry(e) || !strings.EqualFold(e.BaseName(), name) {
			continue
		}

		if e.IsDir() {
			return &Dir{vol: d.vol, cluster: e.FstClusLo}, nil
		}
		r, err := disk.NewChainReader(d.vol, e.FstClusLo, e.FileSize)
		if err != nil {
			return nil, fuse.EIO
		}
		return File{r: r}, nil
	}
	return nil, fuse.ENOENT
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := d.vol.ListDir(d.cluster)
	if err != nil {
		return nil, fuse.EIO
	}

	dirEntries := make([]fuse.Dirent, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if isDotEntry(e) {
			continue
		}

		typ := fuse.DT_File
		if e.IsDir() {
			typ = fuse.DT_Dir
		}
		dirEntries = append(dirEntries, fuse.Dirent{
			Name: e.BaseName(),
			Type: typ,
		})
	}

	sort.Slice(dirEntries, func(i, j int) bool {
		return dirEntries[i].Name < dirEntries[j].Name
	})
	for i := range dirEntries {
		dirEntries[i].Inode = uint64(i)
	}
	return dirEntries, nil
}

// isDotEntry filters the "." and ".." records every subdirectory cluster
// begins with; the kernel synthesizes its own.
func isDotEntry(e *disk.DirEntry) bool {
	return e.Name[0] == '.'
}

// File implements both fs.Node and fs.HandleReader, serving bytes through
// the file's resolved cluster chain.
type File struct {
	r *disk.ChainReader
}

func (f File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0444
	a.Size = uint64(f.r.Size())
	return nil
}

func (f File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	size := int(req.Size)
	offset := req.Offset

	if offset >= f.r.Size() {
		// Trying to read past EOF
		resp.Data = []byte{}
		return nil
	}

	// Clamp size if reading near EOF
	if offset+int64(size) > f.r.Size() {
		size = int(f.r.Size() - offset)
	}

	buf := make([]byte, size)

	n, err := f.r.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return err
	}

	resp.Data = buf[:n]
	return nil
}
