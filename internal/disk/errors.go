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

import "errors"

// Setup errors are fatal to an inspection session; the remaining kinds are
// recoverable at the command boundary.
var (
	ErrMBRInvalid = errors.New("invalid MBR")
	ErrNoFAT16    = errors.New("no FAT16 partition entry found in MBR")
	ErrBPBInvalid = errors.New("invalid BPB")

	ErrOutOfBounds    = errors.New("offset out of image bounds")
	ErrBadCluster     = errors.New("bad cluster marker in chain")
	ErrInvalidCluster = errors.New("invalid cluster")
	ErrCycleDetected  = errors.New("cycle detected in cluster chain")
	ErrChainTooLong   = errors.New("cluster chain exceeds volume cluster count")
)

// IsSetupError reports whether err makes the whole session unusable,
// as opposed to aborting a single command.
func IsSetupError(err error) bool {
	return errors.Is(err, ErrMBRInvalid) ||
		errors.Is(err, ErrNoFAT16) ||
		errors.Is(err, ErrBPBInvalid)
}
