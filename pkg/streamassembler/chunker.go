/*
Copyright © 2022 Bartłomiej Święcki (byo)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package streamassembler

import (
	"bufio"
	"bytes"
	"io"

	"github.com/lbryio/streamcore/pkg/blobfile"
)

// chunker splits a source into blobfile.MaxPlaintextSize-byte pieces. It
// never hands back a zero-length chunk — a source of exactly N *
// MaxPlaintextSize bytes yields exactly N chunks, not N+1.
type chunker struct {
	r   *bufio.Reader
	buf []byte
}

func newChunker(r io.Reader) *chunker {
	return &chunker{
		r:   bufio.NewReaderSize(r, blobfile.MaxPlaintextSize),
		buf: make([]byte, blobfile.MaxPlaintextSize),
	}
}

// next reads the next chunk. ok is false once the source is exhausted.
func (c *chunker) next() (chunk *bytes.Reader, ok bool, err error) {
	n, err := io.ReadFull(c.r, c.buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, false, err
	}
	if n == 0 {
		return nil, false, nil
	}
	out := make([]byte, n)
	copy(out, c.buf[:n])
	return bytes.NewReader(out), true, nil
}
