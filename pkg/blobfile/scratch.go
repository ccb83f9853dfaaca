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

package blobfile

import (
	"crypto/cipher"
	"crypto/rand"
	"io"
	"os"

	"golang.org/x/crypto/chacha20"
)

// plaintextScratch spools a chunk's worth of source bytes to a temporary
// file while this blob's ciphertext name is still unknown, without ever
// leaving a readable plaintext chunk sitting on disk: the spool itself is
// chacha20-encrypted under a key that lives only in memory. This is
// unrelated to the blob's own AES-CBC cipher — it exists purely so the
// chunk can be re-read once (to drive the CBC encrypter) without holding
// the whole chunk in RAM.
//
// The file is unlinked immediately after creation; on Linux (and other
// POSIX systems) the already-open descriptor keeps working, so nothing
// with a readable plaintext chunk ever appears in the directory listing.
type plaintextScratch struct {
	fl     *os.File
	key    []byte
	nonce  []byte
	writer *cipher.StreamWriter
}

func newPlaintextScratch() (*plaintextScratch, error) {
	var randData [chacha20.KeySize + chacha20.NonceSize]byte
	if _, err := rand.Read(randData[:]); err != nil {
		return nil, err
	}

	tempFile, err := os.CreateTemp("", "streamcore-blob-scratch")
	if err != nil {
		return nil, err
	}

	if err := os.Remove(tempFile.Name()); err != nil {
		tempFile.Close()
		return nil, err
	}

	return &plaintextScratch{
		fl:    tempFile,
		key:   randData[:chacha20.KeySize],
		nonce: randData[chacha20.KeySize:],
	}, nil
}

func (s *plaintextScratch) stream() cipher.Stream {
	stream, _ := chacha20.NewUnauthenticatedCipher(s.key, s.nonce)
	return stream
}

// Write implements io.Writer, encrypting as it spools to the backing file.
func (s *plaintextScratch) Write(p []byte) (int, error) {
	if s.writer == nil {
		s.writer = &cipher.StreamWriter{S: s.stream(), W: s.fl}
	}
	return s.writer.Write(p)
}

// Done finishes writing and returns a reader positioned at the start of
// the spooled (and now decrypted-on-the-fly) bytes.
func (s *plaintextScratch) Done() (io.ReadCloser, error) {
	if _, err := s.fl.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return &scratchReader{fl: s.fl, r: &cipher.StreamReader{S: s.stream(), R: s.fl}}, nil
}

func (s *plaintextScratch) Close() error {
	return s.fl.Close()
}

type scratchReader struct {
	fl *os.File
	r  io.Reader
}

func (r *scratchReader) Read(p []byte) (int, error) { return r.r.Read(p) }
func (r *scratchReader) Close() error               { return r.fl.Close() }
