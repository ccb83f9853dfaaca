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

// Package blobfile turns one plaintext chunk into one content-addressed,
// AES-CBC encrypted blob on disk, and back again. It knows nothing about
// streams, manifests, or the descriptor format — pkg/streamassembler
// drives it one chunk at a time and pkg/streamdescriptor gives meaning to
// the sequence of blobs it produces.
package blobfile

import (
	"crypto/aes"
	"errors"
	"io"
	"os"

	"github.com/lbryio/streamcore/pkg/common"
	"github.com/lbryio/streamcore/pkg/streamhash"
)

// MaxBlobSize is the hard ceiling on an encrypted blob's size on disk.
// Plaintext chunks are capped one byte short of it (MaxPlaintextSize) so
// that after PKCS#7 padding the ciphertext never exceeds MaxBlobSize, and
// so a real data blob's length can never collide with the zero-length
// terminator.
const MaxBlobSize = 2097152

// MaxPlaintextSize is the largest plaintext chunk CreateFromUnencrypted
// will accept.
const MaxPlaintextSize = MaxBlobSize - 1

// Written describes a blob that was just created on disk.
type Written struct {
	BlobNum int
	Length  int
	IV      common.AESIV
	Hash    common.Hash
}

// CreateFromUnencrypted reads one plaintext chunk, AES-128-CBC encrypts
// it under key/iv, and writes the ciphertext to blobDir under a name
// derived from the ciphertext's own SHA-384 digest. If a blob with that
// hash already exists, the newly-encrypted bytes are discarded — the two
// chunks are byte-identical, so the existing file already holds them.
func CreateFromUnencrypted(blobDir string, key common.AESKey, iv common.AESIV, plaintext io.Reader, blobNum int) (*Written, error) {
	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, errors.Join(ErrCryptoFailure, err)
	}

	scratch, err := newPlaintextScratch()
	if err != nil {
		return nil, err
	}
	defer scratch.Close()

	n, err := io.Copy(scratch, io.LimitReader(plaintext, MaxPlaintextSize+1))
	if err != nil {
		return nil, err
	}
	if n > MaxPlaintextSize {
		return nil, ErrPlaintextTooLarge
	}

	rc, err := scratch.Done()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if err := os.MkdirAll(blobDir, 0o755); err != nil {
		return nil, errors.Join(ErrDiskFull, err)
	}

	tempFile, err := os.CreateTemp(blobDir, ".blob-*.tmp")
	if err != nil {
		return nil, errors.Join(ErrDiskFull, err)
	}
	tempName := tempFile.Name()
	removeTemp := true
	defer func() {
		if removeTemp {
			os.Remove(tempName)
		}
	}()

	hasher, err := streamhash.New()
	if err != nil {
		return nil, err
	}

	written, err := encryptCBCStream(block, iv.Bytes(), rc, io.MultiWriter(tempFile, hasher))
	if err != nil {
		tempFile.Close()
		return nil, errors.Join(ErrDiskFull, err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return nil, errors.Join(ErrDiskFull, err)
	}
	if err := tempFile.Close(); err != nil {
		return nil, errors.Join(ErrDiskFull, err)
	}

	hash, err := common.HashFromBytes(hasher.Digest())
	if err != nil {
		return nil, err
	}

	finalPath := pathFor(blobDir, hash)
	if err := os.MkdirAll(dirFor(blobDir, hash), 0o755); err != nil {
		return nil, errors.Join(ErrDiskFull, err)
	}

	if _, err := os.Stat(finalPath); err == nil {
		// Another create (possibly for a different blobNum whose content
		// happens to be identical, or a concurrent retry) already wrote
		// this exact ciphertext. Nothing further to do.
		return &Written{BlobNum: blobNum, Length: int(written), IV: iv, Hash: hash}, nil
	}

	if err := os.Rename(tempName, finalPath); err != nil {
		return nil, errors.Join(ErrDiskFull, err)
	}
	removeTemp = false

	return &Written{BlobNum: blobNum, Length: int(written), IV: iv, Hash: hash}, nil
}

// Open opens a previously written blob's ciphertext for reading. The name
// itself is untrusted until the caller has read the content and checked it
// against hash (Decrypt does this for encrypted blobs; callers reading a
// blob whose content is hashed directly, such as an SD blob, must do the
// same).
func Open(blobDir string, hash common.Hash) (io.ReadCloser, error) {
	path := pathFor(blobDir, hash)
	fl, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fl, nil
}

// Decrypt reads a blob's ciphertext from blobDir, verifies it against
// hash, decrypts it under key/iv, and writes the recovered plaintext to w.
func Decrypt(blobDir string, hash common.Hash, key common.AESKey, iv common.AESIV, w io.Writer) error {
	rc, err := Open(blobDir, hash)
	if err != nil {
		return err
	}
	defer rc.Close()

	hasher, err := streamhash.New()
	if err != nil {
		return err
	}

	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return errors.Join(ErrCryptoFailure, err)
	}

	scratch, err := newPlaintextScratch()
	if err != nil {
		return err
	}
	defer scratch.Close()

	ciphertext := io.TeeReader(rc, hasher)
	if err := decryptCBCStream(block, iv.Bytes(), ciphertext, scratch); err != nil {
		return errors.Join(ErrValidationFailed, err)
	}

	got, err := common.HashFromBytes(hasher.Digest())
	if err != nil {
		return err
	}
	if !got.Equal(hash) {
		return ErrValidationFailed
	}

	plain, err := scratch.Done()
	if err != nil {
		return err
	}
	defer plain.Close()

	if _, err := io.Copy(w, plain); err != nil {
		return err
	}
	return nil
}
