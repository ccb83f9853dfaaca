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
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
)

// encryptCBCStream AES-CBC encrypts r under block/iv, applying PKCS#7
// padding to the final block, and writes the ciphertext to w as it goes
// rather than buffering the whole blob in memory. Returns the ciphertext
// length written.
func encryptCBCStream(block cipher.Block, iv []byte, r io.Reader, w io.Writer) (int64, error) {
	mode := cipher.NewCBCEncrypter(block, iv)

	var written int64
	pending := make([]byte, 0, 2*aes.BlockSize)
	readBuf := make([]byte, 32*1024)
	eof := false

	for !eof {
		n, err := r.Read(readBuf)
		if n > 0 {
			pending = append(pending, readBuf[:n]...)
		}
		if err == io.EOF {
			eof = true
		} else if err != nil {
			return written, err
		}

		for len(pending) >= aes.BlockSize {
			// Once EOF has been seen, leave a final full block for the
			// padding pass below, which encrypts it together with its
			// padding block.
			if eof && len(pending) == aes.BlockSize {
				break
			}
			ciphertext := make([]byte, aes.BlockSize)
			mode.CryptBlocks(ciphertext, pending[:aes.BlockSize])
			if _, werr := w.Write(ciphertext); werr != nil {
				return written, werr
			}
			written += aes.BlockSize
			pending = pending[aes.BlockSize:]
		}

		if eof {
			padded := pkcs7Pad(pending, aes.BlockSize)
			ciphertext := make([]byte, len(padded))
			mode.CryptBlocks(ciphertext, padded)
			if _, werr := w.Write(ciphertext); werr != nil {
				return written, werr
			}
			written += int64(len(ciphertext))
		}
	}

	return written, nil
}

// decryptCBCStream is the inverse of encryptCBCStream: it AES-CBC decrypts
// r under block/iv, strips PKCS#7 padding from the final block, and
// writes the recovered plaintext to w.
func decryptCBCStream(block cipher.Block, iv []byte, r io.Reader, w io.Writer) error {
	mode := cipher.NewCBCDecrypter(block, iv)

	pending := make([]byte, 0, 2*aes.BlockSize)
	readBuf := make([]byte, 32*1024)
	eof := false

	for !eof {
		n, err := r.Read(readBuf)
		if n > 0 {
			pending = append(pending, readBuf[:n]...)
		}
		if err == io.EOF {
			eof = true
		} else if err != nil {
			return err
		}

		if eof && len(pending)%aes.BlockSize != 0 {
			return fmt.Errorf("blobfile: ciphertext length %d is not a multiple of the block size", len(pending))
		}

		for len(pending) >= 2*aes.BlockSize {
			plaintext := make([]byte, aes.BlockSize)
			mode.CryptBlocks(plaintext, pending[:aes.BlockSize])
			if _, werr := w.Write(plaintext); werr != nil {
				return werr
			}
			pending = pending[aes.BlockSize:]
		}

		if eof {
			if len(pending) != aes.BlockSize {
				// Empty ciphertext decrypts to nothing; anything else
				// malformed is an empty stream and is not an error here —
				// callers validate length invariants separately.
				break
			}
			lastBlock := make([]byte, aes.BlockSize)
			mode.CryptBlocks(lastBlock, pending)
			unpadded, perr := pkcs7Unpad(lastBlock, aes.BlockSize)
			if perr != nil {
				return perr
			}
			if _, werr := w.Write(unpadded); werr != nil {
				return werr
			}
		}
	}

	return nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	length := len(data)
	if length == 0 || length%blockSize != 0 {
		return nil, fmt.Errorf("blobfile: invalid padded length %d", length)
	}

	padding := int(data[length-1])
	if padding == 0 || padding > length || padding > blockSize {
		return nil, fmt.Errorf("blobfile: invalid padding size %d", padding)
	}

	if !bytes.Equal(data[length-padding:], bytes.Repeat([]byte{byte(padding)}, padding)) {
		return nil, fmt.Errorf("blobfile: invalid padding pattern")
	}

	return data[:length-padding], nil
}
