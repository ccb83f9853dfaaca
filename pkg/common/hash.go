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

// Package common holds the small value types shared by every layer of the
// stream core: content hashes and the AES key/IV pairs used to encrypt
// blobs.
package common

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"

	base58 "github.com/jbenet/go-base58"
)

// HashSize is the digest size of the network's content-addressing hash
// (SHA-384), in bytes.
const HashSize = 48

var ErrInvalidHash = errors.New("invalid content hash")

// Hash is a 384-bit content address, rendered on the wire as 96 lowercase
// hex characters.
type Hash [HashSize]byte

// HashFromBytes wraps a raw digest. The slice must be exactly HashSize bytes.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, ErrInvalidHash
	}
	copy(h[:], b)
	return h, nil
}

// HashFromHex decodes a 96-character lowercase hex digest.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != HashSize {
		return Hash{}, ErrInvalidHash
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// Hex renders the hash as lowercase hex, the form used in the stream
// descriptor and in blob file names.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Base58 renders the hash in base58 for short, operator-friendly display
// only — it has no role in content addressing or in any hash computation.
func (h Hash) Base58() string {
	return base58.Encode(h[:])
}

func (h Hash) Bytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}

func (h Hash) Equal(o Hash) bool {
	return subtle.ConstantTimeCompare(h[:], o[:]) == 1
}

func (h Hash) String() string { return h.Hex() }
