/*
Copyright © 2023 Bartłomiej Święcki (byo)

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

package common

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// AESBlockSize is the AES block size in bytes — also the size of the key
// and IV used throughout this core (AES-128-CBC).
const AESBlockSize = 16

var (
	ErrInvalidAESKey = errors.New("invalid AES key")
	ErrInvalidAESIV  = errors.New("invalid AES iv")
)

// AESKey is the 16-byte symmetric key used to encrypt every blob in a
// stream.
type AESKey [AESBlockSize]byte

func AESKeyFromBytes(b []byte) (AESKey, error) {
	var k AESKey
	if len(b) != AESBlockSize {
		return k, ErrInvalidAESKey
	}
	copy(k[:], b)
	return k, nil
}

func AESKeyFromHex(s string) (AESKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return AESKey{}, ErrInvalidAESKey
	}
	return AESKeyFromBytes(b)
}

func (k AESKey) Bytes() []byte {
	out := make([]byte, AESBlockSize)
	copy(out, k[:])
	return out
}

func (k AESKey) Hex() string { return hex.EncodeToString(k[:]) }

func (k AESKey) Equal(o AESKey) bool {
	return subtle.ConstantTimeCompare(k[:], o[:]) == 1
}

// AESIV is the per-blob initialization vector, one AES block wide.
type AESIV [AESBlockSize]byte

func AESIVFromBytes(b []byte) (AESIV, error) {
	var iv AESIV
	if len(b) != AESBlockSize {
		return iv, ErrInvalidAESIV
	}
	copy(iv[:], b)
	return iv, nil
}

func AESIVFromHex(s string) (AESIV, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return AESIV{}, ErrInvalidAESIV
	}
	return AESIVFromBytes(b)
}

func (iv AESIV) Bytes() []byte {
	out := make([]byte, AESBlockSize)
	copy(out, iv[:])
	return out
}

func (iv AESIV) Hex() string { return hex.EncodeToString(iv[:]) }

func (iv AESIV) Equal(o AESIV) bool {
	return subtle.ConstantTimeCompare(iv[:], o[:]) == 1
}
