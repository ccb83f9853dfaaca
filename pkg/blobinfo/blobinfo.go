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

// Package blobinfo holds the plain descriptor record for one blob within
// a stream.
package blobinfo

import "github.com/lbryio/streamcore/pkg/common"

// BlobInfo describes one entry in a stream's ordered blob list. The
// terminator — the last entry of every stream — has Length == 0 and a
// nil BlobHash.
type BlobInfo struct {
	BlobNum  int
	Length   int
	IV       common.AESIV
	BlobHash *common.Hash
}

// New validates and constructs a BlobInfo. blobHash must be nil iff
// length == 0.
func New(blobNum, length int, iv common.AESIV, blobHash *common.Hash) (*BlobInfo, error) {
	if blobNum < 0 {
		return nil, ErrNegativeBlobNum
	}
	if length < 0 {
		return nil, ErrNegativeLength
	}
	if length == 0 && blobHash != nil {
		return nil, ErrUnexpectedBlobHash
	}
	if length != 0 && blobHash == nil {
		return nil, ErrMissingBlobHash
	}
	return &BlobInfo{BlobNum: blobNum, Length: length, IV: iv, BlobHash: blobHash}, nil
}

// IsTerminator reports whether this entry marks the end of the stream.
func (b *BlobInfo) IsTerminator() bool {
	return b.Length == 0
}

// ToCanonical renders the blob as the string-keyed map the canonical JSON
// encoder in pkg/streamdescriptor serializes — keys present here are
// exactly the keys present on the wire, the terminator omitting
// blob_hash entirely rather than encoding it as null.
func (b *BlobInfo) ToCanonical() map[string]any {
	m := map[string]any{
		"blob_num": b.BlobNum,
		"length":   b.Length,
		"iv":       b.IV.Hex(),
	}
	if b.BlobHash != nil {
		m["blob_hash"] = b.BlobHash.Hex()
	}
	return m
}
