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

// Package streamdescriptor builds and parses the manifest that binds a
// stream's ordered blob list into one content address: the canonical
// JSON "stream descriptor blob", its stream hash, and its sd_hash.
package streamdescriptor

import (
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/lbryio/streamcore/pkg/blobinfo"
	"github.com/lbryio/streamcore/pkg/common"
)

// streamType is the fixed "stream_type" discriminator carried by every
// descriptor this core produces; it exists on the wire purely so a
// future, differently-shaped descriptor can be told apart from this one.
const streamType = "lbryfile"

// StreamDescriptor is the manifest for one stream: its name, the AES key
// every blob was encrypted under, and its ordered blob list, bound
// together by stream_hash. sd_hash is only meaningful once the
// descriptor has been (or is about to be) serialized to a blob.
type StreamDescriptor struct {
	StreamName        string
	SuggestedFileName string
	Key               common.AESKey
	Blobs             []*blobinfo.BlobInfo
	StreamHash        common.Hash
}

// New constructs a StreamDescriptor from its parts and computes
// StreamHash immediately; the hash is part of construction, never
// recomputed implicitly afterward. blobs must already be sorted by
// BlobNum with the terminator last — callers that build blobs
// concurrently (pkg/streamassembler) are responsible for the ordering.
func New(streamName, suggestedFileName string, key common.AESKey, blobs []*blobinfo.BlobInfo) (*StreamDescriptor, error) {
	if len(blobs) == 0 {
		return nil, ErrEmptyBlobList
	}
	if err := validateBlobOrder(blobs); err != nil {
		return nil, err
	}

	d := &StreamDescriptor{
		StreamName:        streamName,
		SuggestedFileName: suggestedFileName,
		Key:               key,
		Blobs:             blobs,
	}
	d.StreamHash = computeStreamHash(d)
	return d, nil
}

// validateBlobOrder enforces the same invariants New's caller is
// expected to have already established, defensively: blob_num values
// are 0..N contiguous, exactly the last entry is the terminator.
func validateBlobOrder(blobs []*blobinfo.BlobInfo) error {
	for i, b := range blobs {
		if b.BlobNum != i {
			return &InvalidStreamDescriptorError{Reason: ReasonMissingTerminator}
		}
		isLast := i == len(blobs)-1
		if b.IsTerminator() != isLast {
			if isLast {
				return &InvalidStreamDescriptorError{Reason: ReasonMissingTerminator}
			}
			return &InvalidStreamDescriptorError{Reason: ReasonZeroLengthData}
		}
	}
	return nil
}

// Terminator returns the final, zero-length entry of Blobs.
func (d *StreamDescriptor) Terminator() *blobinfo.BlobInfo {
	return d.Blobs[len(d.Blobs)-1]
}

// ToCanonical renders the descriptor as the sorted-key, no-whitespace
// JSON object the network agrees on. Go's encoding/json sorts the keys
// of a map[string]any automatically when marshaling, which is what
// gives us "sorted keys" for free at every nesting level without a
// hand-rolled encoder.
func (d *StreamDescriptor) ToCanonical() map[string]any {
	blobs := make([]map[string]any, len(d.Blobs))
	for i, b := range d.Blobs {
		blobs[i] = b.ToCanonical()
	}
	return map[string]any{
		"stream_type":         streamType,
		"stream_name":         hexUTF8(d.StreamName),
		"suggested_file_name": hexUTF8(d.SuggestedFileName),
		"key":                 d.Key.Hex(),
		"stream_hash":         d.StreamHash.Hex(),
		"blobs":               blobs,
	}
}

// Marshal renders the canonical JSON bytes of the descriptor: the exact
// content of the stream descriptor blob on disk.
func (d *StreamDescriptor) Marshal() ([]byte, error) {
	return json.Marshal(d.ToCanonical())
}

// SDHash is the content address of the canonical JSON form: the name
// under which the stream descriptor blob itself is stored.
func (d *StreamDescriptor) SDHash() (common.Hash, error) {
	b, err := d.Marshal()
	if err != nil {
		return common.Hash{}, err
	}
	return sumHash(b), nil
}

func hexUTF8(s string) string {
	return hex.EncodeToString([]byte(s))
}

// SortBlobsByNum is used by assemblers that collect BlobInfo out of
// order (e.g. from concurrent workers) before handing them to New.
func SortBlobsByNum(blobs []*blobinfo.BlobInfo) {
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].BlobNum < blobs[j].BlobNum })
}
