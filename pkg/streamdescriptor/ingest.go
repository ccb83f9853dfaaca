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

package streamdescriptor

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/lbryio/streamcore/pkg/blobfile"
	"github.com/lbryio/streamcore/pkg/blobinfo"
	"github.com/lbryio/streamcore/pkg/common"
	"github.com/lbryio/streamcore/pkg/streamhash"
)

// wireBlob mirrors one entry of the "blobs" array on the wire. BlobHash
// is a pointer so its absence (the terminator) round-trips through
// encoding/json as a missing key rather than a JSON null.
type wireBlob struct {
	BlobNum  int     `json:"blob_num"`
	Length   int     `json:"length"`
	IV       string  `json:"iv"`
	BlobHash *string `json:"blob_hash,omitempty"`
}

type wireDescriptor struct {
	StreamType        string     `json:"stream_type"`
	StreamName        string     `json:"stream_name"`
	SuggestedFileName string     `json:"suggested_file_name"`
	Key               string     `json:"key"`
	StreamHash        string     `json:"stream_hash"`
	Blobs             []wireBlob `json:"blobs"`
}

// FromBytes decodes and validates a stream descriptor blob's canonical
// JSON, in the exact order the network requires: JSON decode, assert a
// terminator closes the list, assert no other entry is zero-length,
// assert the terminator carries no blob_hash, reconstruct, and only
// then re-derive stream_hash and compare it against the embedded value.
// Any failure is non-recoverable for that blob.
func FromBytes(raw []byte) (*StreamDescriptor, error) {
	var wire wireDescriptor
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("streamdescriptor: decode: %w", err)
	}

	if len(wire.Blobs) == 0 || wire.Blobs[len(wire.Blobs)-1].Length != 0 {
		return nil, &InvalidStreamDescriptorError{Reason: ReasonMissingTerminator}
	}
	for _, b := range wire.Blobs[:len(wire.Blobs)-1] {
		if b.Length == 0 {
			return nil, &InvalidStreamDescriptorError{Reason: ReasonZeroLengthData}
		}
	}
	if wire.Blobs[len(wire.Blobs)-1].BlobHash != nil {
		return nil, &InvalidStreamDescriptorError{Reason: ReasonTerminatorHasHash}
	}

	streamName, err := unhexUTF8(wire.StreamName)
	if err != nil {
		return nil, fmt.Errorf("streamdescriptor: decode stream_name: %w", err)
	}
	suggestedFileName, err := unhexUTF8(wire.SuggestedFileName)
	if err != nil {
		return nil, fmt.Errorf("streamdescriptor: decode suggested_file_name: %w", err)
	}
	key, err := common.AESKeyFromHex(wire.Key)
	if err != nil {
		return nil, fmt.Errorf("streamdescriptor: decode key: %w", err)
	}

	blobs := make([]*blobinfo.BlobInfo, len(wire.Blobs))
	for i, b := range wire.Blobs {
		iv, err := common.AESIVFromHex(b.IV)
		if err != nil {
			return nil, fmt.Errorf("streamdescriptor: decode blob %d iv: %w", i, err)
		}
		var hashPtr *common.Hash
		if b.BlobHash != nil {
			h, err := common.HashFromHex(*b.BlobHash)
			if err != nil {
				return nil, fmt.Errorf("streamdescriptor: decode blob %d blob_hash: %w", i, err)
			}
			hashPtr = &h
		}
		info, err := blobinfo.New(b.BlobNum, b.Length, iv, hashPtr)
		if err != nil {
			return nil, fmt.Errorf("streamdescriptor: blob %d: %w", i, err)
		}
		blobs[i] = info
	}

	d := &StreamDescriptor{
		StreamName:        streamName,
		SuggestedFileName: suggestedFileName,
		Key:               key,
		Blobs:             blobs,
	}

	embeddedHash, err := common.HashFromHex(wire.StreamHash)
	if err != nil {
		return nil, fmt.Errorf("streamdescriptor: decode stream_hash: %w", err)
	}

	d.StreamHash = computeStreamHash(d)
	if !d.StreamHash.Equal(embeddedHash) {
		return nil, &InvalidStreamDescriptorError{Reason: ReasonHashMismatch}
	}

	return d, nil
}

// FromStreamDescriptorBlob opens the SD blob addressed by name within
// blobDir, confirms its content still hashes to name, and validates it
// exactly as FromBytes does.
func FromStreamDescriptorBlob(blobDir string, name common.Hash) (*StreamDescriptor, error) {
	r, err := blobfile.Open(blobDir, name)
	if err != nil {
		return nil, fmt.Errorf("streamdescriptor: open sd blob %s: %w", name.Hex(), err)
	}
	defer r.Close()

	hasher, err := streamhash.New()
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(io.TeeReader(r, hasher))
	if err != nil {
		return nil, fmt.Errorf("streamdescriptor: read sd blob %s: %w", name.Hex(), err)
	}

	got, err := common.HashFromBytes(hasher.Digest())
	if err != nil {
		return nil, err
	}
	if !got.Equal(name) {
		return nil, blobfile.ErrValidationFailed
	}

	return FromBytes(raw)
}

func unhexUTF8(s string) (string, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
