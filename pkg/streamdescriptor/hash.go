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
	"strconv"

	"github.com/lbryio/streamcore/pkg/blobinfo"
	"github.com/lbryio/streamcore/pkg/common"
	"github.com/lbryio/streamcore/pkg/streamhash"
)

// computeStreamHash implements the network's two-layer stream hash fold.
// It is bit-exact and must never be "simplified": the inner per-blob
// hash is folded into the outer hash via its raw 48-byte digest, while
// every other field (blob_hash, iv, names, key) is fed as ASCII hex and
// blob_num/length are fed as decimal ASCII — never as binary integers.
// A single byte of deviation here produces a stream_hash incompatible
// with every other implementation on the network; see descriptor_test.go
// for the pinned reference vector.
func computeStreamHash(d *StreamDescriptor) common.Hash {
	inner, err := streamhash.New()
	if err != nil {
		panic(err)
	}
	for _, b := range d.Blobs {
		inner.Update(innerBlobDigest(b))
	}

	outer, err := streamhash.New()
	if err != nil {
		panic(err)
	}
	outer.Update([]byte(hexUTF8(d.StreamName)))
	outer.Update([]byte(d.Key.Hex()))
	outer.Update([]byte(hexUTF8(d.SuggestedFileName)))
	outer.Update(inner.Digest())

	h, err := common.HashFromBytes(outer.Digest())
	if err != nil {
		panic(err)
	}
	return h
}

// innerBlobDigest returns the raw 48-byte digest folded into the outer
// stream hash for one blob entry.
func innerBlobDigest(b *blobinfo.BlobInfo) []byte {
	h, err := streamhash.New()
	if err != nil {
		panic(err)
	}
	if !b.IsTerminator() {
		h.Update([]byte(b.BlobHash.Hex()))
	}
	h.Update([]byte(strconv.Itoa(b.BlobNum)))
	h.Update([]byte(b.IV.Hex()))
	h.Update([]byte(strconv.Itoa(b.Length)))
	return h.Digest()
}

func sumHash(b []byte) common.Hash {
	return streamhash.SumHash(b)
}
