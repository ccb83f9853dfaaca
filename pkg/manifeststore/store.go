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

// Package manifeststore is the durable index of everything this node
// knows about: which blobs it holds, and which streams they assemble
// into. It is the only component in this core that talks to a database.
package manifeststore

import (
	"context"
	"errors"

	"github.com/lbryio/streamcore/pkg/blobinfo"
	"github.com/lbryio/streamcore/pkg/common"
	"github.com/lbryio/streamcore/pkg/streamdescriptor"
)

var (
	// ErrStoreBusy is returned on SQLite contention (SQLITE_BUSY /
	// SQLITE_LOCKED); callers are expected to retry.
	ErrStoreBusy = errors.New("manifest store is busy")
	// ErrStoreCorrupt is returned when the backing database fails an
	// integrity check. Fatal — no retry will fix it.
	ErrStoreCorrupt = errors.New("manifest store is corrupt")
	// ErrDuplicateStream is returned by StoreStream when stream_hash
	// already exists with different content than what's being stored.
	// Storing identical content under an existing stream_hash is a
	// silent no-op, not an error.
	ErrDuplicateStream = errors.New("stream hash already exists with different content")
)

// StreamRecord is a snapshot of one stored stream, read back by value —
// the store owns the durable rows, callers only ever see copies.
type StreamRecord struct {
	StreamHash        common.Hash
	SDHash            common.Hash
	StreamName        string
	SuggestedFileName string
	Key               common.AESKey
	Blobs             []*blobinfo.BlobInfo
}

// Store is the manifest store's network-visible contract: a durable
// index mapping stream_hash to its descriptor and blob_hash to its
// (length, iv) pair. The physical schema backing it is this package's
// own concern.
type Store interface {
	// AddKnownBlobs upserts (blob_hash, length, iv) rows; duplicates
	// are no-ops.
	AddKnownBlobs(ctx context.Context, blobs []*blobinfo.BlobInfo) error
	// StoreStream inserts the stream row and every stream_blob row in
	// one transaction. If stream_hash already exists, identical content
	// is a no-op; different content returns ErrDuplicateStream.
	StoreStream(ctx context.Context, d *streamdescriptor.StreamDescriptor, sdHash common.Hash) error
	// GetStream looks up a stream by its stream_hash.
	GetStream(ctx context.Context, streamHash common.Hash) (*StreamRecord, error)
	// Close releases the underlying database handle.
	Close() error
}
