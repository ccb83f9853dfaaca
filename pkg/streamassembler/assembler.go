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

// Package streamassembler partitions a source file into blobs, assembles
// the resulting StreamDescriptor, and persists both the blobs and the
// manifest. It is the one component that touches every other package in
// this core.
package streamassembler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lbryio/streamcore/pkg/blobfile"
	"github.com/lbryio/streamcore/pkg/blobinfo"
	"github.com/lbryio/streamcore/pkg/common"
	"github.com/lbryio/streamcore/pkg/executor"
	"github.com/lbryio/streamcore/pkg/streamdescriptor"
)

// ManifestStore is the subset of pkg/manifeststore's contract
// CreateStream needs. Declared here, rather than importing the concrete
// store, so streamassembler depends only on the shape of durable
// storage, not its SQLite implementation.
type ManifestStore interface {
	StoreStream(ctx context.Context, d *streamdescriptor.StreamDescriptor, sdHash common.Hash) error
}

// Deps supplies CreateStream's external dependencies. A nil field falls
// back to the default: a fresh random key, an infinite CSPRNG-backed
// IVGenerator, and DefaultCreateLimit concurrent blob-encryption tasks.
type Deps struct {
	Key           *common.AESKey
	CSPRNG        executor.CSPRNG
	IVGenerator   executor.IVGenerator
	CreateLimit   int
	ManifestStore ManifestStore

	// onBlobTask, if set, is called as each blob-encryption task begins
	// running and must return a func invoked when that task ends. It
	// exists so tests can observe how many tasks CreateStream actually
	// runs concurrently; production callers leave it nil.
	onBlobTask func() func()
}

func (d Deps) withDefaults() (Deps, error) {
	if d.CSPRNG == nil {
		d.CSPRNG = executor.SystemCSPRNG{}
	}
	if d.IVGenerator == nil {
		d.IVGenerator = executor.NewIVGenerator(d.CSPRNG)
	}
	if d.CreateLimit <= 0 {
		d.CreateLimit = executor.DefaultCreateLimit
	}
	if d.Key == nil {
		b, err := d.CSPRNG.RandomBytes(16)
		if err != nil {
			return d, err
		}
		key, err := common.AESKeyFromBytes(b)
		if err != nil {
			return d, err
		}
		d.Key = &key
	}
	return d, nil
}

// blobResult is one worker's outcome, carried over a buffered channel
// and drained only after the whole group has joined — the typed-channel
// replacement for a closure-captured list mutated from goroutines.
type blobResult struct {
	info *blobinfo.BlobInfo
}

// CreateStream partitions filePath into content-addressed, encrypted
// blobs under blobDir, builds and writes the resulting stream
// descriptor blob, and records everything in deps.ManifestStore.
func CreateStream(ctx context.Context, deps Deps, blobDir, filePath string) (*streamdescriptor.StreamDescriptor, error) {
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	// results is drained only after ex.Wait, so it must hold one entry per
	// chunk; a smaller buffer would leave workers blocked on send forever.
	results := make(chan blobResult, int(fi.Size()/blobfile.MaxPlaintextSize)+1)
	ex := executor.New(deps.CreateLimit)

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := newChunker(f)
	blobNum := 0
	for {
		chunk, ok, err := c.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		iv, err := deps.IVGenerator.Next()
		if err != nil {
			return nil, err
		}

		num := blobNum
		blobNum++

		if err := ex.SubmitBlocking(taskCtx, func() error {
			select {
			case <-taskCtx.Done():
				return taskCtx.Err()
			default:
			}
			if deps.onBlobTask != nil {
				end := deps.onBlobTask()
				defer end()
			}
			written, err := blobfile.CreateFromUnencrypted(blobDir, *deps.Key, iv, chunk, num)
			if err != nil {
				cancel()
				return fmt.Errorf("blob %d: %w", num, err)
			}
			info, err := blobinfo.New(written.BlobNum, written.Length, written.IV, &written.Hash)
			if err != nil {
				cancel()
				return err
			}
			results <- blobResult{info: info}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	terminatorIV, err := deps.IVGenerator.Next()
	if err != nil {
		return nil, err
	}

	if err := ex.Wait(); err != nil {
		close(results)
		return nil, err
	}
	close(results)

	blobs := make([]*blobinfo.BlobInfo, 0, blobNum+1)
	for r := range results {
		blobs = append(blobs, r.info)
	}
	streamdescriptor.SortBlobsByNum(blobs)

	terminator, err := blobinfo.New(blobNum, 0, terminatorIV, nil)
	if err != nil {
		return nil, err
	}
	blobs = append(blobs, terminator)

	streamName := filepath.Base(filePath)
	descriptor, err := streamdescriptor.New(streamName, streamName, *deps.Key, blobs)
	if err != nil {
		return nil, err
	}

	sdHash, err := descriptor.SDHash()
	if err != nil {
		return nil, err
	}

	if err := writeSDBlob(blobDir, sdHash, descriptor); err != nil {
		return nil, err
	}

	if deps.ManifestStore != nil {
		if err := deps.ManifestStore.StoreStream(ctx, descriptor, sdHash); err != nil {
			return nil, err
		}
	}

	return descriptor, nil
}

func writeSDBlob(blobDir string, sdHash common.Hash, d *streamdescriptor.StreamDescriptor) error {
	raw, err := d.Marshal()
	if err != nil {
		return err
	}

	path := blobfile.PathFor(blobDir, sdHash)
	if _, err := os.Stat(path); err == nil {
		return ErrSDBlobExists
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".sdblob-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
