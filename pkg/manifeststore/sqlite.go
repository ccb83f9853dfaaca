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

package manifeststore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lbryio/streamcore/pkg/blobinfo"
	"github.com/lbryio/streamcore/pkg/common"
	"github.com/lbryio/streamcore/pkg/streamdescriptor"
)

// dbPragmas sets the foreign-key/WAL/synchronous defaults appropriate
// for a single-writer embedded SQLite database.
const dbPragmas = "?_foreign_keys=ON&_journal_mode=WAL&_synchronous=NORMAL"

// SQLiteStore is the Store implementation backed by an on-disk SQLite
// database, schema-migrated with goose from an embedded migrations
// directory.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// brings its schema up to date.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s%s", path, dbPragmas))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // one writer at a time; SQLite's own contract

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AddKnownBlobs(ctx context.Context, blobs []*blobinfo.BlobInfo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapSqliteError(err)
	}
	defer tx.Rollback()

	for _, b := range blobs {
		if b.IsTerminator() {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO blob (blob_hash, length, iv_hex) VALUES (?, ?, ?)
			 ON CONFLICT(blob_hash) DO NOTHING`,
			b.BlobHash.Hex(), b.Length, b.IV.Hex(),
		); err != nil {
			return mapSqliteError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapSqliteError(err)
	}
	return nil
}

func (s *SQLiteStore) StoreStream(ctx context.Context, d *streamdescriptor.StreamDescriptor, sdHash common.Hash) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapSqliteError(err)
	}
	defer tx.Rollback()

	existing, err := getStreamTx(ctx, tx, d.StreamHash)
	if err != nil && err != sql.ErrNoRows {
		return mapSqliteError(err)
	}
	if err == nil {
		if streamRecordMatches(existing, d, sdHash) {
			return nil // identical content already stored: idempotent no-op
		}
		return ErrDuplicateStream
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO stream (stream_hash, sd_hash, stream_name_hex, key_hex, suggested_name_hex)
		 VALUES (?, ?, ?, ?, ?)`,
		d.StreamHash.Hex(), sdHash.Hex(), hexOf(d.StreamName), d.Key.Hex(), hexOf(d.SuggestedFileName),
	); err != nil {
		return mapSqliteError(err)
	}

	for _, b := range d.Blobs {
		var blobHash any
		if !b.IsTerminator() {
			blobHash = b.BlobHash.Hex()
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO blob (blob_hash, length, iv_hex) VALUES (?, ?, ?)
				 ON CONFLICT(blob_hash) DO NOTHING`,
				b.BlobHash.Hex(), b.Length, b.IV.Hex(),
			); err != nil {
				return mapSqliteError(err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stream_blob (stream_hash, blob_num, blob_hash, iv_hex, length)
			 VALUES (?, ?, ?, ?, ?)`,
			d.StreamHash.Hex(), b.BlobNum, blobHash, b.IV.Hex(), b.Length,
		); err != nil {
			return mapSqliteError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapSqliteError(err)
	}
	return nil
}

func (s *SQLiteStore) GetStream(ctx context.Context, streamHash common.Hash) (*StreamRecord, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, mapSqliteError(err)
	}
	defer tx.Rollback()

	rec, err := getStreamTx(ctx, tx, streamHash)
	if err != nil {
		return nil, mapSqliteError(err)
	}
	return rec, nil
}

func getStreamTx(ctx context.Context, tx *sql.Tx, streamHash common.Hash) (*StreamRecord, error) {
	var sdHashHex, streamNameHex, keyHex, suggestedHex string
	err := tx.QueryRowContext(ctx,
		`SELECT sd_hash, stream_name_hex, key_hex, suggested_name_hex FROM stream WHERE stream_hash = ?`,
		streamHash.Hex(),
	).Scan(&sdHashHex, &streamNameHex, &keyHex, &suggestedHex)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT blob_num, blob_hash, iv_hex, length FROM stream_blob WHERE stream_hash = ? ORDER BY blob_num`,
		streamHash.Hex(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blobs []*blobinfo.BlobInfo
	for rows.Next() {
		var blobNum, length int
		var ivHex string
		var blobHashHex sql.NullString
		if err := rows.Scan(&blobNum, &blobHashHex, &ivHex, &length); err != nil {
			return nil, err
		}
		iv, err := common.AESIVFromHex(ivHex)
		if err != nil {
			return nil, err
		}
		var hashPtr *common.Hash
		if blobHashHex.Valid {
			h, err := common.HashFromHex(blobHashHex.String)
			if err != nil {
				return nil, err
			}
			hashPtr = &h
		}
		info, err := blobinfo.New(blobNum, length, iv, hashPtr)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sdHash, err := common.HashFromHex(sdHashHex)
	if err != nil {
		return nil, err
	}
	key, err := common.AESKeyFromHex(keyHex)
	if err != nil {
		return nil, err
	}
	streamName, err := unhexString(streamNameHex)
	if err != nil {
		return nil, err
	}
	suggestedFileName, err := unhexString(suggestedHex)
	if err != nil {
		return nil, err
	}

	return &StreamRecord{
		StreamHash:        streamHash,
		SDHash:            sdHash,
		StreamName:        streamName,
		SuggestedFileName: suggestedFileName,
		Key:               key,
		Blobs:             blobs,
	}, nil
}

// streamRecordMatches reports whether an existing stored stream is
// byte-identical to the descriptor being stored, so a retried
// StoreStream call over unchanged content is a silent no-op rather than
// ErrDuplicateStream.
func streamRecordMatches(existing *StreamRecord, d *streamdescriptor.StreamDescriptor, sdHash common.Hash) bool {
	if !existing.SDHash.Equal(sdHash) {
		return false
	}
	if existing.StreamName != d.StreamName || existing.SuggestedFileName != d.SuggestedFileName {
		return false
	}
	if !existing.Key.Equal(d.Key) {
		return false
	}
	if len(existing.Blobs) != len(d.Blobs) {
		return false
	}
	for i, b := range d.Blobs {
		o := existing.Blobs[i]
		if o.BlobNum != b.BlobNum || o.Length != b.Length || !o.IV.Equal(b.IV) {
			return false
		}
		if b.IsTerminator() != o.IsTerminator() {
			return false
		}
		if !b.IsTerminator() && !o.BlobHash.Equal(*b.BlobHash) {
			return false
		}
	}
	return true
}
