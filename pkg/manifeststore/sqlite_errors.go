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
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// isBusy reports whether err is a SQLite contention error (the
// database is locked by another writer); callers retry on this.
func isBusy(err error) bool {
	return isSqliteCode(err, sqlite3.ErrBusy) || isSqliteCode(err, sqlite3.ErrLocked)
}

// isCorrupt reports whether err is a SQLite integrity-check failure.
func isCorrupt(err error) bool {
	return isSqliteCode(err, sqlite3.ErrCorrupt) || isSqliteCode(err, sqlite3.ErrNotADB)
}

func isSqliteCode(err error, code sqlite3.ErrNo) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == code
	}
	return false
}

// mapSqliteError translates a raw driver error into the store's
// sentinel errors, leaving anything unrecognized untouched.
func mapSqliteError(err error) error {
	if err == nil {
		return nil
	}
	if isBusy(err) {
		return errors.Join(ErrStoreBusy, err)
	}
	if isCorrupt(err) {
		return errors.Join(ErrStoreCorrupt, err)
	}
	return err
}
