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

import "errors"

// InvalidStreamDescriptorError wraps one of the ordered ingest checks
// from FromBytes. Reason is one of the fixed Reason* strings below so
// callers can match on it without parsing Error().
type InvalidStreamDescriptorError struct {
	Reason string
}

func (e *InvalidStreamDescriptorError) Error() string {
	return "invalid stream descriptor: " + e.Reason
}

const (
	ReasonMissingTerminator = "missing terminator"
	ReasonZeroLengthData    = "zero-length data blob"
	ReasonTerminatorHasHash = "terminator has hash"
	ReasonHashMismatch      = "stream hash mismatch"
)

var (
	ErrEmptyBlobList = errors.New("stream descriptor must have at least one blob")
	ErrSDBlobExists  = errors.New("a stream descriptor blob with this sd_hash already exists")
)
