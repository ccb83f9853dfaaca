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

package blobfile

import "errors"

var (
	// ErrPlaintextTooLarge is returned when a chunk exceeds MaxBlobSize-1
	// bytes, the one byte of headroom that guarantees every non-terminator
	// blob pads to at least one byte and is never mistaken for the
	// zero-length terminator.
	ErrPlaintextTooLarge = errors.New("plaintext chunk exceeds the maximum blob size")
	ErrDiskFull          = errors.New("could not write blob to disk")
	ErrCryptoFailure     = errors.New("blob cipher setup failed")
	ErrValidationFailed  = errors.New("blob content does not match its hash")
	ErrNotFound          = errors.New("blob not found")
)
