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

package blobinfo

import "errors"

var (
	ErrNegativeBlobNum    = errors.New("blob_num must not be negative")
	ErrNegativeLength     = errors.New("length must not be negative")
	ErrMissingBlobHash    = errors.New("non-terminator blob is missing its blob_hash")
	ErrUnexpectedBlobHash = errors.New("terminator blob must not carry a blob_hash")
)
