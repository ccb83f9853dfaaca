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

import (
	"path/filepath"

	"github.com/lbryio/streamcore/pkg/common"
)

// PathFor returns the path of a blob addressed by hash within blobDir,
// fanning out over the first two characters of the hex digest so a
// single directory never ends up holding every blob a node has ever
// seen. Used for both data blobs and the stream descriptor blob — an SD
// blob is just a blob whose name happens to be its own content's hash.
func PathFor(blobDir string, hash common.Hash) string {
	hexName := hash.Hex()
	return filepath.Join(blobDir, hexName[:2], hexName[2:])
}

func pathFor(blobDir string, hash common.Hash) string {
	return PathFor(blobDir, hash)
}

func dirFor(blobDir string, hash common.Hash) string {
	return filepath.Dir(PathFor(blobDir, hash))
}
