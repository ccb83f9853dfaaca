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

package executor

import (
	"crypto/rand"

	"github.com/lbryio/streamcore/pkg/common"
)

// CSPRNG is the one source of randomness the rest of this core is
// allowed to reach for: stream keys and per-blob IVs both come from it.
type CSPRNG interface {
	RandomBytes(n int) ([]byte, error)
}

// SystemCSPRNG draws from crypto/rand.
type SystemCSPRNG struct{}

func (SystemCSPRNG) RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// IVGenerator hands out one fresh IV per call, including for the
// terminator — every draw is observable in the resulting stream_hash,
// so an IVGenerator must never be skipped or memoized across blobs.
type IVGenerator interface {
	Next() (common.AESIV, error)
}

// csprngIVGenerator is the default, infinite IVGenerator: every call
// draws AESBlockSize fresh random bytes from the underlying CSPRNG.
type csprngIVGenerator struct {
	rng CSPRNG
}

// NewIVGenerator returns the default infinite, CSPRNG-backed
// IVGenerator.
func NewIVGenerator(rng CSPRNG) IVGenerator {
	return &csprngIVGenerator{rng: rng}
}

func (g *csprngIVGenerator) Next() (common.AESIV, error) {
	b, err := g.rng.RandomBytes(common.AESBlockSize)
	if err != nil {
		return common.AESIV{}, err
	}
	return common.AESIVFromBytes(b)
}
