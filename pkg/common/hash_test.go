/*
Copyright © 2023 Bartłomiej Święcki (byo)

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

package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashFromHexRoundTrip(t *testing.T) {
	hexDigest := "cb00753f45a35e8bb5a03d699ac65007272c32ab0eded1631a8b605a43ff5bed8086072ba1e7cc2358baeca134c825a7"
	h, err := HashFromHex(hexDigest)
	require.NoError(t, err)
	require.Equal(t, hexDigest, h.Hex())
	require.True(t, h.Equal(h))
}

func TestHashFromHexRejectsWrongLength(t *testing.T) {
	_, err := HashFromHex("abcd")
	require.ErrorIs(t, err, ErrInvalidHash)
}

func TestHashFromBytesRejectsWrongLength(t *testing.T) {
	_, err := HashFromBytes(make([]byte, 10))
	require.ErrorIs(t, err, ErrInvalidHash)
}

func TestHashBase58IsDisplayOnly(t *testing.T) {
	h, err := HashFromBytes(make([]byte, HashSize))
	require.NoError(t, err)
	require.NotEmpty(t, h.Base58())
}
