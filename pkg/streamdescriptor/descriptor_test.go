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

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lbryio/streamcore/pkg/blobinfo"
	"github.com/lbryio/streamcore/pkg/common"
)

// These values are a pinned reference vector: a 48-byte all-'A' source
// file, a zeroed key and first IV, and a second IV of all 0x11 bytes for
// the terminator. The ciphertext, stream_hash, sd_hash and canonical
// JSON below were independently computed (AES-128-CBC via a reference
// implementation, SHA-384 throughout) and must match this package's
// output byte-for-byte — any drift here means the hex-vs-raw-digest
// fold in hash.go has been disturbed.
const (
	vectorStreamName = "testfile.bin"
	vectorCiphertext = "b49cbf19d357e6e1f6845c30fd5b63e36f9f769a9caa0313ba178c1c2e0f60760a311635b53f0468a80d3e6bdb4bbc349ab5db4ee7a1b58e117a8e8d0b49313d"
	vectorBlobHash   = "5ba749cbada8acd8d5dbbb5affbd280564891f453cd8ae1b6e8b2203c4355a6311aef04521f5cb6f3116123518ef8e81"
	vectorStreamHash = "a6322fc837ecd50052c6767a8e5b0f33fda80c8d2f50fdcc923e45ee2bb01c815cd88dcb76d61eacb6e02e8b39d858d7"
	vectorSDHash     = "ce5c1bdcfb8bc62b8dad860e96916733a2b0de3b22b6564aaf1719c320a64467d8c463ca854921d6b39332f75032d28b"
	vectorCanonical  = `{"blobs":[{"blob_hash":"5ba749cbada8acd8d5dbbb5affbd280564891f453cd8ae1b6e8b2203c4355a6311aef04521f5cb6f3116123518ef8e81","blob_num":0,"iv":"00000000000000000000000000000000","length":64},{"blob_num":1,"iv":"11111111111111111111111111111111","length":0}],"key":"00000000000000000000000000000000","stream_hash":"a6322fc837ecd50052c6767a8e5b0f33fda80c8d2f50fdcc923e45ee2bb01c815cd88dcb76d61eacb6e02e8b39d858d7","stream_name":"7465737466696c652e62696e","stream_type":"lbryfile","suggested_file_name":"7465737466696c652e62696e"}`
)

func vectorDescriptor(t *testing.T) *StreamDescriptor {
	t.Helper()

	key, err := common.AESKeyFromBytes(make([]byte, 16))
	require.NoError(t, err)

	iv0, err := common.AESIVFromBytes(make([]byte, 16))
	require.NoError(t, err)

	iv1Bytes := bytes.Repeat([]byte{0x11}, 16)
	iv1, err := common.AESIVFromBytes(iv1Bytes)
	require.NoError(t, err)

	blobHash, err := common.HashFromHex(vectorBlobHash)
	require.NoError(t, err)

	dataBlob, err := blobinfo.New(0, 64, iv0, &blobHash)
	require.NoError(t, err)

	terminator, err := blobinfo.New(1, 0, iv1, nil)
	require.NoError(t, err)

	d, err := New(vectorStreamName, vectorStreamName, key, []*blobinfo.BlobInfo{dataBlob, terminator})
	require.NoError(t, err)
	return d
}

// TestVectorCiphertextIsConsistent confirms the fixture's own ciphertext
// really does match what AES-128-CBC + PKCS#7 produce, so a future edit
// to that vector constant can't silently drift from reality. The blob
// hash constant is not re-derived here.
func TestVectorCiphertextIsConsistent(t *testing.T) {
	plaintext := bytes.Repeat([]byte("A"), 48)
	block, err := aes.NewCipher(make([]byte, 16))
	require.NoError(t, err)

	padded := pkcs7PadForTest(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, make([]byte, 16)).CryptBlocks(ciphertext, padded)

	require.Equal(t, vectorCiphertext, bytesToHex(ciphertext))
}

func TestStreamHashMatchesVector(t *testing.T) {
	d := vectorDescriptor(t)
	require.Equal(t, vectorStreamHash, d.StreamHash.Hex())
}

func TestCanonicalJSONMatchesVector(t *testing.T) {
	d := vectorDescriptor(t)
	raw, err := d.Marshal()
	require.NoError(t, err)
	require.JSONEq(t, vectorCanonical, string(raw))
	require.Equal(t, vectorCanonical, string(raw))
}

func TestSDHashMatchesVector(t *testing.T) {
	d := vectorDescriptor(t)
	sdHash, err := d.SDHash()
	require.NoError(t, err)
	require.Equal(t, vectorSDHash, sdHash.Hex())
}

func TestFromBytesRoundTripsVector(t *testing.T) {
	d := vectorDescriptor(t)
	raw, err := d.Marshal()
	require.NoError(t, err)

	decoded, err := FromBytes(raw)
	require.NoError(t, err)
	require.True(t, decoded.StreamHash.Equal(d.StreamHash))
	require.Equal(t, vectorStreamHash, decoded.StreamHash.Hex())
}

func TestFromBytesRejectsMutatedTerminatorLength(t *testing.T) {
	d := vectorDescriptor(t)
	raw, err := d.Marshal()
	require.NoError(t, err)

	mutated := bytes.Replace(raw, []byte(`"blob_num":1,"iv":"11111111111111111111111111111111","length":0`), []byte(`"blob_num":1,"iv":"11111111111111111111111111111111","length":1`), 1)
	require.NotEqual(t, raw, mutated)

	_, err = FromBytes(mutated)
	var invalid *InvalidStreamDescriptorError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, ReasonMissingTerminator, invalid.Reason)
}

func TestFromBytesRejectsTerminatorWithHash(t *testing.T) {
	d := vectorDescriptor(t)
	raw, err := d.Marshal()
	require.NoError(t, err)

	mutated := bytes.Replace(raw,
		[]byte(`{"blob_num":1,"iv":"11111111111111111111111111111111","length":0}`),
		[]byte(`{"blob_hash":"`+vectorBlobHash+`","blob_num":1,"iv":"11111111111111111111111111111111","length":0}`),
		1)
	require.NotEqual(t, raw, mutated)

	_, err = FromBytes(mutated)
	var invalid *InvalidStreamDescriptorError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, ReasonTerminatorHasHash, invalid.Reason)
}

func TestFromBytesRejectsStreamHashMismatch(t *testing.T) {
	d := vectorDescriptor(t)
	raw, err := d.Marshal()
	require.NoError(t, err)

	mutated := bytes.Replace(raw, []byte(vectorStreamHash), []byte(vectorSDHash), 1)
	require.NotEqual(t, raw, mutated)

	_, err = FromBytes(mutated)
	var invalid *InvalidStreamDescriptorError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, ReasonHashMismatch, invalid.Reason)
}

func TestFromBytesRejectsZeroLengthDataBlob(t *testing.T) {
	d := vectorDescriptor(t)
	raw, err := d.Marshal()
	require.NoError(t, err)

	mutated := bytes.Replace(raw, []byte(`"length":64`), []byte(`"length":0`), 1)
	require.NotEqual(t, raw, mutated)

	_, err = FromBytes(mutated)
	var invalid *InvalidStreamDescriptorError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, ReasonZeroLengthData, invalid.Reason)
}

func pkcs7PadForTest(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

func bytesToHex(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hextable[v>>4]
		out[i*2+1] = hextable[v&0x0f]
	}
	return string(out)
}
