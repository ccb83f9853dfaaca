package streamcore

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lbryio/streamcore/pkg/common"
	"github.com/lbryio/streamcore/pkg/manifeststore"
	"github.com/lbryio/streamcore/pkg/streamassembler"
)

func TestCreateThenIngestRoundTrip(t *testing.T) {
	blobDir := t.TempDir()
	manifestDB := filepath.Join(t.TempDir(), "manifest.db")

	src := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(src, []byte("hello streamcore"), 0o644))

	createOut := &bytes.Buffer{}
	create := createCmd()
	create.SetOut(createOut)
	create.SetArgs([]string{"--blobdir", blobDir, "--manifest-db", manifestDB, src})
	require.NoError(t, create.Execute())

	var sdHash string
	for _, line := range strings.Split(createOut.String(), "\n") {
		if strings.HasPrefix(line, "sd_hash:") {
			sdHash = strings.TrimSpace(strings.TrimPrefix(line, "sd_hash:"))
		}
	}
	require.NotEmpty(t, sdHash)

	ingestOut := &bytes.Buffer{}
	ingest := ingestCmd()
	ingest.SetOut(ingestOut)
	ingest.SetArgs([]string{"--blobdir", blobDir, sdHash})
	require.NoError(t, ingest.Execute())
	require.Contains(t, ingestOut.String(), "valid")
}

func TestIngestFailsForTamperedBlob(t *testing.T) {
	blobDir := t.TempDir()
	manifestDB := filepath.Join(t.TempDir(), "manifest.db")

	src := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(src, []byte("hello streamcore"), 0o644))

	store, err := manifeststore.Open(context.Background(), manifestDB)
	require.NoError(t, err)
	defer store.Close()

	descriptor, err := streamassembler.CreateStream(
		context.Background(),
		streamassembler.Deps{ManifestStore: store},
		blobDir,
		src,
	)
	require.NoError(t, err)

	sdHash, err := descriptor.SDHash()
	require.NoError(t, err)

	path := pathForTest(blobDir, sdHash)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	mutated := bytes.Replace(raw, []byte(`"length":0`), []byte(`"length":1`), 1)
	require.NoError(t, os.WriteFile(path, mutated, 0o644))

	ingestOut := &bytes.Buffer{}
	ingest := ingestCmd()
	ingest.SetOut(ingestOut)
	ingest.SetArgs([]string{"--blobdir", blobDir, sdHash.Hex()})
	// Reading back mutated content no longer hashes to sdHash, so the
	// command reports a generic ingest error rather than a structured
	// reason -- exercised instead by streamdescriptor's own ingest tests.
	err = ingest.Execute()
	require.Error(t, err)
}

func TestBlobAndStreamHTTPHandlers(t *testing.T) {
	blobDir := t.TempDir()
	manifestDB := filepath.Join(t.TempDir(), "manifest.db")

	src := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(src, []byte("hello streamcore"), 0o644))

	store, err := manifeststore.Open(context.Background(), manifestDB)
	require.NoError(t, err)
	defer store.Close()

	descriptor, err := streamassembler.CreateStream(
		context.Background(),
		streamassembler.Deps{ManifestStore: store},
		blobDir,
		src,
	)
	require.NoError(t, err)

	server := httptest.NewServer(blobHandler(blobDir))
	defer server.Close()

	dataBlob := descriptor.Blobs[0]
	resp, err := server.Client().Get(server.URL + "/blobs/" + dataBlob.BlobHash.Hex())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	streamServer := httptest.NewServer(streamHandler(store))
	defer streamServer.Close()

	resp2, err := streamServer.Client().Get(streamServer.URL + "/streams/" + descriptor.StreamHash.Hex())
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, 200, resp2.StatusCode)
}

func pathForTest(blobDir string, hash common.Hash) string {
	hexName := hash.Hex()
	return filepath.Join(blobDir, hexName[:2], hexName[2:])
}
