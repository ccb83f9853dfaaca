package streamcore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lbryio/streamcore/pkg/blobfile"
	"github.com/lbryio/streamcore/pkg/common"
	"github.com/lbryio/streamcore/pkg/manifeststore"
	"github.com/lbryio/streamcore/pkg/utilities/httpserver"
)

func serveCmd() *cobra.Command {
	var blobDir, manifestDB string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve blobs and stream manifests over a read-only debug HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if blobDir == "" {
				d, err := defaultBlobDir()
				if err != nil {
					return fmt.Errorf("resolve default blob dir: %w", err)
				}
				blobDir = d
			}
			if manifestDB == "" {
				p, err := defaultManifestDBPath()
				if err != nil {
					return fmt.Errorf("resolve default manifest db path: %w", err)
				}
				manifestDB = p
			}

			ctx := cmd.Context()

			store, err := manifeststore.Open(ctx, manifestDB)
			if err != nil {
				return fmt.Errorf("open manifest store: %w", err)
			}
			defer store.Close()

			mux := http.NewServeMux()
			mux.HandleFunc("/blobs/", blobHandler(blobDir))
			mux.HandleFunc("/streams/", streamHandler(store))

			return httpserver.RunGracefully(ctx, mux, httpserver.ListenPort(port))
		},
	}

	cmd.Flags().StringVar(&blobDir, "blobdir", "", "blob directory (default: $XDG_DATA_HOME/streamcore/blobs)")
	cmd.Flags().StringVar(&manifestDB, "manifest-db", "", "manifest SQLite database path (default: $XDG_DATA_HOME/streamcore/manifest.db)")
	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")

	return cmd
}

func blobHandler(blobDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		hexHash := strings.TrimPrefix(r.URL.Path, "/blobs/")
		hash, err := common.HashFromHex(hexHash)
		if err != nil {
			http.Error(w, "invalid blob hash", http.StatusBadRequest)
			return
		}

		rc, err := blobfile.Open(blobDir, hash)
		if errors.Is(err, blobfile.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			httpserver.FailResponseOnError(w, err)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		io.Copy(w, rc)
	}
}

func streamHandler(store manifeststore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		hexHash := strings.TrimPrefix(r.URL.Path, "/streams/")
		hash, err := common.HashFromHex(hexHash)
		if err != nil {
			http.Error(w, "invalid stream hash", http.StatusBadRequest)
			return
		}

		rec, err := store.GetStream(r.Context(), hash)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(streamRecordToWire(rec))
	}
}

// wireStreamRecord renders a StreamRecord the same hex-friendly way the
// stream descriptor's own canonical JSON does, rather than exposing the
// raw byte arrays Go's default JSON encoding would produce for Hash/AESKey.
type wireStreamRecord struct {
	StreamHash        string           `json:"stream_hash"`
	SDHash            string           `json:"sd_hash"`
	StreamName        string           `json:"stream_name"`
	SuggestedFileName string           `json:"suggested_file_name"`
	Key               string           `json:"key"`
	Blobs             []wireStreamBlob `json:"blobs"`
}

type wireStreamBlob struct {
	BlobNum  int     `json:"blob_num"`
	Length   int     `json:"length"`
	BlobHash *string `json:"blob_hash,omitempty"`
}

func streamRecordToWire(rec *manifeststore.StreamRecord) wireStreamRecord {
	blobs := make([]wireStreamBlob, len(rec.Blobs))
	for i, b := range rec.Blobs {
		wb := wireStreamBlob{BlobNum: b.BlobNum, Length: b.Length}
		if !b.IsTerminator() {
			h := b.BlobHash.Hex()
			wb.BlobHash = &h
		}
		blobs[i] = wb
	}
	return wireStreamRecord{
		StreamHash:        rec.StreamHash.Hex(),
		SDHash:            rec.SDHash.Hex(),
		StreamName:        rec.StreamName,
		SuggestedFileName: rec.SuggestedFileName,
		Key:               rec.Key.Hex(),
		Blobs:             blobs,
	}
}
