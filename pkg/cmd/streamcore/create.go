package streamcore

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lbryio/streamcore/pkg/manifeststore"
	"github.com/lbryio/streamcore/pkg/streamassembler"
)

func createCmd() *cobra.Command {
	var blobDir, manifestDB string

	cmd := &cobra.Command{
		Use:   "create <file>",
		Short: "Partition a file into blobs and emit its stream descriptor",
		Args:  cobra.ExactArgs(1),
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

			descriptor, err := streamassembler.CreateStream(
				ctx,
				streamassembler.Deps{ManifestStore: store},
				blobDir,
				args[0],
			)
			if err != nil {
				return fmt.Errorf("create stream: %w", err)
			}

			sdHash, err := descriptor.SDHash()
			if err != nil {
				return fmt.Errorf("compute sd hash: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stream_hash: %s\n", descriptor.StreamHash.Hex())
			fmt.Fprintf(cmd.OutOrStdout(), "sd_hash:     %s\n", sdHash.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&blobDir, "blobdir", "", "blob directory (default: $XDG_DATA_HOME/streamcore/blobs)")
	cmd.Flags().StringVar(&manifestDB, "manifest-db", "", "manifest SQLite database path (default: $XDG_DATA_HOME/streamcore/manifest.db)")

	return cmd
}
