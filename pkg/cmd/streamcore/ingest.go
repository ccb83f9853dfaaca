package streamcore

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lbryio/streamcore/pkg/common"
	"github.com/lbryio/streamcore/pkg/streamdescriptor"
)

func ingestCmd() *cobra.Command {
	var blobDir string

	cmd := &cobra.Command{
		Use:   "ingest <sd-hash>",
		Short: "Read and validate a stream descriptor blob by its sd_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if blobDir == "" {
				d, err := defaultBlobDir()
				if err != nil {
					return fmt.Errorf("resolve default blob dir: %w", err)
				}
				blobDir = d
			}

			sdHash, err := common.HashFromHex(args[0])
			if err != nil {
				return fmt.Errorf("parse sd hash: %w", err)
			}

			descriptor, err := streamdescriptor.FromStreamDescriptorBlob(blobDir, sdHash)
			if err != nil {
				var invalid *streamdescriptor.InvalidStreamDescriptorError
				if errors.As(err, &invalid) {
					fmt.Fprintf(cmd.OutOrStdout(), "invalid: %s\n", invalid.Reason)
					return nil
				}
				return fmt.Errorf("ingest: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "valid\n")
			fmt.Fprintf(cmd.OutOrStdout(), "stream_hash: %s\n", descriptor.StreamHash.Hex())
			fmt.Fprintf(cmd.OutOrStdout(), "stream_name: %s\n", descriptor.StreamName)
			fmt.Fprintf(cmd.OutOrStdout(), "blobs:       %d\n", len(descriptor.Blobs))
			return nil
		},
	}

	cmd.Flags().StringVar(&blobDir, "blobdir", "", "blob directory (default: $XDG_DATA_HOME/streamcore/blobs)")

	return cmd
}
