package streamcore

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lbryio/streamcore/pkg/common"
	"github.com/lbryio/streamcore/pkg/manifeststore"
)

func inspectCmd() *cobra.Command {
	var manifestDB string

	cmd := &cobra.Command{
		Use:   "inspect <stream-hash>",
		Short: "Pretty-print a stored stream's manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if manifestDB == "" {
				p, err := defaultManifestDBPath()
				if err != nil {
					return fmt.Errorf("resolve default manifest db path: %w", err)
				}
				manifestDB = p
			}

			streamHash, err := common.HashFromHex(args[0])
			if err != nil {
				return fmt.Errorf("parse stream hash: %w", err)
			}

			ctx := cmd.Context()

			store, err := manifeststore.Open(ctx, manifestDB)
			if err != nil {
				return fmt.Errorf("open manifest store: %w", err)
			}
			defer store.Close()

			rec, err := store.GetStream(ctx, streamHash)
			if err != nil {
				return fmt.Errorf("get stream: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderStreamRecord(rec))
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestDB, "manifest-db", "", "manifest SQLite database path (default: $XDG_DATA_HOME/streamcore/manifest.db)")

	return cmd
}

func renderStreamRecord(rec *manifeststore.StreamRecord) string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(18)
	cardBorder := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	terminatorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder
	b.WriteString(titleStyle.Render(rec.StreamName) + "\n\n")
	writeLabeled(&b, labelStyle, "stream_hash:", rec.StreamHash.Hex())
	writeLabeled(&b, labelStyle, "sd_hash:", rec.SDHash.Hex())
	writeLabeled(&b, labelStyle, "sd_hash (base58):", rec.SDHash.Base58())
	writeLabeled(&b, labelStyle, "suggested name:", rec.SuggestedFileName)
	writeLabeled(&b, labelStyle, "key:", rec.Key.Hex())
	writeLabeled(&b, labelStyle, "blobs:", fmt.Sprintf("%d", len(rec.Blobs)))

	b.WriteString("\n")
	for _, blob := range rec.Blobs {
		if blob.IsTerminator() {
			b.WriteString(terminatorStyle.Render(fmt.Sprintf("  #%d  (terminator)\n", blob.BlobNum)))
			continue
		}
		b.WriteString(fmt.Sprintf("  #%-4d %s  %d bytes\n", blob.BlobNum, blob.BlobHash.Hex(), blob.Length))
	}

	return cardBorder.Render(strings.TrimRight(b.String(), "\n"))
}

func writeLabeled(b *strings.Builder, labelStyle lipgloss.Style, label, value string) {
	b.WriteString(labelStyle.Render(label) + " " + value + "\n")
}
