package streamcore

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streamcore",
		Short: "Pack, inspect and serve LBRY-style stream descriptors and blobs",
		Long: `streamcore partitions a source file into content-addressed, AES-CBC
encrypted blobs, computes its stream hash, and emits the resulting stream
descriptor blob -- and performs the inverse ingest and validation.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	cmd.AddCommand(createCmd())
	cmd.AddCommand(ingestCmd())
	cmd.AddCommand(inspectCmd())
	cmd.AddCommand(serveCmd())

	return cmd
}

// Execute runs the streamcore root command. It is the sole entrypoint
// cmd/streamcore/main.go calls.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
