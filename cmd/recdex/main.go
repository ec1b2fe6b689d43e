package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/recdex/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

const rootLongDesc = `recdex indexes a corpus of research documents and recommends the
nearest ones for free-text queries. It can also structure generated
summaries into heading/paragraph layout.

Configuration is read from config/<ENV>.yaml (ENV defaults to local);
a .env file in the working directory is loaded first when present.`

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recdex",
		Short:         "Semantic document index and recommendation service",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("env", "", "Config environment (default: $ENV or local)")

	root.AddCommand(
		newServeCmd(),
		newIngestCmd(),
		newRecommendCmd(),
		newStructureCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
