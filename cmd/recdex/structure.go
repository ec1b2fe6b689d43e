package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/segmenter"
	summaryuc "github.com/kailas-cloud/recdex/internal/usecase/summary"
)

func newStructureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "structure [file|-]",
		Short: "Lay out generated summary text as headings and paragraphs",
		Long: `Read summary text from a file (or stdin when the argument is "-" or
omitted) and print it laid out as plain-text headings and paragraphs. A
sentence shorter than 60 characters becomes a heading line when it ends with
a colon or mentions key points, highlights, summary, conclusion, findings or
results. No configuration or provider is needed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				r = f
			}
			data, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			seg, err := segmenter.NewPunkt()
			if err != nil {
				return err
			}
			svc := summaryuc.New(nil, seg, zap.NewNop())

			_, err = fmt.Fprintln(cmd.OutOrStdout(), svc.Structure(string(data)))
			return err
		},
	}
}
