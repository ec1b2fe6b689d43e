package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	ingestuc "github.com/kailas-cloud/recdex/internal/usecase/ingest"
)

// reportView is the JSON shape of an ingestion report.
type reportView ingestuc.Report

func newIngestCmd() *cobra.Command {
	var corpusPath string
	var batchSize int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Rebuild the collection from a corpus file and print the report",
		Long: `Rebuild the collection from a corpus file.

The collection is dropped and recreated, then every document is embedded in
batches and stored under its corpus position. The index lives in process
memory, so this command is mainly useful to validate a corpus and warm the
embedding cache; the report is printed as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if corpusPath == "" {
				corpusPath = cfg.Index.Corpus
			}
			if corpusPath == "" {
				return errors.New("--corpus is required")
			}

			a, err := newApp(cmd.Context(), env, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.ingestFile(cmd.Context(), corpusPath, batchSize)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				reportView
				DurationMS int64 `json:"duration_ms"`
			}{reportView(report), report.Duration.Milliseconds()})
		},
	}

	cmd.Flags().StringVar(&corpusPath, "corpus", "", "Corpus file (JSON array or JSON Lines)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Documents per embedding call (default: index.batch_size)")
	return cmd
}
