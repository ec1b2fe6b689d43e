package main

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

func newRecommendCmd() *cobra.Command {
	var corpusPath string
	var k int

	cmd := &cobra.Command{
		Use:   "recommend [query...]",
		Short: "Ingest a corpus and print the nearest documents for a query",
		Long: `Ingest a corpus in process, then print the k nearest documents for the
query as a JSON array of {title, url, description}. Arguments are joined
with spaces to form the query.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if _, err := a.ingestFile(cmd.Context(), corpusPath, 0); err != nil {
				return err
			}

			recs, err := a.recommend.Recommend(cmd.Context(), strings.Join(args, " "), k)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		},
	}

	cmd.Flags().StringVar(&corpusPath, "corpus", "", "Corpus file (JSON array or JSON Lines)")
	cmd.Flags().IntVarP(&k, "k", "k", 0, "Number of recommendations (default: index.default_k)")
	return cmd
}
