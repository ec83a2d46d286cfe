package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hitmap/internal/config"
	"github.com/kailas-cloud/hitmap/internal/converter"
	"github.com/kailas-cloud/hitmap/internal/domain/hit"
	logpkg "github.com/kailas-cloud/hitmap/internal/logger"
	"github.com/kailas-cloud/hitmap/internal/mapping"
	"github.com/kailas-cloud/hitmap/internal/result"
	chiTransport "github.com/kailas-cloud/hitmap/internal/transport/chi"
	searchuc "github.com/kailas-cloud/hitmap/internal/usecase/search"
)

type mapFlags struct {
	aggregations bool
	suggestions  bool
}

func newMapCmd(g *globals) *cobra.Command {
	f := &mapFlags{}
	cmd := &cobra.Command{
		Use:   "map [file]",
		Short: "Map a raw search response read from a file or stdin",
		Long: "Reads a raw Elasticsearch search response and prints one JSON line per\n" +
			"document as {\"key\": ..., \"document\": ...}, converted with the configured type mapping.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open response: %w", err)
				}
				defer func() { _ = file.Close() }()
				in = file
			}

			ctx := logpkg.ContextWithLogger(cmd.Context(), logger)
			return runMap(ctx, cfg, in, cmd.OutOrStdout(), f, logger)
		},
	}
	cmd.Flags().BoolVar(&f.aggregations, "aggregations", false, "also print the aggregations view")
	cmd.Flags().BoolVar(&f.suggestions, "suggestions", false, "also print the suggestions view")
	return cmd
}

func runMap(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer, f *mapFlags, logger *zap.Logger) error {
	resp, err := hit.Decode(in)
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	registry, err := mapping.FromConfig(cfg.Mapping, nil, logger)
	if err != nil {
		return fmt.Errorf("build type registry: %w", err)
	}

	svc := searchuc.New(nil, registry, converter.New(), cfg.AggregationPrefix())
	it := svc.Map(ctx, resp)

	enc := json.NewEncoder(out)
	err = it.Each(func(k result.Key, doc any) error {
		return enc.Encode(chiTransport.DocumentItem{Key: k, Document: doc})
	})
	if err != nil {
		return err
	}

	if f.aggregations {
		if err := enc.Encode(map[string]any{"aggregations": chiTransport.AggregationsToDTO(it.Aggregations())}); err != nil {
			return err
		}
	}
	if f.suggestions {
		if err := enc.Encode(map[string]any{"suggestions": chiTransport.SuggestionsToDTO(it.Suggestions())}); err != nil {
			return err
		}
	}

	logger.Debug("Response mapped",
		zap.Int("count", it.Count()),
		zap.Int("total", it.TotalCount()),
	)
	return nil
}
