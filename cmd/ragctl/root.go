package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"scholarag/internal/config"
	"scholarag/internal/embedding"
	"scholarag/internal/llm"
	"scholarag/internal/rag/chunker"
	"scholarag/internal/rag/engine"
	"scholarag/internal/rag/extract"
	"scholarag/internal/rag/processor"
	"scholarag/internal/rag/schema"
	"scholarag/internal/rag/vectorstore"
	"scholarag/pkg/logger"
)

type cliOptions struct {
	configPath string
	local      bool
}

// components bundles everything a subcommand needs. With --local the store
// is in-memory and starts empty, which is only useful when the same
// invocation also ingests.
type components struct {
	store     vectorstore.Store
	engine    *engine.Engine
	processor *processor.Processor
	cfg       *config.AppConfig
	closer    func()
}

func (o *cliOptions) build(ctx context.Context) (*components, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	logger.Init(logger.ParseLevel(cfg.LogLevel))
	log := logger.New("ragctl")

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	generator, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, err
	}

	var (
		store  vectorstore.Store
		closer = func() {}
	)
	if o.local {
		store = vectorstore.NewMemory(embedder)
	} else {
		milvus, err := vectorstore.NewMilvus(ctx, cfg.Milvus, embedder, log)
		if err != nil {
			return nil, err
		}
		store = milvus
		closer = func() { milvus.Close() }
	}

	extractor := extract.New(extract.DetectCapabilities(), log)
	ch := chunker.New(cfg.Processing.ChunkSize, cfg.Processing.ChunkOverlap)
	proc := processor.New(extractor, ch, cfg.Processing.IngestWorkers, log)
	eng := engine.New(store, generator, nil, cfg.Processing, log)

	return &components{store: store, engine: eng, processor: proc, cfg: cfg, closer: closer}, nil
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "ragctl",
		Short:         "Manage and query the scholarag document corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config/config.yaml", "path to the YAML config file")
	root.PersistentFlags().BoolVar(&opts.local, "local", false, "use an in-memory store instead of Milvus")

	root.AddCommand(
		newIngestCmd(opts),
		newSearchCmd(opts),
		newStatsCmd(opts),
		newResetCmd(opts),
	)
	return root
}

func newIngestCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [dir]",
		Short: "Process a directory of documents and add them to the store",
		Long: `Process a directory tree of documents and add the resulting passages to the
store. The store is append-only: ingesting the same directory twice stores
every passage twice. Run "ragctl reset --yes" first to rebuild from scratch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			comps, err := opts.build(ctx)
			if err != nil {
				return err
			}
			defer comps.closer()

			dir := comps.cfg.Processing.DataDir
			if len(args) == 1 {
				dir = args[0]
			}

			passages, err := comps.processor.ProcessDirectory(ctx, dir)
			if err != nil {
				return err
			}
			if err := comps.store.Add(ctx, passages); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ingested %d passages from %s\n", len(passages), dir)
			return nil
		},
	}
}

func newSearchCmd(opts *cliOptions) *cobra.Command {
	var (
		k            int
		documentType string
		company      string
		subject      string
		difficulty   string
		year         string
		raw          bool
	)

	cmd := &cobra.Command{
		Use:   "search <question>",
		Short: "Ask a question over the corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			comps, err := opts.build(ctx)
			if err != nil {
				return err
			}
			defer comps.closer()

			filters := schema.Filters{}
			for key, value := range map[string]string{
				schema.KeyDocumentType: documentType,
				schema.KeyCompany:      company,
				schema.KeySubject:      subject,
				schema.KeyDifficulty:   difficulty,
				schema.KeyYear:         year,
			} {
				if value != "" {
					filters[key] = value
				}
			}

			if raw {
				passages, err := comps.engine.RelevantPassages(ctx, args[0], k, filters)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), passages)
			}

			answer := comps.engine.Answer(ctx, args[0], k, filters)
			return printJSON(cmd.OutOrStdout(), answer)
		},
	}

	cmd.Flags().IntVarP(&k, "max-docs", "k", 0, "number of passages to retrieve (0 uses the configured default)")
	cmd.Flags().StringVar(&documentType, "type", "", "filter by document type")
	cmd.Flags().StringVar(&company, "company", "", "filter by company")
	cmd.Flags().StringVar(&subject, "subject", "", "filter by subject")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "filter by difficulty")
	cmd.Flags().StringVar(&year, "year", "", "filter by year")
	cmd.Flags().BoolVar(&raw, "raw", false, "print scored passages instead of a generated answer")
	return cmd
}

func newStatsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store size and available filter values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			comps, err := opts.build(ctx)
			if err != nil {
				return err
			}
			defer comps.closer()

			count, err := comps.store.Count(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"total_passages": count,
				"filters":        comps.store.AvailableFilterValues(ctx),
			})
		},
	}
}

func newResetCmd(opts *cliOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every passage from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes all stored passages; re-run with --yes to confirm")
			}
			ctx := cmd.Context()
			comps, err := opts.build(ctx)
			if err != nil {
				return err
			}
			defer comps.closer()

			if err := comps.store.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "store reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
