// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/poiesic/chunkstore"
	"github.com/poiesic/chunkstore/ai"
	"github.com/poiesic/chunkstore/ingestion"
	"github.com/poiesic/chunkstore/reembed"
	"github.com/poiesic/chunkstore/storage"
	"github.com/urfave/cli/v2"
)

const (
	flagChunksJSONL    = "chunks_jsonl"
	flagMode           = "mode"
	flagResetDB        = "reset_db"
	flagCollection     = "collection"
	flagPersistDir     = "persist_dir"
	flagBatchSize      = "batch_size"
	flagDryRun         = "dry_run"
	flagManifest       = "manifest"
	flagReportInterval = "report_interval"
	flagRequireMeta    = "require_meta"
	flagEmbeddingHost  = "embedding-host"
	flagEmbeddingModel = "embedding-model"
	flagAPIToken       = "api-token"
	flagEmbedRetries   = "embed_retries"
	flagRetryDelay     = "retry_delay"
	flagLogLevel       = "log-level"
	flagConfig         = "config"
	flagOut            = "out"
)

// Process exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitInput    = 2
	exitConflict = 3
	exitStore    = 4
)

// DefaultPersistDir is the store directory used when none is configured.
const DefaultPersistDir = "stage_3_chroma"

func main() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(exitFailure)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "chunkstore",
		Usage:     "Load JSON-lines chunk records into a persistent collection",
		UsageText: "chunkstore --chunks_jsonl FILE [--mode rebuild|append|upsert] [--reset_db] [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagChunksJSONL,
				Aliases: []string{"chunks-jsonl", "c"},
				Usage:   "Path to the JSON-lines chunks file (required to ingest)",
			},
			&cli.StringFlag{
				Name:    flagMode,
				Aliases: []string{"m"},
				Usage:   "Ingestion mode: rebuild, append or upsert",
				Value:   string(ingestion.DefaultMode),
			},
			&cli.BoolFlag{
				Name:    flagResetDB,
				Aliases: []string{"reset-db"},
				Usage:   "Delete the whole persistence directory first (rebuild only)",
			},
			&cli.StringFlag{
				Name:    flagCollection,
				Usage:   "Collection name",
				Value:   ingestion.DefaultCollection,
				EnvVars: []string{"CHUNKSTORE_COLLECTION"},
			},
			&cli.StringFlag{
				Name:    flagPersistDir,
				Aliases: []string{"persist-dir", "db_dir"},
				Usage:   "Persistence directory of the store (--db_dir is deprecated)",
				Value:   DefaultPersistDir,
				EnvVars: []string{"CHUNKSTORE_PERSIST_DIR"},
			},
			&cli.IntFlag{
				Name:    flagBatchSize,
				Aliases: []string{"batch-size"},
				Usage:   "Records embedded and written per batch",
				Value:   ingestion.DefaultBatchSize,
			},
			&cli.BoolFlag{
				Name:    flagDryRun,
				Aliases: []string{"dry-run"},
				Usage:   "Read and check the input without touching the store",
			},
			&cli.StringFlag{
				Name:  flagManifest,
				Usage: "Run manifest path; empty disables the manifest",
				Value: ingestion.DefaultManifestPath,
			},
			&cli.IntFlag{
				Name:    flagReportInterval,
				Aliases: []string{"report-interval"},
				Usage:   "Report progress every N records; 0 disables",
				Value:   1000,
			},
			&cli.StringSliceFlag{
				Name:    flagRequireMeta,
				Aliases: []string{"require-meta"},
				Usage:   "Metadata key every record must carry (repeatable)",
			},
			&cli.StringFlag{
				Name:    flagEmbeddingHost,
				Usage:   "Embedding service host URL",
				Value:   ai.DefaultEmbeddingHost,
				EnvVars: []string{"CHUNKSTORE_EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    flagEmbeddingModel,
				Aliases: []string{"embed_model"},
				Usage:   "Embedding model name; records are stored without vectors when empty",
				EnvVars: []string{"CHUNKSTORE_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    flagAPIToken,
				Usage:   "API token for hosted embedding services",
				EnvVars: []string{"OPENAI_API_KEY"},
			},
			&cli.IntFlag{
				Name:    flagEmbedRetries,
				Aliases: []string{"embed-retries"},
				Usage:   "Attempts per embedding request; 1 disables retries",
				Value:   1,
			},
			&cli.DurationFlag{
				Name:    flagRetryDelay,
				Aliases: []string{"retry-delay"},
				Usage:   "Base delay for exponential backoff between embedding attempts",
				Value:   ingestion.DefaultRetryDelay,
			},
			&cli.StringFlag{
				Name:    flagLogLevel,
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    flagConfig,
				Usage:   "YAML file supplying defaults for the flags above",
				EnvVars: []string{"CHUNKSTORE_CONFIG"},
			},
		},
		Before: before,
		Action: ingestCommand,
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "List collections and their record counts",
				Action: statsCommand,
			},
			{
				Name:      "export",
				Usage:     "Write a collection back out as JSON lines, ordered by id",
				ArgsUsage: "[collection]",
				Action:    exportCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagOut,
						Aliases: []string{"o"},
						Usage:   "Output file (default stdout)",
					},
				},
			},
			{
				Name:      "reembed",
				Usage:     "Replace every vector of a collection using --embedding-model",
				ArgsUsage: "[collection]",
				Action:    reembedCommand,
			},
		},
	}
}

func before(c *cli.Context) error {
	if err := applyFileConfig(c); err != nil {
		return cli.Exit(err, exitInput)
	}
	return setupLogger(c)
}

func ingestCommand(c *cli.Context) error {
	chunksPath := c.String(flagChunksJSONL)
	if chunksPath == "" {
		return cli.Exit(fmt.Sprintf("--%s is required", flagChunksJSONL), exitInput)
	}
	mode, err := ingestion.ParseMode(c.String(flagMode))
	if err != nil {
		return exitError(err)
	}
	if c.IsSet("db_dir") {
		slog.Warn("--db_dir is deprecated, use --persist_dir")
	}

	store, err := openStore(c)
	if err != nil {
		return exitError(err)
	}

	ingester, err := store.NewIngester(
		ingestion.WithCollection(c.String(flagCollection)),
		ingestion.WithBatchSize(c.Int(flagBatchSize)),
		ingestion.WithDryRun(c.Bool(flagDryRun)),
		ingestion.WithManifestPath(c.String(flagManifest)),
		ingestion.WithRequiredMetadata(c.StringSlice(flagRequireMeta)...),
		ingestion.WithProgress(c.App.ErrWriter, c.Int(flagReportInterval)),
		ingestion.WithEmbedRetries(c.Int(flagEmbedRetries), c.Duration(flagRetryDelay)),
	)
	if err != nil {
		return exitError(err)
	}

	summary, err := ingester.Ingest(c.Context, chunksPath, mode, c.Bool(flagResetDB))
	if summary != nil {
		printSummary(c.App.Writer, summary)
	}
	if err != nil {
		return exitError(err)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return exitError(err)
	}
	stats, err := store.Stats(c.Context)
	if err != nil {
		return exitError(err)
	}

	if len(stats) == 0 {
		fmt.Fprintf(c.App.Writer, "No collections in %s\n", store.Location())
		return nil
	}
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COLLECTION\tCHUNKS\tEMBED MODEL\tSETTINGS HASH\tUPDATED")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			s.Collection.Name,
			s.Chunks,
			orDash(s.Collection.Metadata["embed_model"]),
			orDash(s.Collection.Metadata["settings_hash"]),
			s.Collection.UpdatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func exportCommand(c *cli.Context) (err error) {
	collection := c.String(flagCollection)
	if c.Args().Present() {
		collection = c.Args().First()
	}

	store, err := openStore(c)
	if err != nil {
		return exitError(err)
	}

	out := c.App.Writer
	if path := c.String(flagOut); path != "" {
		f, createErr := os.Create(path)
		if createErr != nil {
			return cli.Exit(createErr, exitFailure)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = cli.Exit(closeErr, exitFailure)
			}
		}()
		out = f
	}

	n, err := store.Export(c.Context, collection, out)
	if err != nil {
		return exitError(err)
	}
	slog.Info("exported collection", "collection", collection, "records", n)
	return nil
}

func reembedCommand(c *cli.Context) error {
	collection := c.String(flagCollection)
	if c.Args().Present() {
		collection = c.Args().First()
	}
	model := c.String(flagEmbeddingModel)
	if model == "" {
		return cli.Exit(fmt.Sprintf("--%s is required to reembed", flagEmbeddingModel), exitInput)
	}

	store, err := openStore(c)
	if err != nil {
		return exitError(err)
	}

	n, err := store.Reembed(c.Context, collection, &reembed.Config{
		BatchSize:      c.Int(flagBatchSize),
		ReportInterval: c.Int(flagReportInterval),
		MaxRetries:     c.Int(flagEmbedRetries),
		RetryDelay:     c.Duration(flagRetryDelay),
	}, c.App.ErrWriter)
	if err != nil {
		return exitError(err)
	}
	fmt.Fprintf(c.App.Writer, "reembedded %d records in %q with %s\n", n, collection, model)
	return nil
}

// openStore builds the store for the persistence directory and embedding
// settings given on the command line.
func openStore(c *cli.Context) (*chunkstore.Store, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String(flagEmbeddingHost)),
		ai.WithEmbeddingModel(c.String(flagEmbeddingModel)),
		ai.WithAPIToken(c.String(flagAPIToken)),
		ai.WithBatchSize(c.Int(flagBatchSize)),
	)
	return chunkstore.OpenDir(c.String(flagPersistDir), chunkstore.WithAIConfig(aiConfig))
}

func printSummary(w io.Writer, s *ingestion.Summary) {
	if s.DryRun {
		fmt.Fprintf(w, "dry run: %d records read, %d to write into %q (settings %s)\n",
			s.Read, s.Planned, s.Collection, s.SettingsHash)
		return
	}
	fmt.Fprintf(w, "%s %q in %s: %d read, %d inserted, %d replaced",
		s.Mode, s.Collection, s.PersistDir, s.Read, s.Inserted, s.Replaced)
	if s.StoreReset {
		fmt.Fprint(w, ", store reset")
	} else if s.CollectionDeleted {
		fmt.Fprint(w, ", collection recreated")
	}
	fmt.Fprintf(w, " (%s)\n", s.Elapsed.Round(time.Millisecond))
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ingestion.ErrInvalidInput), errors.Is(err, storage.ErrNotFound):
		return exitInput
	case errors.Is(err, ingestion.ErrConflict):
		return exitConflict
	case errors.Is(err, ingestion.ErrStore):
		return exitStore
	default:
		return exitFailure
	}
}

func exitError(err error) error {
	return cli.Exit(err, exitCode(err))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String(flagLogLevel))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
