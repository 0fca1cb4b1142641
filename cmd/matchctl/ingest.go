package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/matchd/internal/config"
	"github.com/fyrsmithlabs/matchd/internal/embeddings"
	"github.com/fyrsmithlabs/matchd/internal/logging"
	"github.com/fyrsmithlabs/matchd/internal/qdrant"
	"github.com/fyrsmithlabs/matchd/internal/vehicles"
)

var (
	ingestBatchSize int
	ingestMaxRows   int
)

// ingestCmd loads a vehicle CSV into the vector index
var ingestCmd = &cobra.Command{
	Use:   "ingest <csv-file>",
	Short: "Ingest a vehicle dataset CSV into the vector index",
	Long: `Ingest a used-car dataset CSV into the matchd vector index.

Each row is embedded from a natural-language summary and upserted with
a stable ID derived from the vehicle name and year, so re-running the
command updates listings instead of duplicating them.

Examples:
  # Ingest the full dataset
  matchctl ingest "Car details v3.csv"

  # Ingest a sample with a custom config
  matchctl ingest --config matchd.yaml --max-rows 100 cars.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

// resetIndexCmd drops and recreates the vehicle collection
var resetIndexCmd = &cobra.Command{
	Use:   "reset-index",
	Short: "Drop and recreate the vehicle collection",
	Long: `Drop the vehicle collection and recreate it empty.

All ingested listings are lost. Requires --force.

Examples:
  matchctl reset-index --force`,
	RunE: runResetIndex,
}

var resetForce bool

func init() {
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 50, "listings per embedding and upsert batch")
	ingestCmd.Flags().IntVar(&ingestMaxRows, "max-rows", 0, "maximum rows to ingest (0 = all)")
	resetIndexCmd.Flags().BoolVar(&resetForce, "force", false, "confirm dropping all ingested listings")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	index, embedder, cleanup, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := index.EnsureCollection(ctx); err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading csv header: %w", err)
	}

	var batch []vehicles.DatasetRow
	total := 0
	for {
		if ingestMaxRows > 0 && total >= ingestMaxRows {
			break
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading csv row: %w", err)
		}

		row := vehicles.RowFromRecord(header, record)
		if row.Name == "" {
			continue
		}
		batch = append(batch, row)
		total++

		if len(batch) >= ingestBatchSize {
			if err := ingestBatch(ctx, index, embedder, batch); err != nil {
				return err
			}
			fmt.Printf("Ingested %d listings...\n", total)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := ingestBatch(ctx, index, embedder, batch); err != nil {
			return err
		}
	}

	fmt.Printf("Done. Total listings ingested: %d\n", total)
	return nil
}

func ingestBatch(ctx context.Context, index *vehicles.Index, embedder embeddings.Provider, rows []vehicles.DatasetRow) error {
	texts := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.EmbeddingText()
	}

	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding batch: %w", err)
	}
	if len(vectors) != len(rows) {
		return fmt.Errorf("embedding batch: got %d vectors for %d rows", len(vectors), len(rows))
	}

	listings := make([]vehicles.Listing, len(rows))
	for i, row := range rows {
		listings[i] = vehicles.Listing{
			ID:      row.CanonicalID(),
			Vector:  vectors[i],
			Payload: row.Payload(),
		}
	}
	return index.Upsert(ctx, listings)
}

func runResetIndex(cmd *cobra.Command, _ []string) error {
	if !resetForce {
		return fmt.Errorf("reset-index drops all ingested listings; re-run with --force")
	}

	ctx := cmd.Context()
	index, _, cleanup, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := index.Reset(ctx); err != nil {
		return err
	}
	fmt.Println("Vehicle collection reset.")
	return nil
}

// openIndex connects to Qdrant and the embedding provider using the
// matchd config.
func openIndex(_ context.Context) (*vehicles.Index, embeddings.Provider, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, "console")
	if err != nil {
		return nil, nil, nil, err
	}

	embedder, err := embeddings.NewProvider(cfg.Embeddings.Provider, embeddings.Config{
		Model:     cfg.Embeddings.Model,
		APIKey:    cfg.Embeddings.APIKey.Value(),
		BaseURL:   cfg.Embeddings.BaseURL,
		Dimension: cfg.Embeddings.Dimension,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating embedding provider: %w", err)
	}

	client, err := qdrant.NewGRPCClient(&qdrant.ClientConfig{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		UseTLS: cfg.Qdrant.UseTLS,
		APIKey: cfg.Qdrant.APIKey.Value(),
	}, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	index, err := vehicles.NewIndex(client, cfg.Qdrant.Collection, embedder.Dimension(), logger)
	if err != nil {
		client.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		_ = client.Close()
		_ = logging.Sync(logger)
	}
	return index, embedder, cleanup, nil
}
