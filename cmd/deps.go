package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/change8/BiddingAssistant/api/schemas"
	"github.com/change8/BiddingAssistant/internal/config"
	"github.com/change8/BiddingAssistant/internal/llmclient"
	"github.com/change8/BiddingAssistant/internal/retrieval"
	"github.com/change8/BiddingAssistant/internal/store"
)

// buildRetriever constructs the lexical retriever from the retrieval config.
func buildRetriever(cfg *config.Config) *retrieval.HeuristicRetriever {
	return retrieval.NewHeuristicRetriever(
		retrieval.WithLimit(cfg.Retrieval.Limit),
		retrieval.WithSegmentChars(cfg.Retrieval.SegmentChars),
		retrieval.WithMinScore(cfg.Retrieval.MinScore),
	)
}

// buildGateway wires the model gateway for the configured provider.
func buildGateway(cfg *config.Config, retriever schemas.Retriever, logger *zap.Logger) (*llmclient.Gateway, error) {
	gw, err := llmclient.New(cfg.LLM, retriever, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure LLM provider: %w", err)
	}
	return gw, nil
}

// buildStore selects the job store driver. The returned closer releases the
// database pool for the postgres driver and is a no-op for memory.
func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (schemas.JobStore, func(), error) {
	switch strings.ToLower(cfg.Store.Driver) {
	case "", "memory":
		return store.NewMemory(), func() {}, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		pg, err := store.NewPostgres(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store.driver %q", cfg.Store.Driver)
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
