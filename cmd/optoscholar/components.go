// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/optoscholar/internal/library"
	"github.com/pdiddy/optoscholar/internal/search"
	"github.com/pdiddy/optoscholar/pkg/types"
)

func newGateway(cfg types.Config) *search.PubMed {
	return search.NewPubMed(cfg.Gateway, nil, logger, metrics)
}

// openLibrary opens the configured slot and loads the library from it. The
// returned func flushes pending writes and releases the slot.
func openLibrary(ctx context.Context, cfg types.Config) (*library.Store, func(), error) {
	slot, closeSlot, err := library.OpenSlot(ctx, cfg.Library)
	if err != nil {
		return nil, nil, fmt.Errorf("opening library: %w", err)
	}
	store := library.Open(ctx, slot, logger, metrics)
	return store, func() {
		store.Close()
		if err := closeSlot(); err != nil {
			logger.Warn("closing library slot", zap.Error(err))
		}
	}, nil
}

// lookupArticle returns the saved record for id, or fetches its summary
// from the index.
func lookupArticle(ctx context.Context, gw *search.PubMed, store *library.Store, id string) (types.ArticleRecord, error) {
	if store != nil {
		if a, ok := store.Get(id); ok {
			return a, nil
		}
	}
	items, err := gw.FetchSummaries(ctx, []string{id})
	if err != nil {
		return types.ArticleRecord{}, err
	}
	for _, a := range items {
		if a.ID == id {
			return a, nil
		}
	}
	return types.ArticleRecord{}, fmt.Errorf("article %s not found", id)
}
