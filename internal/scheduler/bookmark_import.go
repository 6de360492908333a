package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/doodl/internal/domain"
	"github.com/MrSnakeDoc/doodl/internal/logger"
	"github.com/MrSnakeDoc/doodl/internal/sources/importfile"
)

// ImportStore is the part of the bookmark store the importer writes to.
type ImportStore interface {
	EnsureUser(ctx context.Context, id domain.Identity) (domain.Scope, error)
	AddBookmark(ctx context.Context, scope domain.Scope, in domain.NewBookmark) (*domain.Bookmark, error)
}

// ImportResult summarises one import run.
type ImportResult struct {
	Added   int
	Skipped int
	Failed  int
}

// BookmarkImporter handles periodic imports of a bookmarks file into one account
type BookmarkImporter struct {
	loader        *importfile.Loader
	mapper        *importfile.Mapper
	store         ImportStore
	owner         string
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewBookmarkImporter creates a new bookmark importer
func NewBookmarkImporter(
	importFile string,
	ownerEmail string,
	store ImportStore,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *BookmarkImporter {
	return &BookmarkImporter{
		loader:        importfile.NewLoader(importFile),
		mapper:        importfile.NewMapper(),
		store:         store,
		owner:         ownerEmail,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs a first import, then re-imports on interval and on manual trigger
func (bi *BookmarkImporter) Start(ctx context.Context) error {
	// A failed first import is retried on the next tick or manual trigger.
	if _, err := bi.Import(ctx); err != nil {
		bi.logger.Warn("initial bookmark import failed", logger.Error(err))
	}

	ticker := time.NewTicker(bi.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := bi.Import(ctx); err != nil {
					bi.logger.Error("failed to import bookmarks",
						logger.Error(err))
				}
			case <-bi.manualTrigger:
				bi.logger.Info("manual bookmark import triggered")
				if _, err := bi.Import(ctx); err != nil {
					bi.logger.Error("failed to import bookmarks",
						logger.Error(err))
				}
			case <-bi.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the importer
func (bi *BookmarkImporter) Stop() {
	close(bi.stopCh)
}

// Import loads the file and adds every bookmark the owner does not have yet.
// Imported entries carry their own title, so they are never enriched.
func (bi *BookmarkImporter) Import(ctx context.Context) (ImportResult, error) {
	var res ImportResult

	bi.logger.Info("importing bookmarks",
		logger.String("file", bi.loader.Path()))

	file, err := bi.loader.Load()
	if err != nil {
		return res, fmt.Errorf("failed to load bookmarks: %w", err)
	}

	entries, err := bi.mapper.MapBookmarks(file)
	if err != nil {
		return res, fmt.Errorf("failed to map bookmarks: %w", err)
	}

	scope, err := bi.store.EnsureUser(ctx, domain.Identity{Email: bi.owner})
	if err != nil {
		return res, fmt.Errorf("failed to resolve import owner: %w", err)
	}

	for _, nb := range entries {
		_, err := bi.store.AddBookmark(ctx, scope, nb)
		switch {
		case err == nil:
			res.Added++
		case errors.Is(err, domain.ErrConflict):
			res.Skipped++
		default:
			res.Failed++
			bi.logger.Warn("failed to import bookmark",
				logger.String("url", nb.URL),
				logger.Error(err))
		}
	}

	bi.logger.Info("bookmark import completed",
		logger.Int("added", res.Added),
		logger.Int("skipped", res.Skipped),
		logger.Int("failed", res.Failed))

	return res, nil
}
