package store

import (
	"context"
	"fmt"

	"github.com/mwantia/mediacat/pkg/db/models"
	"gorm.io/gorm"
)

// Clean removes every item whose backing file no longer exists and returns
// the removed paths. Items are scanned in batches and the scan stops once
// ctx is cancelled; nothing is deleted unless the scan completes.
func (s *SQLiteStore) Clean(ctx context.Context) ([]string, error) {
	if s.files == nil {
		return nil, fmt.Errorf("clean requires a filesystem prober")
	}

	var stale []string
	var batch []models.Media

	result := s.db.WithContext(ctx).
		Select("imageID", "path").
		FindInBatches(&batch, s.cfg.BatchSize, func(tx *gorm.DB, _ int) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			for _, media := range batch {
				exists, err := s.files.Exists(media.Path)
				if err != nil {
					return fmt.Errorf("failed to probe %s: %w", media.Path, err)
				}
				if !exists {
					stale = append(stale, media.Path)
				}
			}
			return nil
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to scan media: %w", result.Error)
	}

	if len(stale) == 0 {
		return nil, nil
	}

	s.log.Info("Removing %d stale catalog entries: %v", len(stale), stale)
	if err := s.Delete(ctx, stale); err != nil {
		return nil, err
	}
	return stale, nil
}
