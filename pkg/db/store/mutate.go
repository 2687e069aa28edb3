package store

import (
	"context"
	"fmt"

	"github.com/mwantia/mediacat/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Insert adds a new item for an unseen hash and attaches its classes. When
// the hash is already catalogued only the stored path is moved to the new
// location; classes and visibility of the existing item stay untouched.
func (s *SQLiteStore) Insert(ctx context.Context, path string, classes []string, hash string) error {
	if hash == "" {
		return ErrEmptyHash
	}
	if path == "" {
		return ErrEmptyPath
	}

	db := s.db.WithContext(ctx)

	media := models.Media{Hash: hash, Path: path}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hash"}},
		DoNothing: true,
	}).Create(&media)
	if result.Error != nil {
		return fmt.Errorf("failed to insert media %s: %w", path, result.Error)
	}

	if result.RowsAffected == 0 {
		err := db.Model(&models.Media{}).
			Where("hash = ?", hash).
			Update("path", path).Error
		if err != nil {
			return fmt.Errorf("failed to relocate media %s: %w", hash, err)
		}

		s.log.Debug("Relocated '%s' to '%s'", hash, path)
		return nil
	}

	labels := normalizeClasses(classes)
	for _, label := range labels {
		classID, err := s.findOrCreateClass(db, label)
		if err != nil {
			return err
		}

		err = db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Junction{ImageID: media.ImageID, ClassID: classID}).Error
		if err != nil {
			return fmt.Errorf("failed to link '%s' to class '%s': %w", path, label, err)
		}
	}

	s.log.Debug("Catalogued '%s' (%s) with %d class(es)", path, hash, len(labels))
	return nil
}

// findOrCreateClass inserts the label unless it exists and returns its id.
// A concurrent writer may create the label between both statements; the
// second read then observes that row.
func (s *SQLiteStore) findOrCreateClass(db *gorm.DB, label string) (uint, error) {
	class := models.Class{Label: label}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class"}},
		DoNothing: true,
	}).Create(&class)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to create class '%s': %w", label, result.Error)
	}

	if result.RowsAffected == 0 || class.ClassID == 0 {
		class = models.Class{}
		if err := db.Where("class = ?", label).First(&class).Error; err != nil {
			return 0, fmt.Errorf("failed to read class '%s': %w", label, err)
		}
	}

	return class.ClassID, nil
}

// normalizeClasses drops empty and repeated labels. Labels are otherwise
// stored exactly as given.
func normalizeClasses(classes []string) []string {
	seen := make(map[string]struct{}, len(classes))
	labels := make([]string, 0, len(classes))
	for _, label := range classes {
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}

// ToggleVisibility sets the hidden flag of every item whose path is listed.
// Unknown paths are ignored.
func (s *SQLiteStore) ToggleVisibility(ctx context.Context, paths []string, hidden bool) error {
	for _, batch := range chunk(paths, s.cfg.BatchSize) {
		err := s.db.WithContext(ctx).
			Model(&models.Media{}).
			Where("path IN ?", batch).
			Update("hidden", hidden).Error
		if err != nil {
			return fmt.Errorf("failed to update visibility: %w", err)
		}
	}
	return nil
}

// HideByClass hides all currently visible members of the given classes
func (s *SQLiteStore) HideByClass(ctx context.Context, classes []string) error {
	paths, err := s.TupleByClass(ctx, classes, VisibilityShown, AttributePath)
	if err != nil {
		return err
	}
	return s.ToggleVisibility(ctx, paths, true)
}

// UnhideByClass shows all currently hidden members of the given classes
func (s *SQLiteStore) UnhideByClass(ctx context.Context, classes []string) error {
	paths, err := s.TupleByClass(ctx, classes, VisibilityHidden, AttributePath)
	if err != nil {
		return err
	}
	return s.ToggleVisibility(ctx, paths, false)
}

// Delete removes the items stored at the given paths together with their
// class links, then removes the backing files of the items that were found.
// Paths the catalog does not hold are skipped and their files left alone.
// A failing file removal does not restore the catalog rows.
func (s *SQLiteStore) Delete(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	db := s.db.WithContext(ctx)
	removed := make([]string, 0, len(paths))
	for _, batch := range chunk(paths, s.cfg.BatchSize) {
		var hits []string
		if err := db.Model(&models.Media{}).Where("path IN ?", batch).Pluck("path", &hits).Error; err != nil {
			return fmt.Errorf("failed to resolve media: %w", err)
		}
		if len(hits) == 0 {
			continue
		}

		members := db.Model(&models.Media{}).Select("imageID").Where("path IN ?", hits)
		if err := db.Where("imageID IN (?)", members).Delete(&models.Junction{}).Error; err != nil {
			return fmt.Errorf("failed to delete class links: %w", err)
		}
		if err := db.Where("path IN ?", hits).Delete(&models.Media{}).Error; err != nil {
			return fmt.Errorf("failed to delete media: %w", err)
		}
		removed = append(removed, hits...)
	}

	if s.files == nil || len(removed) == 0 {
		return nil
	}
	if err := s.files.Remove(removed...); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}
	return nil
}

// DeleteByClass deletes every member of the given classes, hidden or not
func (s *SQLiteStore) DeleteByClass(ctx context.Context, classes []string) error {
	paths, err := s.TupleByClass(ctx, classes, VisibilityAny, AttributePath)
	if err != nil {
		return err
	}
	return s.Delete(ctx, paths)
}

// PruneClasses removes class labels that no item references anymore
func (s *SQLiteStore) PruneClasses(ctx context.Context) (int64, error) {
	db := s.db.WithContext(ctx)

	used := db.Model(&models.Junction{}).Select("classID")
	result := db.Where("classID NOT IN (?)", used).Delete(&models.Class{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune classes: %w", result.Error)
	}
	return result.RowsAffected, nil
}
