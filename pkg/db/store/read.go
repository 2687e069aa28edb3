package store

import (
	"context"
	"fmt"

	"github.com/mwantia/mediacat/pkg/db/models"
	"gorm.io/gorm"
)

// HashExists reports whether any item currently holds the given hash
func (s *SQLiteStore) HashExists(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := s.db.WithContext(ctx).
		Raw("SELECT EXISTS(SELECT 1 FROM MEDIA WHERE hash = ?)", hash).
		Scan(&exists).Error
	if err != nil {
		return false, fmt.Errorf("failed to check hash: %w", err)
	}
	return exists, nil
}

type classValue struct {
	Class string
	Value string
}

// GroupByClass maps every class label to the projected attribute of its
// members with the requested visibility. Classes without matching members
// are absent from the result.
func (s *SQLiteStore) GroupByClass(ctx context.Context, visibility Visibility, attribute Attribute) (map[string][]string, error) {
	column, err := attribute.column()
	if err != nil {
		return nil, err
	}

	var pairs []classValue
	err = s.classJoin(ctx).
		Select("c.class AS class, " + column + " AS value").
		Scopes(withVisibility("m.hidden", visibility)).
		Order("c.classID, j.rowid").
		Scan(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group by class: %w", err)
	}

	groups := make(map[string][]string)
	for _, pair := range pairs {
		groups[pair.Class] = append(groups[pair.Class], pair.Value)
	}
	return groups, nil
}

// TupleByClass returns the distinct attribute values of items belonging to
// any of the given classes. Unknown or empty class lists yield no values.
func (s *SQLiteStore) TupleByClass(ctx context.Context, classes []string, visibility Visibility, attribute Attribute) ([]string, error) {
	column, err := attribute.column()
	if err != nil {
		return nil, err
	}

	values := []string{}
	if len(classes) == 0 {
		return values, nil
	}

	err = s.classJoin(ctx).
		Select("DISTINCT "+column).
		Where("c.class IN ?", classes).
		Scopes(withVisibility("m.hidden", visibility)).
		Order(column).
		Scan(&values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve classes: %w", err)
	}
	return values, nil
}

// ListMedia returns all items with the requested visibility, oldest first
func (s *SQLiteStore) ListMedia(ctx context.Context, visibility Visibility) ([]models.Media, error) {
	var media []models.Media
	err := s.db.WithContext(ctx).
		Scopes(withVisibility("hidden", visibility)).
		Order("imageID").
		Find(&media).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return media, nil
}

// MediaClasses returns the class labels attached to the item at path
func (s *SQLiteStore) MediaClasses(ctx context.Context, path string) ([]string, error) {
	labels := []string{}
	err := s.classJoin(ctx).
		Where("m.path = ?", path).
		Order("c.class").
		Pluck("c.class", &labels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query classes of %s: %w", path, err)
	}
	return labels, nil
}

func (s *SQLiteStore) classJoin(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("CLASS AS c").
		Joins("JOIN JUNCTION AS j ON c.classID = j.classID").
		Joins("JOIN MEDIA AS m ON j.imageID = m.imageID")
}

func withVisibility(column string, visibility Visibility) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch visibility {
		case VisibilityShown:
			return db.Where(column+" = ?", false)
		case VisibilityHidden:
			return db.Where(column+" = ?", true)
		default:
			return db
		}
	}
}
