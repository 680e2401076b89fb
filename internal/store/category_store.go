package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gatherly/gatherly/internal/cache"
	"github.com/gatherly/gatherly/internal/models"
)

const (
	categoriesCacheKey           = "categories:list"
	categoriesWithCountsCacheKey = "categories:list:counts"
)

// CategoryStore is the read-mostly data-access layer for categories,
// fronted by an optional Redis cache.
type CategoryStore struct {
	db    *gorm.DB
	cache *cache.Cache
	log   *logrus.Logger
}

func NewCategoryStore(db *gorm.DB, c *cache.Cache, log *logrus.Logger) *CategoryStore {
	return &CategoryStore{db: db, cache: c, log: log}
}

// CategoryWithCount is a category plus the number of events in it.
type CategoryWithCount struct {
	models.Category
	EventCount int64 `gorm:"column:event_count" json:"event_count"`
}

// CategorySummary is the compact shape returned by GetTopCategories.
type CategorySummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	EventCount int64     `json:"event_count"`
}

// CreateCategory inserts a category keyed by a slug derived from its
// name and invalidates the listing cache.
func (s *CategoryStore) CreateCategory(ctx context.Context, name, description string) (*models.Category, *StoreError) {
	category, storeErr := WithRetry(ctx, func() (*models.Category, error) {
		category := models.Category{
			Name:        name,
			Slug:        slug.Make(name),
			Description: description,
		}
		if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
			return nil, err
		}
		return &category, nil
	}, nil)
	if storeErr == nil {
		s.cache.Delete(ctx, categoriesCacheKey, categoriesWithCountsCacheKey)
	}
	return category, storeErr
}

// GetCategories lists all categories by name, optionally with per
// category event counts, serving from cache when possible.
func (s *CategoryStore) GetCategories(ctx context.Context, includeCounts bool) ([]CategoryWithCount, *StoreError) {
	key := categoriesCacheKey
	if includeCounts {
		key = categoriesWithCountsCacheKey
	}
	var cached []CategoryWithCount
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	categories, storeErr := WithRetry(ctx, func() ([]CategoryWithCount, error) {
		var rows []CategoryWithCount
		q := s.db.WithContext(ctx).Model(&models.Category{})
		if includeCounts {
			q = q.Select("categories.*, (SELECT COUNT(*) FROM events WHERE events.category_id = categories.id) AS event_count")
		}
		if err := q.Order("categories.name ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		return rows, nil
	}, []CategoryWithCount{})
	if storeErr != nil {
		s.log.WithField("code", storeErr.Code).Warn("category listing degraded")
		return categories, storeErr
	}

	s.cache.SetJSON(ctx, key, categories)
	return categories, nil
}

// GetTopCategories returns the categories with the most events.
func (s *CategoryStore) GetTopCategories(ctx context.Context, limit int) ([]CategorySummary, *StoreError) {
	if limit <= 0 {
		limit = 5
	}
	return WithRetry(ctx, func() ([]CategorySummary, error) {
		var rows []CategorySummary
		err := s.db.WithContext(ctx).Raw(`
			SELECT c.id, c.name, c.slug, COUNT(e.id) AS event_count
			FROM categories c
			LEFT JOIN events e ON e.category_id = c.id
			GROUP BY c.id, c.name, c.slug
			ORDER BY event_count DESC, c.name ASC
			LIMIT ?`, limit).Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		return rows, nil
	}, []CategorySummary{})
}
