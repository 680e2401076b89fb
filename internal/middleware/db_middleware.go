package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gatherly/gatherly/internal/store"
)

func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	}
}

// StoreMiddleware exposes the data-access stores to handlers the same
// way DatabaseMiddleware exposes the raw connection.
func StoreMiddleware(events *store.EventStore, categories *store.CategoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("event_store", events)
		c.Set("category_store", categories)
		c.Next()
	}
}
