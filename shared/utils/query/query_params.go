package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PageParams represents offset-based pagination parameters: page is
// 1-indexed, size is the page length, search_key is a single free-text
// filter matched against a fixed set of columns per entity.
type PageParams struct {
	Page      int    `json:"page"`
	Size      int    `json:"size"`
	SearchKey string `json:"search_key"`
}

// PagedResult is the paged listing envelope returned by the core.
type PagedResult[T any] struct {
	Data          []T   `json:"data"`
	TotalPages    int64 `json:"total_pages"`
	TotalElements int64 `json:"total_elements"`
}

// ParsePageParams extracts standardized query parameters from Gin context
func ParsePageParams(c *gin.Context) PageParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	// Validate pagination
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	if size > 100 {
		size = 100
	}

	return PageParams{
		Page:      page,
		Size:      size,
		SearchKey: c.Query("search_key"),
	}
}

// ApplySearch applies a case-insensitive substring match across the given
// columns. LOWER/LIKE keeps the predicate portable across postgres and
// the sqlite test driver.
func ApplySearch(query *gorm.DB, searchKey string, searchFields []string) *gorm.DB {
	if searchKey == "" || len(searchFields) == 0 {
		return query
	}

	conditions := make([]string, len(searchFields))
	args := make([]interface{}, len(searchFields))

	for i, field := range searchFields {
		conditions[i] = fmt.Sprintf("LOWER(%s) LIKE ?", field)
		args[i] = "%" + strings.ToLower(searchKey) + "%"
	}

	whereClause := strings.Join(conditions, " OR ")
	return query.Where(whereClause, args...)
}

// ApplyPagination applies pagination to a GORM query
func ApplyPagination(query *gorm.DB, page, size int) *gorm.DB {
	offset := (page - 1) * size
	return query.Offset(offset).Limit(size)
}

// TotalPages computes ceil(totalElements / size).
func TotalPages(totalElements int64, size int) int64 {
	if size < 1 {
		return 0
	}
	return (totalElements + int64(size) - 1) / int64(size)
}
