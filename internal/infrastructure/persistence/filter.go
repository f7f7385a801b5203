package persistence

import (
	"strings"

	"github.com/hms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// applyFilter applies pagination and validated ordering to a query.
// The sort field is checked against the whitelist so user input can
// never reach the ORDER BY clause unescaped.
func applyFilter(query *gorm.DB, filter shared.Filter, allowedSortFields map[string]bool, defaultSortField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowedSortFields, defaultSortField)
	order := ValidateSortOrder(filter.OrderDir)
	query = query.Order(field + " " + order)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}
