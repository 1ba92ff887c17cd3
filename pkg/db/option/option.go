package option

import (
	"strings"

	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultSortField = "created_at"

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type QueryOptionFunc func(db *gorm.DB) *gorm.DB

func (f QueryOptionFunc) Apply(db *gorm.DB) *gorm.DB {
	return f(db)
}

type SortBy struct {
	Field string
	Desc  bool
}

// WithQuerySortBy resolves user supplied sort parameters against an allow list.
// Unknown fields fall back to created_at; anything but "desc" sorts ascending.
func WithQuerySortBy(sortBy, orderBy string, allowed map[string]bool) SortBy {
	field := strings.ToLower(strings.TrimSpace(sortBy))
	if !allowed[field] {
		field = defaultSortField
	}
	return SortBy{
		Field: field,
		Desc:  strings.EqualFold(strings.TrimSpace(orderBy), "desc"),
	}
}

// WithSortBy orders by the resolved field with id as a stable tie breaker.
func WithSortBy(sort SortBy) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		stmt := db.Order(clause.OrderByColumn{Column: clause.Column{Name: sort.Field}, Desc: sort.Desc})
		if sort.Field != "id" {
			stmt = stmt.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: sort.Desc})
		}
		return stmt
	})
}

func WithPage(page pagination.Page) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if page.Limit() <= 0 {
			return db
		}
		return db.Offset(page.Offset()).Limit(page.Limit())
	})
}

// Apply runs opts over stmt in order.
func Apply(stmt *gorm.DB, opts ...QueryOption) *gorm.DB {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		stmt = opt.Apply(stmt)
	}
	return stmt
}
