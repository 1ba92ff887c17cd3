package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithQuerySortBy(t *testing.T) {
	allowed := map[string]bool{"name": true, "created_at": true}

	assert.Equal(t, SortBy{Field: "name", Desc: true}, WithQuerySortBy(" Name ", "DESC", allowed))
	assert.Equal(t, SortBy{Field: "created_at"}, WithQuerySortBy("password", "asc", allowed))
	assert.Equal(t, SortBy{Field: "created_at"}, WithQuerySortBy("", "", allowed))
}
