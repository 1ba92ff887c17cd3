package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   Page
		want Page
	}{
		{name: "defaults", in: Page{}, want: Page{Page: 1, PageSize: 10}},
		{name: "negative page", in: Page{Page: -3, PageSize: 5}, want: Page{Page: 1, PageSize: 5}},
		{name: "size below one", in: Page{Page: 2, PageSize: -1}, want: Page{Page: 2, PageSize: 1}},
		{name: "size above max", in: Page{Page: 1, PageSize: 500}, want: Page{Page: 1, PageSize: 100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Normalize(10, 100))
		})
	}
}

func TestBuildPageInfo(t *testing.T) {
	page := Page{Page: 2, PageSize: 10}
	info := BuildPageInfo(page, 25)

	assert.Equal(t, 20-10, page.Offset())
	assert.Equal(t, 3, info.TotalPages)
	assert.True(t, info.HasMore)

	last := BuildPageInfo(Page{Page: 3, PageSize: 10}, 25)
	assert.False(t, last.HasMore)
}
