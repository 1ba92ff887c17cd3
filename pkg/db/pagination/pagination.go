package pagination

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a 1-based offset page request.
type Page struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// PageInfo describes the page returned to the caller.
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// Normalize clamps the page to >= 1 and the size to [1, maxSize], using
// defaultSize when no size was requested.
func (p Page) Normalize(defaultSize, maxSize int) Page {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	if defaultSize > maxSize {
		defaultSize = maxSize
	}

	out := p
	if out.Page < 1 {
		out.Page = 1
	}
	switch {
	case out.PageSize == 0:
		out.PageSize = defaultSize
	case out.PageSize < 1:
		out.PageSize = 1
	case out.PageSize > maxSize:
		out.PageSize = maxSize
	}
	return out
}

func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

func (p Page) Limit() int {
	return p.PageSize
}

func BuildPageInfo(p Page, total int64) PageInfo {
	info := PageInfo{
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    total,
	}
	if p.PageSize > 0 {
		info.TotalPages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	info.HasMore = int64(p.Offset()+p.PageSize) < total
	return info
}
