package primary

// PageRequest selects one page of a search. Zero values take the defaults
// (page 1, 10 per page).
type PageRequest struct {
	PageNo   int `json:"pageNo"`
	PageSize int `json:"pageSize"`
}

// Page is one page of search results.
type Page[T any] struct {
	Data   []T   `json:"data"`
	Total  int64 `json:"total"`
	Pages  int64 `json:"pages"`
	PageNo int   `json:"pageNo"`
}

// NewPage computes the page count for total items at size per page.
func NewPage[T any](data []T, total int64, pageNo, size int) *Page[T] {
	if data == nil {
		data = []T{}
	}
	var pages int64
	if size > 0 {
		pages = (total + int64(size) - 1) / int64(size)
	}
	return &Page[T]{Data: data, Total: total, Pages: pages, PageNo: pageNo}
}
