package pagination

const (
	// DefaultPage is the first page served when no page is requested.
	DefaultPage = 1
	// DefaultPageSize is the standard listing size when a size is not provided.
	DefaultPageSize = 12
	// MaxPageSize caps how many rows any listing query can request.
	MaxPageSize = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Normalize applies the default page and size and enforces the maximum size.
func Normalize(p Params) Params {
	return Params{
		Page:     NormalizePage(p.Page),
		PageSize: NormalizePageSize(p.PageSize),
	}
}

// NormalizePage returns the first page for non-positive input.
func NormalizePage(page int) int {
	if page <= 0 {
		return DefaultPage
	}
	return page
}

// NormalizePageSize enforces the configured default and maximum sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	n := Normalize(p)
	return (n.Page - 1) * n.PageSize
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return NormalizePageSize(p.PageSize)
}
