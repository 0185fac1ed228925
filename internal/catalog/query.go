package catalog

import (
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/state"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// ListQuery is the normalized catalog listing request.
type ListQuery struct {
	Category    string              `json:"category,omitempty"`
	SubCategory string              `json:"subCategory,omitempty"`
	Brand       string              `json:"brand,omitempty"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"pageSize"`
	Filters     map[string][]string `json:"filters,omitempty"`
	Sort        enums.ProductSort   `json:"sort"`
}

// Pagination returns the offset paging params for the query.
func (q ListQuery) Pagination() pagination.Params {
	return pagination.Normalize(pagination.Params{Page: q.Page, PageSize: q.PageSize})
}

// QueryFromState projects browsing state into a listing query.
func QueryFromState(s state.UIState) ListQuery {
	p := pagination.Normalize(pagination.Params{Page: s.Page, PageSize: s.PageSize})
	sortBy := s.Sort
	if !sortBy.IsValid() {
		sortBy = enums.ProductSortNewest
	}
	return ListQuery{
		Category:    s.Category,
		SubCategory: s.SubCategory,
		Brand:       s.Brand,
		Page:        p.Page,
		PageSize:    p.PageSize,
		Filters:     s.Filters,
		Sort:        sortBy,
	}
}

// ParseListQuery folds URL query parameters through the browsing reducer. Selection actions are
// applied before paging so an explicit page survives the reset that a selection causes.
//
//	?category=shoes&sub_category=running&brand=acme&filter=color:red&sort=price_asc&page=2&page_size=24
func ParseListQuery(values map[string][]string) (ListQuery, error) {
	var actions []state.UIAction

	if v := first(values, "category"); v != "" {
		actions = append(actions, state.UIAction{Type: state.UISetCategory, Value: v})
	}
	if v := first(values, "sub_category"); v != "" {
		actions = append(actions, state.UIAction{Type: state.UISetSubCategory, Value: v})
	}
	if v := first(values, "brand"); v != "" {
		actions = append(actions, state.UIAction{Type: state.UISetBrand, Value: v})
	}
	for _, raw := range values["filter"] {
		name, value, ok := strings.Cut(raw, ":")
		if !ok {
			return ListQuery{}, pkgerrors.New(pkgerrors.CodeValidation, "filter must look like name:value").
				WithDetails(map[string]any{"filter": raw})
		}
		actions = append(actions, state.UIAction{Type: state.UIAddFilter, Name: name, Value: value})
	}
	if v := first(values, "sort"); v != "" {
		actions = append(actions, state.UIAction{Type: state.UISetSort, Value: v})
	}
	if v := first(values, "page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ListQuery{}, pkgerrors.New(pkgerrors.CodeValidation, "page_size must be a number")
		}
		actions = append(actions, state.UIAction{Type: state.UISetPageSize, Number: n})
	}
	if v := first(values, "page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ListQuery{}, pkgerrors.New(pkgerrors.CodeValidation, "page must be a number")
		}
		actions = append(actions, state.UIAction{Type: state.UISetPage, Number: n})
	}

	ui := state.DefaultUIState()
	for _, action := range actions {
		next, err := state.ReduceUI(ui, action)
		if err != nil {
			return ListQuery{}, err
		}
		ui = next
	}
	return QueryFromState(ui), nil
}

func first(values map[string][]string, key string) string {
	if vs := values[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}
