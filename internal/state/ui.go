package state

import (
	"fmt"
	"sort"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// UIState holds the catalog browsing selection.
type UIState struct {
	Category    string              `json:"category"`
	SubCategory string              `json:"subCategory"`
	Brand       string              `json:"brand"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"pageSize"`
	Sort        enums.ProductSort   `json:"sort"`
	Filters     map[string][]string `json:"filters"`
}

// DefaultUIState is the browsing state before any selection.
func DefaultUIState() UIState {
	return UIState{
		Page:     pagination.DefaultPage,
		PageSize: pagination.DefaultPageSize,
		Sort:     enums.ProductSortNewest,
		Filters:  map[string][]string{},
	}
}

type UIActionType string

const (
	UISetCategory    UIActionType = "set_category"
	UISetSubCategory UIActionType = "set_sub_category"
	UISetBrand       UIActionType = "set_brand"
	UISetPage        UIActionType = "set_page"
	UISetPageSize    UIActionType = "set_page_size"
	UISetSort        UIActionType = "set_sort"
	UIAddFilter      UIActionType = "add_filter"
	UIClearFilters   UIActionType = "clear_filters"
)

// UIAction carries a value for string setters, Number for paging, and Name/Value for filters.
type UIAction struct {
	Type   UIActionType `json:"type"`
	Value  string       `json:"value,omitempty"`
	Number int          `json:"number,omitempty"`
	Name   string       `json:"name,omitempty"`
}

// ReduceUI applies a browsing action. Any change to the selection other than paging itself
// returns to the first page.
func ReduceUI(s UIState, action UIAction) (UIState, error) {
	next := s
	next.Filters = copyFilters(s.Filters)

	switch action.Type {
	case UISetCategory:
		next.Category = strings.TrimSpace(action.Value)
		next.SubCategory = ""
		next.Page = pagination.DefaultPage
	case UISetSubCategory:
		next.SubCategory = strings.TrimSpace(action.Value)
		next.Page = pagination.DefaultPage
	case UISetBrand:
		next.Brand = strings.TrimSpace(action.Value)
		next.Page = pagination.DefaultPage
	case UISetPage:
		if action.Number < 1 {
			return s, pkgerrors.New(pkgerrors.CodeValidation, "page must be at least 1")
		}
		next.Page = action.Number
	case UISetPageSize:
		if action.Number < 1 {
			return s, pkgerrors.New(pkgerrors.CodeValidation, "page size must be at least 1")
		}
		next.PageSize = pagination.NormalizePageSize(action.Number)
		next.Page = pagination.DefaultPage
	case UISetSort:
		sortBy, err := enums.ParseProductSort(strings.TrimSpace(action.Value))
		if err != nil {
			return s, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported sort")
		}
		next.Sort = sortBy
		next.Page = pagination.DefaultPage
	case UIAddFilter:
		name := strings.TrimSpace(action.Name)
		value := strings.TrimSpace(action.Value)
		if name == "" || value == "" {
			return s, pkgerrors.New(pkgerrors.CodeValidation, "filter name and value are required")
		}
		if !containsString(next.Filters[name], value) {
			next.Filters[name] = append(next.Filters[name], value)
			sort.Strings(next.Filters[name])
		}
		next.Page = pagination.DefaultPage
	case UIClearFilters:
		next.Filters = map[string][]string{}
		next.Page = pagination.DefaultPage
	default:
		return s, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown ui action %q", action.Type))
	}

	return next, nil
}

func copyFilters(filters map[string][]string) map[string][]string {
	out := make(map[string][]string, len(filters))
	for name, values := range filters {
		out[name] = append([]string(nil), values...)
	}
	return out
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
