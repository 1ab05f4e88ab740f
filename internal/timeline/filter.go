package timeline

import (
	"fmt"
	"net/url"
	"strconv"
)

// DefaultLimit is the page size used when none is set.
const DefaultLimit = 20

// FilterKey names a settable filter field.
type FilterKey string

const (
	FilterActivityType FilterKey = "activity_type"
	FilterDateFrom     FilterKey = "date_from"
	FilterDateTo       FilterKey = "date_to"
	FilterSearch       FilterKey = "search"
)

// FilterState fully describes one timeline query. It has value
// semantics: every transition returns a new state. Any transition that
// is not a pure page change resets Page to 1, because a changed filter
// almost certainly changes the result set size and the old page index
// may be out of range.
type FilterState struct {
	Page         int    `json:"page"`
	Limit        int    `json:"limit"`
	ActivityType string `json:"activity_type,omitempty"`
	DateFrom     string `json:"date_from,omitempty"`
	DateTo       string `json:"date_to,omitempty"`
	Search       string `json:"search,omitempty"`
}

// NewFilterState returns the initial state: page 1, default limit.
func NewFilterState() FilterState {
	return FilterState{Page: 1, Limit: DefaultLimit}
}

// SetSearch replaces the free-text search and resets to page 1.
func (s FilterState) SetSearch(q string) FilterState {
	s.Search = q
	s.Page = 1
	return s
}

// SetFilter replaces one filter field and resets to page 1. Page is not
// settable through here; use SetPage.
func (s FilterState) SetFilter(key FilterKey, value string) FilterState {
	switch key {
	case FilterActivityType:
		s.ActivityType = value
	case FilterDateFrom:
		s.DateFrom = value
	case FilterDateTo:
		s.DateTo = value
	case FilterSearch:
		s.Search = value
	}
	s.Page = 1
	return s
}

// SetPage changes only the page; all other filters are kept.
func (s FilterState) SetPage(n int) FilterState {
	if n < 1 {
		n = 1
	}
	s.Page = n
	return s
}

// ClearFilters resets everything back to the initial state.
func (s FilterState) ClearFilters() FilterState {
	return NewFilterState()
}

// Key is the canonical fetch identity of this state. Two states with
// equal keys describe the same query.
func (s FilterState) Key() string {
	return fmt.Sprintf("page=%d&limit=%d&type=%s&from=%s&to=%s&q=%s",
		s.Page, s.Limit, s.ActivityType, s.DateFrom, s.DateTo, s.Search)
}

// Values encodes the state as URL query parameters, omitting unset
// filters.
func (s FilterState) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(s.Page))
	v.Set("limit", strconv.Itoa(s.Limit))
	if s.ActivityType != "" {
		v.Set("activity_type", s.ActivityType)
	}
	if s.DateFrom != "" {
		v.Set("date_from", s.DateFrom)
	}
	if s.DateTo != "" {
		v.Set("date_to", s.DateTo)
	}
	if s.Search != "" {
		v.Set("search", s.Search)
	}
	return v
}
