package timeline

import "testing"

func TestFilterState_PageResetInvariant(t *testing.T) {
	// Any sequence of filter changes after any number of page changes
	// must land back on page 1.
	s := NewFilterState()
	s = s.SetFilter(FilterActivityType, "call_logged")
	s = s.SetPage(7)
	s = s.SetPage(9)

	if s.Page != 9 {
		t.Fatalf("page = %d, want 9", s.Page)
	}

	s = s.SetFilter(FilterDateFrom, "2026-01-01")
	if s.Page != 1 {
		t.Errorf("SetFilter should reset page to 1, got %d", s.Page)
	}

	s = s.SetPage(4)
	s = s.SetSearch("visa")
	if s.Page != 1 {
		t.Errorf("SetSearch should reset page to 1, got %d", s.Page)
	}
	if s.ActivityType != "call_logged" || s.DateFrom != "2026-01-01" {
		t.Errorf("other filters must survive transitions: %+v", s)
	}
}

func TestFilterState_SetPageKeepsFilters(t *testing.T) {
	s := NewFilterState().SetSearch("jane").SetFilter(FilterActivityType, "note_added")
	s = s.SetPage(3)
	if s.Search != "jane" || s.ActivityType != "note_added" {
		t.Errorf("SetPage must not touch filters: %+v", s)
	}
	if s.Page != 3 {
		t.Errorf("page = %d, want 3", s.Page)
	}
}

func TestFilterState_SetPageFloorsAtOne(t *testing.T) {
	s := NewFilterState().SetPage(0)
	if s.Page != 1 {
		t.Errorf("page = %d, want 1", s.Page)
	}
}

func TestFilterState_ClearFilters(t *testing.T) {
	s := NewFilterState().
		SetSearch("jane").
		SetFilter(FilterDateTo, "2026-02-01").
		SetPage(5).
		ClearFilters()

	want := FilterState{Page: 1, Limit: DefaultLimit}
	if s != want {
		t.Errorf("ClearFilters() = %+v, want %+v", s, want)
	}
}

func TestFilterState_KeyIdentity(t *testing.T) {
	a := NewFilterState().SetSearch("x").SetPage(2)
	b := NewFilterState().SetSearch("x").SetPage(2)
	if a.Key() != b.Key() {
		t.Errorf("equal states must share a key: %q vs %q", a.Key(), b.Key())
	}
	c := b.SetPage(3)
	if b.Key() == c.Key() {
		t.Errorf("different states must differ in key")
	}
}

func TestFilterState_Values(t *testing.T) {
	v := NewFilterState().SetFilter(FilterActivityType, "call_logged").Values()
	if v.Get("page") != "1" || v.Get("limit") != "20" {
		t.Errorf("values = %v", v)
	}
	if v.Get("activity_type") != "call_logged" {
		t.Errorf("activity_type = %q", v.Get("activity_type"))
	}
	if _, ok := v["search"]; ok {
		t.Error("unset filters must be omitted")
	}
}
