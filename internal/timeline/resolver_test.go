package timeline

import "testing"

func TestResolveActivityType_Known(t *testing.T) {
	cfg := ResolveActivityType("call_logged")
	if cfg.Icon != "Phone" || cfg.Label != "Call" || cfg.Color != "purple" {
		t.Errorf("ResolveActivityType(call_logged) = %+v", cfg)
	}
}

func TestResolveActivityType_UnknownFallsBack(t *testing.T) {
	cfg := ResolveActivityType("some_never_seen_tag")
	if cfg.Icon != "Activity" {
		t.Errorf("icon = %q, want Activity", cfg.Icon)
	}
	if cfg.Color != "gray" {
		t.Errorf("color = %q, want gray", cfg.Color)
	}
	if cfg.Label != "Some Never Seen Tag" {
		t.Errorf("label = %q, want humanized tag", cfg.Label)
	}
}

func TestFormatActivityTypeLabel(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"some_never_seen_tag", "Some Never Seen Tag"},
		{"stage_change", "Stage Change"},
		{"call-back-requested", "Call Back Requested"},
		{"note", "Note"},
		{"", "Activity"},
		{"  ", "Activity"},
	}
	for _, tt := range tests {
		if got := FormatActivityTypeLabel(tt.tag); got != tt.want {
			t.Errorf("FormatActivityTypeLabel(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestDecorateFacet(t *testing.T) {
	facet := DecorateFacet("email_sent", 7)
	if facet.Value != "email_sent" || facet.Count != 7 {
		t.Errorf("facet = %+v", facet)
	}
	if facet.Label != "Email" || facet.Icon != "Mail" {
		t.Errorf("facet display = %+v", facet)
	}
}
