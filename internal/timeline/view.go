package timeline

import "github.com/skillang/leadg-crm/internal/domain"

// RenderedActivity is one timeline entry with its display config and
// formatted metadata resolved, ready for the UI.
type RenderedActivity struct {
	domain.Activity
	Icon         string        `json:"icon"`
	Label        string        `json:"label"`
	Color        string        `json:"color"`
	MetadataRows []MetadataRow `json:"metadata_rows,omitempty"`
}

// Render resolves display config and metadata rows for one activity.
func Render(a domain.Activity) RenderedActivity {
	cfg := ResolveActivityType(a.ActivityType)
	return RenderedActivity{
		Activity:     a,
		Icon:         cfg.Icon,
		Label:        cfg.Label,
		Color:        cfg.Color,
		MetadataRows: FormatMetadata(a.Metadata),
	}
}

// RenderPage renders every activity on a page.
func RenderPage(page *domain.TimelinePage) []RenderedActivity {
	rendered := make([]RenderedActivity, 0, len(page.Activities))
	for _, a := range page.Activities {
		rendered = append(rendered, Render(a))
	}
	return rendered
}

// DecorateFacet fills a facet's display fields from its raw tag value,
// keeping the count supplied by the store.
func DecorateFacet(value string, count int) domain.ActivityFacet {
	cfg := ResolveActivityType(value)
	return domain.ActivityFacet{
		Value: value,
		Label: cfg.Label,
		Icon:  cfg.Icon,
		Color: cfg.Color,
		Count: count,
	}
}
