package timeline

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TypeConfig is the display configuration for one activity type tag.
type TypeConfig struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// typeConfigs maps known activity type tags to display configs. The tag
// set is backend-controlled and open: anything not listed falls back to
// the default config so new types never require a code change here.
var typeConfigs = map[string]TypeConfig{
	"lead_created":      {Icon: "UserPlus", Label: "Lead Created", Color: "green"},
	"bulk_import":       {Icon: "Upload", Label: "Bulk Import", Color: "green"},
	"stage_change":      {Icon: "GitBranch", Label: "Stage Change", Color: "blue"},
	"status_change":     {Icon: "RefreshCw", Label: "Status Change", Color: "blue"},
	"call_logged":       {Icon: "Phone", Label: "Call", Color: "purple"},
	"email_sent":        {Icon: "Mail", Label: "Email", Color: "indigo"},
	"whatsapp_sent":     {Icon: "MessageCircle", Label: "WhatsApp", Color: "green"},
	"note_added":        {Icon: "StickyNote", Label: "Note", Color: "yellow"},
	"task_created":      {Icon: "ListTodo", Label: "Task Created", Color: "orange"},
	"task_completed":    {Icon: "CheckCircle", Label: "Task Completed", Color: "green"},
	"document_uploaded": {Icon: "FileUp", Label: "Document Uploaded", Color: "blue"},
	"lead_reassigned":   {Icon: "Users", Label: "Reassigned", Color: "purple"},
}

const (
	defaultIcon  = "Activity"
	defaultColor = "gray"
)

// ResolveActivityType looks up the display config for a tag. Unknown
// tags get the generic icon, a humanized label, and gray.
func ResolveActivityType(tag string) TypeConfig {
	if cfg, ok := typeConfigs[tag]; ok {
		return cfg
	}
	return TypeConfig{
		Icon:  defaultIcon,
		Label: FormatActivityTypeLabel(tag),
		Color: defaultColor,
	}
}

var titleCaser = cases.Title(language.English)

// FormatActivityTypeLabel humanizes a tag into a display label
// ("some_never_seen_tag" → "Some Never Seen Tag"). Works for any tag,
// known or not, so label quality degrades gracefully.
func FormatActivityTypeLabel(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "Activity"
	}
	words := strings.ReplaceAll(tag, "_", " ")
	words = strings.ReplaceAll(words, "-", " ")
	return titleCaser.String(words)
}
