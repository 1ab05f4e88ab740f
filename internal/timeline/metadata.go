package timeline

import (
	"fmt"
	"strings"
)

// MetadataRow is one rendered line of an activity's metadata block.
type MetadataRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// metadataFields is the fixed, ordered whitelist of metadata shapes the
// timeline knows how to render. Anything outside it is ignored rather
// than dumped, so unexpected shapes degrade to an empty block instead
// of crashing rendering.
var metadataFields = []struct {
	label  string
	render func(md map[string]any) string
}{
	{"Stage", transition("old_stage", "new_stage")},
	{"Reassigned", transition("previous_assignee", "new_assignee")},
	{"Task", stringField("task_title")},
	{"Task Type", stringField("task_type")},
	{"Files", fileNames},
	{"Document Type", stringField("document_type")},
	{"Note", stringField("note_preview")},
	{"Duration", callDuration},
	{"Summary", stringField("call_summary")},
	{"Subject", stringField("email_subject")},
	{"Opened", emailOpened},
	{"Priority", stringField("priority")},
	{"Status", stringField("status")},
	{"Assigned To", stringField("assignee_name")},
}

// FormatMetadata renders the known metadata keys of one activity into
// display rows, in whitelist order. Absent, empty, or oddly-typed
// values produce no row.
func FormatMetadata(md map[string]any) []MetadataRow {
	if len(md) == 0 {
		return nil
	}

	var rows []MetadataRow
	for _, f := range metadataFields {
		if val := f.render(md); val != "" {
			rows = append(rows, MetadataRow{Label: f.label, Value: val})
		}
	}
	return rows
}

func stringOf(md map[string]any, key string) string {
	v, ok := md[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func stringField(key string) func(map[string]any) string {
	return func(md map[string]any) string { return stringOf(md, key) }
}

// transition renders a "from → to" pair; both sides must be present.
func transition(fromKey, toKey string) func(map[string]any) string {
	return func(md map[string]any) string {
		from := stringOf(md, fromKey)
		to := stringOf(md, toKey)
		if from == "" || to == "" {
			return ""
		}
		return from + " -> " + to
	}
}

// fileNames accepts either a single file_name string or a file_names
// list, joining the list with commas.
func fileNames(md map[string]any) string {
	if name := stringOf(md, "file_name"); name != "" {
		return name
	}
	list, ok := md["file_names"].([]any)
	if !ok {
		return ""
	}
	var names []string
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			names = append(names, strings.TrimSpace(s))
		}
	}
	return strings.Join(names, ", ")
}

// callDuration renders call_duration (seconds, JSON number) as "Nm Ss".
func callDuration(md map[string]any) string {
	v, ok := md["call_duration"]
	if !ok {
		return ""
	}
	var secs int
	switch n := v.(type) {
	case float64:
		secs = int(n)
	case int:
		secs = n
	default:
		return ""
	}
	if secs <= 0 {
		return ""
	}
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

func emailOpened(md map[string]any) string {
	v, ok := md["email_opened"]
	if !ok {
		return ""
	}
	opened, ok := v.(bool)
	if !ok {
		return ""
	}
	if opened {
		return "Yes"
	}
	return "No"
}
