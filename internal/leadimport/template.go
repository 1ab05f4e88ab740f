package leadimport

import (
	"bytes"
	"encoding/csv"
)

// TemplateFileName is the attachment name for the downloadable template.
const TemplateFileName = "bulk_leads_template.csv"

// Template returns the canonical header row plus one example data row,
// ready to serve as a .csv attachment.
func Template() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"name", "email", "contact_number", "source", "country_of_interest", "course_level"})
	w.Write([]string{"Jane Doe", "jane.doe@example.com", "9876543210", "website", "USA", "bachelor's_degree"})
	w.Flush()
	return buf.Bytes()
}
