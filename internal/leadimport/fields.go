package leadimport

import "strings"

// CanonicalField is a normalized lead attribute name. Every recognized
// CSV header alias maps onto exactly one of these six.
type CanonicalField string

const (
	FieldName              CanonicalField = "name"
	FieldEmail             CanonicalField = "email"
	FieldContactNumber     CanonicalField = "contact_number"
	FieldSource            CanonicalField = "source"
	FieldCountryOfInterest CanonicalField = "country_of_interest"
	FieldCourseLevel       CanonicalField = "course_level"
)

// RequiredFields must all be present in a file's header row (after alias
// mapping) or the import aborts before any row is processed.
var RequiredFields = []CanonicalField{FieldName, FieldEmail, FieldContactNumber}

// headerAliases maps lowercase, trimmed header names to canonical fields.
// When multiple raw headers mean the same thing, they all map here.
var headerAliases = map[string]CanonicalField{
	// Name
	"name":         FieldName,
	"full name":    FieldName,
	"full_name":    FieldName,
	"fullname":     FieldName,
	"lead name":    FieldName,
	"lead_name":    FieldName,
	"student name": FieldName,

	// Email
	"email":         FieldEmail,
	"email id":      FieldEmail,
	"email_id":      FieldEmail,
	"emailid":       FieldEmail,
	"email address": FieldEmail,
	"email_address": FieldEmail,
	"e-mail":        FieldEmail,
	"mail":          FieldEmail,

	// Contact number
	"contact number": FieldContactNumber,
	"contact_number": FieldContactNumber,
	"contactnumber":  FieldContactNumber,
	"phone":          FieldContactNumber,
	"phone number":   FieldContactNumber,
	"phone_number":   FieldContactNumber,
	"mobile":         FieldContactNumber,
	"mobile number":  FieldContactNumber,
	"mobile_number":  FieldContactNumber,
	"contact":        FieldContactNumber,

	// Source
	"source":      FieldSource,
	"lead source": FieldSource,
	"lead_source": FieldSource,

	// Country of interest
	"country":             FieldCountryOfInterest,
	"country of interest": FieldCountryOfInterest,
	"country_of_interest": FieldCountryOfInterest,
	"preferred country":   FieldCountryOfInterest,
	"preferred_country":   FieldCountryOfInterest,
	"destination country": FieldCountryOfInterest,
	"destination_country": FieldCountryOfInterest,

	// Course level
	"course level": FieldCourseLevel,
	"course_level": FieldCourseLevel,
	"courselevel":  FieldCourseLevel,
	"degree":       FieldCourseLevel,
	"degree level": FieldCourseLevel,
	"study level":  FieldCourseLevel,
	"study_level":  FieldCourseLevel,
}

// NormalizeHeader resolves one CSV column header to a canonical field.
// Unrecognized headers return ok=false and the column is ignored
// downstream; that is not an error.
func NormalizeHeader(header string) (CanonicalField, bool) {
	normalized := strings.ToLower(strings.TrimSpace(header))
	normalized = strings.Trim(normalized, "\"'")
	field, ok := headerAliases[normalized]
	return field, ok
}

// ColumnMapping holds the resolved mapping from CSV column indices to
// canonical fields for one file.
type ColumnMapping struct {
	FieldMap map[int]CanonicalField // column index -> canonical field
	RawNames []string               // original header names
}

// MapColumns resolves a raw CSV header row. Duplicate aliases for the
// same field keep the first column seen.
func MapColumns(header []string) *ColumnMapping {
	m := &ColumnMapping{
		FieldMap: make(map[int]CanonicalField, len(header)),
		RawNames: header,
	}

	seen := make(map[CanonicalField]bool, len(header))
	for i, h := range header {
		field, ok := NormalizeHeader(h)
		if !ok || seen[field] {
			continue
		}
		m.FieldMap[i] = field
		seen[field] = true
	}
	return m
}

// MissingRequired returns the required canonical fields this mapping
// does not cover, in RequiredFields order.
func (m *ColumnMapping) MissingRequired() []CanonicalField {
	covered := make(map[CanonicalField]bool, len(m.FieldMap))
	for _, f := range m.FieldMap {
		covered[f] = true
	}

	var missing []CanonicalField
	for _, f := range RequiredFields {
		if !covered[f] {
			missing = append(missing, f)
		}
	}
	return missing
}
