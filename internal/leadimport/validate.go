package leadimport

import (
	"fmt"
	"strings"

	"github.com/skillang/leadg-crm/internal/domain"
)

// MaxFileSize is the upload size ceiling, checked before any content is
// read. Overridable at boot via import.max_file_size_mb.
var MaxFileSize int64 = 10 * 1024 * 1024 // 10 MiB

// ValidateFile rejects oversize files and anything without a .csv
// extension. Pure precondition check; never inspects content.
func ValidateFile(name string, size int64) error {
	if size > MaxFileSize {
		return fmt.Errorf("file exceeds the %d MB limit", MaxFileSize/(1024*1024))
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		return fmt.Errorf("only .csv files are supported")
	}
	return nil
}

// ValidateLead builds a canonical lead from one mapped row. Requires
// non-empty trimmed name, email, and contact number, an email-shaped
// email, and a phone with at least 10 digits. Returns ok=false on any
// failure; the row is silently dropped and only counted in aggregate.
// Source and course level default when absent.
func ValidateLead(raw map[CanonicalField]string) (domain.Lead, bool) {
	lead := domain.Lead{
		Name:              strings.TrimSpace(raw[FieldName]),
		Email:             strings.TrimSpace(raw[FieldEmail]),
		ContactNumber:     strings.TrimSpace(raw[FieldContactNumber]),
		Source:            strings.TrimSpace(raw[FieldSource]),
		CountryOfInterest: strings.TrimSpace(raw[FieldCountryOfInterest]),
		CourseLevel:       strings.TrimSpace(raw[FieldCourseLevel]),
	}

	if lead.Name == "" || lead.Email == "" || lead.ContactNumber == "" {
		return domain.Lead{}, false
	}
	if !isValidEmail(lead.Email) {
		return domain.Lead{}, false
	}
	if !isValidPhone(lead.ContactNumber) {
		return domain.Lead{}, false
	}

	if lead.Source == "" {
		lead.Source = domain.DefaultLeadSource
	}
	if lead.CourseLevel == "" {
		lead.CourseLevel = domain.DefaultLeadCourseLevel
	}
	return lead, true
}

func isValidEmail(email string) bool {
	if len(email) < 5 || len(email) > 254 {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at < 1 || at >= len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	if !strings.Contains(domainPart, ".") || len(domainPart) < 3 {
		return false
	}
	return true
}

// isValidPhone is deliberately loose: at least 10 digits, separators
// (+, -, spaces, dots, parentheses) allowed, anything else rejected.
func isValidPhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '.' || r == '(' || r == ')':
			// separator, fine
		default:
			return false
		}
	}
	return digits >= 10
}
