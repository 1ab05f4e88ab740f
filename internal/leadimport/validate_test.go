package leadimport

import (
	"testing"

	"github.com/skillang/leadg-crm/internal/domain"
)

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr bool
	}{
		{"valid csv", "leads.csv", 1024, false},
		{"uppercase extension", "LEADS.CSV", 1024, false},
		{"at the size limit", "leads.csv", MaxFileSize, false},
		{"over the size limit", "leads.csv", MaxFileSize + 1, true},
		{"wrong extension", "leads.xlsx", 1024, true},
		{"no extension", "leads", 1024, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.file, tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFile(%q, %d) error = %v, wantErr %v", tt.file, tt.size, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLead_Boundaries(t *testing.T) {
	base := func() RawRow {
		return RawRow{
			FieldName:          "Jane Doe",
			FieldEmail:         "jane@x.com",
			FieldContactNumber: "9876543210",
		}
	}

	t.Run("valid with defaults", func(t *testing.T) {
		lead, ok := ValidateLead(base())
		if !ok {
			t.Fatal("expected valid lead")
		}
		if lead.Source != domain.DefaultLeadSource {
			t.Errorf("source = %q, want %q", lead.Source, domain.DefaultLeadSource)
		}
		if lead.CourseLevel != domain.DefaultLeadCourseLevel {
			t.Errorf("course_level = %q, want %q", lead.CourseLevel, domain.DefaultLeadCourseLevel)
		}
	})

	t.Run("explicit values kept", func(t *testing.T) {
		row := base()
		row[FieldSource] = "referral"
		row[FieldCourseLevel] = "master's_degree"
		row[FieldCountryOfInterest] = "Canada"
		lead, ok := ValidateLead(row)
		if !ok {
			t.Fatal("expected valid lead")
		}
		if lead.Source != "referral" || lead.CourseLevel != "master's_degree" || lead.CountryOfInterest != "Canada" {
			t.Errorf("unexpected lead: %+v", lead)
		}
	})

	drops := []struct {
		name   string
		mutate func(RawRow)
	}{
		{"email without @", func(r RawRow) { r[FieldEmail] = "not-an-email" }},
		{"email with empty local part", func(r RawRow) { r[FieldEmail] = "@x.com" }},
		{"phone under 10 digits", func(r RawRow) { r[FieldContactNumber] = "12345" }},
		{"phone with letters", func(r RawRow) { r[FieldContactNumber] = "98765abcde" }},
		{"empty name", func(r RawRow) { r[FieldName] = "   " }},
		{"missing email", func(r RawRow) { delete(r, FieldEmail) }},
		{"whitespace contact", func(r RawRow) { r[FieldContactNumber] = "  " }},
	}
	for _, tt := range drops {
		t.Run(tt.name, func(t *testing.T) {
			row := base()
			tt.mutate(row)
			if _, ok := ValidateLead(row); ok {
				t.Errorf("expected row to be dropped")
			}
		})
	}
}

func TestIsValidPhone_Separators(t *testing.T) {
	valid := []string{"9876543210", "+1 (987) 654-3210", "987.654.3210", "+91-98765-43210"}
	for _, p := range valid {
		if !isValidPhone(p) {
			t.Errorf("isValidPhone(%q) = false, want true", p)
		}
	}
}
