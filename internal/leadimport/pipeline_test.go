package leadimport

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/skillang/leadg-crm/internal/domain"
)

type fakeCreator struct {
	got    []domain.Lead
	force  bool
	result domain.BulkResult
	err    error
}

func (f *fakeCreator) CreateBulk(_ context.Context, leads []domain.Lead, forceCreate bool) (domain.BulkResult, error) {
	f.got = leads
	f.force = forceCreate
	if f.err != nil {
		return domain.BulkResult{}, f.err
	}
	if f.result.Message == "" {
		f.result = domain.BulkResult{Created: len(leads), Message: "leads created"}
	}
	return f.result, nil
}

func TestParse_MissingRequiredHeaderAborts(t *testing.T) {
	csv := "Full Name,Email,Country\nJane Doe,jane@x.com,USA\n"
	rows, err := Parse(strings.NewReader(csv))
	if rows != nil {
		t.Fatalf("expected zero rows, got %d", len(rows))
	}
	var missing *MissingHeaderError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingHeaderError, got %v", err)
	}
	if len(missing.Missing) != 1 || missing.Missing[0] != FieldContactNumber {
		t.Errorf("missing = %v, want [contact_number]", missing.Missing)
	}
	if !strings.Contains(err.Error(), "contact_number") {
		t.Errorf("error %q should name contact_number", err.Error())
	}
}

// brokenReader yields its prefix, then fails every subsequent Read the
// way an aborted upload or dropped S3 body does.
type brokenReader struct {
	prefix io.Reader
	err    error
}

func (b *brokenReader) Read(p []byte) (int, error) {
	n, err := b.prefix.Read(p)
	if n > 0 {
		return n, nil
	}
	if err == io.EOF {
		return 0, b.err
	}
	return n, err
}

func TestParse_StreamErrorAborts(t *testing.T) {
	streamErr := errors.New("connection reset mid-stream")
	r := &brokenReader{
		prefix: strings.NewReader("Name,Email,Phone\nJane,jane@x.com,9876543210\n"),
		err:    streamErr,
	}

	done := make(chan struct{})
	var rows []RawRow
	var err error
	go func() {
		rows, err = Parse(r)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Parse did not return on a persistent read error")
	}
	if !errors.Is(err, streamErr) {
		t.Fatalf("err = %v, want wrapped %v", err, streamErr)
	}
	if rows != nil {
		t.Errorf("expected no rows on a broken stream, got %d", len(rows))
	}
}

func TestParse_SkipsBlankLinesAndBOM(t *testing.T) {
	csv := "\xEF\xBB\xBFName,Email,Phone\n\nJane,jane@x.com,9876543210\n  , , \nJohn,john@x.com,9876543211\n"
	rows, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0][FieldName] != "Jane" || rows[1][FieldEmail] != "john@x.com" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestDeduplicate_FirstWinsInOrder(t *testing.T) {
	leads := []domain.Lead{
		{Name: "A", Email: "a@b.com"},
		{Name: "B", Email: "c@d.com"},
		{Name: "C", Email: "A@B.COM"},
		{Name: "D", Email: "e@f.com"},
		{Name: "E", Email: "c@d.com"},
	}
	survivors, removed := Deduplicate(leads)
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if len(survivors) != 3 {
		t.Fatalf("len(survivors) = %d, want 3", len(survivors))
	}
	wantNames := []string{"A", "B", "D"}
	for i, w := range wantNames {
		if survivors[i].Name != w {
			t.Errorf("survivors[%d].Name = %q, want %q", i, survivors[i].Name, w)
		}
	}
}

func TestPipeline_EndToEndImport(t *testing.T) {
	csv := "Full Name,Email,Phone,Country\n" +
		"Bad Row,not-an-email,9876543210,UK\n" +
		"Jane Doe,jane@x.com,9876543210,USA\n"

	creator := &fakeCreator{}
	p := NewPipeline(creator)

	summary, err := p.Run(context.Background(), "leads.csv", int64(len(csv)), strings.NewReader(csv), false)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if summary.TotalRows != 2 || summary.ValidRows != 1 || summary.Dropped != 1 || summary.Duplicates != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if len(creator.got) != 1 {
		t.Fatalf("submitted %d leads, want 1", len(creator.got))
	}

	lead := creator.got[0]
	want := domain.Lead{
		Name:              "Jane Doe",
		Email:             "jane@x.com",
		ContactNumber:     "9876543210",
		Source:            "website",
		CountryOfInterest: "USA",
		CourseLevel:       "bachelor's_degree",
	}
	if lead != want {
		t.Errorf("lead = %+v, want %+v", lead, want)
	}
}

func TestPipeline_EndToEndDedup(t *testing.T) {
	csv := "Name,Email,Phone\n" +
		"First,a@b.com,9876543210\n" +
		"Second,a@b.com,9876543211\n"

	creator := &fakeCreator{}
	p := NewPipeline(creator)

	summary, err := p.Run(context.Background(), "leads.csv", int64(len(csv)), strings.NewReader(csv), true)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Duplicates != 1 || summary.ValidRows != 1 {
		t.Errorf("summary = %+v, want 1 duplicate and 1 valid", summary)
	}
	if len(creator.got) != 1 || creator.got[0].Name != "First" {
		t.Errorf("survivor should be the first occurrence, got %+v", creator.got)
	}
	if !creator.force {
		t.Error("forceCreate should pass through to the creator")
	}
}

func TestPipeline_PreconditionsBlockParsing(t *testing.T) {
	p := NewPipeline(&fakeCreator{})

	if _, err := p.Run(context.Background(), "leads.txt", 10, strings.NewReader("x"), false); err == nil {
		t.Error("expected extension error")
	}
	if _, err := p.Run(context.Background(), "leads.csv", MaxFileSize+1, strings.NewReader("x"), false); err == nil {
		t.Error("expected size error")
	}
}

func TestPipeline_NoValidLeads(t *testing.T) {
	csv := "Name,Email,Phone\nBad,not-an-email,123\n"
	creator := &fakeCreator{}
	p := NewPipeline(creator)

	summary, err := p.Run(context.Background(), "leads.csv", int64(len(csv)), strings.NewReader(csv), false)
	if err == nil {
		t.Fatal("expected error when no rows survive validation")
	}
	if summary == nil || summary.Dropped != 1 {
		t.Errorf("summary = %+v, want dropped=1", summary)
	}
	if creator.got != nil {
		t.Error("nothing should be submitted when no rows survive")
	}
}

func TestPipeline_SubmissionErrorSurfaced(t *testing.T) {
	csv := "Name,Email,Phone\nJane,jane@x.com,9876543210\n"
	creator := &fakeCreator{err: errors.New("duplicate emails detected on server")}
	p := NewPipeline(creator)

	_, err := p.Run(context.Background(), "leads.csv", int64(len(csv)), strings.NewReader(csv), false)
	if err == nil || !strings.Contains(err.Error(), "duplicate emails detected on server") {
		t.Errorf("submission error should pass through, got %v", err)
	}
}

func TestTemplate(t *testing.T) {
	rows, err := Parse(strings.NewReader(string(Template())))
	if err != nil {
		t.Fatalf("template should parse through the pipeline: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("template should carry one example row, got %d", len(rows))
	}
	if _, ok := ValidateLead(rows[0]); !ok {
		t.Error("template example row should validate")
	}
}
