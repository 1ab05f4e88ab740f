package worker

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillang/leadg-crm/internal/domain"
	"github.com/skillang/leadg-crm/internal/leadimport"
	"github.com/skillang/leadg-crm/internal/repository/postgres"
)

const dropCSV = "name,email,contact_number\nPriya Sharma,priya@example.com,+91 98765 43210\n"

type fakeObjectStore struct {
	mu       sync.Mutex
	objects  []types.Object
	bodies   map[string]string
	getErr   error
	copied   []string
	deleted  []string
	getCalls int
}

func (f *fakeObjectStore) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return &s3.ListObjectsV2Output{Contents: f.objects}, nil
}

func (f *fakeObjectStore) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	body := f.bodies[aws.ToString(params.Key)]
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func (f *fakeObjectStore) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copied = append(f.copied, aws.ToString(params.Key))
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeObjectStore) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type stubCreator struct {
	mu     sync.Mutex
	leads  []domain.Lead
	err    error
	result domain.BulkResult
}

func (s *stubCreator) CreateBulk(ctx context.Context, leads []domain.Lead, forceCreate bool) (domain.BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = leads
	if s.err != nil {
		return domain.BulkResult{}, s.err
	}
	if s.result.Created == 0 {
		s.result.Created = len(leads)
	}
	return s.result, nil
}

func setupImporterTest(t *testing.T, store *fakeObjectStore, creator *stubCreator) (*DropFolderImporter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	imp := NewDropFolderImporter(
		store,
		leadimport.NewPipeline(creator),
		postgres.NewImportLogRepo(db),
		nil,
		Options{Bucket: "leadg-drop", Concurrency: 1, MaxRetries: 3},
	)
	return imp, mock
}

func TestRunOnce_ImportsAndArchives(t *testing.T) {
	store := &fakeObjectStore{
		objects: []types.Object{
			{Key: aws.String("uploads/leads.csv"), Size: aws.Int64(int64(len(dropCSV)))},
		},
		bodies: map[string]string{"uploads/leads.csv": dropCSV},
	}
	creator := &stubCreator{}
	imp, mock := setupImporterTest(t, store, creator)

	mock.ExpectExec("INSERT INTO lead_import_log").
		WithArgs("uploads/leads.csv", int64(len(dropCSV))).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT original_key FROM lead_import_log").
		WillReturnRows(sqlmock.NewRows([]string{"original_key"}).AddRow("uploads/leads.csv"))
	mock.ExpectExec("UPDATE lead_import_log").
		WithArgs("uploads/leads.csv").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE lead_import_log").
		WithArgs(sqlmock.AnyArg(), 1, 0, "uploads/leads.csv").
		WillReturnResult(sqlmock.NewResult(0, 1))

	imp.RunOnce(context.Background())

	require.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, creator.leads, 1)
	assert.Equal(t, "priya@example.com", creator.leads[0].Email)

	require.Len(t, store.copied, 1)
	assert.True(t, strings.HasPrefix(store.copied[0], "processed/"))
	assert.True(t, strings.HasSuffix(store.copied[0], "-leads.csv"))
	assert.Equal(t, []string{"uploads/leads.csv"}, store.deleted)
}

func TestDiscover_SkipsArchivedAndNonCSV(t *testing.T) {
	store := &fakeObjectStore{
		objects: []types.Object{
			{Key: aws.String("processed/20260101T000000-old.csv"), Size: aws.Int64(100)},
			{Key: aws.String("uploads/notes.txt"), Size: aws.Int64(100)},
			{Key: aws.String("uploads/empty.csv"), Size: aws.Int64(0)},
			{Key: aws.String("uploads/fresh.csv"), Size: aws.Int64(42)},
		},
	}
	imp, mock := setupImporterTest(t, store, &stubCreator{})

	// Only the non-empty, non-archived CSV reaches the log.
	mock.ExpectExec("INSERT INTO lead_import_log").
		WithArgs("uploads/fresh.csv", int64(42)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	imp.discover(context.Background())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessFile_LostClaimSkipsDownload(t *testing.T) {
	store := &fakeObjectStore{bodies: map[string]string{}}
	imp, mock := setupImporterTest(t, store, &stubCreator{})

	mock.ExpectExec("UPDATE lead_import_log").
		WithArgs("uploads/leads.csv").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := imp.processFile(context.Background(), "uploads/leads.csv")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Zero(t, store.getCalls)
}

func TestProcessFile_SubmissionFailureMarksFailed(t *testing.T) {
	store := &fakeObjectStore{
		bodies: map[string]string{"uploads/leads.csv": dropCSV},
	}
	creator := &stubCreator{err: errors.New("db unavailable")}
	imp, mock := setupImporterTest(t, store, creator)

	mock.ExpectExec("UPDATE lead_import_log").
		WithArgs("uploads/leads.csv").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE lead_import_log SET status='failed'").
		WithArgs(sqlmock.AnyArg(), "uploads/leads.csv").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := imp.processFile(context.Background(), "uploads/leads.csv")

	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, store.copied, "failed imports must not be archived")
	assert.Empty(t, store.deleted)
}

func TestProcessFile_HeaderFailureMarksFailed(t *testing.T) {
	store := &fakeObjectStore{
		bodies: map[string]string{"uploads/bad.csv": "name,phone\nRavi,12345\n"},
	}
	imp, mock := setupImporterTest(t, store, &stubCreator{})

	mock.ExpectExec("UPDATE lead_import_log").
		WithArgs("uploads/bad.csv").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE lead_import_log SET status='failed'").
		WithArgs(sqlmock.AnyArg(), "uploads/bad.csv").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := imp.processFile(context.Background(), "uploads/bad.csv")

	var missing *leadimport.MissingHeaderError
	require.ErrorAs(t, err, &missing)
	require.NoError(t, mock.ExpectationsWereMet())
}
