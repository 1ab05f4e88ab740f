package worker

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/robfig/cron/v3"
	"github.com/skillang/leadg-crm/internal/leadimport"
	"github.com/skillang/leadg-crm/internal/pkg/distlock"
	"github.com/skillang/leadg-crm/internal/pkg/logger"
	"github.com/skillang/leadg-crm/internal/repository/postgres"
)

// processedPrefix is where successfully imported files are archived.
const processedPrefix = "processed/"

// ObjectStore is the slice of the S3 API the importer needs. *s3.Client
// satisfies it; tests substitute a fake.
type ObjectStore interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Options configure a DropFolderImporter.
type Options struct {
	Bucket      string
	Schedule    string // cron expression
	Concurrency int
	MaxRetries  int
	ForceCreate bool
	// Lock serializes scans across instances. Optional: the claim step
	// already prevents double imports, the lock just avoids redundant
	// bucket listings.
	Lock distlock.DistLock
}

// DropFolderImporter watches an S3 bucket for lead CSVs on a cron
// schedule, runs each through the import pipeline, and archives the
// originals. Discovery and claiming go through lead_import_log so
// multiple instances never double-import a file.
type DropFolderImporter struct {
	s3       ObjectStore
	pipeline *leadimport.Pipeline
	log      *postgres.ImportLogRepo
	progress *ProgressTracker
	opts     Options

	cron    *cron.Cron
	running int32
}

// NewDropFolderImporter wires the importer. progress may be nil when no
// redis is available.
func NewDropFolderImporter(store ObjectStore, pipeline *leadimport.Pipeline, logRepo *postgres.ImportLogRepo, progress *ProgressTracker, opts Options) *DropFolderImporter {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	return &DropFolderImporter{
		s3:       store,
		pipeline: pipeline,
		log:      logRepo,
		progress: progress,
		opts:     opts,
	}
}

// Start recovers stuck files, runs one scan immediately, and schedules
// the rest.
func (imp *DropFolderImporter) Start(ctx context.Context) error {
	if err := imp.log.ResetStuck(ctx, imp.opts.MaxRetries); err != nil {
		logger.Warn("reset stuck imports failed", "error", err)
	}

	imp.cron = cron.New()
	if _, err := imp.cron.AddFunc(imp.opts.Schedule, func() { imp.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", imp.opts.Schedule, err)
	}
	imp.cron.Start()

	go imp.RunOnce(ctx)
	return nil
}

// Stop halts the schedule; an in-flight scan finishes on its own.
func (imp *DropFolderImporter) Stop() {
	if imp.cron != nil {
		imp.cron.Stop()
	}
}

// IsRunning reports whether a scan is in flight.
func (imp *DropFolderImporter) IsRunning() bool {
	return atomic.LoadInt32(&imp.running) == 1
}

// RunOnce executes one cycle: discover new files, then drain a batch
// from the queue. Overlapping cycles collapse into one.
func (imp *DropFolderImporter) RunOnce(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&imp.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&imp.running, 0)

	if imp.opts.Lock != nil {
		acquired, err := imp.opts.Lock.Acquire(ctx)
		if err != nil {
			logger.Warn("scan lock acquire failed", "error", err)
			return
		}
		if !acquired {
			return
		}
		defer imp.opts.Lock.Release(ctx)
	}

	imp.discover(ctx)
	imp.processQueue(ctx)
}

// discover registers every unseen CSV in the bucket as pending.
func (imp *DropFolderImporter) discover(ctx context.Context) {
	paginator := s3.NewListObjectsV2Paginator(imp.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(imp.opts.Bucket),
	})

	found := 0
	for paginator.HasMorePages() {
		if ctx.Err() != nil {
			return
		}
		page, err := paginator.NextPage(ctx)
		if err != nil {
			logger.Error("list drop folder failed", "bucket", imp.opts.Bucket, "error", err)
			return
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if obj.Size == nil || *obj.Size == 0 {
				continue
			}
			if strings.HasPrefix(key, processedPrefix) {
				continue
			}
			if !strings.HasSuffix(strings.ToLower(key), ".csv") {
				continue
			}

			isNew, err := imp.log.Discover(ctx, key, *obj.Size)
			if err != nil {
				logger.Warn("register drop file failed", "key", key, "error", err)
				continue
			}
			if isNew {
				found++
			}
		}
	}

	if found > 0 {
		logger.Info("discovered drop-folder files", "count", found)
	}
}

// processQueue drains a batch of pending files, smallest first, with
// bounded concurrency.
func (imp *DropFolderImporter) processQueue(ctx context.Context) {
	keys, err := imp.log.NextPending(ctx, 10)
	if err != nil {
		logger.Error("read import queue failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}

	sem := make(chan struct{}, imp.opts.Concurrency)
	var wg sync.WaitGroup
	for _, key := range keys {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(k string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := imp.processFile(ctx, k); err != nil {
				logger.Error("process drop file failed", "key", k, "error", err)
			}
		}(key)
	}
	wg.Wait()
}

func (imp *DropFolderImporter) processFile(ctx context.Context, key string) error {
	claimed, err := imp.log.Claim(ctx, key)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	prog := &ImportProgress{Key: key, Phase: "importing", StartedAt: time.Now().UTC()}
	imp.saveProgress(ctx, prog)

	out, err := imp.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(imp.opts.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return imp.fail(ctx, key, prog, fmt.Errorf("get object: %w", err))
	}
	defer out.Body.Close()

	size := aws.ToInt64(out.ContentLength)
	summary, err := imp.pipeline.Run(ctx, path.Base(key), size, out.Body, imp.opts.ForceCreate)
	if err != nil {
		return imp.fail(ctx, key, prog, err)
	}

	renamedKey := fmt.Sprintf("%s%s-%s", processedPrefix,
		time.Now().UTC().Format("20060102T150405"), path.Base(key))
	imp.archive(ctx, key, renamedKey)

	if err := imp.log.MarkCompleted(ctx, key, renamedKey, summary.Result.Created, summary.Dropped); err != nil {
		logger.Warn("mark import completed failed", "key", key, "error", err)
	}

	prog.Phase = "completed"
	prog.TotalRows = int64(summary.TotalRows)
	prog.ImportedCount = int64(summary.Result.Created)
	prog.DroppedCount = int64(summary.Dropped)
	prog.DupeCount = int64(summary.Duplicates)
	imp.saveProgress(ctx, prog)

	logger.Info("drop-folder import complete",
		"key", key,
		"renamed_key", renamedKey,
		"created", summary.Result.Created,
		"dropped", summary.Dropped,
		"duplicates", summary.Duplicates,
	)
	return nil
}

// archive copies the original under processed/ and deletes it. Failures
// here are logged, not fatal: the import itself already succeeded and
// the log entry prevents a re-import.
func (imp *DropFolderImporter) archive(ctx context.Context, key, renamedKey string) {
	_, err := imp.s3.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(imp.opts.Bucket),
		CopySource: aws.String(imp.opts.Bucket + "/" + key),
		Key:        aws.String(renamedKey),
	})
	if err != nil {
		logger.Warn("archive copy failed", "key", key, "error", err)
		return
	}
	if _, err := imp.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(imp.opts.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		logger.Warn("archive delete failed", "key", key, "error", err)
	}
}

func (imp *DropFolderImporter) fail(ctx context.Context, key string, prog *ImportProgress, cause error) error {
	if err := imp.log.MarkFailed(ctx, key, cause.Error()); err != nil {
		logger.Warn("mark import failed errored", "key", key, "error", err)
	}
	prog.Phase = "failed"
	prog.Error = cause.Error()
	imp.saveProgress(ctx, prog)
	return cause
}

func (imp *DropFolderImporter) saveProgress(ctx context.Context, prog *ImportProgress) {
	if imp.progress == nil {
		return
	}
	if err := imp.progress.Save(ctx, prog); err != nil {
		logger.Warn("save import progress failed", "key", prog.Key, "error", err)
	}
}
