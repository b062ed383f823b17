package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docuchat/docuchat/internal/repo"
)

// StuckDocumentJob fails documents that have sat in the processing state for
// too long, typically after a crash mid-ingestion. Without it a dead upload
// would stay in processing forever.
type StuckDocumentJob struct {
	docs   *repo.DocumentRepo
	maxAge time.Duration
}

func NewStuckDocumentJob(docs *repo.DocumentRepo, maxAge time.Duration) *StuckDocumentJob {
	return &StuckDocumentJob{docs: docs, maxAge: maxAge}
}

func (j *StuckDocumentJob) Name() string {
	return "stuck_document_reaper"
}

func (j *StuckDocumentJob) Run(ctx context.Context) error {
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 30 * time.Minute
	}
	now := time.Now()
	cutoff := now.Add(-maxAge).Unix()
	affected, err := j.docs.MarkStuckFailed(ctx, cutoff, now.Unix())
	if err != nil {
		return err
	}
	if affected > 0 {
		logutil.GetLogger(ctx).Warn("failed stuck documents", zap.Int64("count", affected))
	}
	return nil
}
