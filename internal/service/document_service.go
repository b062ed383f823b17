package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docuchat/docuchat/internal/extract"
	"github.com/docuchat/docuchat/internal/filestore"
	"github.com/docuchat/docuchat/internal/model"
	"github.com/docuchat/docuchat/internal/pkg/errors"
	"github.com/docuchat/docuchat/internal/pkg/timeutil"
	"github.com/docuchat/docuchat/internal/repo"
)

// BatchEmbedder turns a batch of chunk texts into one vector per chunk.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Splitter cuts extracted text into overlapping chunks for embedding.
type Splitter interface {
	Split(text string) ([]string, error)
}

// ChunkStore persists embedded chunks; StoreBatch is all-or-nothing.
type ChunkStore interface {
	StoreBatch(ctx context.Context, documentID string, inputs []repo.ChunkInput) ([]int64, error)
	CountByDocument(ctx context.Context, documentID string) (int, error)
}

// DocumentStore is the document metadata repository.
type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	UpdateStatus(ctx context.Context, docID, status string, mtime int64) error
	GetByID(ctx context.Context, userID, docID string) (*model.Document, error)
	ListByUser(ctx context.Context, userID string) ([]model.Document, error)
	ListByIDs(ctx context.Context, docIDs []string, status string) ([]model.Document, error)
	Delete(ctx context.Context, userID, docID string) error
}

type DocumentService struct {
	docs     DocumentStore
	chunks   ChunkStore
	files    filestore.Store
	embedder BatchEmbedder
	splitter Splitter
}

func NewDocumentService(docs DocumentStore, chunks ChunkStore, files filestore.Store, embedder BatchEmbedder, splitter Splitter) *DocumentService {
	return &DocumentService{
		docs:     docs,
		chunks:   chunks,
		files:    files,
		embedder: embedder,
		splitter: splitter,
	}
}

// Upload runs the full ingestion pipeline for one file. The document row is
// created in the processing state before any pipeline step runs and always
// ends up ready or failed; a pipeline error never leaves it in processing.
func (s *DocumentService) Upload(ctx context.Context, userID, filename string, data []byte) (*model.Document, error) {
	if !extract.Supported(filename) {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedFormat, filepath.Ext(filename))
	}
	now := timeutil.NowUnix()
	doc := &model.Document{
		ID:       newID(),
		UserID:   userID,
		Filename: filepath.Base(filename),
		Status:   model.StatusProcessing,
		Ctime:    now,
		Mtime:    now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.ingest(ctx, doc, data); err != nil {
		s.markFailed(ctx, doc)
		return doc, err
	}
	if err := s.docs.UpdateStatus(ctx, doc.ID, model.StatusReady, timeutil.NowUnix()); err != nil {
		return doc, err
	}
	doc.Status = model.StatusReady
	return doc, nil
}

func (s *DocumentService) ingest(ctx context.Context, doc *model.Document, data []byte) error {
	if err := s.files.Save(ctx, fileKey(doc), bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("%w: save upload: %v", errors.ErrStorageFailed, err)
	}
	text, err := extract.Text(doc.Filename, data)
	if err != nil {
		return err
	}
	texts, err := s.splitter.Split(text)
	if err != nil {
		return err
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", errors.ErrEmbeddingFailed, len(vectors), len(texts))
	}
	inputs := make([]repo.ChunkInput, 0, len(texts))
	for i, chunk := range texts {
		inputs = append(inputs, repo.ChunkInput{Content: chunk, Embedding: vectors[i]})
	}
	if _, err := s.chunks.StoreBatch(ctx, doc.ID, inputs); err != nil {
		return fmt.Errorf("%w: store chunks: %v", errors.ErrStorageFailed, err)
	}
	logutil.GetLogger(ctx).Info("document ingested",
		zap.String("document_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int("chunks", len(texts)))
	return nil
}

func (s *DocumentService) markFailed(ctx context.Context, doc *model.Document) {
	doc.Status = model.StatusFailed
	if err := s.docs.UpdateStatus(ctx, doc.ID, model.StatusFailed, timeutil.NowUnix()); err != nil {
		logutil.GetLogger(ctx).Error("mark document failed",
			zap.String("document_id", doc.ID), zap.Error(err))
	}
}

func (s *DocumentService) List(ctx context.Context, userID string) ([]model.Document, error) {
	return s.docs.ListByUser(ctx, userID)
}

func (s *DocumentService) Get(ctx context.Context, userID, docID string) (*model.Document, error) {
	return s.docs.GetByID(ctx, userID, docID)
}

// Delete removes the document row, its chunks via FK cascade, and the raw
// uploaded file. A missing raw file is not an error.
func (s *DocumentService) Delete(ctx context.Context, userID, docID string) error {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, userID, docID); err != nil {
		return err
	}
	if err := s.files.Delete(ctx, fileKey(doc)); err != nil {
		logutil.GetLogger(ctx).Warn("delete raw file",
			zap.String("document_id", docID), zap.Error(err))
	}
	return nil
}

// Download returns the original uploaded file for a document the user owns.
func (s *DocumentService) Download(ctx context.Context, userID, docID string) (*model.Document, io.ReadCloser, error) {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.files.Open(ctx, fileKey(doc))
	if err != nil {
		return nil, nil, errors.ErrNotFound
	}
	return doc, r, nil
}

func fileKey(doc *model.Document) string {
	return doc.ID + strings.ToLower(filepath.Ext(doc.Filename))
}
