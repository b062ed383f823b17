package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")

	// Ingestion taxonomy. The first three are caused by the uploaded file,
	// the last two are runtime faults.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrExtractionFailed  = errors.New("text extraction failed")
	ErrEmptyDocument     = errors.New("no extractable text")
	ErrEmbeddingFailed   = errors.New("embedding failed")
	ErrStorageFailed     = errors.New("chunk storage failed")

	// Answer pipeline.
	ErrAnswerFailed = errors.New("answer generation failed")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsIngestUserError reports whether an ingestion failure was caused by the
// uploaded file rather than by the system.
func IsIngestUserError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrExtractionFailed) ||
		errors.Is(err, ErrEmptyDocument)
}
