package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrDuplicateKey reports a unique-constraint violation.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotFound reports a lookup that matched nothing.
	ErrNotFound = errors.New("record not found")
	// ErrRemoteUnavailable reports a network or server failure of the remote store.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	// ErrMalformedDocument reports a stored remote document that cannot be decoded.
	ErrMalformedDocument = errors.New("malformed document")
)

// SkippedDocumentsError is returned together with the decodable records of a
// listing when some documents could not be decoded. Each of Errs wraps
// ErrMalformedDocument.
type SkippedDocumentsError struct {
	Errs []error
}

func (e *SkippedDocumentsError) Error() string {
	return fmt.Sprintf("%d documents skipped: %v", len(e.Errs), errors.Join(e.Errs...))
}

func (e *SkippedDocumentsError) Unwrap() []error {
	return e.Errs
}

// decodeAll converts every document it can and collects the rest into a
// *SkippedDocumentsError.
func decodeAll[D, T any](docs []D, decode func(D) (T, error)) ([]T, error) {
	out := make([]T, 0, len(docs))
	var skipped []error
	for _, doc := range docs {
		rec, err := decode(doc)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		out = append(out, rec)
	}
	if len(skipped) > 0 {
		return out, &SkippedDocumentsError{Errs: skipped}
	}
	return out, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
