// internal/storage/multipart.go

package storage

import (
	"errors"
	"net/http"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
)

// FormUpload returns the file sent in the named multipart field, or nil when the
// request carries none. The returned func closes the file and is never nil.
func FormUpload(r *http.Request, field string) (*Upload, func(), error) {
	noop := func() {}

	file, header, err := r.FormFile(field)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, noop, nil
	case err != nil:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, noop, errs.InvalidOperation("File too large.")
		}
		return nil, noop, errs.InvalidOperation("Invalid file upload.")
	}

	return &Upload{
		Body:        file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, func() { file.Close() }, nil
}
