// internal/storage/storage.go
// Media storage for avatars, profile pictures and chat attachments

package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
)

// Allowed content types per upload kind
var (
	ImageTypes = []string{"image/jpeg", "image/png", "image/gif"}
	AudioTypes = []string{"audio/webm", "audio/mpeg", "audio/wav"}
)

// Upload is one file received from a client
type Upload struct {
	Body        io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// MediaStore persists uploads and returns the URL clients fetch them from
type MediaStore interface {
	Save(ctx context.Context, folder string, u Upload) (string, error)
	Delete(ctx context.Context, url string) error
}

// Check enforces the content type allow-list and the size limit
func Check(u Upload, allowed []string, maxSize int64) error {
	if !isAllowedType(u.ContentType, allowed) {
		return errs.InvalidOperation(fmt.Sprintf("Invalid file type. Allowed types: %s.", strings.Join(allowed, ", ")))
	}
	if u.Size > maxSize {
		return errs.InvalidOperation(fmt.Sprintf("File too large. Maximum size is %d MB.", maxSize/(1024*1024)))
	}
	return nil
}

func isAllowedType(contentType string, allowed []string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, t := range allowed {
		if contentType == t {
			return true
		}
	}
	return false
}

// objectName builds "<folder>/2006/01/02/<uuid><ext>"
func objectName(folder, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s/%s%s", folder, now.Format("2006/01/02"), uuid.New().String(), ext)
}
