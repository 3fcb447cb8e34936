package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"billzsync/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Resolver maps a remote photo URL to a stable local attachment id.
type Resolver interface {
	Resolve(photoURL, alt string) (uint, error)
}

// Store resolves photo URLs against the attachments table: first by exact
// source URL, then by filename, and only then by downloading the file into
// the media directory. Re-syncs therefore never re-download an image that is
// already present.
type Store struct {
	db         *gorm.DB
	dir        string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewStore(db *gorm.DB, dir string, logger zerolog.Logger) *Store {
	return &Store{
		db:  db,
		dir: dir,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		logger: logger,
	}
}

func (s *Store) Resolve(photoURL, alt string) (uint, error) {
	var row models.Attachment

	err := s.db.First(&row, "source_url = ?", photoURL).Error
	if err == nil {
		return row.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	// Fall back to a filename match: the same image may have arrived earlier
	// under a different query string or CDN host.
	if base := baseName(photoURL); base != "" {
		err = s.db.Where("filename LIKE ?", "%"+base+"%").First(&row).Error
		if err == nil {
			return row.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	return s.download(photoURL, alt)
}

func (s *Store) download(photoURL, alt string) (uint, error) {
	resp, err := s.httpClient.Get(photoURL)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", photoURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download %s: status %d", photoURL, resp.StatusCode)
	}

	filename := fileName(photoURL)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, err
	}

	dest := filepath.Join(s.dir, filename)
	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return 0, fmt.Errorf("write %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	row := models.Attachment{
		SourceURL: photoURL,
		Filename:  filename,
		Alt:       alt,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return 0, err
	}

	s.logger.Debug().Str("url", photoURL).Uint("attachment_id", row.ID).Msg("downloaded media")
	return row.ID, nil
}

// baseName is the filename without extension, the part stable across hosts.
func baseName(photoURL string) string {
	name := fileName(photoURL)
	return strings.TrimSuffix(name, path.Ext(name))
}

func fileName(photoURL string) string {
	u, err := url.Parse(photoURL)
	if err != nil || u.Path == "" {
		return path.Base(photoURL)
	}
	return path.Base(u.Path)
}
