// Package uploads stores attachment payloads on the local filesystem
// under {root}/{kind}/{ownerID}/{generatedName} and serves them back by
// URL path.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/taskit/backend/core"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type Store struct {
	root    string
	baseURL string
}

var _ core.FileStore = (*Store)(nil) // interface compliance check

func NewStore(conf *core.Config) *Store {
	return &Store{
		root:    conf.Uploads.Root,
		baseURL: conf.Uploads.BaseURL,
	}
}

// Save writes the payload under a collision-resistant generated name
// and returns the stored metadata. Name keeps the caller's filename,
// sanitized for display; the generated name lives only in the URL.
func (st *Store) Save(kind string, ownerID int, up core.FileUpload) (core.SavedFile, error) {
	safeName := sanitizeName(up.Name)
	genName := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString(), safeName)

	dir := filepath.Join(st.root, kind, strconv.Itoa(ownerID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return core.SavedFile{}, errors.Wrap(err, "creating upload dir")
	}

	dst, err := os.Create(filepath.Join(dir, genName))
	if err != nil {
		return core.SavedFile{}, errors.Wrap(err, "creating upload file")
	}
	defer func() { _ = dst.Close() }()

	size, err := io.Copy(dst, up.Content)
	if err != nil {
		_ = os.Remove(dst.Name())
		return core.SavedFile{}, errors.Wrap(err, "writing upload file")
	}

	return core.SavedFile{
		Name:        safeName,
		URL:         fmt.Sprintf("%s/%s/%d/%s", st.baseURL, kind, ownerID, genName),
		ContentType: up.ContentType,
		Size:        size,
	}, nil
}

// DeleteAll removes every payload stored for the owner.
func (st *Store) DeleteAll(kind string, ownerID int) error {
	dir := filepath.Join(st.root, kind, strconv.Itoa(ownerID))
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrap(err, "removing upload dir")
	}
	return nil
}

// Root exposes the storage root for the static file route.
func (st *Store) Root() string { return st.root }

func sanitizeName(name string) string {
	safe := unsafeChars.ReplaceAllString(strings.TrimSpace(name), "_")
	if safe == "" {
		return "file"
	}
	return safe
}
