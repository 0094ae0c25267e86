package core

import "io"

// Attachment store kinds.
const (
	UploadKindTasks       = "tasks"
	UploadKindSubmissions = "submissions"
)

// FileUpload is an incoming multipart file as the services consume it.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// SavedFile describes an upload after the store persisted it.
type SavedFile struct {
	Name        string
	URL         string
	ContentType string
	Size        int64
}

// FileStore persists attachment payloads outside the database. Writes
// happen before the matching metadata row so a failed write never
// leaves a dangling row.
type FileStore interface {
	Save(kind string, ownerID int, up FileUpload) (SavedFile, error)
	DeleteAll(kind string, ownerID int) error
}
