package filestorage

import "mime/multipart"

// StoredFile describes an upload kept on disk.
type StoredFile struct {
	Name         string `json:"name"`         // generated file name
	OriginalName string `json:"originalName"` // name sent by the client
	Path         string `json:"-"`            // location on disk
	Size         int64  `json:"size"`
}

// FileStorage keeps uploaded files.
type FileStorage interface {
	// Save copies the upload into subPath under a generated name.
	Save(fileHeader *multipart.FileHeader, subPath string) (*StoredFile, error)

	// Delete removes a stored file. Missing files are not an error.
	Delete(file *StoredFile) error
}
