package filestore

import (
	"bytes"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"os"

	"github.com/procon-tools/go-procon/file"
)

const randIDLength = 12

var errUniqueIDNotGenerated = errors.New("unique id does not exists after tried 50 times")

// FileStore defines interface to store scratch artifacts
type FileStore interface {
	Add(name string, content []byte) (string, error) // Add creates a file with name & content to the storage, returns id
	New() (*os.File, error)                          // New creates an empty file with unique id as its base name
	Remove(string) bool                              // Remove deletes a file by id
	Get(string) (string, file.File)                  // Get file by id, nil if not exists
	List() map[string]string                         // List return all file ids with their names
}

func generateID() (string, error) {
	b := make([]byte, randIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := base32.NewEncoder(base32.StdEncoding, &buf).Write(b); err != nil {
		return "", err
	}
	return buf.String(), nil
}
