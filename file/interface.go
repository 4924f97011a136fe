package file

import (
	"io"
)

// File defines file name with its content
// file could on file system or memory
type File interface {
	Name() string
	Content() ([]byte, error)        // get content of the file
	Reader() (io.ReadCloser, error) // get a reader of the content
}

// Local is a File backed by a path on the file system
type Local interface {
	File
	Path() string
}
