package envexec

import (
	"fmt"
	"io"
	"os"
)

// cmdFiles holds the backing files of the standard streams of a single run,
// each run owns its files exclusively
type cmdFiles struct {
	stdin, stdout, stderr *os.File
	temp                  bool
}

func newTempFile() (*os.File, error) {
	return os.CreateTemp("", "envexec-")
}

func prepareFiles(c *Cmd) (*cmdFiles, error) {
	fds := &cmdFiles{temp: c.NewStoreFile == nil}
	newFile := c.NewStoreFile
	if newFile == nil {
		newFile = newTempFile
	}

	var err error
	if fds.stdin, err = newFile(); err != nil {
		return nil, fmt.Errorf("prepare stdin: %w", err)
	}
	if _, err = fds.stdin.Write(c.Stdin); err != nil {
		fds.close()
		return nil, fmt.Errorf("prepare stdin: %w", err)
	}
	if _, err = fds.stdin.Seek(0, io.SeekStart); err != nil {
		fds.close()
		return nil, fmt.Errorf("prepare stdin: %w", err)
	}
	if fds.stdout, err = newFile(); err != nil {
		fds.close()
		return nil, fmt.Errorf("prepare stdout: %w", err)
	}
	if fds.stderr, err = newFile(); err != nil {
		fds.close()
		return nil, fmt.Errorf("prepare stderr: %w", err)
	}
	return fds, nil
}

func (f *cmdFiles) close() {
	for _, fd := range []*os.File{f.stdin, f.stdout, f.stderr} {
		if fd == nil {
			continue
		}
		fd.Close()
		if f.temp {
			os.Remove(fd.Name())
		}
	}
}
