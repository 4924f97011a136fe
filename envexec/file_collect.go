package envexec

import (
	"io"
	"os"
)

// collectFile reads back what the process wrote into f, at most limit bytes
func collectFile(f *os.File, limit Size) ([]byte, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, int64(limit))
	}
	return io.ReadAll(r)
}
