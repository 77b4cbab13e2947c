package codec

import (
	"io"
	"os"
)

// ReadFrom returns the file contents from pos to the current end of file.
// The files are appended to externally; whatever is visible now is what the
// caller gets. A read cut short by EOF returns only the bytes actually read,
// never zero padding.
func ReadFrom(f *os.File, pos int64) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size <= pos {
		return nil, nil
	}

	buf := make([]byte, size-pos)
	n, err := f.ReadAt(buf, pos)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}
