package page

import (
	"os"

	"github.com/pkg/errors"
)

// BaseFile wraps a single OS file handle with page-aligned read/write-at
// helpers shared by every DbFile implementation.
type BaseFile struct {
	file *os.File
	path string
}

func OpenBaseFile(path string) (*BaseFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return &BaseFile{file: f, path: path}, nil
}

func (b *BaseFile) Path() string {
	return b.path
}

func (b *BaseFile) ReadAt(pageNumber int) ([]byte, error) {
	buf := make([]byte, Size)
	offset := int64(pageNumber) * int64(Size)
	n, err := b.file.ReadAt(buf, offset)
	if err != nil && n != Size {
		return nil, errors.Wrapf(err, "read page %d of %s", pageNumber, b.path)
	}
	return buf, nil
}

func (b *BaseFile) WriteAt(pageNumber int, data []byte) error {
	if len(data) != Size {
		return errors.Errorf("page write for %s must be exactly %d bytes, got %d", b.path, Size, len(data))
	}
	offset := int64(pageNumber) * int64(Size)
	if _, err := b.file.WriteAt(data, offset); err != nil {
		return errors.Wrapf(err, "write page %d of %s", pageNumber, b.path)
	}
	return nil
}

// NumPages returns the file's length divided by Size; the file length must
// be an exact multiple of Size.
func (b *BaseFile) NumPages() (int, error) {
	info, err := b.file.Stat()
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", b.path)
	}
	return int(info.Size() / int64(Size)), nil
}

// AppendPage extends the file by one zero-filled page and returns its page
// number.
func (b *BaseFile) AppendPage() (int, error) {
	n, err := b.NumPages()
	if err != nil {
		return 0, err
	}
	if err := b.WriteAt(n, make([]byte, Size)); err != nil {
		return 0, err
	}
	return n, nil
}

func (b *BaseFile) Close() error {
	return b.file.Close()
}
