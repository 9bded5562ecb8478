package export

import (
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/source"

	"github.com/pickbetter/labelscan/internal/cloudwriter"
)

// CloudParquetFile adapts a cloudwriter.CloudWriter to the
// source.ParquetFile interface. It is write-only; reads and seeks
// from the end are not supported for cloud objects.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cw cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cw}
}

func (c *CloudParquetFile) Open(name string) (source.ParquetFile, error) {
	// cloud objects are not opened like local files; the writer is
	// already positioned for writing
	return c, nil
}

func (c *CloudParquetFile) Create(name string) (source.ParquetFile, error) {
	// the object is implicitly created when the buffer is flushed
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (n int, err error) {
	return c.cloudWriter.Write(p)
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
