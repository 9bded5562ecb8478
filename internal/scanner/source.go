package scanner

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// BarcodeSource delivers decoded barcode strings until the context is
// cancelled or the underlying source is drained. The returned channel
// is closed when no more codes will arrive.
type BarcodeSource interface {
	Subscribe(ctx context.Context) (<-chan string, error)
}

// ValidBarcode reports whether s looks like a product barcode: purely
// numeric and at least six digits long.
func ValidBarcode(s string) bool {
	if len(s) < 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// StaticSource delivers a fixed list of barcodes, one per receive.
type StaticSource struct {
	Codes []string
}

func (s *StaticSource) Subscribe(ctx context.Context) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		for _, code := range s.Codes {
			select {
			case out <- code:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// ReaderSource streams one barcode per line from r, skipping blank
// lines. Useful for piping a hardware scanner that types codes into
// stdin.
type ReaderSource struct {
	R io.Reader
}

func (s *ReaderSource) Subscribe(ctx context.Context) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		scan := bufio.NewScanner(s.R)
		for scan.Scan() {
			code := strings.TrimSpace(scan.Text())
			if code == "" {
				continue
			}
			select {
			case out <- code:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
