package core

// streaming.go prepares uploaded rate sheets for decoding.
//
// Spreadsheet exports arrive with a UTF-8 BOM, stray Latin-1 bytes, or
// both. ReadImportText reads at most maxBytes, drops the BOM, and replaces
// invalid UTF-8 with '?' so the codec sees clean text.

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrEmptyFile    = errors.New("empty file")
	ErrNoFile       = errors.New("no file provided")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader drops a leading UTF-8 BOM and passes everything else
// through unchanged.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		if head, err := r.br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			if _, err := r.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.br.Read(p)
}

// ReadImportText reads an uploaded rate sheet. It fails with ErrFileTooLarge
// past maxBytes (when positive) and with ErrEmptyFile when nothing but a BOM
// or whitespace was sent.
func ReadImportText(r io.Reader, maxBytes int64) (string, error) {
	if r == nil {
		return "", ErrNoFile
	}

	src := io.Reader(NewBOMSkippingReader(r))
	if maxBytes > 0 {
		src = io.LimitReader(src, maxBytes+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read import: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxBytes)
	}

	text := strings.ToValidUTF8(string(data), "?")
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyFile
	}
	return text, nil
}
