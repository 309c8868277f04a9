// Package output writes the keyword sets of a run to flat text files, one
// value per line.
package output

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"

	"movie_keywords/internal/keywords"
	"movie_keywords/internal/logger"
)

const fileExt = ".txt"

// File describes one written keyword file.
type File struct {
	Kind   keywords.Kind
	Path   string
	Lines  int
	Digest string
}

// FileName returns the file name used for a keyword set.
func FileName(kind keywords.Kind) string {
	return kind.String() + fileExt
}

// Writer writes keyword files into a directory.
type Writer struct {
	dir string
	log logger.Logger
}

func NewWriter(dir string, log logger.Logger) *Writer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Writer{dir: dir, log: log}
}

// WriteAll writes every set of acc, sorted, to its own file.
func (w *Writer) WriteAll(acc *keywords.Accumulator) ([]File, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", w.dir, err)
	}

	files := make([]File, 0, len(keywords.Kinds()))
	for _, kind := range keywords.Kinds() {
		f, err := w.write(kind, acc.Values(kind))
		if err != nil {
			return files, err
		}
		w.log.Info("keywords written",
			logger.String("file", f.Path),
			logger.Int("lines", f.Lines),
			logger.String("md5", f.Digest))
		files = append(files, f)
	}
	return files, nil
}

func (w *Writer) write(kind keywords.Kind, values []string) (File, error) {
	var buf bytes.Buffer
	for _, v := range values {
		buf.WriteString(v)
		buf.WriteByte('\n')
	}

	path := filepath.Join(w.dir, FileName(kind))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return File{}, fmt.Errorf("write %s: %w", path, err)
	}

	return File{
		Kind:   kind,
		Path:   path,
		Lines:  len(values),
		Digest: ComputeContentHash(buf.Bytes()),
	}, nil
}

// ComputeContentHash returns the hex md5 of content.
func ComputeContentHash(content []byte) string {
	hash := md5.Sum(content)
	return fmt.Sprintf("%x", hash)
}
