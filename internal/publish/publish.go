// Package publish delivers rendered reports to the terminal, to files and
// to S3-compatible object storage.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Sink receives a rendered report. name identifies the report for sinks
// that store several; location describes where it ended up.
type Sink interface {
	Publish(ctx context.Context, name, report string) (location string, err error)
}

// Compression suffixes recognized by file and object sinks.
const (
	SuffixGzip = ".gz"
	SuffixZstd = ".zst"
)

// encode returns report compressed according to the suffix of name.
func encode(name, report string) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(name)) {
	case SuffixGzip:
		zw := gzip.NewWriter(&buf)
		if _, err := io.WriteString(zw, report); err != nil {
			return nil, fmt.Errorf("gzip report: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("gzip report: %w", err)
		}
	case SuffixZstd:
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("create zstd writer: %w", err)
		}
		if _, err := io.WriteString(zw, report); err != nil {
			zw.Close()
			return nil, fmt.Errorf("zstd report: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("zstd report: %w", err)
		}
	default:
		buf.WriteString(report)
	}
	return buf.Bytes(), nil
}

// Decode reverses the compression implied by the suffix of name.
func Decode(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case SuffixGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("open gzip report: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return "", fmt.Errorf("read gzip report: %w", err)
		}
		return string(out), nil
	case SuffixZstd:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("open zstd report: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return "", fmt.Errorf("read zstd report: %w", err)
		}
		return string(out), nil
	default:
		return string(data), nil
	}
}

// WriterSink writes reports verbatim to an io.Writer such as stdout.
type WriterSink struct {
	W     io.Writer
	Label string // reported as the location, e.g. "stdout"
}

func (s WriterSink) Publish(_ context.Context, _ string, report string) (string, error) {
	if _, err := io.WriteString(s.W, report); err != nil {
		return "", err
	}
	return s.Label, nil
}

// FileSink writes each report to Path, compressed when Path ends in .gz or
// .zst. The report name is not used.
type FileSink struct {
	Path string
}

func (s FileSink) Publish(ctx context.Context, _ string, report string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := encode(s.Path, report)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	// A failed write must never leave a truncated report behind.
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".automark-report-*")
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write report file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("write report file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("write report file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("write report file: %w", err)
	}
	return s.Path, nil
}

// Multi publishes to every sink in order and stops at the first error.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, name, report string) (string, error) {
	var locations []string
	for _, s := range m {
		loc, err := s.Publish(ctx, name, report)
		if err != nil {
			return strings.Join(locations, ", "), err
		}
		if loc != "" {
			locations = append(locations, loc)
		}
	}
	return strings.Join(locations, ", "), nil
}
