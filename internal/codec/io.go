package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/gridhist/internal/log"
	"github.com/zjrosen/gridhist/internal/tracing"
)

func tracer() trace.Tracer {
	return otel.Tracer("github.com/zjrosen/gridhist/internal/codec")
}

// Encode writes doc as YAML.
func Encode[T comparable](w io.Writer, doc *Document[T]) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding history document: %w", err)
	}
	return enc.Close()
}

// Decode reads one YAML document. Unknown fields are rejected.
func Decode[T comparable](r io.Reader) (*Document[T], error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document[T]
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.Check(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadFile decodes the document at path.
func ReadFile[T comparable](ctx context.Context, path string) (doc *Document[T], err error) {
	_, span := tracer().Start(ctx, tracing.SpanPrefixCodec+"read",
		trace.WithAttributes(attribute.String(tracing.AttrDocumentPath, path)))
	defer func() { tracing.End(span, err) }()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history document: %w", err)
	}
	span.SetAttributes(attribute.Int(tracing.AttrDocumentSize, len(data)))

	doc, err = Decode[T](bytes.NewReader(data))
	if err != nil {
		log.Warn(log.CatCodec, "Rejected history document", "path", path, "error", err)
		return nil, err
	}
	return doc, nil
}

// WriteFile encodes doc to path, replacing the file atomically so a watcher
// never observes a half-written document.
func WriteFile[T comparable](ctx context.Context, path string, doc *Document[T]) (err error) {
	_, span := tracer().Start(ctx, tracing.SpanPrefixCodec+"write",
		trace.WithAttributes(attribute.String(tracing.AttrDocumentPath, path)))
	defer func() { tracing.End(span, err) }()

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}
	span.SetAttributes(attribute.Int(tracing.AttrDocumentSize, buf.Len()))

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}
	temp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()
	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	log.Debug(log.CatCodec, "Wrote history document", "path", path, "bytes", buf.Len())
	return nil
}
