// ABOUTME: Input factory registration and format dispatch
// ABOUTME: Matches files by extension, content type or content sniffing
package input

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Factory describes one registered input component.
type Factory struct {
	// ID identifies the component to the host.
	ID   uuid.UUID
	Name string
	// Extensions lists the file extensions this input claims, with the
	// leading dot, lowercase.
	Extensions []string
	// ContentTypes lists the MIME types this input claims.
	ContentTypes []string
	// Sniff probes the stream content at the current position and must
	// leave the position unchanged. Nil when the format has no reliable
	// signature.
	Sniff func(src io.ReadSeeker) bool
	// Open creates an Input over src. src is positioned at the start.
	Open func(ctx context.Context, src io.ReadSeeker, reason OpenReason) (Input, error)
}

// Registry holds the available input factories in registration order.
type Registry struct {
	factories []*Factory
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a factory. Earlier registrations win ties.
func (r *Registry) Register(f *Factory) {
	r.factories = append(r.factories, f)
}

// ByExtension returns the factory claiming the path's extension, or nil.
func (r *Registry) ByExtension(path string) *Factory {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range r.factories {
		for _, e := range f.Extensions {
			if e == ext {
				return f
			}
		}
	}
	return nil
}

// ByContentType returns the factory claiming the MIME type, or nil.
func (r *Registry) ByContentType(contentType string) *Factory {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, f := range r.factories {
		for _, c := range f.ContentTypes {
			if c == ct {
				return f
			}
		}
	}
	return nil
}

// Detect sniffs the stream content against every factory that supports
// sniffing. The read position is unchanged on return.
func (r *Registry) Detect(src io.ReadSeeker) *Factory {
	for _, f := range r.factories {
		if f.Sniff != nil && f.Sniff(src) {
			return f
		}
	}
	return nil
}

// Open resolves a factory for src, by extension first and content sniff
// second, and opens it.
func (r *Registry) Open(ctx context.Context, src io.ReadSeeker, path string, reason OpenReason) (Input, error) {
	f := r.ByExtension(path)
	if f == nil {
		f = r.Detect(src)
	}
	if f == nil {
		return nil, fmt.Errorf("no input accepts %q", path)
	}
	return f.Open(ctx, src, reason)
}

// OpenFile opens a local file through the registry. The file is closed
// when the returned Input is closed.
func (r *Registry) OpenFile(ctx context.Context, path string, reason OpenReason) (Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	in, err := r.Open(ctx, f, path, reason)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &closingInput{Input: in, file: f}, nil
}

type closingInput struct {
	Input
	file   *os.File
	closed bool
}

func (c *closingInput) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	err := c.Input.Close()
	if cerr := c.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Default returns a registry with every input this module provides.
func Default() *Registry {
	r := NewRegistry()
	r.Register(NewAMRFactory())
	r.Register(NewMP3Factory())
	r.Register(NewFLACFactory())
	return r
}
