// Package parser loads document files into plain text for the
// pipeline. Formats are dispatched by file extension through a
// registry; callers can register their own parsers.
package parser

import (
	"context"
	"errors"
)

// ErrUnsupportedFormat is returned for file formats no registered
// parser handles.
var ErrUnsupportedFormat = errors.New("kgraph: unsupported document format")

// Result is the parsed content of one document file.
type Result struct {
	// Text is the document's full plain text.
	Text string

	// Format is the file format the parser handled, e.g. "pdf".
	Format string

	// Pages is the page or sheet count where the format has one.
	Pages int
}

// Parser can parse a specific set of document formats.
type Parser interface {
	Parse(ctx context.Context, path string) (*Result, error)
	SupportedFormats() []string
}
