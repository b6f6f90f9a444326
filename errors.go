package kgraph

import "errors"

var (
	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("kgraph: invalid configuration")

	// ErrAllDocumentsFailed is returned when every document in a batch
	// failed extraction and no partial result could be produced.
	ErrAllDocumentsFailed = errors.New("kgraph: all documents failed")
)
