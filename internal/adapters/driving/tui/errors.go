package tui

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("tui: search service is required")

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("tui: document service is required")

// ErrInvalidPorts is returned when no ports are given.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
