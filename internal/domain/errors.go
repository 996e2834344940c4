package domain

import "errors"

// ErrDocumentNotFound indicates the quiz document could not be loaded.
var ErrDocumentNotFound = errors.New("quiz document not found")
