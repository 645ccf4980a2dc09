package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yndnr/pixmesh-go/internal/core/domain"
)

var (
	// ErrNotFound is returned by Store.Load when no snapshot has been saved.
	ErrNotFound = errors.New("snapshot: not found")

	// ErrCorrupt is returned when a stored snapshot cannot be decoded or
	// does not describe a well-formed grid.
	ErrCorrupt = errors.New("snapshot: corrupt")
)

// Document is the persisted form of the canvas:
//
//	{"width": 200, "height": 100, "pixels": [["#ffffff", ...], ...]}
type Document struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Pixels domain.Grid `json:"pixels"`
}

// NewDocument builds a document from a grid.
func NewDocument(width, height int, pixels domain.Grid) *Document {
	return &Document{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Encode serializes the document to JSON.
func Encode(doc *Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return data, nil
}

// Decode parses a JSON document and checks that its declared dimensions
// match the pixel grid it carries.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Pixels == nil {
		return nil, fmt.Errorf("%w: missing pixels", ErrCorrupt)
	}
	if err := doc.Pixels.Validate(doc.Width, doc.Height); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &doc, nil
}
