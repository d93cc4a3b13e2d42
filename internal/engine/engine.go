// Package engine defines the contract between the viewer core and the
// document rendering engine. The viewer treats the engine as an opaque
// collaborator: it knows nothing about file formats, fonts, or content
// streams, only about pages, bitmaps, text quads, and annotations.
package engine

import (
	"errors"
	"image"

	"github.com/foliops/folio/internal/core/geom"
)

var (
	// ErrNoPixels is returned by Rasterize when the engine produced no
	// pixel data for a page. Callers keep the previous bitmap.
	ErrNoPixels = errors.New("engine: no pixel data")

	// ErrNoQuads is returned by Quads for pages without extractable text,
	// e.g. scanned images. Callers fall back to box selection.
	ErrNoQuads = errors.New("engine: no text quads")

	// ErrClosed is returned by any operation on a closed document.
	ErrClosed = errors.New("engine: document closed")

	// ErrPageOutOfRange is returned for page indices outside [0, PageCount).
	ErrPageOutOfRange = errors.New("engine: page index out of range")

	// ErrAnnotationNotFound is returned when removing an annotation that no
	// longer exists on the page.
	ErrAnnotationNotFound = errors.New("engine: annotation not found")
)

// RGB is a color in the engine's native unit range [0, 1].
type RGB struct {
	R, G, B float64
}

// AnnotationKind discriminates annotation types the viewer cares about.
// Anything that is not a highlight is reported as KindOther and left alone.
type AnnotationKind string

const (
	KindHighlight AnnotationKind = "highlight"
	KindOther     AnnotationKind = "other"
)

// Annotation is a mark attached to a page. Highlights carry either a quad
// set (text selection) or just a rectangle (box selection on a page with no
// extractable text).
type Annotation struct {
	ID    string
	Kind  AnnotationKind
	Rect  geom.Rect
	Quads []geom.Quad
	Color RGB
}

// TextQuad is one atomic selectable text run together with the text it
// renders. Quads are reported in reading order, left to right and top to
// bottom within a page.
type TextQuad struct {
	Quad geom.Quad
	Text string
}

// Page is one page of an open document. Implementations are not safe for
// concurrent use; the viewer drives them from a single event loop.
type Page interface {
	// Index is the 0-based page number.
	Index() int

	// Size is the intrinsic page size in page-local units.
	Size() geom.Rect

	// Rasterize renders the page at the given logical scale and pixel
	// density factor. The returned bitmap has scale*density pixels per
	// page unit. Returns ErrNoPixels when the engine yields no samples.
	Rasterize(scale, density float64) (image.Image, error)

	// Quads returns the page's text runs in reading order, or ErrNoQuads
	// when the page has no extractable text.
	Quads() ([]TextQuad, error)

	// Text returns the page's plain text.
	Text() (string, error)

	// TextIn returns the text of all quads intersecting clip, in reading
	// order.
	TextIn(clip geom.Rect) (string, error)

	// AddHighlight attaches a highlight annotation covering quads, or rect
	// when quads is empty, and returns it.
	AddHighlight(quads []geom.Quad, rect geom.Rect, color RGB) (Annotation, error)

	// Annotations lists the page's annotations in insertion order.
	Annotations() ([]Annotation, error)

	// RemoveAnnotation deletes the annotation with the given id.
	RemoveAnnotation(id string) error
}

// Document is an open document. Exactly one tab owns a Document at a time;
// Close releases the underlying engine resources and every operation after
// Close returns ErrClosed.
type Document interface {
	// Label is the file path the document was opened from, or a transient
	// label for documents opened from bytes.
	Label() string

	// PageCount is the number of pages.
	PageCount() int

	// Page returns the page at index i.
	Page(i int) (Page, error)

	// Metadata returns engine-reported document metadata (title, author...).
	Metadata() map[string]string

	// Modified reports whether annotations were added or removed since the
	// document was opened or last saved.
	Modified() bool

	// Save writes the document, annotations included, to path. Saving to
	// the original path overwrites in place.
	Save(path string) error

	Close() error
}
