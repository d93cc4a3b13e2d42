// Package pdfengine implements the engine contract for PDF documents.
//
// Rasterization and plain-text extraction are delegated to MuPDF via
// go-fitz. The document object model (text quad geometry, highlight
// annotations, saving) is handled with seehuhn.de/go/pdf. That model is
// read-only: highlights added or removed during a session live in an
// overlay and are merged into the page dictionaries when the document is
// saved.
//
// Page-local units are top-down: the origin is the upper-left corner of the
// page and y grows downwards, one unit per PDF point. PDF user space is
// bottom-up, so coordinates are flipped at the package boundary.
package pdfengine

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/gen2brain/go-fitz"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
	"seehuhn.de/go/pdf/pdfcopy"

	"github.com/foliops/folio/internal/engine"
)

// Document is a PDF document open for viewing and annotation editing.
type Document struct {
	label string

	// mu guards the model, the quad cache and the annotation overlay.
	// The viewer is single threaded, but Close may race with a late
	// async completion.
	mu sync.Mutex

	raster   *fitz.Document
	model    *pdf.Reader
	pageRefs []pdf.Reference

	pages     []*Page
	quadCache map[int]quadResult

	// Session annotation overlay, keyed by page index. added holds
	// highlights created this session; removed marks stored annotations
	// by id. Annotations merges both over the stored state, Save
	// materializes them.
	added    map[int][]engine.Annotation
	removed  map[int]map[string]bool
	annotSeq int

	modified bool
	closed   bool
}

type quadResult struct {
	quads []engine.TextQuad
	err   error
}

var _ engine.Document = (*Document)(nil)

// Open reads the document at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return OpenBytes(data, path)
}

// OpenBytes opens a document from raw bytes, e.g. a network fetch. The
// label stands in for a file path until the document is saved.
func OpenBytes(data []byte, label string) (*Document, error) {
	raster, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open document %q: %w", label, err)
	}

	model, err := pdf.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		raster.Close()
		return nil, fmt.Errorf("parse document %q: %w", label, err)
	}

	refs, err := pagetree.FindPages(model)
	if err != nil {
		raster.Close()
		return nil, fmt.Errorf("page tree of %q: %w", label, err)
	}
	if len(refs) != raster.NumPage() {
		// The two backends disagree on the page list; trust the
		// rasterizer and drop model-side extras.
		if len(refs) > raster.NumPage() {
			refs = refs[:raster.NumPage()]
		}
	}

	d := &Document{
		label:     label,
		raster:    raster,
		model:     model,
		pageRefs:  refs,
		quadCache: make(map[int]quadResult),
		added:     make(map[int][]engine.Annotation),
		removed:   make(map[int]map[string]bool),
	}
	d.pages = make([]*Page, raster.NumPage())
	for i := range d.pages {
		d.pages[i] = &Page{doc: d, index: i}
	}
	return d, nil
}

// Label implements engine.Document.
func (d *Document) Label() string { return d.label }

// PageCount implements engine.Document.
func (d *Document) PageCount() int { return len(d.pages) }

// Page implements engine.Document.
func (d *Document) Page(i int) (engine.Page, error) {
	if d.isClosed() {
		return nil, engine.ErrClosed
	}
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("%w: %d of %d", engine.ErrPageOutOfRange, i, len(d.pages))
	}
	return d.pages[i], nil
}

// Metadata implements engine.Document.
func (d *Document) Metadata() map[string]string {
	if d.isClosed() {
		return nil
	}
	meta := d.raster.Metadata()
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Modified implements engine.Document.
func (d *Document) Modified() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modified
}

// Save writes the document to path via a temporary file in the same
// directory, so a failed save never clobbers the original.
func (d *Document) Save(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return engine.ErrClosed
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".folio-save-*")
	if err != nil {
		return fmt.Errorf("save %q: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := d.writeTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save %q: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save %q: %w", path, err)
	}

	d.label = path
	d.modified = false
	return nil
}

// writeTo copies the stored document into f, rewriting the pages whose
// annotations changed this session. The caller must hold d.mu.
func (d *Document) writeTo(f io.Writer) error {
	w, err := pdf.NewWriter(f, pdf.GetVersion(d.model), nil)
	if err != nil {
		return err
	}
	copier := pdfcopy.NewCopier(w, d.model)

	// Changed pages get fresh objects. Redirecting their old references
	// before anything is copied makes the copied page tree point at the
	// rewritten dictionaries.
	type pendingPage struct {
		index  int
		newRef pdf.Reference
	}
	var pending []pendingPage
	for i := range d.pageRefs {
		if len(d.added[i]) == 0 && len(d.removed[i]) == 0 {
			continue
		}
		ref := w.Alloc()
		copier.Redirect(d.pageRefs[i], ref)
		pending = append(pending, pendingPage{index: i, newRef: ref})
	}

	meta := d.model.GetMeta()
	catalog, err := pdfcopy.CopyStruct(copier, meta.Catalog)
	if err != nil {
		return err
	}
	w.GetMeta().Catalog = catalog
	if meta.Info != nil {
		info, err := pdfcopy.CopyStruct(copier, meta.Info)
		if err != nil {
			return err
		}
		w.GetMeta().Info = info
	}
	w.GetMeta().ID = meta.ID

	for _, p := range pending {
		if err := d.writePage(w, copier, p.index, p.newRef); err != nil {
			return err
		}
	}
	return w.Close()
}

// writePage emits page index at newRef with the session's annotation
// changes folded into its Annots array.
func (d *Document) writePage(w *pdf.Writer, copier *pdfcopy.Copier, index int, newRef pdf.Reference) error {
	_, origDict, err := d.pageDict(index)
	if err != nil {
		return err
	}

	stripped := maps.Clone(origDict)
	delete(stripped, "Annots")
	dict, err := copier.CopyDict(stripped)
	if err != nil {
		return fmt.Errorf("copy page %d: %w", index, err)
	}

	var annots pdf.Array
	orig, err := pdf.GetArray(d.model, origDict["Annots"])
	if err != nil {
		orig = nil // malformed Annots array, keep only session highlights
	}
	for i, obj := range orig {
		if obj == nil || d.removed[index][annotID(obj, index, i)] {
			continue
		}
		kept, err := copier.Copy(obj.AsPDF(w.GetOptions()))
		if err != nil {
			return fmt.Errorf("copy annotation on page %d: %w", index, err)
		}
		annots = append(annots, kept)
	}

	pageH := d.pages[index].Size().Height()
	for _, a := range d.added[index] {
		ref := w.Alloc()
		if err := w.Put(ref, highlightDict(a, pageH)); err != nil {
			return fmt.Errorf("store highlight on page %d: %w", index, err)
		}
		annots = append(annots, ref)
	}
	if len(annots) > 0 {
		dict["Annots"] = annots
	}
	return w.Put(newRef, dict)
}

// Close implements engine.Document.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.quadCache = nil
	err := d.raster.Close()
	if cerr := d.model.Close(); err == nil {
		err = cerr
	}
	return err
}

func (d *Document) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// pageDict returns the stored page dictionary for page i. The caller must
// hold d.mu.
func (d *Document) pageDict(i int) (pdf.Reference, pdf.Dict, error) {
	if i < 0 || i >= len(d.pageRefs) {
		return 0, nil, engine.ErrPageOutOfRange
	}
	ref := d.pageRefs[i]
	dict, err := pdf.GetDict(d.model, ref)
	if err != nil {
		return 0, nil, fmt.Errorf("page %d dict: %w", i, err)
	}
	return ref, dict, nil
}
