// Package render turns a finished layout.Document into PDF bytes.
package render

import (
	"errors"
	"fmt"
	"io"

	"solar-proposal-backend/config"
	"solar-proposal-backend/internal/layout"

	"go.uber.org/zap"
)

// ErrRender matches every *Failure through errors.Is.
var ErrRender = errors.New("render failed")

// Failure aborts a whole document. Page is 0 when the failure is not tied to
// a page (empty document, output write).
type Failure struct {
	Page int
	Err  error
}

func (f *Failure) Error() string {
	if f.Page > 0 {
		return fmt.Sprintf("render failed on page %d: %v", f.Page, f.Err)
	}
	return fmt.Sprintf("render failed: %v", f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func (f *Failure) Is(target error) bool {
	return target == ErrRender
}

// recoverFailure turns a gofpdf panic into a Failure on the page being
// painted, so a broken render never takes the process down.
func recoverFailure(page *int, err *error) {
	if r := recover(); r != nil {
		config.Logger.Error("PDF render panicked", zap.Int("page", *page), zap.Any("panic", r))
		*err = &Failure{Page: *page, Err: fmt.Errorf("panic: %v", r)}
	}
}

// Emit paints every page of doc, content first then footer, and writes the
// PDF to w.
func Emit(doc *layout.Document, w io.Writer) (err error) {
	if doc == nil || doc.PageCount() == 0 {
		return &Failure{Err: errors.New("document has no pages")}
	}

	current := 0
	defer recoverFailure(&current, &err)

	pdf := newPDF(doc.Pages[0])
	pdf.SetTitle(doc.Meta.Title, true)
	pdf.SetSubject(doc.Meta.Subject, true)
	pdf.SetAuthor(doc.Meta.Author, true)
	pdf.SetCreator(doc.Meta.Creator, true)
	if !doc.Meta.Created.IsZero() {
		pdf.SetCreationDate(doc.Meta.Created)
		pdf.SetModificationDate(doc.Meta.Created)
	}

	p := newPainter(pdf)
	for _, page := range doc.Pages {
		current = page.Number
		pdf.AddPageFormat("P", pdfSize(page))
		for _, cmd := range page.Commands() {
			p.draw(cmd)
		}
		if pdf.Err() {
			config.Logger.Error("PDF page render failed",
				zap.Int("page", page.Number),
				zap.Error(pdf.Error()),
			)
			return &Failure{Page: page.Number, Err: pdf.Error()}
		}
	}

	current = 0
	if err := pdf.Output(w); err != nil {
		return &Failure{Err: fmt.Errorf("write pdf: %w", err)}
	}
	return nil
}

// Stream renders doc in a goroutine and hands the bytes over through a pipe,
// so the consumer can forward them without holding a second copy. A render
// failure surfaces as the read error; Close stops a render nobody reads.
func Stream(doc *layout.Document) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(Emit(doc, pw))
	}()
	return pr
}
