// Package export builds generate-pdf payloads from templates.
package export

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/davyaugustnurismail/ukk-sub001/internal/backendapi"
	"github.com/davyaugustnurismail/ukk-sub001/internal/canvas"
	"github.com/davyaugustnurismail/ukk-sub001/internal/shape"
)

// PDFRenderer is the external renderer the payload is handed to. Satisfied
// by *backendapi.Client.
type PDFRenderer interface {
	GeneratePDF(ctx context.Context, templateID string, payload backendapi.PDFPayload) ([]byte, error)
}

// PrepareElements returns the export copy of an element list: shapes are
// rasterized into image elements, everything else passes through unchanged,
// and the original array order (and with it the z-index semantics) is kept.
//
// The input slice is never mutated; export operates on a derived copy so a
// concurrent edit in the UI cannot race an in-flight export. Rasterizations
// run concurrently since each shape is independent; each goroutine writes to
// its own fixed index, so completion order does not matter.
func PrepareElements(ctx context.Context, elements []canvas.Element) ([]canvas.Element, error) {
	out := make([]canvas.Element, len(elements))
	copy(out, elements)

	g, ctx := errgroup.WithContext(ctx)
	for i := range out {
		if out[i].Type != canvas.TypeShape {
			continue
		}
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = shape.ToImageElement(out[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Export prepares the template for one recipient and calls the external PDF
// renderer. It is read-only over the template: a cancelled or failed export
// leaves no trace on the element list.
func Export(ctx context.Context, renderer PDFRenderer, t *canvas.Template, rc canvas.RecipientContext) ([]byte, error) {
	elements, err := PrepareElements(ctx, t.Elements)
	if err != nil {
		return nil, err
	}

	payload := backendapi.PDFPayload{
		RecipientName:     rc.RecipientName,
		CertificateNumber: rc.CertificateNumber,
		Date:              rc.CertificateDate,
		MerchantID:        t.MerchantID,
		Instruktur:        rc.Instruktur,
		Elements:          elements,
	}
	return renderer.GeneratePDF(ctx, t.ID, payload)
}
