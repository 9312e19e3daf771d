package fichas

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"net/http"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"

	"fichaflow/api/shared/web"
	"fichaflow/infrastructure/sqlite"
)

// HojaPDFHandler streams the printable ficha técnica sheet handed to the
// plant floor, barcoded with the ticket number.
func HojaPDFHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fichaID, err := parseFichaID(r)
		if err != nil {
			web.Error(w, http.StatusBadRequest, "id de ficha invalido")
			return
		}

		ficha, err := loadFicha(r.Context(), db, fichaID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				web.Error(w, http.StatusNotFound, "ficha no encontrada")
				return
			}
			web.Internal(w, "load ficha failed", err)
			return
		}

		view, err := toFichaView(ficha)
		if err != nil {
			web.Internal(w, "build ficha view failed", err)
			return
		}

		pdfBytes, err := renderFichaSheetPDF(view, time.Now())
		if err != nil {
			web.Internal(w, "render ficha sheet failed", err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", view.NumeroFicha+".pdf"))
		_, _ = w.Write(pdfBytes)
	}
}

func renderFichaSheetPDF(view FichaView, printedAt time.Time) ([]byte, error) {
	barcodePNG, err := renderCode128PNG(view.NumeroFicha, 1200, 260)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Ficha Técnica "+view.NumeroFicha, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, tr("FICHA TÉCNICA DE PRODUCCIÓN"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 36)
	pdf.CellFormat(0, 18, view.NumeroFicha, "", 1, "C", false, 0, "")

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	imageName := "ficha-barcode-" + view.NumeroFicha
	pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
	pageW, _ := pdf.GetPageSize()
	imgW := 120.0
	imgH := 26.0
	pdf.ImageOptions(imageName, (pageW-imgW)/2, pdf.GetY()+2, imgW, imgH, false, opt, 0, "")
	pdf.SetY(pdf.GetY() + imgH + 8)

	e := view.Especificaciones
	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 8, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, tr(value), "", 1, "L", false, 0, "")
	}

	line("Cliente:", view.Pedido.Cliente.Nombre)
	line("Pedido:", fmt.Sprintf("#%d - %s", view.Pedido.ID, view.Pedido.Descripcion))
	line("Estado:", view.Estado)
	line("Jefe de producción:", view.JefeNombre)
	pdf.Ln(3)
	line("Tipo de envoltura:", e.TipoEnvoltura)
	line("Material:", e.Material)
	line("Color:", e.Color)
	line("Acabado:", e.Acabado)
	line("Dimensiones (mm):", fmt.Sprintf("%.2f x %.2f x %.3f", e.Dimensiones.Largo, e.Dimensiones.Ancho, e.Dimensiones.Grosor))
	line("Cantidad total:", fmt.Sprintf("%d", e.CantidadTotal))
	if e.Observaciones != "" {
		line("Observaciones:", e.Observaciones)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Creada: "+view.FechaCreacion.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Impresa: "+printedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}

	bounds := scaled.Bounds()
	normalized := image.NewNRGBA(bounds)
	draw.Draw(normalized, bounds, scaled, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, normalized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
