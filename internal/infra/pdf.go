package infra

// pdf.go — drawer close report generation using go-pdf/fpdf.
// Produces an A4 summary of one cash-drawer session: opening/closing amounts,
// running totals, the expected-vs-counted difference, and the expense list.
// The output file is saved to storagePath/cierre_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oajacap/kissu/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateCierrePDF renders the close report for a finalized CuadreCaja.
// Returns the absolute path to the generated file.
func GenerateCierrePDF(cuadre *model.CuadreCaja, gastos []model.Gasto, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("cierre_%s.pdf", cuadre.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Cierre de Caja", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Sesión %s", cuadre.ID), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Session info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Apertura: "+cuadre.FechaApertura.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if cuadre.FechaCierre != nil {
		pdf.CellFormat(contentW, 6, "Cierre: "+cuadre.FechaCierre.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	if cuadre.Usuario != nil {
		pdf.CellFormat(contentW, 6, "Abierta por: "+cuadre.Usuario.Nombre, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Amounts ──────────────────────────────────────────────────────────────
	col1 := contentW * 0.6
	col2 := contentW * 0.4

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(col1, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 7, value, "", 1, "R", false, 0, "")
	}

	row("Monto inicial:", "Q "+cuadre.MontoInicial.StringFixed(2), false)
	row("Total ventas:", "Q "+cuadre.TotalVentas.StringFixed(2), false)
	row("Total gastos:", "Q -"+cuadre.TotalGastos.StringFixed(2), false)
	row("Monto esperado:", "Q "+cuadre.MontoEsperado().StringFixed(2), true)
	if cuadre.MontoFinal != nil {
		row("Monto contado:", "Q "+cuadre.MontoFinal.StringFixed(2), false)
	}
	if cuadre.Diferencia != nil {
		row("Diferencia:", "Q "+cuadre.Diferencia.StringFixed(2), true)
	}

	// ── Expenses ─────────────────────────────────────────────────────────────
	if len(gastos) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentW, 7, "Gastos del turno", "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(col1, 6, "Descripción", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, "Monto", "B", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		for _, g := range gastos {
			desc := g.Descripcion
			if len(desc) > 60 {
				desc = desc[:59] + "…"
			}
			pdf.CellFormat(col1, 6, desc, "", 0, "L", false, 0, "")
			pdf.CellFormat(col2, 6, "Q "+g.Monto.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 5, "Generado automáticamente al cerrar la caja", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
