package infra

// pdf.go — closing-report generation using go-pdf/fpdf.
// Produces an A5 summary of one register close: opening/expected/declared
// amounts, the signed deviation, and the day's totals.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tiendapos/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateCierrePDF writes the closing report for a completed register cycle.
// resumen may be nil when the day had no summarized activity.
// Returns the absolute path to the generated file.
func GenerateCierrePDF(cierre *model.CierreCaja, resumen *model.ResumenCajaDiario, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("cierre_%s_%s.pdf", cierre.CajaID, cierre.CerradaEn.Format("20060102_150405"))
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Cierre de Caja", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, cierre.CerradaEn.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	colL := contentW * 0.60
	colR := contentW * 0.40

	fila := func(etiqueta, valor string, negrita bool) {
		estilo := ""
		if negrita {
			estilo = "B"
		}
		pdf.SetFont("Helvetica", estilo, 9)
		pdf.CellFormat(colL, 6, etiqueta, "", 0, "L", false, 0, "")
		pdf.CellFormat(colR, 6, valor, "", 1, "R", false, 0, "")
	}

	fila("Monto inicial:", "$"+cierre.MontoInicial.StringFixed(2), false)
	fila("Monto esperado (sistema):", "$"+cierre.MontoEsperado.StringFixed(2), false)
	fila("Monto declarado:", "$"+cierre.MontoDeclarado.StringFixed(2), false)
	fila("Diferencia:", "$"+cierre.Diferencia.StringFixed(2), true)

	etiquetaDesvio := "Desvío (sobrante):"
	if cierre.Desvio.IsNegative() {
		etiquetaDesvio = "Desvío (faltante):"
	}
	fila(etiquetaDesvio, "$"+cierre.Desvio.StringFixed(2), false)

	if resumen != nil {
		pdf.Ln(3)
		pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
		pdf.Ln(3)

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Resumen del día", "", 1, "L", false, 0, "")

		fila("Total ventas:", "$"+resumen.TotalVentas.StringFixed(2), false)
		fila("Total compras:", "$"+resumen.TotalCompras.StringFixed(2), false)
		fila("Total ingresos:", "$"+resumen.TotalIngresos.StringFixed(2), false)
		fila("Total egresos:", "$"+resumen.TotalEgresos.StringFixed(2), false)
		fila("Saldo final (sistema):", "$"+resumen.MontoFinalSistema.StringFixed(2), true)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Generado "+time.Now().Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
