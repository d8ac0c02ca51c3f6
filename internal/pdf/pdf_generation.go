package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator — интерфейс (удобно мокать в тестах). Ядро знает только его;
// раскладка документа живёт целиком здесь.
type Generator interface {
	GenerateOrderConfirmation(data OrderData) (string, error)
}

type OrderData struct {
	OrderNumber   string
	DealNumber    string
	DealTitle     string
	PONumber      string
	ContractValue string
	OrderDate     time.Time
	Filename      string // имя файла (без путей); если пусто — сгенерируем
}

// DocumentGenerator — реализация на gofpdf.
type DocumentGenerator struct {
	RootDir string // корень хранения, например "./files"
}

func NewDocumentGenerator(rootDir string) *DocumentGenerator {
	return &DocumentGenerator{RootDir: filepath.Clean(rootDir)}
}

func (g *DocumentGenerator) GenerateOrderConfirmation(data OrderData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("order_%s.pdf", data.OrderNumber)
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Sales Order %s", data.OrderNumber), false)
	doc.SetAuthor("dealdesk", false)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 10, "SALES ORDER", "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 12)
	sub := fmt.Sprintf("No. %s  of  %s", data.OrderNumber, data.OrderDate.Format("02.01.2006"))
	doc.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(doc)

	rows := [][2]string{
		{"Project", fmt.Sprintf("%s / %s", data.DealNumber, data.DealTitle)},
		{"Customer PO", data.PONumber},
		{"Contract value", data.ContractValue},
	}
	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 11)
		doc.CellFormat(45, 8, row[0], "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 8, row[1], "", "L", false)
	}

	if err := doc.OutputFileAndClose(absPath); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return "/" + filename, nil
}

func (g *DocumentGenerator) ensureTarget(filename string) (string, error) {
	filename = filepath.Base(filename)
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", g.RootDir, err)
	}
	return filepath.Join(g.RootDir, filename), nil
}

func (g *DocumentGenerator) hr(doc *gofpdf.Fpdf) {
	doc.Ln(2)
	x, y := doc.GetXY()
	doc.SetLineWidth(0.4)
	doc.Line(x, y, 190, y)
	doc.Ln(4)
}
