package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

type Service struct {
	store     *Store
	exportDir string
}

func NewService(store *Store, exportDir string) *Service {
	return &Service{store: store, exportDir: exportDir}
}

func (s *Service) CycleSummary(ctx context.Context, cycleID string) (CycleSummary, error) {
	statuses, scores, err := s.store.CycleReviewData(ctx, cycleID)
	if err != nil {
		return CycleSummary{}, err
	}
	return buildCycleSummary(statuses, scores), nil
}

// GenerateReviewPDF renders a submitted review as a PDF and returns the file
// path. Callers pass the export_data permission gate before reaching this.
func (s *Service) GenerateReviewPDF(ctx context.Context, reviewID string) (string, error) {
	export, err := s.store.ReviewForExport(ctx, reviewID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.exportDir, export.ReviewID+".pdf")

	names := map[string]string{}
	weights := map[string]float64{}
	for _, param := range export.Parameters {
		names[param.ID] = param.Name
		weights[param.ID] = param.Weight
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Review")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", export.EmployeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Reviewer: %s", export.ReviewerName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Cycle: %s (%s to %s)", export.CycleName,
		export.StartDate.Format("2006-01-02"), export.EndDate.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", export.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Ratings")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, rating := range export.Ratings {
		name := names[rating.ParameterID]
		if name == "" {
			name = rating.ParameterID
		}
		line := fmt.Sprintf("%s: %d", name, rating.Score)
		if weight := weights[rating.ParameterID]; weight > 0 {
			line = fmt.Sprintf("%s (weight %.0f%%)", line, weight)
		}
		pdf.Cell(0, 7, line)
		pdf.Ln(6)
		if rating.Comment != "" {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.Cell(0, 6, "  "+rating.Comment)
			pdf.Ln(6)
			pdf.SetFont("Helvetica", "", 11)
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Overall score: %.2f", export.OverallScore))
	if export.Feedback != "" {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "Feedback: "+export.Feedback, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
