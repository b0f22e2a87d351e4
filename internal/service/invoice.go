package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"freight/internal/repository"
)

// InvoiceService renders a trip's ledger as a downloadable PDF invoice.
type InvoiceService struct {
	tripRepo   repository.TripRepository
	ledgerRepo repository.LedgerRepository
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(tripRepo repository.TripRepository, ledgerRepo repository.LedgerRepository) *InvoiceService {
	return &InvoiceService{tripRepo: tripRepo, ledgerRepo: ledgerRepo}
}

// RenderPDF builds the invoice PDF for a trip. Returns the document bytes
// and a suggested filename.
func (s *InvoiceService) RenderPDF(ctx context.Context, tripID string) ([]byte, string, error) {
	if tripID == "" {
		return nil, "", ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, "", err
	}

	ledger, err := s.ledgerRepo.GetByTripID(ctx, tripID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Tax Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TAX INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice No : INV-"+trip.ID)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Date       : "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Shipment")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Tracking ID : %s", trip.ID),
		fmt.Sprintf("Route       : %s -> %s", trip.Origin.City, trip.Destination.City),
		fmt.Sprintf("Material    : %s (%.0f kg)", trip.Material, trip.WeightKg),
		fmt.Sprintf("Truck       : %s", trip.TruckType),
		fmt.Sprintf("Status      : %s", trip.Status),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Charges")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	chargeRow(pdf, "Base Fare", ledger.BaseFare)
	chargeRow(pdf, "GST (18%)", ledger.GST)
	if ledger.TollCharge > 0 {
		chargeRow(pdf, "Toll Charges", ledger.TollCharge)
	}
	if ledger.LoadingCharge > 0 {
		chargeRow(pdf, "Loading Charges", ledger.LoadingCharge)
	}
	if ledger.UnloadingCharge > 0 {
		chargeRow(pdf, "Unloading Charges", ledger.UnloadingCharge)
	}

	pdf.SetFont("Helvetica", "B", 12)
	chargeRow(pdf, "Total", ledger.Total())
	pdf.Ln(5)

	if len(ledger.Payments) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Payments")
		pdf.Ln(7)

		pdf.SetFont("Helvetica", "", 12)
		for _, p := range ledger.Payments {
			pdf.Cell(120, 7, fmt.Sprintf("%s (%s, %s)", p.Type, p.Method, p.Timestamp.Format("2006-01-02")))
			pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", p.Amount), "", 0, "R", false, 0, "")
			pdf.Ln(7)
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "B", 12)
	chargeRow(pdf, "Amount Due", ledger.Due())

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("INVOICE_%s.pdf", trip.ID)
	return buf.Bytes(), filename, nil
}

func chargeRow(pdf *gofpdf.Fpdf, label string, amount float64) {
	pdf.Cell(120, 7, label)
	pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", amount), "", 0, "R", false, 0, "")
	pdf.Ln(7)
}
