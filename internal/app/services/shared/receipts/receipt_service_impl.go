package receipts

import (
	"bytes"
	"context"
	"fmt"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/exceptions"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

type receiptService struct {
	storage    contracts.Storage
	bucketName string
	Log        *zap.Logger
}

func NewReceiptService(storage contracts.Storage, bucketName string, logger *zap.Logger) contracts.ReceiptService {
	return &receiptService{
		storage:    storage,
		bucketName: bucketName,
		Log:        logger,
	}
}

// Render lays out a single page payment receipt. Amounts are whole currency units.
func (s *receiptService) Render(appointment *models.Appointment, doctor *models.Doctor, platformFee int64, currency string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "RxExplain AI - Consultation Receipt", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 7, fmt.Sprintf("Issued %s", time.Now().UTC().Format(constvars.DateOnlyLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Appointment", "1", 1, "C", false, 0, "")
	addRow(pdf, "Appointment ID", appointment.ID, true)
	if doctor != nil {
		addRow(pdf, "Doctor", doctor.Name, true)
		addRow(pdf, "Specialization", doctor.Specialization, true)
	}
	addRow(pdf, "Date", appointment.Date, true)
	addRow(pdf, "Time", appointment.Time, true)
	addRow(pdf, "Status", string(appointment.Status), true)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Payment", "1", 1, "C", false, 0, "")
	addRow(pdf, "Payment ID", appointment.PaymentID.String, false)
	addRow(pdf, "Consultation fee", formatAmount(appointment.Amount, currency), false)
	addRow(pdf, "Platform fee", formatAmount(platformFee, currency), false)
	addRow(pdf, "Total paid", formatAmount(appointment.Amount+platformFee, currency), true)

	pdf.SetY(pdf.GetY() + 12)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 10, "This is a computer generated receipt", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, exceptions.ErrRenderReceipt(err)
	}
	return buf.Bytes(), nil
}

func (s *receiptService) Store(ctx context.Context, objectKey string, pdf []byte) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("receiptService.Store called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingObjectKey, objectKey),
	)
	return s.storage.PutObject(ctx, s.bucketName, objectKey, bytes.NewReader(pdf), int64(len(pdf)), constvars.MIMEApplicationPDF)
}

func (s *receiptService) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	return s.storage.GetObjectUrlWithExpiryTime(ctx, s.bucketName, objectKey, expiry)
}

func addRow(pdf *gofpdf.Fpdf, label, value string, bold bool) {
	if bold {
		pdf.SetFont("Arial", "B", 11)
	} else {
		pdf.SetFont("Arial", "", 10)
	}
	pdf.CellFormat(50, 9, label, "1", 0, "", false, 0, "")
	pdf.CellFormat(0, 9, value, "1", 1, "", false, 0, "")
}

func formatAmount(amount int64, currency string) string {
	return fmt.Sprintf("%s %d.00", currency, amount)
}
