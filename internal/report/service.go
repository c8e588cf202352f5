package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/signintech/gopdf"
)

// DefaultFontPaths are the usual DejaVu locations on Debian and Alpine images.
var DefaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

var ErrSenderNotConfigured = errors.New("report delivery is not configured")

type DocumentSender interface {
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error
}

// WardReport is everything printed on one ward safety report.
type WardReport struct {
	WardID      string
	GeneratedAt time.Time
	Delta       float64
	Metrics     []MetricRow
	Supply      *SupplyRow
	OpenAlerts  []AlertRow
}

type MetricRow struct {
	Date        time.Time
	DerivedRate float64
	LineDays    int
	ClabsiCases int
}

type SupplyRow struct {
	CombinedRate float64
	Band         string
	CheckedAt    time.Time
}

type AlertRow struct {
	Severity string
	Type     string
	Reason   string
	Action   string
}

type Service struct {
	sender    DocumentSender
	chatID    int64
	fontPaths []string
}

// NewService builds the report renderer. sender may be nil when reports are
// only downloaded.
func NewService(sender DocumentSender, chatID int64, fontPaths []string) *Service {
	if len(fontPaths) == 0 {
		fontPaths = DefaultFontPaths
	}
	return &Service{
		sender:    sender,
		chatID:    chatID,
		fontPaths: fontPaths,
	}
}

func FileName(r WardReport) string {
	return fmt.Sprintf("ward_report_%s_%s.pdf", r.WardID, r.GeneratedAt.Format("20060102"))
}

func (s *Service) Render(r WardReport) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF, last error: %w", fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Ward line safety report")
	pdf.Br(30)

	if err := pdf.SetFont("DejaVu", "", 12); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Ward: %s", r.WardID))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Generated: %s", r.GeneratedAt.Format("02.01.2006 15:04")))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Rate change over period: %+.1f%%", r.Delta))
	pdf.Br(25)

	if err := section(&pdf, "Ward metrics"); err != nil {
		return nil, err
	}
	if len(r.Metrics) == 0 {
		pdf.Cell(nil, "- No metrics recorded.")
		pdf.Br(15)
	}
	for _, m := range r.Metrics {
		pdf.Cell(nil, fmt.Sprintf("- %s  rate %.2f  line days %d  cases %d",
			m.Date.Format("02.01.2006"), m.DerivedRate, m.LineDays, m.ClabsiCases))
		pdf.Br(12)
	}
	pdf.Br(15)

	if err := section(&pdf, "Supply"); err != nil {
		return nil, err
	}
	if r.Supply == nil {
		pdf.Cell(nil, "- No supply check recorded.")
	} else {
		pdf.Cell(nil, fmt.Sprintf("- Combined deprivation %.2f%% (%s) at %s",
			r.Supply.CombinedRate, r.Supply.Band, r.Supply.CheckedAt.Format("02.01.2006 15:04")))
	}
	pdf.Br(25)

	if err := section(&pdf, "Open alerts"); err != nil {
		return nil, err
	}
	if len(r.OpenAlerts) == 0 {
		pdf.Cell(nil, "- None.")
		pdf.Br(15)
	}
	for _, a := range r.OpenAlerts {
		line := fmt.Sprintf("- [%s] %s: %s. %s", a.Severity, a.Type, a.Reason, a.Action)
		lines, _ := pdf.SplitText(line, 500)
		for _, l := range lines {
			pdf.Cell(nil, l)
			pdf.Br(12)
		}
		pdf.Br(5)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gopdf.GoPdf, title string) error {
	if err := pdf.SetFont("DejaVu", "", 14); err != nil {
		return err
	}
	pdf.Cell(nil, title)
	pdf.Br(15)
	return pdf.SetFont("DejaVu", "", 11)
}

// Send renders the report and delivers it to the configured chat.
func (s *Service) Send(ctx context.Context, r WardReport) error {
	if s.sender == nil || s.chatID == 0 {
		return ErrSenderNotConfigured
	}
	data, err := s.Render(r)
	if err != nil {
		return err
	}
	if err := s.sender.SendDocument(ctx, s.chatID, data, FileName(r)); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}
