package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"rev-saas-api/internal/model"
)

// Weekly content recommendations are explicitly designed for a
// "Monday-style digest consumer" — an agency manager who wants a one-page
// PDF, not a dashboard. GenerateRecommendationPDF renders
// RecommendationEngine's output that way.

type reportColor struct{ R, G, B int }

var (
	reportColorDark    = reportColor{30, 41, 59}
	reportColorMedium  = reportColor{100, 116, 139}
	reportColorLight   = reportColor{148, 163, 184}
	reportColorBorder  = reportColor{226, 232, 240}
	reportColorBg      = reportColor{248, 250, 252}
	reportColorGreen   = reportColor{16, 185, 129}
	reportColorRed     = reportColor{239, 68, 68}
	reportColorAmber   = reportColor{245, 158, 11}
	reportColorPrimary = reportColor{99, 102, 241}
)

const (
	reportMargin     = 18.0
	reportLineHeight = 5.5
)

type reportBuilder struct {
	pdf          *gofpdf.Fpdf
	contentWidth float64
	leftMargin   float64
}

func newReportBuilder() *reportBuilder {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(reportMargin, reportMargin, reportMargin)
	pdf.SetAutoPageBreak(true, 25)
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	return &reportBuilder{
		pdf:          pdf,
		contentWidth: pageWidth - left - right,
		leftMargin:   left,
	}
}

func (b *reportBuilder) setColor(c reportColor)     { b.pdf.SetTextColor(c.R, c.G, c.B) }
func (b *reportBuilder) setFillColor(c reportColor)  { b.pdf.SetFillColor(c.R, c.G, c.B) }
func (b *reportBuilder) setDrawColor(c reportColor)  { b.pdf.SetDrawColor(c.R, c.G, c.B) }

func (b *reportBuilder) title(creatorName string, generatedAt string) {
	b.setColor(reportColorDark)
	b.pdf.SetFont("Arial", "B", 20)
	b.pdf.CellFormat(b.contentWidth, 9, "Content Attribution Report", "", 1, "L", false, 0, "")

	b.setColor(reportColorMedium)
	b.pdf.SetFont("Arial", "", 10)
	b.pdf.CellFormat(b.contentWidth, 6, fmt.Sprintf("%s — generated %s", creatorName, generatedAt), "", 1, "L", false, 0, "")
	b.pdf.Ln(6)
}

func (b *reportBuilder) sectionTitle(title string) {
	b.pdf.Ln(4)
	b.setColor(reportColorDark)
	b.pdf.SetFont("Arial", "B", 13)
	b.pdf.CellFormat(b.contentWidth, 7, title, "", 1, "L", false, 0, "")
	y := b.pdf.GetY() + 0.5
	b.setDrawColor(reportColorBorder)
	b.pdf.Line(b.leftMargin, y, b.leftMargin+b.contentWidth, y)
	b.pdf.Ln(3)
}

func tierColor(tier string) reportColor {
	switch tier {
	case "confident":
		return reportColorGreen
	case "hypothesis":
		return reportColorAmber
	default:
		return reportColorLight
	}
}

func (b *reportBuilder) decisionRow(d model.CategoryDecision) {
	startY := b.pdf.GetY()
	rowH := 14.0

	b.setFillColor(reportColorBg)
	b.setDrawColor(reportColorBorder)
	b.pdf.SetLineWidth(0.3)
	b.pdf.Rect(b.leftMargin, startY, b.contentWidth, rowH, "FD")

	b.pdf.SetXY(b.leftMargin+4, startY+2.5)
	b.setColor(reportColorDark)
	b.pdf.SetFont("Arial", "B", 11)
	b.pdf.CellFormat(60, 5, strings.Title(d.Category), "", 0, "L", false, 0, "")

	badgeColor := tierColor(d.Tier)
	b.pdf.SetXY(b.leftMargin+64, startY+2.5)
	b.setColor(badgeColor)
	b.pdf.SetFont("Arial", "B", 9)
	b.pdf.CellFormat(40, 5, strings.ToUpper(d.Tier), "", 0, "L", false, 0, "")

	b.pdf.SetXY(b.leftMargin+64, startY+8)
	b.setColor(reportColorMedium)
	b.pdf.SetFont("Arial", "", 9)
	if d.Tier == "insufficient_data" {
		b.pdf.CellFormat(120, 5, d.Reason, "", 0, "L", false, 0, "")
	} else {
		liftColor := reportColorGreen
		if d.LiftPct < 0 {
			liftColor = reportColorRed
		}
		b.setColor(liftColor)
		b.pdf.SetFont("Arial", "B", 9)
		b.pdf.CellFormat(30, 5, fmt.Sprintf("%+.1f%% lift", d.LiftPct), "", 0, "L", false, 0, "")
		b.setColor(reportColorMedium)
		b.pdf.SetFont("Arial", "", 9)
		b.pdf.CellFormat(90, 5, fmt.Sprintf("%d subs, action: %s", d.Subs, d.Action), "", 0, "L", false, 0, "")
	}

	b.pdf.SetY(startY + rowH + 2)
}

func (b *reportBuilder) weeklyPlan(plan model.WeeklyPlan) {
	if plan.Withheld {
		b.setColor(reportColorAmber)
		b.pdf.SetFont("Arial", "I", 10)
		b.pdf.MultiCell(b.contentWidth, reportLineHeight, "Plan withheld: "+plan.Rationale, "", "L", false)
		return
	}

	b.setColor(reportColorDark)
	b.pdf.SetFont("Arial", "B", 11)
	b.pdf.CellFormat(b.contentWidth, 6, fmt.Sprintf("Total: %.1f posts/week", plan.TotalPosts), "", 1, "L", false, 0, "")

	for _, cat := range sortedKeys(plan.Breakdown) {
		b.setColor(reportColorMedium)
		b.pdf.SetFont("Arial", "", 10)
		b.pdf.CellFormat(b.contentWidth, 5.5, fmt.Sprintf("  %s: %.1f/week", strings.Title(cat), plan.Breakdown[cat]), "", 1, "L", false, 0, "")
	}
	if plan.Rationale != "" {
		b.pdf.Ln(2)
		b.setColor(reportColorLight)
		b.pdf.SetFont("Arial", "I", 9)
		b.pdf.MultiCell(b.contentWidth, reportLineHeight, plan.Rationale, "", "L", false)
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

func (b *reportBuilder) footer() {
	b.pdf.Ln(8)
	y := b.pdf.GetY()
	b.setDrawColor(reportColorBorder)
	b.pdf.Line(b.leftMargin, y, b.leftMargin+b.contentWidth, y)
	b.pdf.SetY(y + 3)
	b.setColor(reportColorLight)
	b.pdf.SetFont("Arial", "I", 8)
	b.pdf.CellFormat(b.contentWidth, 4, "Hypothesis-tier categories have not met every confident-tier condition (sample size, score, no confounders); treat as a test, not a certainty.", "", 1, "L", false, 0, "")
}

// GenerateRecommendationPDF renders a Recommendation as a one-page digest.
func GenerateRecommendationPDF(creatorName string, rec *model.Recommendation) (*bytes.Buffer, error) {
	b := newReportBuilder()
	b.pdf.AddPage()

	b.title(creatorName, rec.GeneratedAt.Format("Jan 02, 2006"))

	if rec.TopPerformer != "" || rec.Underperformer != "" {
		b.setColor(reportColorMedium)
		b.pdf.SetFont("Arial", "", 10)
		b.pdf.CellFormat(b.contentWidth, 5.5, fmt.Sprintf("Top performer: %s   Underperformer: %s", rec.TopPerformer, rec.Underperformer), "", 1, "L", false, 0, "")
	}

	if len(rec.Confident) > 0 {
		b.sectionTitle("Confident")
		for _, d := range rec.Confident {
			b.decisionRow(d)
		}
	}
	if len(rec.Hypothesis) > 0 {
		b.sectionTitle("Hypothesis")
		for _, d := range rec.Hypothesis {
			b.decisionRow(d)
		}
	}
	if len(rec.InsufficientData) > 0 {
		b.sectionTitle("Insufficient Data")
		for _, d := range rec.InsufficientData {
			b.decisionRow(d)
		}
	}

	b.sectionTitle("Weekly Posting Plan")
	b.weeklyPlan(rec.WeeklyPlan)

	if len(rec.DataQualityNotes) > 0 {
		b.sectionTitle("Data Quality Notes")
		b.setColor(reportColorMedium)
		b.pdf.SetFont("Arial", "", 9)
		for _, note := range rec.DataQualityNotes {
			b.pdf.CellFormat(b.contentWidth, 5, "- "+note, "", 1, "L", false, 0, "")
		}
	}

	b.footer()

	var buf bytes.Buffer
	if err := b.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate recommendation PDF: %w", err)
	}
	return &buf, nil
}
