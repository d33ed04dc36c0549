package resume

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/b4platform/b4-backend/pkg/db/models"
)

const (
	pageMargin  = 15.0
	lineHeight  = 6.0
	footerSpace = 25.0
)

func newDocument(title, memberName string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, footerSpace)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, lineHeight, fmt.Sprintf("B4 Platform - Page %d", pdf.PageNo()),
			"", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	if memberName != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, memberName, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	return pdf
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(180, 180, 180)
	left, _, right, _ := pdf.GetMargins()
	width, _ := pdf.GetPageSize()
	pdf.Line(left, pdf.GetY(), width-right, pdf.GetY())
	pdf.Ln(2)
}

func bodyText(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, lineHeight, text, "", "L", false)
}

func labeledLine(pdf *fpdf.Fpdf, name, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, lineHeight, name, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, lineHeight, value, "", "L", false)
}

// renderResume lays out the member profile. Every section renders only when
// its backing field is non-empty, so a blank profile stays a single page.
func renderResume(record *Record) *fpdf.Fpdf {
	pdf := newDocument("Resume", memberName(record.User))

	if contact := contactLine(record.User); contact != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(90, 90, 90)
		pdf.CellFormat(0, lineHeight, contact, "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	if record.Onboarding != nil {
		if line := pathLine(record.Onboarding); line != "" {
			sectionTitle(pdf, "Platform Path")
			bodyText(pdf, line)
		}
	}

	if record.User.Bio != nil && strings.TrimSpace(*record.User.Bio) != "" {
		sectionTitle(pdf, "About")
		bodyText(pdf, strings.TrimSpace(*record.User.Bio))
	}

	if role := record.NaturalRole; role != nil {
		if strings.TrimSpace(role.Description) != "" {
			sectionTitle(pdf, "Natural Role")
			bodyText(pdf, strings.TrimSpace(role.Description))
		}
		renderRoleChecks(pdf, role)
	}

	renderCertifications(pdf, record.Certifications)
	return pdf
}

// renderTrackRecord lays out the entrepreneurial history and startup ideas.
func renderTrackRecord(record *Record) *fpdf.Fpdf {
	pdf := newDocument("Track Record", memberName(record.User))

	if eo := record.Entrepreneurial; eo != nil {
		categories := []struct {
			name        string
			has         bool
			description *string
			count       int
		}{
			{"Projects", eo.HasProject, eo.ProjectDescription, eo.ProjectCount},
			{"Products", eo.HasProduct, eo.ProductDescription, eo.ProductCount},
			{"Teams", eo.HasTeam, eo.TeamDescription, eo.TeamCount},
			{"Businesses", eo.HasBusiness, eo.BusinessDescription, eo.BusinessCount},
			{"Board Seats", eo.HasBoard, eo.BoardDescription, eo.BoardCount},
		}
		wroteHeader := false
		for _, category := range categories {
			description := ""
			if category.description != nil {
				description = strings.TrimSpace(*category.description)
			}
			if !category.has && description == "" {
				continue
			}
			if !wroteHeader {
				sectionTitle(pdf, "Entrepreneurial Experience")
				wroteHeader = true
			}
			value := description
			if category.count > 0 {
				if value != "" {
					value += " "
				}
				value += fmt.Sprintf("(%d)", category.count)
			}
			if value == "" {
				value = "Yes"
			}
			labeledLine(pdf, category.name, value)
		}
	}

	if len(record.Ideas) > 0 {
		sectionTitle(pdf, "Startup Ideas")
		for _, idea := range record.Ideas {
			renderIdea(pdf, idea)
		}
	}

	renderCertifications(pdf, record.Certifications)
	return pdf
}

func renderRoleChecks(pdf *fpdf.Fpdf, role *models.NaturalRole) {
	checks := []struct {
		name   string
		passed bool
		detail *string
	}{
		{"Promise", role.PromiseCheck, role.PromiseDetail},
		{"Practice", role.PracticeCheck, role.PracticeDetail},
		{"Training", role.TrainingCheck, role.TrainingDetail},
		{"Consulting", role.ConsultingCheck, role.ConsultingDetail},
	}
	wroteHeader := false
	for _, check := range checks {
		detail := ""
		if check.detail != nil {
			detail = strings.TrimSpace(*check.detail)
		}
		if !check.passed && detail == "" {
			continue
		}
		if !wroteHeader {
			sectionTitle(pdf, "Validation Checks")
			wroteHeader = true
		}
		value := "Confirmed"
		if !check.passed {
			value = "In progress"
		}
		if detail != "" {
			value += " - " + detail
		}
		labeledLine(pdf, check.name, value)
	}
}

func renderCertifications(pdf *fpdf.Fpdf, certifications []models.UserCertification) {
	if len(certifications) == 0 {
		return
	}
	sectionTitle(pdf, "Certifications")
	for _, cert := range certifications {
		line := cert.DisplayLabel
		if cert.Verified {
			line += " (verified)"
		}
		line += " - granted " + cert.GrantedAt.Format("January 2006")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, lineHeight, line, "", 1, "L", false, 0, "")
	}
}

func renderIdea(pdf *fpdf.Fpdf, idea models.StartupIdea) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, lineHeight+1, idea.Title, "", 1, "L", false, 0, "")

	meta := []string{
		label(ideaStatusLabels, idea.Status, string(idea.Status)),
		label(episodeLabels, idea.CurrentEpisode, string(idea.CurrentEpisode)) + " episode",
	}
	if idea.EquityPercentage.IsPositive() {
		meta = append(meta, idea.EquityPercentage.StringFixed(2)+"% equity offered")
	}
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, lineHeight-1, strings.Join(meta, "  |  "), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	if pitch := strings.TrimSpace(idea.Pitch); pitch != "" {
		bodyText(pdf, pitch)
	}
	pdf.Ln(2)
}

func memberName(user models.User) string {
	return strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
}

func contactLine(user models.User) string {
	parts := []string{}
	if user.Email != "" {
		parts = append(parts, user.Email)
	}
	if user.Phone != nil && strings.TrimSpace(*user.Phone) != "" {
		parts = append(parts, strings.TrimSpace(*user.Phone))
	}
	if user.Location != nil && strings.TrimSpace(*user.Location) != "" {
		parts = append(parts, strings.TrimSpace(*user.Location))
	}
	if user.LinkedinURL != nil && strings.TrimSpace(*user.LinkedinURL) != "" {
		parts = append(parts, strings.TrimSpace(*user.LinkedinURL))
	}
	return strings.Join(parts, "  |  ")
}

func pathLine(state *models.OnboardingState) string {
	parts := []string{}
	if state.PrimaryRole != nil {
		parts = append(parts, label(primaryRoleLabels, *state.PrimaryRole, string(*state.PrimaryRole)))
	}
	if state.UserStatus != nil {
		parts = append(parts, label(userStatusLabels, *state.UserStatus, string(*state.UserStatus)))
	}
	if state.BoostType != nil {
		parts = append(parts, label(boostTypeLabels, *state.BoostType, string(*state.BoostType)))
	}
	if state.ScaleType != nil {
		parts = append(parts, label(scaleTypeLabels, *state.ScaleType, string(*state.ScaleType)))
	}
	return strings.Join(parts, "  |  ")
}
