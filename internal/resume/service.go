package resume

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
)

// ExportDTO carries a rendered PDF ready for download.
type ExportDTO struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Service renders the member-facing PDF exports.
type Service interface {
	Resume(ctx context.Context, userID uuid.UUID) (*ExportDTO, error)
	TrackRecord(ctx context.Context, userID uuid.UUID) (*ExportDTO, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the resume service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "resume repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Resume(ctx context.Context, userID uuid.UUID) (*ExportDTO, error) {
	return s.export(ctx, userID, "resume", renderResume)
}

func (s *service) TrackRecord(ctx context.Context, userID uuid.UUID) (*ExportDTO, error) {
	return s.export(ctx, userID, "track-record", renderTrackRecord)
}

func (s *service) export(ctx context.Context, userID uuid.UUID, kind string, render func(*Record) *fpdf.Fpdf) (*ExportDTO, error) {
	record, err := s.repo.LoadRecord(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load export record")
	}

	pdf := render(record)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render pdf")
	}

	return &ExportDTO{
		FileName:    kind + "-" + nameSlug(memberName(record.User)) + ".pdf",
		ContentType: "application/pdf",
		Content:     buf.Bytes(),
	}, nil
}

// nameSlug folds a display name into a filename-safe slug.
func nameSlug(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "member"
	}
	return slug
}
