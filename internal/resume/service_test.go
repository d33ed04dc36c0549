package resume

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	"github.com/b4platform/b4-backend/pkg/logger"
)

type fakeRepository struct {
	record *Record
	err    error
}

func (f *fakeRepository) LoadRecord(context.Context, uuid.UUID) (*Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func strPtr(s string) *string { return &s }

func bareRecord() *Record {
	return &Record{
		User: models.User{
			ID:        uuid.New(),
			Email:     "jordan@example.com",
			FirstName: "Jordan",
			LastName:  "Reyes",
		},
	}
}

func TestNameSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Jordan Reyes", "jordan-reyes"},
		{"  Anna-Maria  O'Neil ", "anna-maria-o-neil"},
		{"", "member"},
		{"!!!", "member"},
	}
	for _, tc := range cases {
		if got := nameSlug(tc.in); got != tc.want {
			t.Fatalf("nameSlug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResumeEmptyRecordIsOnePage(t *testing.T) {
	pdf := renderResume(bareRecord())
	if got := pdf.PageCount(); got != 1 {
		t.Fatalf("page count = %d, want 1", got)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("output: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected pdf bytes")
	}
}

func TestTrackRecordEmptyRecordIsOnePage(t *testing.T) {
	pdf := renderTrackRecord(bareRecord())
	if got := pdf.PageCount(); got != 1 {
		t.Fatalf("page count = %d, want 1", got)
	}
}

func TestTrackRecordPaginatesLongHistory(t *testing.T) {
	record := bareRecord()
	pitch := ""
	for i := 0; i < 40; i++ {
		pitch += "A long pitch line describing the product, the market and the team in detail. "
	}
	for i := 0; i < 6; i++ {
		record.Ideas = append(record.Ideas, models.StartupIdea{
			ID:               uuid.New(),
			Title:            "Idea",
			Pitch:            pitch,
			Status:           enums.IdeaStatusActive,
			CurrentEpisode:   enums.EpisodeDevelopment,
			EquityPercentage: decimal.NewFromInt(10),
		})
	}

	pdf := renderTrackRecord(record)
	if got := pdf.PageCount(); got < 2 {
		t.Fatalf("page count = %d, want at least 2", got)
	}
}

func TestResumeRendersExports(t *testing.T) {
	record := bareRecord()
	role := enums.PrimaryRoleCoBuilder
	status := enums.UserStatusBoosted
	record.User.Bio = strPtr("Builder of data products.")
	record.Onboarding = &models.OnboardingState{
		UserID:      record.User.ID,
		PrimaryRole: &role,
		UserStatus:  &status,
	}
	record.NaturalRole = &models.NaturalRole{
		UserID:       record.User.ID,
		Description:  "Data engineering",
		PromiseCheck: true,
	}
	record.Certifications = []models.UserCertification{{
		UserID:            record.User.ID,
		CertificationType: enums.CertificationTypeCoBuilderB4,
		DisplayLabel:      "Vaccinated Co Builder",
		Verified:          true,
	}}

	svc, err := NewService(&fakeRepository{record: record}, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	out, err := svc.Resume(context.Background(), record.User.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if out.FileName != "resume-jordan-reyes.pdf" {
		t.Fatalf("file name = %q", out.FileName)
	}
	if out.ContentType != "application/pdf" {
		t.Fatalf("content type = %q", out.ContentType)
	}
	if !bytes.HasPrefix(out.Content, []byte("%PDF")) {
		t.Fatal("expected a pdf payload")
	}

	track, err := svc.TrackRecord(context.Background(), record.User.ID)
	if err != nil {
		t.Fatalf("track record: %v", err)
	}
	if track.FileName != "track-record-jordan-reyes.pdf" {
		t.Fatalf("file name = %q", track.FileName)
	}
}
