package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CodingDyl/virtec-crm/internal/artifact"
	"github.com/CodingDyl/virtec-crm/internal/models"
	"github.com/CodingDyl/virtec-crm/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteService_Create(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "Thandi Mokoena")
	p := e.project(t, c.ID)

	q, err := e.quotes.Create(ctx, CreateQuoteInput{
		ProjectID: p.ID,
		Request: pricing.Request{
			EstimatedHours: 10,
			Complexity:     pricing.Medium,
			Urgency:        pricing.Standard,
			Features:       []string{"SEO Friendly", "Analytics"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 4500.0, q.TotalAmount)
	assert.Equal(t, models.QuoteStatusPending, q.Status)
	assert.Equal(t, uint(1), q.Version)
	assert.Equal(t, c.ID, q.ClientID)
	assert.Equal(t, 300.0, q.HourlyRate, "default rate applied")
	assert.True(t, strings.HasPrefix(q.PDFURL, testBaseURL+"/artifacts/quotes/"))

	stored, err := e.quotes.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.PDFKey, stored.PDFKey)
	assert.Equal(t, []string{"SEO Friendly", "Analytics"}, stored.Features)

	project := e.reloadProject(t, p.ID)
	require.NotNil(t, project.QuoteID)
	assert.Equal(t, q.ID, *project.QuoteID)
	assert.Equal(t, p.Version+1, project.Version)

	meta, data, err := e.quotes.PDF(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", meta.MimeType)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))

	require.Len(t, e.renderer.quotes, 1)
	doc := e.renderer.quotes[0]
	assert.Equal(t, "Thandi Mokoena", doc.ClientName)
	assert.Equal(t, 1.5, doc.ComplexityMultiplier)
	assert.Len(t, doc.Features, 2)
}

func TestQuoteService_Create_WithAllInputs(t *testing.T) {
	e := newEnv(t)
	p := e.project(t, e.customer(t, "Sipho Dube").ID)

	q, err := e.quotes.Create(context.Background(), CreateQuoteInput{
		ProjectID: p.ID,
		Request: pricing.Request{
			EstimatedHours: 20, HourlyRate: pricing.Rate(250), Complexity: pricing.High, Urgency: pricing.Rush,
			HostingCost: 500, MaintenanceCost: 600,
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 13100.0, q.TotalAmount, 1e-9)
}

func TestQuoteService_Create_ZeroRate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.project(t, e.customer(t, "Ayanda Zulu").ID)

	req := pricing.Request{EstimatedHours: 10, HourlyRate: pricing.Rate(0), Complexity: pricing.Low, Urgency: pricing.Standard, HostingCost: 500}
	q, err := e.quotes.Create(ctx, CreateQuoteInput{ProjectID: p.ID, Request: req})
	require.NoError(t, err)

	stored, err := e.quotes.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stored.HourlyRate)
	assert.Equal(t, pricing.Compute(req), stored.TotalAmount)
	assert.Equal(t, 500.0, stored.TotalAmount)
}

func TestQuoteService_GetIsStable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.project(t, e.customer(t, "Kagiso Molefe").ID)

	req := pricing.Request{
		EstimatedHours: 12.5, HourlyRate: pricing.Rate(420), Complexity: pricing.High, Urgency: pricing.ExtremeRush,
		HostingCost: 1800, MaintenanceCost: 950, Features: []string{"CDN"},
	}
	q, err := e.quotes.Create(ctx, CreateQuoteInput{ProjectID: p.ID, Request: req})
	require.NoError(t, err)

	first, err := e.quotes.Get(ctx, q.ID)
	require.NoError(t, err)
	second, err := e.quotes.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.InDelta(t, pricing.Compute(req), first.TotalAmount, 1e-9)
	assert.InDelta(t, 17450.0, first.TotalAmount, 1e-9)
}

func TestQuoteService_Create_RejectsInvalidInput(t *testing.T) {
	e := newEnv(t)
	p := e.project(t, e.customer(t, "Lerato Khumalo").ID)

	tests := []struct {
		name  string
		in    CreateQuoteInput
		field string
	}{
		{"negative hours", CreateQuoteInput{ProjectID: p.ID, Request: pricing.Request{EstimatedHours: -1}}, "estimated_hours"},
		{"negative hosting", CreateQuoteInput{ProjectID: p.ID, Request: pricing.Request{EstimatedHours: 1, HostingCost: -5}}, "hosting_cost"},
		{"unknown complexity", CreateQuoteInput{ProjectID: p.ID, Request: pricing.Request{Complexity: "Extreme"}}, "complexity"},
		{"unknown feature", CreateQuoteInput{ProjectID: p.ID, Request: pricing.Request{Features: []string{"Blockchain"}}}, "features"},
		{"missing project", CreateQuoteInput{Request: pricing.Request{EstimatedHours: 1}}, "project_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.quotes.Create(context.Background(), tt.in)
			require.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Violations, tt.field)
		})
	}
	assert.Zero(t, e.count(t, &models.Quote{}))
	assert.Zero(t, e.count(t, &models.Artifact{}))
}

func TestQuoteService_Create_UnknownProject(t *testing.T) {
	e := newEnv(t)
	_, err := e.quotes.Create(context.Background(), CreateQuoteInput{ProjectID: 99, Request: pricing.Request{EstimatedHours: 1}})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, e.count(t, &models.Quote{}))
}

func TestQuoteService_Create_RenderFailureLeavesNothing(t *testing.T) {
	e := newEnv(t)
	p := e.project(t, e.customer(t, "Anele Zulu").ID)
	e.renderer.err = errBoom

	_, err := e.quotes.Create(context.Background(), CreateQuoteInput{ProjectID: p.ID, Request: pricing.Request{EstimatedHours: 3}})
	require.ErrorIs(t, err, ErrExternalService)
	require.ErrorIs(t, err, errBoom)

	assert.Zero(t, e.count(t, &models.Quote{}))
	assert.Zero(t, e.count(t, &models.Artifact{}))
	project := e.reloadProject(t, p.ID)
	assert.Nil(t, project.QuoteID)
	assert.Equal(t, p.Version, project.Version)
}

func TestQuoteService_Create_StoreFailureLeavesNothing(t *testing.T) {
	gdb := openDB(t)
	e := newEnvWithStore(t, gdb, failingStore{artifact.NewDBStore(gdb, testBaseURL)})
	p := e.project(t, e.customer(t, "Naledi Nkosi").ID)

	_, err := e.quotes.Create(context.Background(), CreateQuoteInput{ProjectID: p.ID, Request: pricing.Request{EstimatedHours: 3}})
	require.ErrorIs(t, err, ErrExternalService)
	assert.Zero(t, e.count(t, &models.Quote{}))
	assert.Nil(t, e.reloadProject(t, p.ID).QuoteID)
}

func TestQuoteService_Create_DiscardsFileOnRollback(t *testing.T) {
	gdb := openDB(t)
	root := t.TempDir()
	fs, err := artifact.NewFSStore(gdb, root, testBaseURL)
	require.NoError(t, err)
	e := newEnvWithStore(t, gdb, lateFailStore{fs})
	p := e.project(t, e.customer(t, "Kabelo Molefe").ID)

	_, err = e.quotes.Create(context.Background(), CreateQuoteInput{ProjectID: p.ID, Request: pricing.Request{EstimatedHours: 3}})
	require.ErrorIs(t, err, ErrExternalService)
	assert.Zero(t, e.count(t, &models.Quote{}))
	assert.Zero(t, e.count(t, &models.Artifact{}))

	var files []string
	require.NoError(t, filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files = append(files, p)
		}
		return err
	}))
	assert.Empty(t, files)
}

func TestQuoteService_Create_CanceledContext(t *testing.T) {
	e := newEnv(t)
	p := e.project(t, e.customer(t, "Zanele Mthembu").ID)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.quotes.Create(ctx, CreateQuoteInput{ProjectID: p.ID, Request: pricing.Request{EstimatedHours: 3}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, e.count(t, &models.Quote{}))
}

func TestQuoteService_UpdateStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.project(t, e.customer(t, "Bongani Ndlovu").ID)
	q := e.quote(t, p.ID, 10)

	_, err := e.quotes.UpdateStatus(ctx, q.ID, models.QuoteStatusAccepted, q.Version+5)
	require.ErrorIs(t, err, ErrConcurrentModification)

	accepted, err := e.quotes.UpdateStatus(ctx, q.ID, "Accepted", q.Version)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusAccepted, accepted.Status)
	assert.Equal(t, q.Version+1, accepted.Version)
	require.NotNil(t, accepted.DecidedAt)

	_, err = e.quotes.UpdateStatus(ctx, q.ID, models.QuoteStatusRejected, 0)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.ErrorIs(t, err, ErrValidation)

	_, err = e.quotes.UpdateStatus(ctx, q.ID, models.QuoteStatusPending, 0)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = e.quotes.UpdateStatus(ctx, q.ID, "won", 0)
	require.ErrorIs(t, err, ErrValidation)

	_, err = e.quotes.UpdateStatus(ctx, 404, models.QuoteStatusAccepted, 0)
	require.ErrorIs(t, err, ErrNotFound)

	stored, err := e.quotes.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusAccepted, stored.Status)
}

func TestQuoteService_Delete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "Palesa Mahlangu")
	p := e.project(t, c.ID)
	q := e.decide(t, e.quote(t, p.ID, 10), models.QuoteStatusAccepted)

	require.NoError(t, e.quotes.Delete(ctx, q.ID))

	_, err := e.quotes.Get(ctx, q.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, e.reloadProject(t, p.ID).QuoteID)
	_, _, err = e.store.Open(ctx, q.PDFKey)
	assert.ErrorIs(t, err, artifact.ErrNotFound)

	total, err := e.spend.CustomerTotalSpent(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, total)

	require.ErrorIs(t, e.quotes.Delete(ctx, q.ID), ErrNotFound)
}

func TestQuoteService_List(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c1 := e.customer(t, "Ayanda Sithole")
	c2 := e.customer(t, "Musa Khoza")
	p1 := e.project(t, c1.ID)
	p2 := e.project(t, c2.ID)
	e.decide(t, e.quote(t, p1.ID, 1), models.QuoteStatusAccepted)
	e.quote(t, p1.ID, 2)
	e.quote(t, p2.ID, 3)

	all, total, err := e.quotes.List(ctx, QuoteFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	byClient, total, err := e.quotes.List(ctx, QuoteFilter{ClientID: c1.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byClient, 2)

	accepted, _, err := e.quotes.List(ctx, QuoteFilter{Status: models.QuoteStatusAccepted})
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, 300.0, accepted[0].TotalAmount)

	paged, total, err := e.quotes.List(ctx, QuoteFilter{Page: Page{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, paged, 1)
}

func TestQuoteService_Price(t *testing.T) {
	e := newEnv(t)
	b, err := e.quotes.Price(pricing.Request{EstimatedHours: 10, HostingCost: 1000, MaintenanceCost: 2000, Urgency: pricing.Rush, Complexity: pricing.Low})
	require.NoError(t, err)
	assert.InDelta(t, 6600.0, b.Total, 1e-9)

	_, err = e.quotes.Price(pricing.Request{EstimatedHours: -10})
	assert.ErrorIs(t, err, ErrValidation)
}
