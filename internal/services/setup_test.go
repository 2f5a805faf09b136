package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/CodingDyl/virtec-crm/internal/artifact"
	"github.com/CodingDyl/virtec-crm/internal/config"
	"github.com/CodingDyl/virtec-crm/internal/db"
	"github.com/CodingDyl/virtec-crm/internal/models"
	"github.com/CodingDyl/virtec-crm/internal/pricing"
	"github.com/CodingDyl/virtec-crm/pdf"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testBaseURL = "http://crm.test"

var errBoom = errors.New("boom")

type fakeRenderer struct {
	mu         sync.Mutex
	err        error
	quotes     []pdf.QuoteData
	agreements []pdf.AgreementData
}

func (r *fakeRenderer) Quote(d pdf.QuoteData) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.quotes = append(r.quotes, d)
	return []byte(fmt.Sprintf("%%PDF-1.4 quote %d", d.QuoteID)), nil
}

func (r *fakeRenderer) Agreement(d pdf.AgreementData) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.agreements = append(r.agreements, d)
	return []byte(fmt.Sprintf("%%PDF-1.4 agreement %d", d.ProjectID)), nil
}

// failingStore refuses every Put.
type failingStore struct{ artifact.Store }

func (s failingStore) WithTx(*gorm.DB) artifact.Store { return s }

func (failingStore) Put(context.Context, artifact.Object) (artifact.Ref, error) {
	return artifact.Ref{}, errBoom
}

// lateFailStore writes the object and then reports failure, leaving the
// caller to roll back and discard.
type lateFailStore struct{ artifact.Store }

func (s lateFailStore) WithTx(tx *gorm.DB) artifact.Store { return lateFailStore{s.Store.WithTx(tx)} }

func (s lateFailStore) Put(ctx context.Context, obj artifact.Object) (artifact.Ref, error) {
	if _, err := s.Store.Put(ctx, obj); err != nil {
		return artifact.Ref{}, err
	}
	return artifact.Ref{}, errBoom
}

type env struct {
	db         *gorm.DB
	store      artifact.Store
	renderer   *fakeRenderer
	spend      *SpendAggregator
	quotes     *QuoteService
	agreements *AgreementService
	customers  *CustomerService
	projects   *ProjectService
	dashboard  *DashboardService
	users      *UserService
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.DatabaseConfig{Driver: "sqlite", SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", name)}
	gdb, err := db.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(gdb))
	return gdb
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gdb := openDB(t)
	return newEnvWithStore(t, gdb, artifact.NewDBStore(gdb, testBaseURL))
}

func newEnvWithStore(t *testing.T, gdb *gorm.DB, store artifact.Store) *env {
	t.Helper()
	log := zap.NewNop()
	r := &fakeRenderer{}
	spend := NewSpendAggregator(gdb)
	return &env{
		db:         gdb,
		store:      store,
		renderer:   r,
		spend:      spend,
		quotes:     NewQuoteService(gdb, store, r, log, pricing.DefaultHourlyRate),
		agreements: NewAgreementService(gdb, store, r, log),
		customers:  NewCustomerService(gdb, spend, log),
		projects:   NewProjectService(gdb, log),
		dashboard:  NewDashboardService(gdb, spend),
		users:      NewUserService(gdb, log),
	}
}

func (e *env) customer(t *testing.T, name string) *models.Customer {
	t.Helper()
	c, err := e.customers.Create(context.Background(), CustomerInput{Name: name, Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"})
	require.NoError(t, err)
	return c
}

func (e *env) project(t *testing.T, clientID uint) *models.Project {
	t.Helper()
	p, err := e.projects.Create(context.Background(), ProjectInput{ClientID: clientID, ProjectType: "E-commerce"})
	require.NoError(t, err)
	return p
}

// quote creates a Low/Standard quote at the default rate, so the total is hours*300.
func (e *env) quote(t *testing.T, projectID uint, hours float64) *models.Quote {
	t.Helper()
	q, err := e.quotes.Create(context.Background(), CreateQuoteInput{
		ProjectID: projectID,
		Request:   pricing.Request{EstimatedHours: hours, Complexity: pricing.Low, Urgency: pricing.Standard},
	})
	require.NoError(t, err)
	return q
}

func (e *env) decide(t *testing.T, q *models.Quote, status models.QuoteStatus) *models.Quote {
	t.Helper()
	q, err := e.quotes.UpdateStatus(context.Background(), q.ID, status, 0)
	require.NoError(t, err)
	return q
}

func (e *env) reloadProject(t *testing.T, id uint) models.Project {
	t.Helper()
	var p models.Project
	require.NoError(t, e.db.First(&p, id).Error)
	return p
}

func (e *env) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}
