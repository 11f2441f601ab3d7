// Package integration runs the client packages against a real in-process API
// server backed by sqlite.
package integration

import (
	"context"
	"io"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipebox/internal/api"
	"github.com/pageza/recipebox/internal/router"
	"github.com/pageza/recipebox/internal/service"
	"github.com/pageza/recipebox/internal/testhelpers"
)

// Extractor answers every import with a fixed markdown document
type Extractor struct {
	mu       sync.Mutex
	Markdown string
	Err      error
	Calls    int
}

func (e *Extractor) ExtractFromImages(ctx context.Context, userID uuid.UUID, images []service.ImageInput) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls++
	return e.Markdown, e.Err
}

func (e *Extractor) ExtractFromText(ctx context.Context, userID uuid.UUID, text string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls++
	return e.Markdown, e.Err
}

// Respond changes what the next extractions return
func (e *Extractor) Respond(markdown string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Markdown = markdown
	e.Err = err
}

// Mailbox keeps the last recovery link instead of sending it
type Mailbox struct {
	mu   sync.Mutex
	link string
}

func (m *Mailbox) SendEmail(to, subject, body string) error {
	return nil
}

func (m *Mailbox) SendRecoveryEmail(to, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.link = link
	return nil
}

// RecoveryToken extracts the token from the last recovery link
func (m *Mailbox) RecoveryToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := url.Parse(m.link)
	if err != nil || u.Query().Get("token") == "" {
		return m.link
	}
	return u.Query().Get("token")
}

type avatars struct{}

func (avatars) ReplaceAvatar(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, body)
	return "https://avatars.test/" + userID.String() + "/avatar.png", nil
}

// Backend is a running API server
type Backend struct {
	BaseURL   string
	Extractor *Extractor
	Mailbox   *Mailbox
}

// StartBackend serves the full API over a fresh sqlite database
func StartBackend(t *testing.T) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupSQLiteDB(t)

	extractor := &Extractor{Markdown: "# Extracted recipe\n"}
	mailbox := &Mailbox{}
	prefs := service.NewPreferencesService(db)

	svc := api.Services{
		Auth:        service.NewAuthService(db, "integration-secret-that-is-long-enough", time.Hour, mailbox),
		Recipes:     service.NewRecipeService(db),
		Preferences: prefs,
		Avatars:     avatars{},
		Extraction:  extractor,
		Usage:       service.NewUsageService(db),
		Beta:        service.NewBetaService(db),
	}

	srv := httptest.NewServer(router.SetupRouter(nil, svc, nil))
	t.Cleanup(srv.Close)

	return &Backend{
		BaseURL:   srv.URL + "/api/v1",
		Extractor: extractor,
		Mailbox:   mailbox,
	}
}
