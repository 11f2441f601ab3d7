package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/internal/middleware"
	"github.com/pageza/recipebox/internal/service"
	"github.com/pageza/recipebox/internal/testhelpers"
	"github.com/pageza/recipebox/internal/types"
)

type fakeExtraction struct {
	mu       sync.Mutex
	markdown string
	err      error
	images   []service.ImageInput
	text     string
}

func (f *fakeExtraction) ExtractFromImages(ctx context.Context, userID uuid.UUID, images []service.ImageInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = images
	return f.markdown, f.err
}

func (f *fakeExtraction) ExtractFromText(ctx context.Context, userID uuid.UUID, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	return f.markdown, f.err
}

type fakeAvatars struct{}

func (fakeAvatars) ReplaceAvatar(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader) (string, error) {
	return "https://cdn.test/" + userID.String() + "/avatar.png", nil
}

type countingLimiter struct{ n int64 }

func (c *countingLimiter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	c.n++
	return c.n, nil
}

type testAPI struct {
	router     *gin.Engine
	extraction *fakeExtraction
}

func setupTestAPI(t *testing.T) *testAPI {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupSQLiteDB(t)

	extraction := &fakeExtraction{markdown: "# Extracted"}
	usage := service.NewUsageService(db)
	svc := Services{
		Auth:        service.NewAuthService(db, "api-test-secret-with-enough-length", time.Hour, nil),
		Recipes:     service.NewRecipeService(db),
		Preferences: service.NewPreferencesService(db),
		Avatars:     fakeAvatars{},
		Extraction:  extraction,
		Usage:       usage,
		Beta:        service.NewBetaService(db),
		ImportLimiter: middleware.NewRateLimiter(&countingLimiter{}, middleware.RateLimitConfig{
			Window: time.Hour, Limit: 3, KeyPrefix: "test",
		}),
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	SetupAPI(router, svc)
	return &testAPI{router: router, extraction: extraction}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(testhelpers.JSONMarshal(t, body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) signUp(t *testing.T, email string) *types.Session {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/signup", "", types.Credentials{Email: email, Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp types.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
	return resp.Session
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAuthEndpoints(t *testing.T) {
	a := setupTestAPI(t)
	session := a.signUp(t, "cook@example.com")
	assert.Equal(t, "bearer", session.TokenType)
	assert.Equal(t, types.SessionPassword, session.Type)

	rec := a.do(t, http.MethodPost, "/auth/signup", "", types.Credentials{Email: "cook@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodPost, "/auth/token", "", types.Credentials{Email: "cook@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, types.CodeInvalidLogin, decode[types.Envelope](t, rec).Error.CodeString())

	rec = a.do(t, http.MethodPost, "/auth/token", "", types.Credentials{Email: "cook@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/auth/user", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cook@example.com", decode[types.UserResponse](t, rec).User.Email)

	rec = a.do(t, http.MethodPost, "/auth/refresh", "", types.RefreshRequest{RefreshToken: session.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[types.SessionResponse](t, rec).Session.AccessToken)

	rec = a.do(t, http.MethodPost, "/auth/recover", "", types.RecoverRequest{Email: "unknown@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[types.Envelope](t, rec).Error)

	rec = a.do(t, http.MethodPost, "/auth/verify", "", types.VerifyRequest{Token: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPut, "/auth/user", session.AccessToken, types.UpdateUserRequest{Password: "changed1"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[types.UserResponse](t, rec)
	require.NotNil(t, updated.Session)
	assert.Equal(t, types.SessionPassword, updated.Session.Type)
	assert.Equal(t, "cook@example.com", updated.User.Email)

	rec = a.do(t, http.MethodPost, "/auth/logout", session.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEmptyBearerTokenIsUnauthorized(t *testing.T) {
	a := setupTestAPI(t)
	rec := a.do(t, http.MethodGet, "/recipes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode[types.Envelope](t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, types.CodeUnauthorized, env.Error.CodeString())
	assert.Equal(t, http.StatusUnauthorized, env.Error.Status)
}

func TestRecipeEndpoints(t *testing.T) {
	a := setupTestAPI(t)
	owner := a.signUp(t, "owner@example.com")
	other := a.signUp(t, "other@example.com")

	rec := a.do(t, http.MethodPost, "/recipes", owner.AccessToken, types.CreateRecipeRequest{RecipeMarkdown: "# Tacos"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[types.CreateRecipeResponse](t, rec).CreatedRecipe
	require.NotNil(t, created)
	assert.Equal(t, "Tacos", created.Title())

	rec = a.do(t, http.MethodPost, "/recipes", owner.AccessToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/recipes", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[types.ListRecipesResponse](t, rec).Recipes, 1)

	rec = a.do(t, http.MethodGet, "/recipes", other.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[types.ListRecipesResponse](t, rec)
	assert.NotNil(t, list.Recipes)
	assert.Empty(t, list.Recipes)

	rec = a.do(t, http.MethodGet, "/recipes/"+created.ID, other.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodGet, "/recipes/not-a-uuid", owner.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	md := "# Fish Tacos"
	rec = a.do(t, http.MethodPatch, "/recipes/"+created.ID, owner.AccessToken, types.UpdateRecipeRequest{RecipeMarkdown: &md})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[types.GetRecipeResponse](t, rec).Recipe
	assert.Equal(t, "Fish Tacos", updated.Title())
	assert.True(t, updated.Edited())

	rec = a.do(t, http.MethodDelete, "/recipes/"+created.ID, other.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodDelete, "/recipes/"+created.ID, owner.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[types.Envelope](t, rec).Error)
}

func multipartImages(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for name, contentType := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func (a *testAPI) upload(t *testing.T, path, token, field string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartImages(t, field, files)
	req := httptest.NewRequest(http.MethodPost, "/api/v1"+path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestImportEndpoints(t *testing.T) {
	a := setupTestAPI(t)
	session := a.signUp(t, "cook@example.com")

	rec := a.upload(t, "/recipes/import-image", session.AccessToken, "files[]", map[string]string{
		"page1.jpg": "image/jpeg",
		"page2.png": "image/png",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "# Extracted", decode[types.ImportRecipeResponse](t, rec).RecipeMarkdown)
	assert.Len(t, a.extraction.images, 2)

	rec = a.upload(t, "/recipes/import-image", session.AccessToken, "files[]", map[string]string{"doc.pdf": "application/pdf"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[types.Envelope](t, rec)
	assert.Equal(t, types.CodeInvalidFile, env.Error.CodeString())
	assert.Equal(t, types.ErrUnsupportedImageType.Error(), env.Error.Message)

	rec = a.do(t, http.MethodPost, "/recipes/import-text", session.AccessToken, types.ImportTextRequest{Text: "eggs and flour"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "eggs and flour", a.extraction.text)

	// the limiter allows three imports per window
	rec = a.do(t, http.MethodPost, "/recipes/import-text", session.AccessToken, types.ImportTextRequest{Text: "again"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, types.CodeRateLimited, decode[types.Envelope](t, rec).Error.CodeString())
}

func TestImportExtractionFailures(t *testing.T) {
	a := setupTestAPI(t)
	session := a.signUp(t, "cook@example.com")

	a.extraction.err = service.ErrEmptyExtraction
	rec := a.do(t, http.MethodPost, "/recipes/import-text", session.AccessToken, types.ImportTextRequest{Text: "x"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, types.CodeExtraction, decode[types.Envelope](t, rec).Error.CodeString())

	a.extraction.err = service.ErrExtractionDisabled
	rec = a.do(t, http.MethodPost, "/recipes/import-text", session.AccessToken, types.ImportTextRequest{Text: "x"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPreferencesEndpoints(t *testing.T) {
	a := setupTestAPI(t)
	session := a.signUp(t, "cook@example.com")

	rec := a.do(t, http.MethodGet, "/preferences", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[types.PreferencesResponse](t, rec).Preferences)
	assert.True(t, strings.Contains(rec.Body.String(), `"preferences":null`))

	theme := types.ThemeLight
	rec = a.do(t, http.MethodPatch, "/preferences", session.AccessToken, types.UpdatePreferencesRequest{Theme: &theme})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.ThemeLight, decode[types.PreferencesResponse](t, rec).Preferences.Theme)

	bad := types.Theme("neon")
	rec = a.do(t, http.MethodPatch, "/preferences", session.AccessToken, types.UpdatePreferencesRequest{Theme: &bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.upload(t, "/preferences/avatar", session.AccessToken, "file", map[string]string{"me.png": "image/png"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decode[types.AvatarResponse](t, rec).AvatarURL, session.User.ID)
}

func TestUsageAndBetaEndpoints(t *testing.T) {
	a := setupTestAPI(t)
	session := a.signUp(t, "cook@example.com")

	rec := a.do(t, http.MethodGet, "/usage", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.Usage{}, decode[types.UsageResponse](t, rec).Usage)

	rec = a.do(t, http.MethodPost, "/beta-users", "", types.BetaAccessRequest{Email: "new@example.com"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = a.do(t, http.MethodPost, "/beta-users", "", types.BetaAccessRequest{Email: "new@example.com"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = a.do(t, http.MethodPost, "/beta-users", "", types.BetaAccessRequest{Email: "bad"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
