package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/brand-theme-generator/internal/browser"
	"github.com/justsurfingit/brand-theme-generator/internal/extractor"
	"github.com/justsurfingit/brand-theme-generator/internal/models"
	"github.com/justsurfingit/brand-theme-generator/internal/services"
	"github.com/justsurfingit/brand-theme-generator/internal/theme"
)

type fakeGenerator struct {
	payload *services.TemplatePayload
	err     error
	gotURL  string
	gotLay  string
}

func (f *fakeGenerator) Generate(_ context.Context, url, layout string) (*services.TemplatePayload, error) {
	f.gotURL, f.gotLay = url, layout
	return f.payload, f.err
}

type memoryStore struct {
	templates map[uint]*models.CareerTemplate
	saveErr   error
	savedFor  []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{templates: make(map[uint]*models.CareerTemplate)}
}

func (m *memoryStore) Save(_ context.Context, company string, p *services.TemplatePayload) (*models.CareerTemplate, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.savedFor = append(m.savedFor, company)
	id := uint(len(m.templates) + 1)
	tpl := &models.CareerTemplate{
		ID:        id,
		CreatedAt: time.Date(2026, 1, int(id), 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Unix(1700000000, 0),
		Company:   models.Company{Name: company},
		Name:      p.Name,
		CSS:       p.CSS,
		Layout:    p.Layout,
		SourceURL: p.SourceURL,
	}
	m.templates[id] = tpl
	return tpl, nil
}

func (m *memoryStore) Get(_ context.Context, id uint) (*models.CareerTemplate, error) {
	if tpl, ok := m.templates[id]; ok {
		return tpl, nil
	}
	return nil, fmt.Errorf("template %d: %w", id, services.ErrNotFound)
}

func (m *memoryStore) ListByCompany(_ context.Context, company string) ([]models.CareerTemplate, error) {
	var out []models.CareerTemplate
	for i := len(m.templates); i >= 1; i-- {
		if tpl := m.templates[uint(i)]; tpl.Company.Name == company {
			out = append(out, *tpl)
		}
	}
	if out == nil {
		return nil, services.ErrNotFound
	}
	return out, nil
}

type fixedResolver string

func (f fixedResolver) ResolveCompany(_ context.Context, explicit, _ string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return string(f), nil
}

type fakePool struct{}

func (fakePool) Stats() browser.Stats {
	return browser.Stats{Live: true, Generation: 3, ActivePages: 1, Requests: 12}
}

func samplePayload() *services.TemplatePayload {
	return &services.TemplatePayload{
		Name:         "Acme Indigo",
		CSS:          ":root {}\n.ct-widget{}",
		Layout:       "list",
		SourceURL:    "https://acme.com",
		DesignTokens: theme.DesignTokens{theme.AccentColor: "#4F46E5"},
		Debug:        &services.Debug{Repairs: []string{theme.RuleAccent}},
	}
}

func newTestRouter(gen TemplateGenerator, store TemplateRepository, resolver CompanyResolver, keys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTemplateHandler(gen, store, resolver, zerolog.Nop())
	return NewRouter(RouterConfig{APIKeys: keys, Templates: h, Pool: fakePool{}, Log: zerolog.Nop()})
}

func do(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateSuccess(t *testing.T) {
	gen := &fakeGenerator{payload: samplePayload()}
	r := newTestRouter(gen, nil, nil, nil)

	w := do(r, http.MethodPost, "/api/v1/templates/generate", `{"url":"https://acme.com","layout":"grid"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "https://acme.com", gen.gotURL)
	assert.Equal(t, "grid", gen.gotLay)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Acme Indigo", body["name"])
	assert.Equal(t, "list", body["layout"])
	assert.Contains(t, body, "designTokens")
	assert.Contains(t, body, "debug")
	assert.NotContains(t, body, "templateId")
}

func TestGenerateWithoutDebug(t *testing.T) {
	gen := &fakeGenerator{payload: samplePayload()}
	w := do(newTestRouter(gen, nil, nil, nil), http.MethodPost, "/api/v1/templates/generate", `{"url":"https://acme.com","includeDebug":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotContains(t, body, "debug")
	assert.NotNil(t, gen.payload.Debug, "pipeline payload left untouched")
}

func TestGenerateErrorStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
		msg  string
	}{
		{"invalid url", fmt.Errorf("%w: %q", services.ErrInvalidURL, "ftp://x"), http.StatusBadRequest, "url must be"},
		{"invalid layout", fmt.Errorf("%w %q", services.ErrInvalidLayout, "carousel"), http.StatusBadRequest, "unknown layout"},
		{"render timeout", fmt.Errorf("%w: %w", extractor.ErrRenderTimeout, browser.ErrNavigationTimeout), http.StatusRequestTimeout, "site took too long to render"},
		{"timeout text", errors.New("TimeoutError: Navigation timeout of 15000 ms exceeded"), http.StatusRequestTimeout, "site took too long to render"},
		{"render failed", fmt.Errorf("%w: net::ERR_CONNECTION_REFUSED", extractor.ErrRenderFailed), http.StatusInternalServerError, "could not render the site"},
		{"token stage", fmt.Errorf("%w: %w", services.ErrTokenStage, errors.New("client timeout")), http.StatusInternalServerError, "design token extraction failed"},
		{"template stage", fmt.Errorf("%w: bad json", services.ErrTemplateStage), http.StatusInternalServerError, "stylesheet generation failed"},
		{"unknown", errors.New("boom at 0xdeadbeef"), http.StatusInternalServerError, "template generation failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(newTestRouter(&fakeGenerator{err: tc.err}, nil, nil, nil),
				http.MethodPost, "/api/v1/templates/generate", `{"url":"https://acme.com"}`)
			assert.Equal(t, tc.want, w.Code)
			assert.Contains(t, w.Body.String(), tc.msg)
			assert.NotContains(t, w.Body.String(), "0xdeadbeef")
		})
	}
}

func TestGenerateBadRequestBody(t *testing.T) {
	r := newTestRouter(&fakeGenerator{payload: samplePayload()}, nil, nil, nil)
	for _, body := range []string{`{`, `{}`, `{"layout":"grid"}`} {
		w := do(r, http.MethodPost, "/api/v1/templates/generate", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	r := newTestRouter(&fakeGenerator{payload: samplePayload()}, nil, nil, []string{"secret"})

	w := do(r, http.MethodPost, "/api/v1/templates/generate", `{"url":"https://acme.com"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/v1/templates/generate", `{"url":"https://acme.com"}`, "X-API-Key", "secret")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, w.Code, "health stays public")
}

func TestGeneratePersistsUnderCompany(t *testing.T) {
	store := newMemoryStore()
	r := newTestRouter(&fakeGenerator{payload: samplePayload()}, store, fixedResolver("Matched Co"), nil)

	w := do(r, http.MethodPost, "/api/v1/templates/generate", `{"url":"https://acme.com","companyName":"Acme"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["templateId"])

	w = do(r, http.MethodPost, "/api/v1/templates/generate", `{"url":"https://acme.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Acme", "Matched Co"}, store.savedFor)
}

func TestGenerateSurvivesStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.saveErr = errors.New("db down")
	r := newTestRouter(&fakeGenerator{payload: samplePayload()}, store, nil, nil)

	w := do(r, http.MethodPost, "/api/v1/templates/generate", `{"url":"https://acme.com","companyName":"Acme"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "templateId")
}

func TestStoredTemplateRoutes(t *testing.T) {
	store := newMemoryStore()
	_, _ = store.Save(context.Background(), "Acme", samplePayload())
	second := samplePayload()
	second.Name = "Acme Night"
	_, _ = store.Save(context.Background(), "Acme", second)
	r := newTestRouter(&fakeGenerator{}, store, nil, []string{"secret"})

	w := do(r, http.MethodGet, "/api/v1/templates/1", "", "X-API-Key", "secret")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Acme Indigo"`)

	w = do(r, http.MethodGet, "/api/v1/templates/99", "", "X-API-Key", "secret")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(r, http.MethodGet, "/api/v1/templates/abc", "", "X-API-Key", "secret")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/templates/1/css", "")
	require.Equal(t, http.StatusOK, w.Code, "stylesheet is public")
	assert.Equal(t, "text/css; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, ":root {}\n.ct-widget{}", w.Body.String())
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w = do(r, http.MethodGet, "/api/v1/templates/1/css", "", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = do(r, http.MethodGet, "/api/v1/companies/Acme/templates", "", "X-API-Key", "secret")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Templates []struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Templates, 2)
	assert.Equal(t, "Acme Night", list.Templates[0].Name)

	w = do(r, http.MethodGet, "/api/v1/companies/Nobody/templates", "", "X-API-Key", "secret")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadRoutesAbsentWithoutStore(t *testing.T) {
	r := newTestRouter(&fakeGenerator{}, nil, nil, nil)
	w := do(r, http.MethodGet, "/api/v1/templates/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthReportsPool(t *testing.T) {
	w := do(newTestRouter(&fakeGenerator{}, nil, nil, nil), http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status      string       `json:"status"`
		Persistence bool         `json:"persistence"`
		Pool        browser.Stats `json:"pool"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.False(t, body.Persistence)
	assert.Equal(t, 3, body.Pool.Generation)
	assert.Equal(t, 12, body.Pool.Requests)
}
