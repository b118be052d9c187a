package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/justsurfingit/brand-theme-generator/internal/dtos"
	"github.com/justsurfingit/brand-theme-generator/internal/extractor"
	"github.com/justsurfingit/brand-theme-generator/internal/logger"
	"github.com/justsurfingit/brand-theme-generator/internal/models"
	"github.com/justsurfingit/brand-theme-generator/internal/services"
)

// TemplateGenerator runs the generation pipeline.
type TemplateGenerator interface {
	Generate(ctx context.Context, url, layout string) (*services.TemplatePayload, error)
}

// TemplateRepository stores and reads generated templates.
type TemplateRepository interface {
	Save(ctx context.Context, companyName string, payload *services.TemplatePayload) (*models.CareerTemplate, error)
	Get(ctx context.Context, id uint) (*models.CareerTemplate, error)
	ListByCompany(ctx context.Context, companyName string) ([]models.CareerTemplate, error)
}

// CompanyResolver picks the company a template belongs to.
type CompanyResolver interface {
	ResolveCompany(ctx context.Context, explicit, host string) (string, error)
}

// TemplateHandler serves generation and stored templates. Store and Matcher may be nil
// when persistence is disabled.
type TemplateHandler struct {
	Pipeline TemplateGenerator
	Store    TemplateRepository
	Matcher  CompanyResolver
	log      zerolog.Logger
}

// NewTemplateHandler creates the handler with dependencies.
func NewTemplateHandler(p TemplateGenerator, store TemplateRepository, matcher CompanyResolver, log zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{
		Pipeline: p,
		Store:    store,
		Matcher:  matcher,
		log:      logger.Component(log, "http"),
	}
}

type generateResponse struct {
	*services.TemplatePayload
	TemplateID *uint `json:"templateId,omitempty"`
}

// Generate is the POST /templates/generate endpoint.
func (h *TemplateHandler) Generate(c *gin.Context) {
	var req dtos.GenerateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	payload, err := h.Pipeline.Generate(c.Request.Context(), req.URL, req.Layout)
	if err != nil {
		status, msg := errorStatus(err)
		h.log.Warn().Err(err).Str("url", req.URL).Int("status", status).Msg("template generation failed")
		c.JSON(status, gin.H{"error": msg})
		return
	}

	resp := generateResponse{TemplatePayload: payload}
	if id, ok := h.persist(c.Request.Context(), req.CompanyName, payload); ok {
		resp.TemplateID = &id
	}
	if req.IncludeDebug != nil && !*req.IncludeDebug {
		trimmed := *payload
		trimmed.Debug = nil
		resp.TemplatePayload = &trimmed
	}
	c.JSON(http.StatusOK, resp)
}

// persist stores payload when a store is configured and a company can be resolved.
// Storage failures are logged; the generated template is still returned.
func (h *TemplateHandler) persist(ctx context.Context, explicit string, payload *services.TemplatePayload) (uint, bool) {
	if h.Store == nil {
		return 0, false
	}
	company := explicit
	if h.Matcher != nil {
		host := ""
		if u, err := url.Parse(payload.SourceURL); err == nil {
			host = u.Hostname()
		}
		resolved, err := h.Matcher.ResolveCompany(ctx, explicit, host)
		if err != nil {
			h.log.Warn().Err(err).Msg("company lookup failed")
		}
		company = resolved
	}
	if company == "" {
		return 0, false
	}

	saved, err := h.Store.Save(ctx, company, payload)
	if err != nil {
		h.log.Error().Err(err).Str("company", company).Msg("saving template failed")
		return 0, false
	}
	h.log.Info().Uint("template_id", saved.ID).Str("company", company).Msg("template saved")
	return saved.ID, true
}

// GetTemplate is GET /templates/:id.
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tpl, ok := h.loadTemplate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// GetStylesheet is GET /templates/:id/css, the URL the widget embeds.
func (h *TemplateHandler) GetStylesheet(c *gin.Context) {
	tpl, ok := h.loadTemplate(c)
	if !ok {
		return
	}
	etag := fmt.Sprintf(`"%d-%d"`, tpl.ID, tpl.UpdatedAt.Unix())
	c.Header("ETag", etag)
	c.Header("Cache-Control", "public, max-age=300")
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(tpl.CSS))
}

// ListCompanyTemplates is GET /companies/:name/templates.
func (h *TemplateHandler) ListCompanyTemplates(c *gin.Context) {
	templates, err := h.Store.ListByCompany(c.Request.Context(), c.Param("name"))
	if err != nil {
		status, msg := errorStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	out := make([]dtos.TemplateSummary, 0, len(templates))
	for _, t := range templates {
		out = append(out, dtos.TemplateSummary{
			ID:        t.ID,
			Name:      t.Name,
			Layout:    t.Layout,
			SourceURL: t.SourceURL,
			CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"templates": out})
}

func (h *TemplateHandler) loadTemplate(c *gin.Context) (*models.CareerTemplate, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return nil, false
	}
	tpl, err := h.Store.Get(c.Request.Context(), uint(id))
	if err != nil {
		status, msg := errorStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return nil, false
	}
	return tpl, true
}

// errorStatus maps pipeline and store errors to a status and a message without internals.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidURL), errors.Is(err, services.ErrInvalidLayout):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, services.ErrTokenStage):
		return http.StatusInternalServerError, services.ErrTokenStage.Error()
	case errors.Is(err, services.ErrTemplateStage):
		return http.StatusInternalServerError, services.ErrTemplateStage.Error()
	case extractor.IsTimeout(err):
		return http.StatusRequestTimeout, extractor.ErrRenderTimeout.Error()
	case errors.Is(err, extractor.ErrRenderFailed):
		return http.StatusInternalServerError, "could not render the site"
	}
	return http.StatusInternalServerError, "template generation failed"
}
