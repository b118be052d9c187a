package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/justsurfingit/brand-theme-generator/internal/models"
)

// TemplateStore persists generated templates per company.
type TemplateStore struct {
	DB *gorm.DB
}

func NewTemplateStore(db *gorm.DB) *TemplateStore {
	return &TemplateStore{DB: db}
}

// Save stores payload under companyName, creating the company on first use.
func (s *TemplateStore) Save(ctx context.Context, companyName string, payload *TemplatePayload) (*models.CareerTemplate, error) {
	name := strings.TrimSpace(companyName)
	if name == "" {
		return nil, errors.New("company name is required")
	}

	var saved *models.CareerTemplate
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var company models.Company
		// Creates the company if it does not exist yet.
		if err := tx.Where(models.Company{Name: name}).FirstOrCreate(&company).Error; err != nil {
			return fmt.Errorf("find or create company: %w", err)
		}

		tpl := &models.CareerTemplate{
			CompanyID:    company.ID,
			Name:         payload.Name,
			SourceURL:    payload.SourceURL,
			Layout:       payload.Layout,
			CSS:          payload.CSS,
			FontURL:      payload.FontURL,
			DesignTokens: payload.DesignTokens,
		}
		if payload.Debug != nil {
			tpl.Repairs = payload.Debug.Repairs
		}
		if err := tx.Create(tpl).Error; err != nil {
			return fmt.Errorf("create template: %w", err)
		}
		tpl.Company = company
		saved = tpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Get loads one template with its company.
func (s *TemplateStore) Get(ctx context.Context, id uint) (*models.CareerTemplate, error) {
	var tpl models.CareerTemplate
	err := s.DB.WithContext(ctx).Preload("Company").First(&tpl, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// ListByCompany returns a company's templates, newest first.
func (s *TemplateStore) ListByCompany(ctx context.Context, companyName string) ([]models.CareerTemplate, error) {
	var company models.Company
	err := s.DB.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(companyName))).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("company %q: %w", companyName, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var templates []models.CareerTemplate
	if err := s.DB.WithContext(ctx).
		Where("company_id = ?", company.ID).
		Order("created_at DESC, id DESC").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Companies lists every tracked company.
func (s *TemplateStore) Companies(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := s.DB.WithContext(ctx).Order("name").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}
