package models

import (
	"time"

	"gorm.io/gorm"
)

type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"uniqueIndex;not null" json:"company_name"`

	// 'omitempty' prevents loops when fetching Template -> Company -> Templates.
	Templates []CareerTemplate `json:"templates,omitempty"`
}

// CareerTemplate is one generated widget theme.
type CareerTemplate struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID uint    `gorm:"index" json:"company_id"`
	Company   Company `json:"company,omitempty"`

	Name         string            `gorm:"not null" json:"name"`
	SourceURL    string            `gorm:"not null" json:"source_url"`
	Layout       string            `gorm:"default:'list'" json:"layout"`
	CSS          string            `gorm:"type:text" json:"css"`
	FontURL      string            `json:"font_url"`
	DesignTokens map[string]string `gorm:"type:jsonb;serializer:json" json:"design_tokens"`
	Repairs      []string          `gorm:"type:jsonb;serializer:json" json:"repairs"`
}
