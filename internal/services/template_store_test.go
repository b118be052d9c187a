package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/justsurfingit/brand-theme-generator/internal/models"
	"github.com/justsurfingit/brand-theme-generator/internal/theme"
)

// openTestDB connects to TEST_DATABASE_URL or skips.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Company{}, &models.CareerTemplate{}))
	return db
}

func TestTemplateStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	store := NewTemplateStore(db)
	ctx := context.Background()
	company := fmt.Sprintf("Store Test %d", time.Now().UnixNano())

	first, err := store.Save(ctx, company, &TemplatePayload{
		Name:         "First",
		CSS:          ".ct-widget{}",
		Layout:       "list",
		SourceURL:    "https://acme.com",
		DesignTokens: theme.DesignTokens{theme.AccentColor: "#4f46e5"},
		Debug:        &Debug{Repairs: []string{theme.RuleAccent}},
	})
	require.NoError(t, err)
	second, err := store.Save(ctx, company, &TemplatePayload{Name: "Second", CSS: ".x{}", Layout: "grid", SourceURL: "https://acme.com"})
	require.NoError(t, err)
	assert.Equal(t, first.CompanyID, second.CompanyID, "company reused")

	got, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "#4f46e5", got.DesignTokens[theme.AccentColor])
	assert.Equal(t, []string{theme.RuleAccent}, got.Repairs)
	assert.Equal(t, company, got.Company.Name)

	list, err := store.ListByCompany(ctx, company)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Name)

	_, err = store.Get(ctx, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.ListByCompany(ctx, company+" missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
