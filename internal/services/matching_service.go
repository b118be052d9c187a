package services

import (
	"context"
	"strings"

	"github.com/justsurfingit/brand-theme-generator/internal/models"
)

// CompanyLister is the part of TemplateStore the matcher needs.
type CompanyLister interface {
	Companies(ctx context.Context) ([]models.Company, error)
}

// MatcherService links a generated template to a tracked company when the caller does
// not name one.
type MatcherService struct {
	Companies CompanyLister
}

func NewMatcherService(companies CompanyLister) *MatcherService {
	return &MatcherService{Companies: companies}
}

// ResolveCompany returns the company name a template for host should be stored under.
// An explicit name wins; otherwise the host is matched against tracked companies.
// It returns "" when nothing matches.
func (s *MatcherService) ResolveCompany(ctx context.Context, explicit, host string) (string, error) {
	if name := strings.TrimSpace(explicit); name != "" {
		return name, nil
	}
	if s == nil || s.Companies == nil {
		return "", nil
	}
	companies, err := s.Companies.Companies(ctx)
	if err != nil {
		return "", err
	}
	if c := FindCompanyForHost(companies, host); c != nil {
		return c.Name, nil
	}
	return "", nil
}

// FindCompanyForHost picks the company whose name appears in the host's registrable part,
// preferring the longest name. "careers.stripe.com" matches "Stripe".
func FindCompanyForHost(companies []models.Company, host string) *models.Company {
	domain := strings.TrimPrefix(strings.ToLower(host), "www.")
	labels := strings.Split(domain, ".")
	if len(labels) >= 2 {
		// Drop the TLD so "Com" or "Io" never match.
		domain = strings.Join(labels[:len(labels)-1], ".")
	}
	compact := strings.NewReplacer("-", "", ".", "").Replace(domain)

	var best *models.Company
	bestLen := 0
	for i := range companies {
		name := strings.ToLower(companies[i].Name)
		key := strings.NewReplacer(" ", "", "-", "", ".", "").Replace(name)
		// Skip very short names: "X" or "Go" would match everything.
		if len(key) < 3 {
			continue
		}
		if strings.Contains(compact, key) && len(key) > bestLen {
			best, bestLen = &companies[i], len(key)
		}
	}
	return best
}
