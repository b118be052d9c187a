package dtos

type GenerateTemplateRequest struct {
	URL    string `json:"url" binding:"required"`
	Layout string `json:"layout" binding:"omitempty,max=16"`

	// Optional: store the result under this company.
	CompanyName string `json:"companyName" binding:"omitempty,max=120"`
	// IncludeDebug keeps the extraction diagnostics in the response.
	IncludeDebug *bool `json:"includeDebug"`
}

type TemplateSummary struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Layout    string `json:"layout"`
	SourceURL string `json:"sourceUrl"`
	CreatedAt string `json:"createdAt"`
}
