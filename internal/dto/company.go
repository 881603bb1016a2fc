package dto

import "github.com/pravaha-app/expense_backend/internal/core/domain"

// CompanyResponse is the API representation of a company.
type CompanyResponse struct {
	CompanyID        string `json:"companyID"`
	Name             string `json:"name"`
	Country          string `json:"country"`
	BaseCurrencyCode string `json:"baseCurrencyCode"`
}

// ToCompanyResponse converts a domain.Company to its response DTO.
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:        c.CompanyID,
		Name:             c.Name,
		Country:          c.Country,
		BaseCurrencyCode: c.BaseCurrencyCode,
	}
}
