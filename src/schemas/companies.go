package schemas

import (
	"time"

	"brokerage/src/utils"
)

const dateLayout = "2006-01-02"

type CreateCompanyRequest struct {
	Name           string  `json:"name" validate:"required,min=2,max=100"`
	Profile        string  `json:"profile" validate:"max=2000"`
	FoundationDate *string `json:"foundation_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateCompanyRequest changes only the fields present in the body.
type UpdateCompanyRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=100"`
	Profile        *string `json:"profile" validate:"omitempty,max=2000"`
	FoundationDate *string `json:"foundation_date" validate:"omitempty,datetime=2006-01-02"`
}

// ParseDate reads an optional YYYY-MM-DD date.
func ParseDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	date, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, utils.BadRequest("dates must use the YYYY-MM-DD format")
	}
	return &date, nil
}
