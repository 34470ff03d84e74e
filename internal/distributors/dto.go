package distributors

import (
	"time"

	"github.com/google/uuid"

	"github.com/coverline/coverline-backend/pkg/db/models"
	"github.com/coverline/coverline-backend/pkg/pagination"
)

// CreateDistributorInput holds the validated onboarding payload.
type CreateDistributorInput struct {
	Name  string
	Email string
}

// UpdateDistributorInput holds optional mutation values.
type UpdateDistributorInput struct {
	Name *string
}

// ListDistributorsInput scopes a paginated listing.
type ListDistributorsInput struct {
	CompanyID  uuid.UUID
	Pagination pagination.Params
}

// DistributorDTO is the API projection of a distributor row.
type DistributorDTO struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DistributorListResult carries one page of distributors plus the next cursor.
type DistributorListResult struct {
	Distributors []DistributorDTO `json:"distributors"`
	NextCursor   string           `json:"next_cursor,omitempty"`
}

func toDTO(d *models.Distributor) *DistributorDTO {
	return &DistributorDTO{
		ID:        d.ID,
		CompanyID: d.CompanyID,
		Name:      d.Name,
		Email:     d.Email,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
