package warranty

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coverline/coverline-backend/pkg/db/models"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/types"
)

// Service answers public warranty lookups.
type Service interface {
	Lookup(ctx context.Context, identifier string) (*CheckResult, error)
}

type productFinder interface {
	FindByIdentifier(ctx context.Context, identifier string) ([]models.Product, error)
	FindMediaByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
}

type imageSigner interface {
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

type service struct {
	repo          productFinder
	signer        imageSigner
	bucket        string
	signingExpiry time.Duration
	now           func() time.Time
}

// Option overrides service defaults.
type Option func(*service)

// WithClock swaps the wall clock used to classify coverage.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithImageSigner enables signed product image URLs in lookup responses.
func WithImageSigner(signer imageSigner, bucket string, expiry time.Duration) Option {
	return func(s *service) {
		s.signer = signer
		s.bucket = bucket
		s.signingExpiry = expiry
	}
}

// NewService constructs the lookup service.
func NewService(repo productFinder, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("warranty repository required")
	}
	svc := &service{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Lookup resolves an identifier against serial and model numbers. Zero
// matches is NOT_FOUND; more than one match is refused outright rather than
// picking a product and showing a stranger's warranty.
func (s *service) Lookup(ctx context.Context, identifier string) (*CheckResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identifier is required")
	}

	matches, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find product by identifier")
	}

	switch {
	case len(matches) == 0:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	case len(matches) > 1:
		return nil, pkgerrors.New(pkgerrors.CodeAmbiguous, "identifier matches more than one product").
			WithDetails(map[string]any{"matches": len(matches)})
	}

	product := matches[0]
	result := &CheckResult{
		Product: ProductInfo{
			ID:           product.ID,
			Name:         product.Name,
			SerialNumber: product.SerialNumber,
			ModelNumber:  product.ModelNumber,
		},
	}

	if url := s.resolveImageURL(ctx, product.ImageMediaID); url != "" {
		result.Product.ImageURL = &url
	}

	if len(product.Sales) == 0 {
		return result, nil
	}

	// Sales are preloaded newest first; coverage reflects the latest hand-off.
	sale := product.Sales[0]
	today := types.DateOf(s.now().UTC())
	result.Coverage = &CoverageInfo{
		CustomerName:      sale.CustomerName,
		SaleDate:          sale.SaleDate,
		WarrantyStartDate: sale.WarrantyStartDate,
		WarrantyEndDate:   sale.WarrantyEndDate,
		Status:            Classify(sale.WarrantyEndDate, today),
	}
	return result, nil
}

// resolveImageURL is best effort: a missing media row or signing failure
// never blocks the warranty answer.
func (s *service) resolveImageURL(ctx context.Context, mediaID *uuid.UUID) string {
	if s.signer == nil || mediaID == nil {
		return ""
	}
	media, err := s.repo.FindMediaByID(ctx, *mediaID)
	if err != nil {
		return ""
	}
	url, err := s.signer.SignedReadURL(s.bucket, media.GCSKey, s.signingExpiry)
	if err != nil {
		return ""
	}
	return url
}
