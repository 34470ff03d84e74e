package warranty

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/coverline/coverline-backend/pkg/db/models"
	"github.com/coverline/coverline-backend/pkg/enums"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/types"
)

type fakeProductFinder struct {
	products []models.Product
	media    map[uuid.UUID]*models.Media
	err      error
}

func (f *fakeProductFinder) FindByIdentifier(ctx context.Context, identifier string) ([]models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var matches []models.Product
	for _, p := range f.products {
		if p.SerialNumber == identifier || p.ModelNumber == identifier {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (f *fakeProductFinder) FindMediaByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	if media, ok := f.media[id]; ok {
		return media, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
}

type fakeSigner struct {
	url string
	err error
}

func (f fakeSigner) SignedReadURL(bucket, object string, expires time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url + "/" + object, nil
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	}
}

func TestLookupUnknownIdentifierIsNotFound(t *testing.T) {
	svc, err := NewService(&fakeProductFinder{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Lookup(context.Background(), "SN-100")
	if err == nil {
		t.Fatal("expected error for unknown identifier")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestLookupAmbiguousIdentifierFailsLoudly(t *testing.T) {
	repo := &fakeProductFinder{
		products: []models.Product{
			{ID: uuid.New(), SerialNumber: "SN-1", ModelNumber: "MX-9"},
			{ID: uuid.New(), SerialNumber: "SN-2", ModelNumber: "MX-9"},
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Lookup(context.Background(), "MX-9")
	if err == nil {
		t.Fatal("expected error for ambiguous identifier")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAmbiguous {
		t.Fatalf("expected AMBIGUOUS_IDENTIFIER, got %v", err)
	}
}

func TestLookupRejectsBlankIdentifier(t *testing.T) {
	svc, err := NewService(&fakeProductFinder{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Lookup(context.Background(), "   ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLookupUnsoldProductHasNoCoverage(t *testing.T) {
	repo := &fakeProductFinder{
		products: []models.Product{
			{ID: uuid.New(), Name: "Fridge X", SerialNumber: "SN-77", ModelNumber: "FX-1"},
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.Lookup(context.Background(), "SN-77")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Product.SerialNumber != "SN-77" {
		t.Fatalf("unexpected product %+v", result.Product)
	}
	if result.Coverage != nil {
		t.Fatal("expected no coverage section for an unsold product")
	}
}

func TestLookupSoldProductClassifiesAgainstClock(t *testing.T) {
	sale := models.Sale{
		CustomerName:      "Dana Reyes",
		SaleDate:          types.NewDate(2023, time.June, 15),
		WarrantyStartDate: types.NewDate(2023, time.June, 15),
		WarrantyEndDate:   types.NewDate(2024, time.June, 15),
	}
	repo := &fakeProductFinder{
		products: []models.Product{
			{ID: uuid.New(), Name: "Washer Pro", SerialNumber: "SN-500", ModelNumber: "WP-2", Sales: []models.Sale{sale}},
		},
	}

	t.Run("on the end date is still covered", func(t *testing.T) {
		svc, err := NewService(repo, WithClock(fixedClock(2024, time.June, 15)))
		if err != nil {
			t.Fatalf("new service: %v", err)
		}
		result, err := svc.Lookup(context.Background(), "SN-500")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Coverage == nil {
			t.Fatal("expected coverage section")
		}
		if result.Coverage.Status != enums.WarrantyStatusUnderWarranty {
			t.Fatalf("expected under_warranty, got %s", result.Coverage.Status)
		}
		if result.Coverage.CustomerName != "Dana Reyes" {
			t.Fatalf("unexpected customer %s", result.Coverage.CustomerName)
		}
	})

	t.Run("the day after is expired", func(t *testing.T) {
		svc, err := NewService(repo, WithClock(fixedClock(2024, time.June, 16)))
		if err != nil {
			t.Fatalf("new service: %v", err)
		}
		result, err := svc.Lookup(context.Background(), "SN-500")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Coverage.Status != enums.WarrantyStatusExpired {
			t.Fatalf("expected expired, got %s", result.Coverage.Status)
		}
	})
}

func TestLookupSignsProductImage(t *testing.T) {
	mediaID := uuid.New()
	repo := &fakeProductFinder{
		products: []models.Product{
			{ID: uuid.New(), Name: "Dryer", SerialNumber: "SN-9", ModelNumber: "DR-3", ImageMediaID: &mediaID},
		},
		media: map[uuid.UUID]*models.Media{
			mediaID: {ID: mediaID, GCSKey: "products/dryer.jpg"},
		},
	}
	svc, err := NewService(repo, WithImageSigner(fakeSigner{url: "https://storage.example.com"}, "coverline-media", time.Hour))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.Lookup(context.Background(), "SN-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Product.ImageURL == nil {
		t.Fatal("expected signed image url")
	}
	if *result.Product.ImageURL != "https://storage.example.com/products/dryer.jpg" {
		t.Fatalf("unexpected url %s", *result.Product.ImageURL)
	}
}

func TestLookupSigningFailureDoesNotBlockAnswer(t *testing.T) {
	mediaID := uuid.New()
	repo := &fakeProductFinder{
		products: []models.Product{
			{ID: uuid.New(), Name: "Dryer", SerialNumber: "SN-9", ModelNumber: "DR-3", ImageMediaID: &mediaID},
		},
		media: map[uuid.UUID]*models.Media{
			mediaID: {ID: mediaID, GCSKey: "products/dryer.jpg"},
		},
	}
	svc, err := NewService(repo, WithImageSigner(fakeSigner{err: context.DeadlineExceeded}, "coverline-media", time.Hour))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.Lookup(context.Background(), "SN-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Product.ImageURL != nil {
		t.Fatal("expected no image url on signing failure")
	}
}
