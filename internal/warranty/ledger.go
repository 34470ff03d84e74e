package warranty

import (
	"github.com/coverline/coverline-backend/pkg/enums"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/types"
)

// DeriveEndDate advances the sale date by the warranty period. Month
// arithmetic rolls day-of-month overflow into the next month, so
// 2024-01-31 plus one month is 2024-03-02.
func DeriveEndDate(saleDate types.Date, months int) (types.Date, error) {
	if months < 0 {
		return types.Date{}, pkgerrors.New(pkgerrors.CodeValidation, "warranty period must be a non-negative month count")
	}
	if saleDate.IsZero() {
		return types.Date{}, pkgerrors.New(pkgerrors.CodeValidation, "sale date is required")
	}
	return saleDate.AddMonths(months), nil
}

// Classify reports coverage at date granularity. A check performed exactly
// on the end date still counts as covered.
func Classify(endDate, today types.Date) enums.WarrantyStatus {
	if today.After(endDate) {
		return enums.WarrantyStatusExpired
	}
	return enums.WarrantyStatusUnderWarranty
}

// Window derives the coverage interval persisted on a sale. The start date is
// the sale date itself; the end date follows the DeriveEndDate rollover rule.
func Window(saleDate types.Date, months int) (types.Date, types.Date, error) {
	end, err := DeriveEndDate(saleDate, months)
	if err != nil {
		return types.Date{}, types.Date{}, err
	}
	return saleDate, end, nil
}
