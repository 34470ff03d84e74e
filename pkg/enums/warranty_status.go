package enums

import "fmt"

// WarrantyStatus classifies a sold unit relative to its coverage window.
type WarrantyStatus string

const (
	WarrantyStatusUnderWarranty WarrantyStatus = "under_warranty"
	WarrantyStatusExpired       WarrantyStatus = "expired"
)

var validWarrantyStatuses = []WarrantyStatus{
	WarrantyStatusUnderWarranty,
	WarrantyStatusExpired,
}

// String returns the literal string for the status.
func (w WarrantyStatus) String() string {
	return string(w)
}

// IsValid reports whether the status is known.
func (w WarrantyStatus) IsValid() bool {
	for _, candidate := range validWarrantyStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWarrantyStatus converts raw input into a WarrantyStatus.
func ParseWarrantyStatus(value string) (WarrantyStatus, error) {
	for _, candidate := range validWarrantyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid warranty status %q", value)
}
