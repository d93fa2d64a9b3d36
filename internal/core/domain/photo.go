// internal/core/domain/photo.go
package domain

import "strings"

// PhotoCategory names a subdirectory of the asset root. Records persist
// only paths relative to the asset root (category/filename), never
// absolute paths or raw bytes, so the root stays relocatable.
type PhotoCategory string

const (
	CategoryProduct  PhotoCategory = "product_photos"
	CategoryCustomer PhotoCategory = "customer_photos"
	CategoryFind     PhotoCategory = "find-photos"
)

// Categories lists every known photo category, in sweep order.
func Categories() []PhotoCategory {
	return []PhotoCategory{CategoryProduct, CategoryCustomer, CategoryFind}
}

// IsEncodedPayload reports whether s is an inbound base64 image envelope
// (data:<mime>;base64,<payload>) rather than a persisted relative path.
func IsEncodedPayload(s string) bool {
	return strings.HasPrefix(s, "data:")
}
