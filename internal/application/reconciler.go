package application

import (
	"strings"

	"ave-shopify-connector/internal/domain"
)

// NormalizeStoreRef strips everything but digits from a store-side id, so a
// numeric REST id and a gid://shopify/... form of the same id compare equal.
func NormalizeStoreRef(ref string) string {
	var b strings.Builder
	for _, r := range ref {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// PartitionExisting splits the candidate ids into those already mapped to the
// given store and those not. Mapped ids carry their normalized store-side
// ref; references with an empty ref count as unmapped.
func PartitionExisting(candidates []int64, known []domain.CrossReference, storeID int64) (existing map[int64]string, missing []int64) {
	byID := make(map[int64]string)
	for _, ref := range known {
		if ref.TokenID != storeID {
			continue
		}
		normalized := NormalizeStoreRef(ref.ProductRef)
		if normalized == "" {
			continue
		}
		byID[ref.ProductID] = normalized
	}

	existing = make(map[int64]string)
	for _, id := range candidates {
		if ref, ok := byID[id]; ok {
			existing[id] = ref
		} else {
			missing = append(missing, id)
		}
	}
	return existing, missing
}
