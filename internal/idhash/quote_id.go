// Package idhash computes deterministic identifiers so the same logical
// entity always maps to the same row, making writes idempotent.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"fuelmarket/internal/domain"
)

// ComputeQuoteID computes a deterministic quote_id using SHA256.
// Formula: SHA256(user_id|base|product|brand|day)
// Returns hex-encoded hash (64 characters). Price is deliberately not
// part of the key: re-quoting the same product/brand/day replaces the
// earlier price.
func ComputeQuoteID(userID, base, product, brand string, day time.Time) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s",
		userID,
		base,
		product,
		brand,
		domain.FormatDay(day),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
