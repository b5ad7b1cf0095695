package usecase

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"valuation-service/internal/core/domain"

	"github.com/mmcloughlin/geohash"
)

const geohashPrecision = 5

func normalizeAreaToBucket(area float64, bucketSize float64) string {
	if bucketSize <= 0 {
		bucketSize = 1.0
	}
	return fmt.Sprintf("%d", int(area/bucketSize))
}

// buildFingerprintPayload joins the stable traits of a property: its
// neighbourhood cell, category and size buckets.
func buildFingerprintPayload(rec domain.PropertyRecord) string {
	parts := []string{
		geohash.EncodeWithPrecision(rec.Latitude, rec.Longitude, geohashPrecision),
		strings.ToLower(strings.TrimSpace(rec.Type)),
		strings.ToLower(strings.TrimSpace(rec.Sector)),
		normalizeAreaToBucket(rec.NetUsableArea, 2.0),
		normalizeAreaToBucket(rec.NetArea, 2.0),
		fmt.Sprintf("%g", rec.NRooms),
		fmt.Sprintf("%g", rec.NBathroom),
	}
	return strings.Join(parts, "|")
}

// propertyFingerprint lets audit lines for the same property be grouped
// without logging its coordinates.
func propertyFingerprint(rec domain.PropertyRecord) string {
	h := sha256.New()
	h.Write([]byte(buildFingerprintPayload(rec)))
	return fmt.Sprintf("%x", h.Sum(nil))
}
