package dto

import (
	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
)

// lastUpdatedLayout renders bucket rotation times in UTC with millisecond precision.
const lastUpdatedLayout = "2006-01-02T15:04:05.999"

// MappedIdentityResponse is one mapped identifier.
type MappedIdentityResponse struct {
	Identifier    string `json:"identifier"`
	AdvertisingID string `json:"advertising_id"`
	BucketID      string `json:"bucket_id,omitempty"`
}

// MapBatchResponse wraps the mapped identifiers of a batch call.
type MapBatchResponse struct {
	Mapped []MappedIdentityResponse `json:"mapped"`
}

// BucketResponse is one rotated bucket.
type BucketResponse struct {
	BucketID    string `json:"bucket_id"`
	LastUpdated string `json:"last_updated"`
}

// MapIdentityToResponse converts a mapped identity.
func MapIdentityToResponse(m *identityDomain.MappedIdentity) MappedIdentityResponse {
	return MappedIdentityResponse{
		Identifier:    m.Identifier,
		AdvertisingID: m.AdvertisingID,
		BucketID:      m.BucketID,
	}
}

// MapBatchToResponse converts a batch result. withBuckets false drops bucket ids, matching
// the unversioned endpoint.
func MapBatchToResponse(mapped []*identityDomain.MappedIdentity, withBuckets bool) MapBatchResponse {
	resp := MapBatchResponse{Mapped: make([]MappedIdentityResponse, 0, len(mapped))}
	for _, m := range mapped {
		r := MapIdentityToResponse(m)
		if !withBuckets {
			r.BucketID = ""
		}
		resp.Mapped = append(resp.Mapped, r)
	}
	return resp
}

// MapBucketsToResponse converts rotated salt entries.
func MapBucketsToResponse(entries []identityDomain.SaltEntry) []BucketResponse {
	resp := make([]BucketResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, BucketResponse{
			BucketID:    e.BucketID,
			LastUpdated: e.LastUpdated.UTC().Format(lastUpdatedLayout),
		})
	}
	return resp
}
