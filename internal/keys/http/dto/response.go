// Package dto provides the JSON shapes returned by the key listing endpoints.
package dto

import (
	"encoding/base64"

	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
)

// KeyResponse is one encryption key as exposed to relying parties. Times are epoch seconds.
type KeyResponse struct {
	ID        int64  `json:"id"`
	SiteID    int64  `json:"site_id"`
	Created   int64  `json:"created"`
	Activates int64  `json:"activates"`
	Expires   int64  `json:"expires"`
	Secret    string `json:"secret"`
}

// MapKeysToResponse converts domain keys to their response form. The result is never nil.
func MapKeysToResponse(keys []*keysDomain.EncryptionKey) []KeyResponse {
	resp := make([]KeyResponse, 0, len(keys))
	for _, k := range keys {
		resp = append(resp, KeyResponse{
			ID:        k.ID,
			SiteID:    k.SiteID,
			Created:   k.CreatedAt.Unix(),
			Activates: k.ActivatesAt.Unix(),
			Expires:   k.ExpiresAt.Unix(),
			Secret:    base64.StdEncoding.EncodeToString(k.Secret),
		})
	}
	return resp
}
