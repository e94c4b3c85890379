// Package service decides which encryption keys a client may see.
package service

import (
	authDomain "github.com/allisson/uidoperator/internal/auth/domain"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
)

// CanAccess reports whether client may use key.
//
// A client always sees its own site's keys and the shared advertising-token key. Keys of other
// sites are visible when the owner's sharing rule grants the client's site. The master key is
// never visible.
func CanAccess(client *authDomain.Client, key *keysDomain.EncryptionKey, acl *keysDomain.ACLSnapshot) bool {
	if client == nil || key == nil {
		return false
	}
	switch {
	case key.SiteID == keysDomain.MasterKeySiteID:
		return false
	case key.SiteID == client.SiteID:
		return true
	case key.SiteID == keysDomain.AdvertisingTokenSiteID:
		return true
	}
	rule, ok := acl.Rule(key.SiteID)
	if !ok {
		return false
	}
	return rule.Allows(client.SiteID)
}

// Accessible filters keys down to the ones client may use, preserving order.
func Accessible(
	client *authDomain.Client,
	keys []*keysDomain.EncryptionKey,
	acl *keysDomain.ACLSnapshot,
) []*keysDomain.EncryptionKey {
	out := make([]*keysDomain.EncryptionKey, 0, len(keys))
	for _, k := range keys {
		if CanAccess(client, k, acl) {
			out = append(out, k)
		}
	}
	return out
}
