package domain

import "fmt"

// ACLMode tells how a sharing rule's site list is interpreted.
type ACLMode string

const (
	// ACLWhitelist grants access only to the listed sites.
	ACLWhitelist ACLMode = "whitelist"
	// ACLBlacklist grants access to every site except the listed ones.
	ACLBlacklist ACLMode = "blacklist"
)

// ParseACLMode parses a stored mode.
func ParseACLMode(s string) (ACLMode, error) {
	switch ACLMode(s) {
	case ACLWhitelist, ACLBlacklist:
		return ACLMode(s), nil
	default:
		return "", fmt.Errorf("unknown acl mode %q", s)
	}
}

// KeyACL is the sharing rule a site sets for its own keys.
type KeyACL struct {
	SiteID int64
	Mode   ACLMode
	Sites  map[int64]struct{}
}

// NewKeyACL builds a rule from a list of site ids.
func NewKeyACL(siteID int64, mode ACLMode, sites []int64) KeyACL {
	set := make(map[int64]struct{}, len(sites))
	for _, s := range sites {
		set[s] = struct{}{}
	}
	return KeyACL{SiteID: siteID, Mode: mode, Sites: set}
}

// Allows reports whether clientSiteID may use keys covered by this rule.
func (a KeyACL) Allows(clientSiteID int64) bool {
	_, listed := a.Sites[clientSiteID]
	if a.Mode == ACLBlacklist {
		return !listed
	}
	return listed
}

// ACLSnapshot is an immutable set of sharing rules keyed by the owning site.
type ACLSnapshot struct {
	rules map[int64]KeyACL
}

// NewACLSnapshot builds a snapshot from rules.
func NewACLSnapshot(rules []KeyACL) *ACLSnapshot {
	s := &ACLSnapshot{rules: make(map[int64]KeyACL, len(rules))}
	for _, r := range rules {
		s.rules[r.SiteID] = r
	}
	return s
}

// Rule returns the sharing rule of ownerSiteID.
func (s *ACLSnapshot) Rule(ownerSiteID int64) (KeyACL, bool) {
	if s == nil {
		return KeyACL{}, false
	}
	r, ok := s.rules[ownerSiteID]
	return r, ok
}

// Len returns the number of rules.
func (s *ACLSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}
