// Package domain defines API clients, their roles and the client snapshot used to
// authenticate requests.
package domain

import "fmt"

// Role grants access to a group of endpoints.
type Role string

const (
	// RoleGenerator allows issuing token triples.
	RoleGenerator Role = "generator"

	// RoleMapper allows mapping identifiers to advertising ids and reading bucket rotations.
	RoleMapper Role = "mapper"

	// RoleIDReader allows listing the encryption keys the client's site can use.
	RoleIDReader Role = "id_reader"

	// RoleOptOut allows recording opt-outs.
	RoleOptOut Role = "optout"
)

// ParseRole parses a role name.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleGenerator, RoleMapper, RoleIDReader, RoleOptOut:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidRole, s)
	}
}

// ParseRoles parses a list of role names, dropping duplicates.
func ParseRoles(names []string) ([]Role, error) {
	roles := make([]Role, 0, len(names))
	seen := make(map[Role]struct{}, len(names))
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		roles = append(roles, r)
	}
	return roles, nil
}
