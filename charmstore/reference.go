// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charmstore

import (
	"strings"

	"github.com/juju/csclient/charm"
)

// Ref identifies a charm or bundle. It is satisfied by StringRef for raw
// identifiers and by *charm.URL for parsed ones.
type Ref interface {
	// Path returns the entity path as used in request URLs.
	Path() string
}

// StringRef is a raw entity identifier such as "precise/mysql-1" or
// "cs:~user/wordpress".
type StringRef string

// Path implements Ref.
func (r StringRef) Path() string {
	return string(r)
}

var _ Ref = (*charm.URL)(nil)

// EntityPath normalises a reference into the path segment used to build
// request URLs: the "cs:" schema and surrounding slashes are removed.
// Applying it to its own output yields the same value. A nil reference
// gives an empty path.
func EntityPath(ref Ref) string {
	if ref == nil {
		return ""
	}
	if u, ok := ref.(*charm.URL); ok && u == nil {
		return ""
	}
	p := ref.Path()
	for {
		next := strings.TrimSpace(p)
		next = strings.TrimPrefix(next, charm.CharmStore+":")
		next = strings.Trim(next, "/")
		if next == p {
			return p
		}
		p = next
	}
}
