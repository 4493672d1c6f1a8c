// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

const (
	// CharmStore is the schema of entities published in the charm store.
	CharmStore = "cs"

	// Local is the schema of entities deployed from a local repository.
	Local = "local"
)

var (
	validUser   = regexp.MustCompile(`^[a-z0-9][a-zA-Z0-9+.-]+$`)
	validSeries = regexp.MustCompile(`^[a-z]+([a-z0-9]+)?$`)
	validName   = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]*[a-z][a-z0-9]*)*$`)
)

// URL represents a charm or bundle location in the charm store.
//
//	cs:~joe/oneiric/wordpress
//	cs:oneiric/wordpress-42
//	cs:wordpress
//	precise/mysql-1
type URL struct {
	Schema   string // "cs" or "local".
	User     string // "joe".
	Series   string // "oneiric"; empty for multi-series charms and bundles.
	Name     string // "wordpress".
	Revision int    // -1 if unset, N otherwise.
}

// ParseURL parses the provided charm or bundle reference. The schema
// defaults to "cs" when omitted.
func ParseURL(s string) (*URL, error) {
	u := &URL{
		Schema:   CharmStore,
		Revision: -1,
	}
	rest := s
	if i := strings.Index(rest, ":"); i >= 0 {
		u.Schema, rest = rest[:i], rest[i+1:]
		if u.Schema != CharmStore && u.Schema != Local {
			return nil, errors.NotValidf("schema %q in URL %q", u.Schema, s)
		}
	}
	parts := strings.Split(rest, "/")
	if strings.HasPrefix(parts[0], "~") {
		if u.Schema == Local {
			return nil, errors.NotValidf("local URL %q with user name", s)
		}
		u.User = parts[0][1:]
		if !validUser.MatchString(u.User) {
			return nil, errors.NotValidf("user name %q in URL %q", u.User, s)
		}
		parts = parts[1:]
	}
	switch len(parts) {
	case 1:
	case 2:
		u.Series, parts = parts[0], parts[1:]
		if !validSeries.MatchString(u.Series) {
			return nil, errors.NotValidf("series name %q in URL %q", u.Series, s)
		}
	default:
		return nil, errors.NotValidf("charm or bundle URL %q", s)
	}
	u.Name = parts[0]
	if i := strings.LastIndex(u.Name, "-"); i > 0 {
		if rev, err := strconv.Atoi(u.Name[i+1:]); err == nil && rev >= 0 {
			u.Name, u.Revision = u.Name[:i], rev
		}
	}
	if !validName.MatchString(u.Name) {
		return nil, errors.NotValidf("name %q in URL %q", u.Name, s)
	}
	return u, nil
}

// MustParseURL works like ParseURL, but panics in case of errors.
func MustParseURL(s string) *URL {
	u, err := ParseURL(s)
	if err != nil {
		panic(err)
	}
	return u
}

// WithRevision returns a copy of the URL with the given revision. A
// negative revision removes it.
func (u *URL) WithRevision(revision int) *URL {
	other := *u
	if revision < 0 {
		revision = -1
	}
	other.Revision = revision
	return &other
}

// Path returns the path of the entity as it appears in charm store
// request URLs, without the schema.
func (u *URL) Path() string {
	var parts []string
	if u.User != "" {
		parts = append(parts, "~"+u.User)
	}
	if u.Series != "" {
		parts = append(parts, u.Series)
	}
	name := u.Name
	if u.Revision >= 0 {
		name = fmt.Sprintf("%s-%d", name, u.Revision)
	}
	return strings.Join(append(parts, name), "/")
}

// String returns the display form of the URL, including the schema.
func (u *URL) String() string {
	return u.Schema + ":" + u.Path()
}
