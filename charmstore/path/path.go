// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package path

import (
	"net/url"
	"strings"

	"github.com/juju/errors"
)

// Path defines a absolute path for calling requests to the server.
type Path struct {
	base *url.URL
}

// MakePath creates a URL for queries to a server.
func MakePath(base *url.URL) Path {
	u := *base
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return Path{
		base: &u,
	}
}

// Parse parses a raw base URL into a Path. Any trailing slash is dropped.
func Parse(raw string) (Path, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Path{}, errors.Trace(err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Path{}, errors.NotValidf("base URL %q", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return Path{}, errors.NotValidf("base URL %q with query or fragment", raw)
	}
	return MakePath(u), nil
}

// Join will sum path names onto a base URL and ensure it constructs a URL
// that is valid. Leading and trailing slashes on each element are
// dropped and empty elements are skipped, so the result never contains
// a double slash.
// Example:
//   - http://baseurl/name0/name1/
func (p Path) Join(names ...string) Path {
	u := *p.base
	segments := []string{u.Path}
	for _, name := range names {
		if name = strings.Trim(name, "/"); name != "" {
			segments = append(segments, name)
		}
	}
	u.Path = strings.Join(segments, "/")
	return Path{
		base: &u,
	}
}

// Query returns a copy of the path carrying the already encoded query
// string. The string is used verbatim so callers control parameter order.
func (p Path) Query(rawQuery string) Path {
	u := *p.base
	u.RawQuery = rawQuery
	return Path{
		base: &u,
	}
}

// URL returns a copy of the underlying URL.
func (p Path) URL() *url.URL {
	u := *p.base
	return &u
}

// String returns a stringified version of the Path.
// Under the hood this calls the url.URL#String method.
func (p Path) String() string {
	return p.base.String()
}
