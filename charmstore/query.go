// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charmstore

import (
	"net/url"

	"github.com/google/go-querystring/query"
	"github.com/juju/errors"
)

// ListParams filters the entities returned by List and Search. Empty
// fields are left out of the request.
type ListParams struct {
	// Includes names the meta endpoints to return alongside each result.
	// Each value is sent as its own include parameter.
	Includes []string `url:"include,omitempty"`

	// Limit caps the number of results.
	Limit int `url:"limit,omitempty"`

	// Type restricts results to "charm" or "bundle".
	Type string `url:"type,omitempty"`

	// Tags restricts results to entities with any of the tags.
	Tags []string `url:"tags,comma,omitempty"`

	// Series restricts results to the given series.
	Series []string `url:"series,comma,omitempty"`

	// Owner restricts results to entities owned by the user.
	Owner string `url:"owner,omitempty"`

	// Promulgated restricts results to promulgated entities.
	Promulgated bool `url:"promulgated,int,omitempty"`

	// Sort orders the results server side, e.g. "-downloads".
	Sort string `url:"sort,omitempty"`

	// Channel selects the channel to search, e.g. "edge".
	Channel string `url:"channel,omitempty"`

	// Requires and Provides match entities by relation interface.
	Requires string `url:"requires,omitempty"`
	Provides string `url:"provides,omitempty"`
}

// SearchParams holds the parameters of a Search request.
type SearchParams struct {
	ListParams

	// Autocomplete matches the text as a prefix of entity names.
	Autocomplete bool `url:"autocomplete,int,omitempty"`
}

// EntityOptions selects the channel and extra meta data for an entity
// lookup.
type EntityOptions struct {
	Channel  string   `url:"channel,omitempty"`
	Includes []string `url:"include,omitempty"`
}

type searchQuery struct {
	Text *string `url:"text,omitempty"`
	SearchParams
}

// encodeQuery encodes query parameters with their keys in sorted order,
// so equivalent calls always produce identical query strings. Values are
// percent encoded and repeatable keys keep their original order.
func encodeQuery(params interface{}) (string, error) {
	values, err := query.Values(params)
	if err != nil {
		return "", errors.Annotate(err, "encoding query")
	}
	return values.Encode(), nil
}

// searchQueryString builds the query of a search request. A nil text is
// omitted while an empty one is sent as "text=".
func searchQueryString(text *string, params SearchParams) (string, error) {
	return encodeQuery(searchQuery{
		Text:         text,
		SearchParams: params,
	})
}

// entitiesQueryString builds the query of a batch meta/any request: the
// include=id parameter followed by one id parameter per entity.
func entitiesQueryString(ids []string) string {
	return "include=id&" + url.Values{"id": ids}.Encode()
}
