// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package transport

// EntityResponse is the body of a meta/any request. Meta holds one
// entry for each requested include.
type EntityResponse struct {
	ID   string                 `json:"Id"`
	Meta map[string]interface{} `json:"Meta,omitempty"`
}

// EntityResult is a single entry of a search or list response.
type EntityResult struct {
	ID   string                 `json:"Id"`
	Meta map[string]interface{} `json:"Meta,omitempty"`
}

// SearchResponse is the body of the search and list endpoints.
type SearchResponse struct {
	Results []EntityResult `json:"Results"`
}

// ManifestFile describes one file of a charm or bundle archive.
type ManifestFile struct {
	Name string `json:"Name"`
	Size int64  `json:"Size,omitempty"`
	Hash string `json:"Hash,omitempty"`
}

// CharmConfig is the body of the meta/charm-config endpoint.
type CharmConfig struct {
	Options map[string]ConfigOption `json:"Options"`
}

// ConfigOption describes one charm configuration option.
type ConfigOption struct {
	Type        string      `json:"Type"`
	Description string      `json:"Description,omitempty"`
	Default     interface{} `json:"Default,omitempty"`
}
