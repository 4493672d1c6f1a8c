// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package charmstore provides a client for the charm store HTTP API.
//
// Every operation issues a single GET request and normalises the outcome
// into one of two error kinds: *EntityNotFoundError when the store reports
// the entity is absent, and *ServerError for everything else, including
// transport timeouts. The client performs no caching and no retries.
package charmstore
