// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package charm parses the references used to identify charms and
// bundles published in the charm store.
package charm
