// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"strings"
)

// stringsValue is a flag that may be given several times, and whose
// values may also be comma separated.
type stringsValue []string

func (v *stringsValue) Set(s string) error {
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*v = append(*v, item)
		}
	}
	return nil
}

func (v *stringsValue) String() string {
	return strings.Join(*v, ",")
}
