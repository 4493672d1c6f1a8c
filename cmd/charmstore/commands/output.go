// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"gopkg.in/yaml.v3"
)

// Formatter writes an arbitrary value to a writer.
type Formatter func(w io.Writer, value interface{}) error

// FormatYaml marshals value to yaml, unless value is nil.
func FormatYaml(w io.Writer, value interface{}) error {
	if value == nil {
		return nil
	}
	data, err := yaml.Marshal(value)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = w.Write(data)
	return errors.Trace(err)
}

// FormatJson marshals value to a single line of JSON.
func FormatJson(w io.Writer, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return errors.Trace(err)
}

// formatterValue implements gnuflag.Value for the --format flag.
type formatterValue struct {
	name       string
	formatters map[string]Formatter
}

// newFormatterValue returns a new formatterValue. The initial Formatter name
// must be present in formatters.
func newFormatterValue(initial string, formatters map[string]Formatter) *formatterValue {
	v := &formatterValue{formatters: formatters}
	if err := v.Set(initial); err != nil {
		panic(err)
	}
	return v
}

// Set stores the chosen formatter name in v.name.
func (v *formatterValue) Set(value string) error {
	if v.formatters[value] == nil {
		return errors.Errorf("unknown format: %s", value)
	}
	v.name = value
	return nil
}

// String returns the chosen formatter name.
func (v *formatterValue) String() string {
	return v.name
}

// doc returns documentation for the --format flag.
func (v *formatterValue) doc() string {
	choices := make([]string, 0, len(v.formatters))
	for name := range v.formatters {
		choices = append(choices, name)
	}
	sort.Strings(choices)
	return "specify output format (" + strings.Join(choices, "|") + ")"
}

// Output is responsible for interpreting output-related command line flags
// and writing a value to stdout as directed.
type Output struct {
	formatter *formatterValue
}

// AddFlags injects appropriate command line flags into f.
func (c *Output) AddFlags(f *gnuflag.FlagSet, name string, formatters map[string]Formatter) {
	c.formatter = newFormatterValue(name, formatters)
	f.Var(c.formatter, "format", c.formatter.doc())
}

// Name returns the name of the selected formatter.
func (c *Output) Name() string {
	return c.formatter.name
}

// Write formats and outputs value as directed by the --format flag.
func (c *Output) Write(ctx *Context, value interface{}) error {
	return c.formatter.formatters[c.formatter.name](ctx.Stdout, value)
}
