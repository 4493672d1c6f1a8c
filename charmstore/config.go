// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charmstore

import (
	"net/http"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/juju/csclient/charmstore/path"
)

const (
	// DefaultServerURL is the root of the public charm store.
	DefaultServerURL = "https://api.jujucharms.com/charmstore/"

	// APIVersion is the charm store API version the client speaks.
	APIVersion = "5"

	// DefaultTimeout bounds each request made by the default transport.
	DefaultTimeout = 30 * time.Second

	tracerName = "github.com/juju/csclient/charmstore"
)

// DefaultURL returns the versioned URL of the public charm store.
func DefaultURL() string {
	return DefaultServerURL + "v" + APIVersion
}

// Logger is the subset of loggo.Logger used by the client.
type Logger interface {
	IsTraceEnabled() bool
	Errorf(string, ...interface{})
	Debugf(string, ...interface{})
	Tracef(string, ...interface{})
}

// Config holds the dependencies and settings of a Client. Zero values are
// replaced by defaults when the client is created.
type Config struct {
	// URL is the versioned root of the charm store API. It defaults to
	// DefaultURL(). A trailing slash is ignored.
	URL string

	// Transport performs the HTTP requests. It defaults to an
	// http.Client bounded by DefaultTimeout.
	Transport Transport

	// Logger receives diagnostics. It defaults to the "charmstore"
	// loggo module.
	Logger Logger

	// Recorder, if set, observes every request and its outcome.
	Recorder RequestRecorder

	// Clock is used to time requests for the Recorder.
	Clock clock.Clock

	// Tracer creates a span for every operation. It defaults to the
	// tracer of the global otel provider.
	Tracer trace.Tracer

	// Metadata, if not zero, is sent with every request.
	Metadata JujuMetadata
}

// Validate checks the configuration, ignoring fields that have defaults.
func (c Config) Validate() error {
	if c.URL == "" {
		return nil
	}
	if _, err := path.Parse(c.URL); err != nil {
		return errors.Annotate(err, "invalid charm store URL")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = DefaultURL()
	}
	if c.Transport == nil {
		c.Transport = &http.Client{Timeout: DefaultTimeout}
	}
	if c.Logger == nil {
		c.Logger = loggo.GetLogger("charmstore")
	}
	if c.Clock == nil {
		c.Clock = clock.WallClock
	}
	if c.Tracer == nil {
		c.Tracer = otel.Tracer(tracerName)
	}
	return c
}

// JujuMetadataHTTPHeader names the header identifying the Juju model
// requests are made for.
const JujuMetadataHTTPHeader = "Juju-Metadata"

// JujuMetadata identifies the Juju model on whose behalf the client
// talks to the store.
type JujuMetadata struct {
	ModelUUID string
}

// header returns the Juju-Metadata values to send, or an empty header
// when no model is set. The store knows models as environments.
func (meta JujuMetadata) header() http.Header {
	header := make(http.Header)
	if meta.ModelUUID != "" {
		header.Add(JujuMetadataHTTPHeader, "environment_uuid="+meta.ModelUUID)
	}
	return header
}
