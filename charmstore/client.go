// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charmstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/juju/errors"
	"github.com/kr/pretty"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/macaroon.v2"

	"github.com/juju/csclient/charmstore/path"
	"github.com/juju/csclient/charmstore/transport"
)

// JSON is the MIME type of structured charm store responses.
const JSON = "application/json"

// Client talks to a single charm store. Its only mutable state is the
// macaroon set; requests must not run concurrently with SetMacaroons.
type Client struct {
	path      path.Path
	requester *APIRequester
	logger    Logger
	tracer    trace.Tracer
	header    http.Header
	macaroons string
}

// NewClient returns a client for the charm store described by cfg.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	cfg = cfg.withDefaults()
	base, err := path.Parse(cfg.URL)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Client{
		path:      base,
		requester: NewAPIRequester(cfg.Transport, cfg.Logger, cfg.Recorder, cfg.Clock),
		logger:    cfg.Logger,
		tracer:    cfg.Tracer,
		header:    cfg.Metadata.header(),
	}, nil
}

// URL returns the root URL of the charm store API.
func (c *Client) URL() string {
	return c.path.String()
}

// Entity returns the meta/any information of a charm or bundle.
func (c *Client) Entity(ctx context.Context, ref Ref, opts EntityOptions) (*transport.EntityResponse, error) {
	entity, err := c.entityPath(ref)
	if err != nil {
		return nil, errors.Trace(err)
	}
	rawQuery, err := encodeQuery(opts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var resp transport.EntityResponse
	p := c.path.Join(entity, "meta", "any").Query(rawQuery)
	if err := c.getJSON(ctx, "entity", p, identityAbsent, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Charm returns the meta/any information of a charm.
func (c *Client) Charm(ctx context.Context, ref Ref) (*transport.EntityResponse, error) {
	return c.Entity(ctx, ref, EntityOptions{})
}

// Bundle returns the meta/any information of a bundle.
func (c *Client) Bundle(ctx context.Context, ref Ref) (*transport.EntityResponse, error) {
	return c.Entity(ctx, ref, EntityOptions{})
}

// Entities looks up several entities with one request and returns the
// decoded mapping, keyed by the ids as sent. Values are whatever JSON the
// store returned for each id. If any of them does not exist the whole
// request fails with an *EntityNotFoundError.
func (c *Client) Entities(ctx context.Context, refs []Ref) (map[string]interface{}, error) {
	ids := make([]string, len(refs))
	for i, ref := range refs {
		id, err := c.entityPath(ref)
		if err != nil {
			return nil, errors.Trace(err)
		}
		ids[i] = id
	}
	result := make(map[string]interface{})
	if len(ids) == 0 {
		return result, nil
	}
	p := c.path.Join("meta", "any").Query(entitiesQueryString(ids))
	if err := c.getJSON(ctx, "entities", p, identityAbsent, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// EntityID returns the canonical id of the entity, resolving any
// missing series or revision.
func (c *Client) EntityID(ctx context.Context, ref Ref) (string, error) {
	entity, err := c.entityPath(ref)
	if err != nil {
		return "", errors.Trace(err)
	}
	var resp transport.EntityResponse
	if err := c.getJSON(ctx, "entity-id", c.path.Join(entity, "meta", "any"), identityAbsent, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Config returns the configuration options of a charm.
func (c *Client) Config(ctx context.Context, ref Ref) (*transport.CharmConfig, error) {
	entity, err := c.entityPath(ref)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var resp transport.CharmConfig
	if err := c.getJSON(ctx, "config", c.path.Join(entity, "meta", "charm-config"), identityAbsent, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Manifest returns the list of files in the entity archive.
func (c *Client) Manifest(ctx context.Context, ref Ref) ([]transport.ManifestFile, error) {
	entity, err := c.entityPath(ref)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var files []transport.ManifestFile
	if err := c.getJSON(ctx, "manifest", c.path.Join(entity, "meta", "manifest"), assetAbsent, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// ArchiveURL returns the URL of the entity archive, after checking that
// the entity exists.
func (c *Client) ArchiveURL(ctx context.Context, ref Ref) (string, error) {
	if _, err := c.Manifest(ctx, ref); err != nil {
		return "", err
	}
	return c.path.Join(EntityPath(ref), "archive").String(), nil
}

// Files returns the archive URL of every file in the entity, keyed by
// file name.
func (c *Client) Files(ctx context.Context, ref Ref) (map[string]string, error) {
	manifest, err := c.Manifest(ctx, ref)
	if err != nil {
		return nil, err
	}
	files := make(map[string]string, len(manifest))
	for _, file := range manifest {
		files[file.Name] = c.ArchiveFileURL(ref, file.Name)
	}
	return files, nil
}

// FileURL returns the archive URL of a single file. The file must be
// listed in the entity manifest.
func (c *Client) FileURL(ctx context.Context, ref Ref, filename string) (string, error) {
	manifest, err := c.Manifest(ctx, ref)
	if err != nil {
		return "", err
	}
	fileURL := c.ArchiveFileURL(ref, filename)
	for _, file := range manifest {
		if file.Name == filename {
			return fileURL, nil
		}
	}
	return "", &EntityNotFoundError{URL: fileURL}
}

// FileContent returns the content of a single archive file. Files not
// listed in the manifest are not requested.
func (c *Client) FileContent(ctx context.Context, ref Ref, filename string) ([]byte, error) {
	if _, err := c.FileURL(ctx, ref, filename); err != nil {
		return nil, err
	}
	p := c.path.Join(EntityPath(ref), "archive", filename)
	return c.getRaw(ctx, "file", p, assetAbsent)
}

// Search returns the entities matching the text. An empty text is sent
// as such and matches every entity.
func (c *Client) Search(ctx context.Context, text string, params SearchParams) ([]transport.EntityResult, error) {
	rawQuery, err := searchQueryString(&text, params)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return c.results(ctx, "search", c.path.Join("search").Query(rawQuery))
}

// List returns the entities matching the filter.
func (c *Client) List(ctx context.Context, params ListParams) ([]transport.EntityResult, error) {
	rawQuery, err := encodeQuery(params)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return c.results(ctx, "list", c.path.Join("list").Query(rawQuery))
}

// Interface directions accepted by FetchInterfaces.
const (
	Requires = "requires"
	Provides = "provides"
)

// FetchInterfaces searches for the entities that require or provide
// the named relation interface.
func (c *Client) FetchInterfaces(ctx context.Context, iface, way string) ([]transport.EntityResult, error) {
	var params SearchParams
	switch way {
	case Requires:
		params.Requires = iface
	case Provides:
		params.Provides = iface
	default:
		return nil, errors.NotValidf("interface direction %q", way)
	}
	rawQuery, err := searchQueryString(nil, params)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return c.results(ctx, "interfaces", c.path.Join("search").Query(rawQuery))
}

func (c *Client) results(ctx context.Context, op string, p path.Path) ([]transport.EntityResult, error) {
	var resp transport.SearchResponse
	if err := c.getJSON(ctx, op, p, neverAbsent, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []transport.EntityResult{}, nil
	}
	return resp.Results, nil
}

// CharmIconURL returns the URL of the charm icon.
func (c *Client) CharmIconURL(ref Ref) string {
	return c.path.Join(EntityPath(ref), "icon.svg").String()
}

// BundleVisualizationURL returns the URL of the bundle diagram.
func (c *Client) BundleVisualizationURL(ref Ref) string {
	return c.path.Join(EntityPath(ref), "diagram.svg").String()
}

// EntityReadmeURL returns the URL of the entity README.
func (c *Client) EntityReadmeURL(ref Ref) string {
	return c.path.Join(EntityPath(ref), "readme").String()
}

// ArchiveFileURL returns the URL of a file in the entity archive without
// checking that it exists.
func (c *Client) ArchiveFileURL(ref Ref, filename string) string {
	return c.path.Join(EntityPath(ref), "archive", filename).String()
}

// ResourceURL returns the URL of a revision of a charm resource.
func (c *Client) ResourceURL(ref Ref, name string, revision int) string {
	return c.path.Join(EntityPath(ref), "resource", name, strconv.Itoa(revision)).String()
}

// CharmIcon returns the SVG icon of a charm.
func (c *Client) CharmIcon(ctx context.Context, ref Ref) ([]byte, error) {
	entity, err := c.entityPath(ref)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return c.getRaw(ctx, "icon", c.path.Join(entity, "icon.svg"), assetAbsent)
}

// BundleVisualization returns the SVG diagram of a bundle.
func (c *Client) BundleVisualization(ctx context.Context, ref Ref) ([]byte, error) {
	entity, err := c.entityPath(ref)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return c.getRaw(ctx, "diagram", c.path.Join(entity, "diagram.svg"), assetAbsent)
}

// EntityReadme returns the README of a charm or bundle.
func (c *Client) EntityReadme(ctx context.Context, ref Ref) (string, error) {
	entity, err := c.entityPath(ref)
	if err != nil {
		return "", errors.Trace(err)
	}
	data, err := c.getRaw(ctx, "readme", c.path.Join(entity, "readme"), assetAbsent)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Debug returns the status checks reported by the charm store.
func (c *Client) Debug(ctx context.Context) (map[string]interface{}, error) {
	var status map[string]interface{}
	if err := c.getJSON(ctx, "debug", c.path.Join("debug", "status"), neverAbsent, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// FetchMacaroon returns the raw body of the macaroon endpoint. It is a
// JSON encoded macaroon that must be discharged before use.
func (c *Client) FetchMacaroon(ctx context.Context) (string, error) {
	data, err := c.getRaw(ctx, "macaroon", c.path.Join("macaroon"), assetAbsent)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Macaroon fetches and decodes the macaroon issued by the store.
func (c *Client) Macaroon(ctx context.Context) (*macaroon.Macaroon, error) {
	raw, err := c.FetchMacaroon(ctx)
	if err != nil {
		return nil, err
	}
	var m macaroon.Macaroon
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, errors.Annotate(err, "cannot decode macaroon")
	}
	return &m, nil
}

func (c *Client) entityPath(ref Ref) (string, error) {
	entity := EntityPath(ref)
	if entity == "" {
		return "", errors.NotValidf("empty entity reference")
	}
	return entity, nil
}

func (c *Client) getJSON(ctx context.Context, op string, p path.Path, absent absence, result interface{}) (err error) {
	ctx, span := c.startSpan(ctx, op, p)
	defer func() { endSpan(span, err) }()

	resp, err := c.get(ctx, p, JSON, absent)
	if err != nil {
		return err
	}
	defer drainAndClose(resp)

	if err := decodeJSON(c.logger, p.String(), resp, result); err != nil {
		return err
	}
	if c.logger.IsTraceEnabled() {
		c.logger.Tracef("%s %s unmarshalled: %s", op, p, pretty.Sprint(result))
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, op string, p path.Path, absent absence) (_ []byte, err error) {
	ctx, span := c.startSpan(ctx, op, p)
	defer func() { endSpan(span, err) }()

	resp, err := c.get(ctx, p, "", absent)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp)
	return readBody(c.logger, p.String(), resp)
}

// get performs a GET request and classifies any non 2xx outcome. On
// success the caller owns the response body.
func (c *Client) get(ctx context.Context, p path.Path, accept string, absent absence) (*http.Response, error) {
	rawURL := p.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Annotate(err, "can not make new request")
	}
	req.Header = c.composeHeaders(accept)
	c.addMacaroons(req)

	c.logger.Debugf("GET %s", rawURL)
	resp, err := c.requester.Do(req)
	if err != nil {
		return nil, classifyTransportError(c.logger, rawURL, err)
	}
	if isSuccess(resp.StatusCode) {
		return resp, nil
	}
	defer drainAndClose(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(c.logger, rawURL, err)
	}
	return nil, classifyStatus(c.logger, rawURL, resp.StatusCode, body, absent)
}

// composeHeaders creates a new set of headers from scratch.
func (c *Client) composeHeaders(accept string) http.Header {
	result := make(http.Header)
	if accept != "" {
		result.Set("Accept", accept)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			result.Add(k, v)
		}
	}
	return result
}

func (c *Client) startSpan(ctx context.Context, op string, p path.Path) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "charmstore."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("charmstore.request", op),
			attribute.String("charmstore.url", p.String()),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
