// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charmstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/juju/csclient/charmstore/transport"
)

// Transport defines a type for making the actual request.
type Transport interface {
	// Do performs the *http.Request and returns a *http.Response or an error
	// if it fails to construct the transport.
	Do(*http.Request) (*http.Response, error)
}

// RequestRecorder is implemented by types that can record information about
// successful and unsuccessful HTTP requests.
type RequestRecorder interface {
	// Record an outgoing request which produced an http.Response.
	Record(method string, url *url.URL, res *http.Response, rtt time.Duration)

	// RecordError records an outgoing request which returned back an error.
	RecordError(method string, url *url.URL, err error)
}

// APIRequester wraps the transport with request recording and trace
// level dumps of the exchanged messages.
type APIRequester struct {
	transport Transport
	logger    Logger
	recorder  RequestRecorder
	clock     clock.Clock
}

// NewAPIRequester creates a new APIRequester. The recorder may be nil.
func NewAPIRequester(transport Transport, logger Logger, recorder RequestRecorder, clock clock.Clock) *APIRequester {
	return &APIRequester{
		transport: transport,
		logger:    logger,
		recorder:  recorder,
		clock:     clock,
	}
}

// Do performs the *http.Request and returns a *http.Response or an error
// if it fails to construct the transport. Status codes are not
// interpreted here.
func (t *APIRequester) Do(req *http.Request) (*http.Response, error) {
	if t.logger.IsTraceEnabled() {
		if data, err := httputil.DumpRequest(req, true); err == nil {
			t.logger.Tracef("%s request %s", req.Method, data)
		} else {
			t.logger.Tracef("%s request DumpRequest error %s", req.Method, err.Error())
		}
	}

	start := t.clock.Now()
	resp, err := t.transport.Do(req)
	if err != nil {
		if t.recorder != nil {
			t.recorder.RecordError(req.Method, req.URL, err)
		}
		return nil, err
	}
	if t.recorder != nil {
		t.recorder.Record(req.Method, req.URL, resp, t.clock.Now().Sub(start))
	}

	if t.logger.IsTraceEnabled() {
		if data, err := httputil.DumpResponse(resp, true); err == nil {
			t.logger.Tracef("%s response %s", req.Method, data)
		} else {
			t.logger.Tracef("%s response DumpResponse error %s", req.Method, err.Error())
		}
	}
	return resp, nil
}

// absence decides which status codes mean the requested entity does not
// exist.
type absence func(code int) bool

var (
	// identityAbsent applies to entity lookups. The store rejects some
	// unknown identities with 407 rather than 404.
	identityAbsent absence = func(code int) bool {
		return code == http.StatusNotFound || code == http.StatusProxyAuthRequired
	}

	// assetAbsent applies to files, icons, diagrams, readmes, manifests
	// and the macaroon endpoint.
	assetAbsent absence = func(code int) bool {
		return code == http.StatusNotFound
	}

	// neverAbsent applies to search, list and debug requests, which fail
	// with a ServerError whatever the status.
	neverAbsent absence = func(int) bool {
		return false
	}
)

func isSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

// classifyStatus turns a non 2xx response into an error. Server errors
// are logged before they are returned.
func classifyStatus(logger Logger, rawURL string, code int, body []byte, absent absence) error {
	if absent(code) {
		return &EntityNotFoundError{URL: rawURL}
	}
	message := fmt.Sprintf("%s status code:(%d) message: %s", rawURL, code, body)
	logger.Errorf("Error during request: %s", message)
	serverErr := &ServerError{
		Code:    code,
		Message: message,
	}
	if apiErr, ok := transport.DecodeAPIError(body); ok {
		serverErr.APIError = &apiErr
	}
	return serverErr
}

// classifyTransportError turns a failure to obtain a response into a
// ServerError. Timeouts are detected from the error, never from a status.
func classifyTransportError(logger Logger, rawURL string, err error) error {
	if isTimeout(err) {
		message := fmt.Sprintf("Request timed out: %s", rawURL)
		logger.Errorf("Error during request: %s", message)
		return &ServerError{
			Message: message,
			timeout: true,
			cause:   err,
		}
	}
	message := fmt.Sprintf("%s: %v", rawURL, err)
	logger.Errorf("Error during request: %s", message)
	return &ServerError{
		Message: message,
		cause:   err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// decodeJSON parses the body of a successful response into result,
// whatever the Content-Type the store labelled it with. Failing to read
// the body is a transport failure; a body that is not valid JSON is a
// ServerError carrying the status code.
func decodeJSON(logger Logger, rawURL string, resp *http.Response, result interface{}) error {
	data, err := readBody(logger, rawURL, resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, result); err != nil {
		message := fmt.Sprintf("%s status code:(%d) message: cannot decode response: %v", rawURL, resp.StatusCode, err)
		logger.Errorf("Error during request: %s", message)
		return &ServerError{
			Code:    resp.StatusCode,
			Message: message,
			cause:   err,
		}
	}
	return nil
}

// readBody returns the raw body of a successful response.
func readBody(logger Logger, rawURL string, resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(logger, rawURL, err)
	}
	return data, nil
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
