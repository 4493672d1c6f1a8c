// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charmstore_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"
	gc "gopkg.in/check.v1"

	"github.com/juju/csclient/charmstore"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

type RequesterSuite struct {
	testing.IsolationSuite

	logs   *loggo.TestWriter
	logger loggo.Logger
}

var _ = gc.Suite(&RequesterSuite{})

func (s *RequesterSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	logContext := loggo.NewContext(loggo.DEBUG)
	s.logs = &loggo.TestWriter{}
	err := logContext.AddWriter("test", s.logs)
	c.Assert(err, jc.ErrorIsNil)
	s.logger = logContext.GetLogger("charmstore")
}

func (s *RequesterSuite) newClient(c *gc.C, transport charmstore.Transport, cfg charmstore.Config) *charmstore.Client {
	cfg.URL = "http://example.com/v5"
	cfg.Transport = transport
	cfg.Logger = s.logger
	client, err := charmstore.NewClient(cfg)
	c.Assert(err, jc.ErrorIsNil)
	return client
}

func okResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func (s *RequesterSuite) TestSearchTimeout(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	transport := NewMockTransport(ctrl)
	transport.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		return nil, &url.Error{Op: "Get", URL: req.URL.String(), Err: timeoutError{}}
	})

	client := s.newClient(c, transport, charmstore.Config{})
	_, err := client.Search(context.Background(), "foo", charmstore.SearchParams{})
	c.Assert(err, gc.FitsTypeOf, &charmstore.ServerError{})
	serverErr := err.(*charmstore.ServerError)
	c.Assert(serverErr.Message, jc.Contains, "Request timed out")
	c.Assert(serverErr.Code, gc.Equals, 0)
	c.Assert(serverErr.Timeout(), jc.IsTrue)
	c.Assert(errors.Is(err, errors.Timeout), jc.IsTrue)

	var urlErr *url.Error
	c.Assert(errors.As(err, &urlErr), jc.IsTrue)
	c.Assert(urlErr.URL, gc.Equals, "http://example.com/v5/search?text=foo")
}

// timeoutReader fails every read with a timeout.
type timeoutReader struct{}

func (timeoutReader) Read([]byte) (int, error) { return 0, timeoutError{} }

func (s *RequesterSuite) TestBodyReadTimeout(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	transport := NewMockTransport(ctrl)
	transport.EXPECT().Do(gomock.Any()).DoAndReturn(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(timeoutReader{}),
		}, nil
	}).Times(2)

	client := s.newClient(c, transport, charmstore.Config{})
	_, err := client.Search(context.Background(), "foo", charmstore.SearchParams{})
	c.Assert(err, gc.FitsTypeOf, &charmstore.ServerError{})
	c.Assert(err, gc.ErrorMatches, `Request timed out: http://example.com/v5/search\?text=foo`)
	c.Assert(err.(*charmstore.ServerError).Code, gc.Equals, 0)
	c.Assert(errors.Is(err, errors.Timeout), jc.IsTrue)

	_, err = client.FetchMacaroon(context.Background())
	c.Assert(err, gc.ErrorMatches, `Request timed out: http://example.com/v5/macaroon`)
	c.Assert(errors.Is(err, errors.Timeout), jc.IsTrue)
}

func (s *RequesterSuite) TestDeadlineExceeded(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	transport := NewMockTransport(ctrl)
	transport.EXPECT().Do(gomock.Any()).Return(nil, context.DeadlineExceeded)

	client := s.newClient(c, transport, charmstore.Config{})
	_, err := client.Charm(context.Background(), charmstore.StringRef("wordpress"))
	c.Assert(err, gc.FitsTypeOf, &charmstore.ServerError{})
	c.Assert(err, gc.ErrorMatches, `Request timed out: http://example.com/v5/wordpress/meta/any`)
}

func (s *RequesterSuite) TestConnectionRefused(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	transport := NewMockTransport(ctrl)
	transport.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection refused"))

	client := s.newClient(c, transport, charmstore.Config{})
	_, err := client.List(context.Background(), charmstore.ListParams{})
	c.Assert(err, gc.FitsTypeOf, &charmstore.ServerError{})
	c.Assert(err.(*charmstore.ServerError).Timeout(), jc.IsFalse)
	c.Assert(errors.Is(err, errors.Timeout), jc.IsFalse)
	c.Assert(err, gc.ErrorMatches, `http://example.com/v5/list: connection refused`)
}

func (s *RequesterSuite) TestMacaroonCookie(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	var cookies [][]*http.Cookie
	transport := NewMockTransport(ctrl)
	transport.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		cookies = append(cookies, req.Cookies())
		return okResponse(resultsBody), nil
	}).Times(3)

	client := s.newClient(c, transport, charmstore.Config{})
	_, err := client.Search(context.Background(), "foo", charmstore.SearchParams{})
	c.Assert(err, jc.ErrorIsNil)

	client.SetMacaroonCookie("macaroon1.macaroon2")
	_, err = client.Search(context.Background(), "foo", charmstore.SearchParams{})
	c.Assert(err, jc.ErrorIsNil)
	_, err = client.List(context.Background(), charmstore.ListParams{})
	c.Assert(err, jc.ErrorIsNil)

	c.Assert(cookies, gc.HasLen, 3)
	c.Assert(cookies[0], gc.HasLen, 0)
	for _, sent := range cookies[1:] {
		c.Assert(sent, gc.HasLen, 1)
		c.Check(sent[0].Name, gc.Equals, "macaroon-storefront")
		c.Check(sent[0].Value, gc.Equals, "macaroon1.macaroon2")
	}
}

func (s *RequesterSuite) TestRecorder(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	clock := testclock.NewClock(time.Now())
	transport := NewMockTransport(ctrl)
	gomock.InOrder(
		transport.EXPECT().Do(gomock.Any()).DoAndReturn(func(*http.Request) (*http.Response, error) {
			clock.Advance(2 * time.Second)
			return okResponse(resultsBody), nil
		}),
		transport.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection refused")),
	)

	collector := charmstore.NewMetricsCollector()
	client := s.newClient(c, transport, charmstore.Config{
		Recorder: collector,
		Clock:    clock,
	})
	_, err := client.Search(context.Background(), "foo", charmstore.SearchParams{})
	c.Assert(err, jc.ErrorIsNil)
	_, err = client.Search(context.Background(), "foo", charmstore.SearchParams{})
	c.Assert(charmstore.IsServerError(err), jc.IsTrue)

	err = testutil.CollectAndCompare(collector, strings.NewReader(`
# HELP charmstore_client_requests_total The number of requests that received a response, by status code.
# TYPE charmstore_client_requests_total counter
charmstore_client_requests_total{code="200",method="GET"} 1
# HELP charmstore_client_request_errors_total The number of requests that failed without a response.
# TYPE charmstore_client_request_errors_total counter
charmstore_client_request_errors_total{method="GET"} 1
# HELP charmstore_client_request_duration_seconds The time taken to receive a response from the charm store.
# TYPE charmstore_client_request_duration_seconds histogram
charmstore_client_request_duration_seconds_bucket{method="GET",le="0.05"} 0
charmstore_client_request_duration_seconds_bucket{method="GET",le="0.1"} 0
charmstore_client_request_duration_seconds_bucket{method="GET",le="0.25"} 0
charmstore_client_request_duration_seconds_bucket{method="GET",le="0.5"} 0
charmstore_client_request_duration_seconds_bucket{method="GET",le="1"} 0
charmstore_client_request_duration_seconds_bucket{method="GET",le="2"} 1
charmstore_client_request_duration_seconds_bucket{method="GET",le="5"} 1
charmstore_client_request_duration_seconds_bucket{method="GET",le="10"} 1
charmstore_client_request_duration_seconds_bucket{method="GET",le="30"} 1
charmstore_client_request_duration_seconds_bucket{method="GET",le="+Inf"} 1
charmstore_client_request_duration_seconds_sum{method="GET"} 2
charmstore_client_request_duration_seconds_count{method="GET"} 1
`))
	c.Assert(err, jc.ErrorIsNil)
}

func (s *RequesterSuite) TestTracing(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	transport := NewMockTransport(ctrl)
	gomock.InOrder(
		transport.EXPECT().Do(gomock.Any()).Return(okResponse(`{"Id": "cs:wordpress-1"}`), nil),
		transport.EXPECT().Do(gomock.Any()).Return(&http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("")),
		}, nil),
	)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	client := s.newClient(c, transport, charmstore.Config{
		Tracer: provider.Tracer("test"),
	})
	_, err := client.EntityID(context.Background(), charmstore.StringRef("wordpress"))
	c.Assert(err, jc.ErrorIsNil)
	_, err = client.Charm(context.Background(), charmstore.StringRef("wordpress"))
	c.Assert(charmstore.IsEntityNotFound(err), jc.IsTrue)

	spans := recorder.Ended()
	c.Assert(spans, gc.HasLen, 2)
	c.Check(spans[0].Name(), gc.Equals, "charmstore.entity-id")
	c.Check(spans[0].Status().Code, gc.Equals, codes.Unset)
	c.Check(spans[1].Name(), gc.Equals, "charmstore.entity")
	c.Check(spans[1].Status().Code, gc.Equals, codes.Error)
	c.Check(spans[1].Status().Description, gc.Equals, "http://example.com/v5/wordpress/meta/any")
}

func (s *RequesterSuite) TestTraceDumps(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	transport := NewMockTransport(ctrl)
	transport.EXPECT().Do(gomock.Any()).Return(okResponse(resultsBody), nil)

	logContext := loggo.NewContext(loggo.TRACE)
	logs := &loggo.TestWriter{}
	c.Assert(logContext.AddWriter("test", logs), jc.ErrorIsNil)

	client, err := charmstore.NewClient(charmstore.Config{
		URL:       "http://example.com/v5",
		Transport: transport,
		Logger:    logContext.GetLogger("charmstore"),
	})
	c.Assert(err, jc.ErrorIsNil)
	_, err = client.Search(context.Background(), "foo", charmstore.SearchParams{})
	c.Assert(err, jc.ErrorIsNil)

	var traces []string
	for _, entry := range logs.Log() {
		if entry.Level == loggo.TRACE {
			traces = append(traces, entry.Message)
		}
	}
	c.Assert(traces, gc.HasLen, 3)
	c.Check(traces[0], gc.Matches, `(?s)GET request GET /v5/search\?text=foo HTTP/1.1.*`)
	c.Check(traces[1], gc.Matches, `(?s)GET response HTTP/0.0 200 OK.*cs:foo/bar-0.*`)
	c.Check(traces[2], gc.Matches, `(?s)search http://example.com/v5/search\?text=foo unmarshalled: .*cs:foo/bar-0.*`)
}

type ClassifySuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&ClassifySuite{})

type recordingLogger struct {
	errors []string
}

func (l *recordingLogger) IsTraceEnabled() bool { return false }

func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debugf(string, ...interface{}) {}

func (l *recordingLogger) Tracef(string, ...interface{}) {}

func (s *ClassifySuite) TestNotFoundIsNotLogged(c *gc.C) {
	logger := &recordingLogger{}
	err := charmstore.ClassifyStatus(logger, "http://example.com/v5/foo/meta/any", http.StatusNotFound, nil, charmstore.IdentityAbsent)
	c.Assert(err, gc.FitsTypeOf, &charmstore.EntityNotFoundError{})
	c.Assert(logger.errors, gc.HasLen, 0)
}

func (s *ClassifySuite) TestAbsence(c *gc.C) {
	for _, test := range []struct {
		code     int
		absent   func(int) bool
		notFound bool
	}{
		{code: http.StatusNotFound, absent: charmstore.IdentityAbsent, notFound: true},
		{code: http.StatusProxyAuthRequired, absent: charmstore.IdentityAbsent, notFound: true},
		{code: http.StatusBadRequest, absent: charmstore.IdentityAbsent},
		{code: http.StatusNotFound, absent: charmstore.AssetAbsent, notFound: true},
		{code: http.StatusProxyAuthRequired, absent: charmstore.AssetAbsent},
		{code: http.StatusNotFound, absent: charmstore.NeverAbsent},
		{code: http.StatusInternalServerError, absent: charmstore.NeverAbsent},
	} {
		err := charmstore.ClassifyStatus(&recordingLogger{}, "http://example.com/v5/x", test.code, []byte("body"), test.absent)
		c.Check(charmstore.IsEntityNotFound(err), gc.Equals, test.notFound, gc.Commentf("code %d", test.code))
		c.Check(charmstore.IsServerError(err), gc.Equals, !test.notFound, gc.Commentf("code %d", test.code))
	}
}

func (s *ClassifySuite) TestServerErrorIsLogged(c *gc.C) {
	logger := &recordingLogger{}
	err := charmstore.ClassifyStatus(logger, "http://example.com/v5/search?text=foo", http.StatusBadRequest, []byte("bad"), charmstore.NeverAbsent)
	c.Assert(err, gc.ErrorMatches, `http://example.com/v5/search\?text=foo status code:\(400\) message: bad`)
	c.Assert(logger.errors, jc.DeepEquals, []string{
		"Error during request: http://example.com/v5/search?text=foo status code:(400) message: bad",
	})
}

func (s *ClassifySuite) TestTransportTimeoutIsLogged(c *gc.C) {
	logger := &recordingLogger{}
	err := charmstore.ClassifyTransportError(logger, "http://example.com/v5/search?text=foo", timeoutError{})
	c.Assert(err, gc.ErrorMatches, `Request timed out: http://example.com/v5/search\?text=foo`)
	c.Assert(logger.errors, jc.DeepEquals, []string{
		"Error during request: Request timed out: http://example.com/v5/search?text=foo",
	})
}
