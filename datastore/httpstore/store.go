package httpstore

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	jsoniter "github.com/json-iterator/go"

	"github.com/shelfview/shelfview/datastore"
	"github.com/shelfview/shelfview/lib/catalog"
	"github.com/shelfview/shelfview/lib/logging"
	"github.com/shelfview/shelfview/lib/session"
)

var (
	json   = jsoniter.ConfigCompatibleWithStandardLibrary
	logger = logging.CreateLogger("datastore/http")
)

// Config holds the connection parameters of the HTTP store.
type Config struct {
	// Endpoint is the base URL of the backend (e.g. http://localhost:3001).
	Endpoint string
	// TimeoutSecond bounds each request including retries.
	TimeoutSecond int
	// RetryCount is how many times a request is attempted.
	RetryCount int
}

// New creates an HTTP-backed data store. The session context supplies the
// bearer credential at request time; a missing credential is sent as-is and
// rejected by the backend, since routing unauthenticated users to login is
// owned by an outer guard.
func New(config Config, sess session.ISessionContext) (datastore.IDataStore, error) {
	base, err := url.Parse(config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", config.Endpoint, err)
	}

	retries := config.RetryCount
	if retries < 1 {
		retries = 1
	}

	return &httpStore{
		base:       base,
		retryCount: retries,
		session:    sess,
		client: &http.Client{
			Timeout: time.Duration(config.TimeoutSecond) * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     time.Duration(config.TimeoutSecond) * time.Second,
			},
		},
	}, nil
}

type httpStore struct {
	base       *url.URL
	client     *http.Client
	retryCount int
	session    session.ISessionContext
}

// --------------------------------------------------------------------------
// Interface Methods (docu see datastore/interface.go)
// --------------------------------------------------------------------------

func (s *httpStore) Fetch(collection string, params map[string]string) ([]catalog.Entity, error) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`shelfview_fetch_total{collection=%q}`, collection)).Inc()

	requestURL := s.requestURL(collection, params)

	req, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, datastore.NewError(datastore.RetCInvalidOperation, err.Error())
	}
	s.authorize(req)

	body, err := s.send(req)
	if err != nil {
		metrics.GetOrCreateCounter(fmt.Sprintf(`shelfview_fetch_errors_total{collection=%q}`, collection)).Inc()
		return nil, err
	}

	entities, err := catalog.DecodeDocument(body)
	if err != nil {
		metrics.GetOrCreateCounter(fmt.Sprintf(`shelfview_fetch_errors_total{collection=%q}`, collection)).Inc()
		return nil, datastore.NewError(datastore.RetCDecode, err.Error())
	}
	return entities, nil
}

// Invalidate is a no-op: nothing is cached at the transport level.
func (s *httpStore) Invalidate(string) {}

func (s *httpStore) Mutate(method, path string, body interface{}) error {
	metrics.GetOrCreateCounter(fmt.Sprintf(`shelfview_mutate_total{method=%q}`, method)).Inc()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return datastore.NewError(datastore.RetCInvalidOperation, err.Error())
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, s.requestURL(path, nil), reader)
	if err != nil {
		return datastore.NewError(datastore.RetCInvalidOperation, err.Error())
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	s.authorize(req)

	if _, err := s.send(req); err != nil {
		metrics.GetOrCreateCounter(fmt.Sprintf(`shelfview_mutate_errors_total{method=%q}`, method)).Inc()
		return err
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// requestURL joins the base endpoint, the collection path and the params.
// Params are appended in sorted order so equal fetches build equal URLs.
func (s *httpStore) requestURL(path string, params map[string]string) string {
	requestURL := strings.TrimRight(s.base.String(), "/") + "/" + path

	if len(params) == 0 {
		return requestURL
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	query := url.Values{}
	for _, k := range keys {
		query.Set(k, params[k])
	}
	return requestURL + "?" + query.Encode()
}

// authorize attaches the current bearer credential, if any.
func (s *httpStore) authorize(req *http.Request) {
	if token := s.session.BearerCredential(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// send performs the request (with retries) and returns the response body.
func (s *httpStore) send(req *http.Request) ([]byte, error) {
	var resp *http.Response
	var err error
	defer func() {
		if resp != nil {
			if cerr := resp.Body.Close(); cerr != nil {
				logger.Errorf("Failed to close response body: %v", cerr)
			}
		}
	}()

	for i := 0; i < s.retryCount; i++ {
		if i > 0 && req.GetBody != nil {
			// the previous attempt consumed the body
			if fresh, berr := req.GetBody(); berr == nil {
				req.Body = fresh
			}
		}
		resp, err = s.client.Do(req)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, datastore.NewError(datastore.RetCTransport, err.Error())
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, datastore.NewError(datastore.RetCTransport, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return nil, datastore.NewError(datastore.RetCRemoteRejected, msg)
	}

	return body, nil
}
