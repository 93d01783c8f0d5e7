package lookup

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tdh8316/acclookup/internal/platform"
)

type MockDoer struct {
	mock.Mock
}

func (m *MockDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req.URL.String())
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

func response(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader("body"))}
}

func quietLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func testRegistry(t *testing.T) *platform.Registry {
	t.Helper()
	r, err := platform.NewRegistry([]platform.Platform{
		{Name: "Alpha", Template: "https://alpha.example/{}"},
		{Name: "Beta", Template: "https://beta.example/u/{}"},
		{Name: "Gamma", Template: "https://{}.gamma.example"},
	})
	require.NoError(t, err)
	return r
}

func TestLookupClassification(t *testing.T) {
	doer := &MockDoer{}
	doer.On("Do", "https://alpha.example/alice").Return(response(http.StatusOK), nil)
	doer.On("Do", "https://beta.example/u/alice").Return(response(http.StatusNotFound), nil)
	doer.On("Do", "https://alice.gamma.example").Return(nil, errors.New("dial tcp: connection refused"))

	exec := NewExecutor(doer, testRegistry(t), Config{}, quietLogger())
	results := exec.Lookup(context.Background(), "alice", platform.NewSelection("Alpha", "Beta", "Gamma"))

	assert.Equal(t, map[string]string{
		"Alpha": "alice exists on Alpha: https://alpha.example/alice",
		"Beta":  "alice does not exist on Beta.",
		"Gamma": "Error checking Gamma: dial tcp: connection refused",
	}, results.Map())

	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, []string{results[0].Platform, results[1].Platform, results[2].Platform})
	assert.Equal(t, Exists, results[0].Outcome)
	assert.Equal(t, NotFound, results[1].Outcome)
	assert.Equal(t, Failed, results[2].Outcome)
	assert.Error(t, results[2].Err)
	doer.AssertExpectations(t)
}

func TestLookupNon404IsExists(t *testing.T) {
	for _, status := range []int{200, 204, 301, 302, 403, 429, 500, 503} {
		doer := &MockDoer{}
		doer.On("Do", "https://alpha.example/bob").Return(response(status), nil)

		exec := NewExecutor(doer, testRegistry(t), Config{}, quietLogger())
		results := exec.Lookup(context.Background(), "bob", platform.NewSelection("Alpha"))

		require.Len(t, results, 1)
		assert.Equal(t, "bob exists on Alpha: https://alpha.example/bob", results[0].Message, "status %d", status)
		assert.Equal(t, status, results[0].StatusCode)
	}
}

func TestLookupSkipsUnselected(t *testing.T) {
	doer := &MockDoer{}
	doer.On("Do", "https://beta.example/u/carol").Return(response(http.StatusOK), nil)

	exec := NewExecutor(doer, testRegistry(t), Config{}, quietLogger())
	results := exec.Lookup(context.Background(), "carol", platform.NewSelection("Beta", "NotInRegistry"))

	require.Len(t, results, 1)
	assert.Equal(t, "Beta", results[0].Platform)
	doer.AssertNumberOfCalls(t, "Do", 1)
}

func TestLookupEmptySelection(t *testing.T) {
	doer := &MockDoer{}
	exec := NewExecutor(doer, testRegistry(t), Config{}, quietLogger())

	results := exec.Lookup(context.Background(), "dave", platform.NewSelection())
	assert.Empty(t, results)
	assert.Empty(t, results.Map())
	doer.AssertNotCalled(t, "Do", mock.Anything)
}

func TestLookupUsernameIsVerbatim(t *testing.T) {
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		return response(http.StatusOK), nil
	})

	exec := NewExecutor(doer, testRegistry(t), Config{}, quietLogger())
	results := exec.Lookup(context.Background(), "a%20b", platform.NewSelection("Alpha"))

	require.Len(t, results, 1)
	assert.Equal(t, "https://alpha.example/a%20b", results[0].URL)
	assert.Contains(t, results[0].Message, "https://alpha.example/a%20b")
}

func TestLookupInvalidURLIsAnError(t *testing.T) {
	doer := &MockDoer{}
	exec := NewExecutor(doer, testRegistry(t), Config{}, quietLogger())

	// A control character cannot appear in a request URL.
	results := exec.Lookup(context.Background(), "bad\x7fname", platform.NewSelection("Alpha", "Beta"))

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, Failed, r.Outcome)
		assert.True(t, strings.HasPrefix(r.Message, "Error checking "+r.Platform+": "))
	}
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func TestLookupIsSequential(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	var order []string
	var mu sync.Mutex

	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}
		mu.Lock()
		order = append(order, req.URL.Host)
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		return response(http.StatusOK), nil
	})

	exec := NewExecutor(doer, testRegistry(t), Config{}, quietLogger())
	exec.Lookup(context.Background(), "erin", platform.NewSelection("Gamma", "Alpha", "Beta"))

	assert.EqualValues(t, 1, maxInFlight.Load())
	assert.Equal(t, []string{"alpha.example", "beta.example", "erin.gamma.example"}, order)
}

func TestLookupSendsUserAgent(t *testing.T) {
	var ua string
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		ua = req.Header.Get("User-Agent")
		return response(http.StatusOK), nil
	})

	exec := NewExecutor(doer, testRegistry(t), Config{UserAgent: "acclookup-test"}, quietLogger())
	exec.Lookup(context.Background(), "frank", platform.NewSelection("Alpha"))
	assert.Equal(t, "acclookup-test", ua)
}

func TestLookupCancelledContextStillCompletes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r, err := platform.NewRegistry([]platform.Platform{
		{Name: "One", Template: server.URL + "/one/{}"},
		{Name: "Two", Template: server.URL + "/two/{}"},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := NewExecutor(server.Client(), r, Config{}, quietLogger())
	results := exec.Lookup(ctx, "grace", platform.All(r))

	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, Failed, res.Outcome)
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
}

func TestLookupAgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/missing/"):
			http.NotFound(w, r)
		case strings.HasPrefix(r.URL.Path, "/moved/"):
			http.Redirect(w, r, "/found/elsewhere", http.StatusFound)
		case strings.HasPrefix(r.URL.Path, "/broken/"):
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	r, err := platform.NewRegistry([]platform.Platform{
		{Name: "Down", Template: deadURL + "/{}"},
		{Name: "Found", Template: server.URL + "/found/{}"},
		{Name: "Missing", Template: server.URL + "/missing/{}"},
		{Name: "Moved", Template: server.URL + "/moved/{}"},
		{Name: "Broken", Template: server.URL + "/broken/{}"},
	})
	require.NoError(t, err)

	exec := NewExecutor(server.Client(), r, Config{}, quietLogger())
	results := exec.Lookup(context.Background(), "heidi", platform.All(r))

	require.Len(t, results, 5)
	m := results.Map()
	assert.True(t, strings.HasPrefix(m["Down"], "Error checking Down: "))
	assert.Equal(t, "heidi exists on Found: "+server.URL+"/found/heidi", m["Found"])
	assert.Equal(t, "heidi does not exist on Missing.", m["Missing"])
	assert.Equal(t, "heidi exists on Moved: "+server.URL+"/moved/heidi", m["Moved"])
	assert.Equal(t, "heidi exists on Broken: "+server.URL+"/broken/heidi", m["Broken"])
}

func TestResultSetHelpers(t *testing.T) {
	rs := ResultSet{
		{Platform: "A", Outcome: Exists, Message: "a"},
		{Platform: "B", Outcome: NotFound, Message: "b"},
		{Platform: "C", Outcome: Exists, Message: "c"},
	}
	assert.Equal(t, []string{"a", "b", "c"}, rs.Lines())
	assert.Equal(t, 2, rs.Count(Exists))
	assert.Equal(t, 0, rs.Count(Failed))

	got, ok := rs.Get("B")
	require.True(t, ok)
	assert.Equal(t, "b", got.Message)
	_, ok = rs.Get("Z")
	assert.False(t, ok)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "exists", Exists.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "error", Failed.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}

func TestLookupLogsPerPlatform(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		return response(http.StatusNotFound), nil
	})
	exec := NewExecutor(doer, testRegistry(t), Config{}, logger)
	exec.Lookup(context.Background(), "ivan", platform.NewSelection("Beta"))

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, "Beta", entry.Data["platform"])
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
}
