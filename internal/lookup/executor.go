package lookup

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/tdh8316/acclookup/internal/httpx"
	"github.com/tdh8316/acclookup/internal/platform"
)

type Config struct {
	UserAgent string
}

// Executor checks a username against the platforms of a registry. It holds no
// per-search state and may be shared.
type Executor struct {
	client   httpx.Doer
	registry *platform.Registry
	cfg      Config
	logger   logrus.FieldLogger
}

func NewExecutor(client httpx.Doer, registry *platform.Registry, cfg Config, logger logrus.FieldLogger) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Executor{
		client:   client,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

func (e *Executor) Registry() *platform.Registry {
	return e.registry
}

// Lookup checks username on every selected platform, one request at a time, in
// registry order. It always returns one Result per selected registry platform;
// request failures are reported inside the Result.
func (e *Executor) Lookup(ctx context.Context, username string, selected platform.Selection) ResultSet {
	results := make(ResultSet, 0, len(selected))

	for _, p := range e.registry.All() {
		if !selected.Has(p.Name) {
			continue
		}
		results = append(results, e.check(ctx, username, p))
	}

	return results
}

func (e *Executor) check(ctx context.Context, username string, p platform.Platform) Result {
	res := Result{
		Username: username,
		Platform: p.Name,
		URL:      p.URL(username),
	}
	log := e.logger.WithFields(logrus.Fields{"platform": p.Name, "url": res.URL})

	req, err := httpx.NewRequest(ctx, http.MethodGet, res.URL, nil, e.cfg.UserAgent)
	if err != nil {
		return e.failed(res, err, log)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return e.failed(res, err, log)
	}
	// The body is never inspected.
	resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode == http.StatusNotFound {
		res.Outcome = NotFound
		res.Message = notFoundMessage(username, p.Name)
	} else {
		res.Outcome = Exists
		res.Message = existsMessage(username, p.Name, res.URL)
	}

	log.WithField("status", resp.StatusCode).Debugf("classified as %s", res.Outcome)
	return res
}

func (e *Executor) failed(res Result, err error, log logrus.FieldLogger) Result {
	res.Outcome = Failed
	res.Err = err
	res.Message = errorMessage(res.Platform, err)
	log.WithError(err).Debug("request failed")
	return res
}
