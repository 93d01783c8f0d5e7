package lookup

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdh8316/acclookup/internal/platform"
)

func TestWorkerDeliversOnce(t *testing.T) {
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		return response(http.StatusNotFound), nil
	})
	w := NewWorker(NewExecutor(doer, testRegistry(t), Config{}, quietLogger()), quietLogger())

	gen, ch := w.Start(context.Background(), "mallory", platform.NewSelection("Alpha", "Gamma"))
	assert.EqualValues(t, 1, gen)

	select {
	case c, ok := <-ch:
		require.True(t, ok)
		assert.Equal(t, gen, c.Generation)
		assert.Equal(t, "mallory", c.Username)
		assert.NotEmpty(t, c.SearchID)
		assert.Equal(t, []string{
			"mallory does not exist on Alpha.",
			"mallory does not exist on Gamma.",
		}, c.Results.Lines())
		assert.True(t, w.IsCurrent(c))
	case <-time.After(5 * time.Second):
		t.Fatal("no completion delivered")
	}

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after the completion")
}

func TestWorkerDoesNotBlockCaller(t *testing.T) {
	release := make(chan struct{})
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		<-release
		return response(http.StatusOK), nil
	})
	w := NewWorker(NewExecutor(doer, testRegistry(t), Config{}, quietLogger()), quietLogger())

	returned := make(chan struct{})
	var ch <-chan Completion
	go func() {
		_, ch = w.Start(context.Background(), "niaj", platform.NewSelection("Alpha"))
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Start blocked on the network")
	}

	close(release)
	c := <-ch
	assert.Len(t, c.Results, 1)
}

func TestWorkerStaleGeneration(t *testing.T) {
	first := make(chan struct{})
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/old" {
			<-first
		}
		return response(http.StatusOK), nil
	})
	w := NewWorker(NewExecutor(doer, testRegistry(t), Config{}, quietLogger()), quietLogger())

	oldGen, oldCh := w.Start(context.Background(), "old", platform.NewSelection("Alpha"))
	newGen, newCh := w.Start(context.Background(), "new", platform.NewSelection("Alpha"))
	assert.Greater(t, newGen, oldGen)
	assert.Equal(t, newGen, w.Generation())

	fresh := <-newCh
	assert.True(t, w.IsCurrent(fresh))

	close(first)
	stale := <-oldCh
	assert.Equal(t, oldGen, stale.Generation)
	assert.False(t, w.IsCurrent(stale))
}
