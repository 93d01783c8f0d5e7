package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(ClientConfig{})
	require.NoError(t, err)
	assert.Zero(t, client.Timeout)
	assert.Nil(t, client.CheckRedirect)

	tr, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, tr.Proxy)
}

func TestNewClientTimeout(t *testing.T) {
	client, err := NewClient(ClientConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.Timeout)

	_, err = NewClient(ClientConfig{Timeout: -time.Second})
	assert.Error(t, err)
}

func TestNewClientProxy(t *testing.T) {
	client, err := NewClient(ClientConfig{UseProxy: true})
	require.NoError(t, err)

	tr := client.Transport.(*http.Transport)
	assert.Nil(t, tr.Proxy)
	assert.NotNil(t, tr.DialContext)

	_, err = NewClient(ClientConfig{UseProxy: true, ProxyURL: "gopher://127.0.0.1:70"})
	assert.Error(t, err)
}

func TestNewRequestSetsUserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	req, err := NewRequest(context.Background(), http.MethodGet, server.URL, nil, DefaultUserAgent)
	require.NoError(t, err)

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, DefaultUserAgent, got)
}

func TestNewRequestInvalidURL(t *testing.T) {
	_, err := NewRequest(context.Background(), http.MethodGet, "http://[::1", nil, "")
	assert.Error(t, err)
}
