package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noValidation(_ []byte) error { return nil }

func TestRelayDirectWins(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("direct-body"))
	}))
	defer direct.Close()

	relayCalled := false
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		relayCalled = true
		w.Write([]byte("mirror-body"))
	}))
	defer mirror.Close()

	r := NewRelay([]string{mirror.URL + "/?u=%s"})

	body, err := r.Fetch(context.Background(), direct.URL, noValidation)
	require.NoError(t, err)
	assert.Equal(t, "direct-body", string(body))
	assert.False(t, relayCalled)
}

func TestRelayFallsBackInOrder(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer direct.Close()

	badMirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not-valid"))
	}))
	defer badMirror.Close()

	goodMirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("valid-body"))
	}))
	defer goodMirror.Close()

	r := NewRelay([]string{badMirror.URL + "/?u=%s", goodMirror.URL + "/?u=%s"})

	body, err := r.Fetch(context.Background(), direct.URL, func(b []byte) error {
		if string(b) != "valid-body" {
			return fmt.Errorf("structurally invalid")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "valid-body", string(body))
}

func TestRelayExhausted(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer down.Close()

	r := NewRelay([]string{down.URL + "/?u=%s"})

	_, err := r.Fetch(context.Background(), down.URL, noValidation)
	assert.Error(t, err)
}

func TestRelayDefaultsWhenUnconfigured(t *testing.T) {
	r := NewRelay(nil)
	assert.Equal(t, defaultRelays, r.templates)
}
