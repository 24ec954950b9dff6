package httpsession

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/fresh/internal/enum"
)

func redirectingServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
		http.Redirect(w, r, "/done", http.StatusFound)
	})
	mux.HandleFunc("/done", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(c.Value + " " + r.UserAgent()))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_FollowAll(t *testing.T) {
	srv := redirectingServer(t)
	client, err := New(enum.FollowAll, Options{UserAgent: "fresh-test"})
	require.NoError(t, err)

	resp, err := client.Get(srv.URL + "/start")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNew_FollowNone(t *testing.T) {
	srv := redirectingServer(t)
	client, err := New(enum.FollowNone, Options{})
	require.NoError(t, err)

	resp, err := client.Get(srv.URL + "/start")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/done", resp.Header.Get("Location"))
}

func TestFactory_SessionsDoNotShareCookies(t *testing.T) {
	srv := redirectingServer(t)
	factory := NewFactory(Options{})

	first, err := factory(enum.FollowNone)
	require.NoError(t, err)
	resp, err := first.Get(srv.URL + "/start")
	require.NoError(t, err)
	resp.Body.Close()

	second, err := factory(enum.FollowNone)
	require.NoError(t, err)
	resp, err = second.Get(srv.URL + "/done")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
