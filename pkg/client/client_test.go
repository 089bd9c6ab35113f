package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func unreachableURL(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u + "/api"
}

func TestNew_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").baseURL)
	assert.Equal(t, "http://proxy:3001/api", New("http://proxy:3001/api/").baseURL)
}

func TestSearchFlights_Success(t *testing.T) {
	var got url.Values
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/flights/search", r.URL.Path)
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"1"}]}`))
	})

	env := New(srv.URL+"/api").SearchFlights(context.Background(), SearchParams{
		Origin:        "WAW",
		Destination:   "BCN",
		DepartureDate: "2025-06-10",
		Adults:        2,
	})

	assert.True(t, env.Success)
	assert.JSONEq(t, `[{"id":"1"}]`, string(env.Data))
	assert.Equal(t, url.Values{
		"origin":        {"WAW"},
		"destination":   {"BCN"},
		"departureDate": {"2025-06-10"},
		"adults":        {"2"},
	}, got)
}

func TestSearchFlights_AppendsReturnDate(t *testing.T) {
	var got url.Values
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	})

	New(srv.URL).SearchFlights(context.Background(), SearchParams{
		Origin:        "WAW",
		Destination:   "BCN",
		DepartureDate: "2025-06-10",
		ReturnDate:    "2025-06-17",
		Adults:        1,
	})

	assert.Equal(t, "2025-06-17", got.Get("returnDate"))
}

func TestSearchFlights_ReturnsErrorEnvelopesVerbatim(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, env Envelope)
	}{
		{
			name:   "validation errors",
			status: http.StatusBadRequest,
			body:   `{"success":false,"errors":["Pole \"Cel podróży\" jest wymagane"]}`,
			check: func(t *testing.T, env Envelope) {
				assert.Equal(t, []string{`Pole "Cel podróży" jest wymagane`}, env.Errors)
			},
		},
		{
			name:   "upstream error body",
			status: http.StatusBadRequest,
			body:   `{"success":false,"error":{"errors":[{"code":425}]}}`,
			check: func(t *testing.T, env Envelope) {
				body, err := json.Marshal(env.Error)
				require.NoError(t, err)
				assert.JSONEq(t, `{"errors":[{"code":425}]}`, string(body))
			},
		},
		{
			name:   "generic proxy failure",
			status: http.StatusInternalServerError,
			body:   `{"success":false,"error":"Nie udało się pobrać ofert lotów"}`,
			check: func(t *testing.T, env Envelope) {
				msg, ok := env.ErrorMessage()
				assert.True(t, ok)
				assert.Equal(t, "Nie udało się pobrać ofert lotów", msg)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			env := New(srv.URL).SearchFlights(context.Background(), SearchParams{Origin: "WAW"})

			assert.False(t, env.Success)
			tt.check(t, env)
		})
	}
}

func TestSearchFlights_TransportFailures(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		env := New(unreachableURL(t)).SearchFlights(context.Background(), SearchParams{})

		assert.Equal(t, Envelope{Success: false, Error: ErrFetchFailed}, env)
	})

	t.Run("non json body", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		})

		env := New(srv.URL).SearchFlights(context.Background(), SearchParams{})

		assert.Equal(t, Envelope{Success: false, Error: ErrFetchFailed}, env)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		})

		c := New(srv.URL, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
		env := c.SearchFlights(context.Background(), SearchParams{})

		assert.Equal(t, Envelope{Success: false, Error: ErrFetchFailed}, env)
	})
}

func TestCheckAPIHealth(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"ok", `{"status":"OK","timestamp":"2025-06-10T10:00:00.000Z"}`, true},
		{"status only", `{"status":"OK"}`, true},
		{"lowercase ok", `{"status":"ok"}`, false},
		{"other status", `{"status":"DEGRADED"}`, false},
		{"not json", `OK`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/health", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})

			assert.Equal(t, tt.want, New(srv.URL+"/api").CheckAPIHealth(context.Background()))
		})
	}
}

func TestCheckAPIHealth_Unreachable(t *testing.T) {
	assert.False(t, New(unreachableURL(t)).CheckAPIHealth(context.Background()))
}
