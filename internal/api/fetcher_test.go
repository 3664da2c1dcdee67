package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/solacq/solacq/internal/dtu"
)

func TestFetchRecordLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/record/live", r.URL.Path)
		w.Write([]byte(`{"inverter": [[{"fld":"P_AC","val":"150"}]]}`))
	}))
	defer srv.Close()

	client := NewDTUClient(srv.URL, rate.NewLimiter(rate.Inf, 1))

	rec, err := client.FetchRecordLive(context.Background())
	require.NoError(t, err)
	require.Len(t, rec.Inverter, 1)
	assert.Equal(t, "P_AC", rec.Inverter[0][0].Code)
	assert.Equal(t, 150.0, float64(rec.Inverter[0][0].Value))
}

func TestFetchRecordLiveErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewDTUClient(srv.URL, nil)

	_, err := client.FetchRecordLive(context.Background())
	assert.ErrorIs(t, err, ErrSourceStatus)
}

func TestFetchRecordLiveMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"inverter": "not-an-array"}`))
	}))
	defer srv.Close()

	client := NewDTUClient(srv.URL, nil)

	_, err := client.FetchRecordLive(context.Background())
	assert.ErrorIs(t, err, dtu.ErrMalformedInverterData)
}

func TestFetchRecordLiveConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewDTUClient(srv.URL, nil)

	_, err := client.FetchRecordLive(context.Background())
	assert.ErrorIs(t, err, ErrSourceRequest)
}

func TestFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cm", r.URL.Path)
		assert.Equal(t, "Status 10", r.URL.Query().Get("cmnd"))
		w.Write([]byte(`{"StatusSNS": {"": {"Power_in": 42}}}`))
	}))
	defer srv.Close()

	client := NewMeterClient(srv.URL, rate.NewLimiter(rate.Inf, 1))

	body, err := client.FetchStatus(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(body), "Power_in")
}

func TestFetchCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewMeterClient(srv.URL, rate.NewLimiter(rate.Inf, 1))

	_, err := client.FetchStatus(ctx)
	assert.ErrorIs(t, err, ErrSourceRequest)
}
