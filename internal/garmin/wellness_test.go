package garmin

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	connect "github.com/abrander/garmin-connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWellness(t *testing.T, status int, body string) (*wellnessAPI, *[]*http.Request) {
	var requests []*http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Clone(r.Context()))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	return newWellnessAPI(server.URL, func() string { return "session-123" }), &requests
}

func TestWellnessAPI_BodyBatteryRequest(t *testing.T) {
	w, requests := setupWellness(t, http.StatusOK, bodyBatteryJSON)

	raw, err := w.BodyBattery(testDate)
	require.NoError(t, err)
	assert.JSONEq(t, bodyBatteryJSON, string(raw))

	require.Len(t, *requests, 1)
	r := (*requests)[0]
	assert.Equal(t, bodyBatteryPath, r.URL.Path)
	assert.Equal(t, "2024-10-19", r.URL.Query().Get("startDate"))
	assert.Equal(t, "2024-10-19", r.URL.Query().Get("endDate"))
	assert.Equal(t, "NT", r.Header.Get("nk"))

	cookie, err := r.Cookie("SESSIONID")
	require.NoError(t, err)
	assert.Equal(t, "session-123", cookie.Value)
}

func TestWellnessAPI_MaxMetricsRequest(t *testing.T) {
	w, requests := setupWellness(t, http.StatusOK, `[]`)

	_, err := w.MaxMetrics(testDate)
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	assert.Equal(t, "/metrics-service/metrics/maxmet/daily/2024-10-19/2024-10-19", (*requests)[0].URL.Path)
}

func TestWellnessAPI_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, connect.ErrNotFound},
		{http.StatusUnauthorized, connect.ErrNotAuthenticated},
		{http.StatusForbidden, connect.ErrForbidden},
	}
	for _, tt := range tests {
		w, _ := setupWellness(t, tt.status, `{}`)
		_, err := w.BodyBattery(testDate)
		assert.ErrorIs(t, err, tt.want, tt.status)
	}

	w, _ := setupWellness(t, http.StatusTooManyRequests, `{}`)
	_, err := w.MaxMetrics(testDate)
	require.Error(t, err)
	assert.ErrorIs(t, classify(err), ErrRateLimited)
}

func TestDecodeBodyBattery_DefaultsAndMalformed(t *testing.T) {
	reports, err := DecodeBodyBattery([]byte(`[{"date": "2024-10-19", "charged": null, "bodyBatteryValuesArray": [[1729288800000, 80], [1729288800000], [null, 50]]}]`))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Zero(t, reports[0].Charged)
	require.Len(t, reports[0].Readings, 1)
	assert.Equal(t, 80, reports[0].Readings[0].Level)

	_, err = DecodeBodyBattery([]byte(`{"date": "2024-10-19"}`))
	assert.Error(t, err)
}
