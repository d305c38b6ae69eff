package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDisplayStatusFoldsUnknownValues(t *testing.T) {
	require.Equal(t, StatusReady, DisplayStatus("ready"))
	require.Equal(t, StatusNotReady, DisplayStatus("not-ready"))
	require.Equal(t, StatusMaybe, DisplayStatus("maybe"))

	for _, weird := range []string{"", "READY", "on-my-way", "42", "null"} {
		require.Equal(t, StatusUnknown, DisplayStatus(weird))
	}
}

func TestSubmitInvalidStatusMakesNoNetworkCall(t *testing.T) {
	var requests atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer ts.Close()

	store := NewStatusStore(NewAPI(ts.URL, "", nil), 3, 7, time.Hour)

	require.Error(t, store.Submit(context.Background(), "", "notes"))
	require.Error(t, store.Submit(context.Background(), "sort-of-ready", ""))
	require.Zero(t, requests.Load())
}

func TestSubmitSuccessRefetchesServerTruth(t *testing.T) {
	var statusCalls, mineCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/trips/3/check-ins", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status string `json:"status"`
			Notes  string `json:"notes"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "ready", req.Status)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CheckIn{ID: 1, TripID: 3, UserID: 7, Status: req.Status, Notes: req.Notes, CheckedInAt: time.Now()})
	})
	mux.HandleFunc("GET /api/trips/3/check-in-status", func(w http.ResponseWriter, r *http.Request) {
		statusCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"checkInStatuses": []CheckInStatus{{UserID: 7, Status: "ready", CheckedInAt: time.Now()}},
			"tripInfo":        TripInfo{ID: 3, GroupID: 1, Name: "coast trip"},
		})
	})
	mux.HandleFunc("GET /api/trips/3/check-ins/user/7", func(w http.ResponseWriter, r *http.Request) {
		mineCalls.Add(1)
		json.NewEncoder(w).Encode(CheckIn{ID: 1, TripID: 3, UserID: 7, Status: "ready", CheckedInAt: time.Now()})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	store := NewStatusStore(NewAPI(ts.URL, "", nil), 3, 7, time.Hour)
	require.NoError(t, store.Submit(context.Background(), "ready", "packed"))

	// Submit refetches both the trip statuses and the caller's record.
	require.Equal(t, int64(1), statusCalls.Load())
	require.Equal(t, int64(1), mineCalls.Load())

	statuses := store.Statuses()
	require.Len(t, statuses, 1)
	require.Equal(t, "ready", statuses[0].Status)
	mine := store.MyStatus()
	require.NotNil(t, mine)
	require.Equal(t, "ready", mine.Status)
	require.Equal(t, "coast trip", store.TripInfo().Name)
}

func TestRefreshZeroCheckInsYieldsEmptySnapshot(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/trips/3/check-in-status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"checkInStatuses": []CheckInStatus{},
			"tripInfo":        TripInfo{ID: 3},
		})
	})
	mux.HandleFunc("GET /api/trips/3/check-ins/user/7", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no check-in yet"}`, http.StatusNotFound)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	store := NewStatusStore(NewAPI(ts.URL, "", nil), 3, 7, time.Hour)
	require.NoError(t, store.Refresh(context.Background()))
	require.True(t, store.Loaded())
	require.Empty(t, store.Statuses())
	require.Nil(t, store.MyStatus())
}

func TestRefreshErrorKeepsPreviousSnapshot(t *testing.T) {
	srvUp := true
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/trips/3/check-in-status", func(w http.ResponseWriter, r *http.Request) {
		if !srvUp {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"checkInStatuses": []CheckInStatus{{UserID: 9, Status: "maybe"}},
			"tripInfo":        TripInfo{ID: 3},
		})
	})
	mux.HandleFunc("GET /api/trips/3/check-ins/user/7", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no check-in yet"}`, http.StatusNotFound)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	store := NewStatusStore(NewAPI(ts.URL, "", nil), 3, 7, time.Hour)
	require.NoError(t, store.Refresh(context.Background()))

	srvUp = false
	require.Error(t, store.Refresh(context.Background()))
	require.Len(t, store.Statuses(), 1)
}
