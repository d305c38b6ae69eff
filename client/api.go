// Package client is the Go client for the trip chat service. It mirrors
// how the web client consumes the service: REST polling is the
// authoritative freshness mechanism, the websocket push channel is a
// best-effort "something changed" signal on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is a group chat message as returned by the service.
type Message struct {
	ID           int       `json:"id"`
	GroupID      int       `json:"groupId"`
	SenderUserID int       `json:"senderUserId"`
	Content      string    `json:"content"`
	SenderName   string    `json:"senderName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CheckInStatus is one user's latest readiness record on a trip.
type CheckInStatus struct {
	UserID      int       `json:"userId"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	CheckedInAt time.Time `json:"checkedInAt"`
}

// CheckIn is the caller's own check-in record.
type CheckIn struct {
	ID          int       `json:"id"`
	TripID      int       `json:"tripId"`
	UserID      int       `json:"userId"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	CheckedInAt time.Time `json:"checkedInAt"`
}

// TripInfo is the trip summary attached to a check-in status response.
type TripInfo struct {
	ID          int    `json:"id"`
	GroupID     int    `json:"groupId"`
	Name        string `json:"name"`
	Destination string `json:"destination"`
	Status      string `json:"status"`
}

// RosterEntry resolves a user id to display fields.
type RosterEntry struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Online      bool   `json:"online"`
}

// API wraps the REST surface of the service.
type API struct {
	baseURL string
	token   string
	hc      *http.Client
}

// NewAPI builds an API bound to baseURL, authenticating every request
// with the session token.
func NewAPI(baseURL, token string, hc *http.Client) *API {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &API{baseURL: baseURL, token: token, hc: hc}
}

// ListMessages returns all messages in the group, oldest first.
func (a *API) ListMessages(ctx context.Context, groupID int) ([]Message, error) {
	var out struct {
		Messages []Message `json:"messages"`
	}
	err := a.getJSON(ctx, fmt.Sprintf("/api/groups/%d/messages", groupID), &out)
	return out.Messages, err
}

// PostMessage submits a new group message and returns the stored record.
func (a *API) PostMessage(ctx context.Context, groupID int, content string) (Message, error) {
	var msg Message
	err := a.postJSON(ctx, fmt.Sprintf("/api/groups/%d/messages", groupID), map[string]string{"content": content}, &msg)
	return msg, err
}

// TripCheckInStatus returns every member's latest check-in on the trip.
func (a *API) TripCheckInStatus(ctx context.Context, tripID int) ([]CheckInStatus, TripInfo, error) {
	var out struct {
		CheckInStatuses []CheckInStatus `json:"checkInStatuses"`
		TripInfo        TripInfo        `json:"tripInfo"`
	}
	err := a.getJSON(ctx, fmt.Sprintf("/api/trips/%d/check-in-status", tripID), &out)
	return out.CheckInStatuses, out.TripInfo, err
}

// MyCheckIn returns the user's current check-in. ErrNotFound when the
// user has not checked in yet.
func (a *API) MyCheckIn(ctx context.Context, tripID, userID int) (CheckIn, error) {
	var ci CheckIn
	err := a.getJSON(ctx, fmt.Sprintf("/api/trips/%d/check-ins/user/%d", tripID, userID), &ci)
	return ci, err
}

// SubmitCheckIn upserts the caller's check-in.
func (a *API) SubmitCheckIn(ctx context.Context, tripID int, status, notes string) (CheckIn, error) {
	var ci CheckIn
	err := a.postJSON(ctx, fmt.Sprintf("/api/trips/%d/check-ins", tripID), map[string]string{"status": status, "notes": notes}, &ci)
	return ci, err
}

// Roster returns the full user roster.
func (a *API) Roster(ctx context.Context) ([]RosterEntry, error) {
	var out struct {
		Users []RosterEntry `json:"users"`
	}
	err := a.getJSON(ctx, "/api/users", &out)
	return out.Users, err
}

// ErrNotFound reports a 404 from the service.
var ErrNotFound = errors.New("not found")

func (a *API) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	return a.do(req, out)
}

func (a *API) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, out)
}

func (a *API) do(req *http.Request, out interface{}) error {
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(body))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
