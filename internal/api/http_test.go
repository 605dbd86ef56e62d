package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/match"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/rating"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/ws"
)

func newTestServer(t *testing.T) (*httptest.Server, *match.Engine) {
	t.Helper()
	ratings := rating.NewStore(nil)
	hub := ws.NewHub()
	go hub.Run()
	eng := match.NewEngine(match.Config{}, ratings, hub)
	srv := httptest.NewServer(NewRouter(eng, ratings, hub))
	t.Cleanup(srv.Close)
	return srv, eng
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func TestJoinLeaveRoundtrip(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/queue/join", map[string]any{
		"player_ids": []string{"a", "b"}, "region": "eu",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "queued", out["status"])
	assert.Equal(t, float64(2), out["queue_size"])

	resp = postJSON(t, srv.URL+"/queue/join", map[string]any{
		"player_ids": []string{"a"}, "region": "na",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/queue/leave", map[string]any{"player_id": "a"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/queue/leave", map[string]any{"player_id": "a"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMatchEndpoints(t *testing.T) {
	srv, eng := newTestServer(t)

	resp, err := http.Get(srv.URL + "/match/a")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	for _, id := range []string{"a", "b", "c", "d"} {
		postJSON(t, srv.URL+"/queue/join", map[string]any{
			"player_ids": []string{id}, "region": "eu",
		})
	}
	m, ok := eng.TryFormMatch()
	require.True(t, ok)

	resp, err = http.Get(srv.URL + "/match/a")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		MatchID string `json:"match_id"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, m.ID, got.MatchID)
	assert.Equal(t, "Pending", got.Status)

	for _, id := range []string{"a", "b", "c", "d"} {
		resp = postJSON(t, srv.URL+"/match/accept", map[string]any{"player_id": id})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/match/result", map[string]any{
		"match_id": m.ID, "winning_team": 1,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/player/a")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p struct {
		Rating        int `json:"rating"`
		MatchesPlayed int `json:"matches_played"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, 1516, p.Rating)
	assert.Equal(t, 1, p.MatchesPlayed)

	resp, err = http.Get(srv.URL + "/player/stranger")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResultValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv.URL+"/match/result", map[string]any{
		"match_id": "nope", "winning_team": 3,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
