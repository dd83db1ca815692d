package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alimgiray/familytree/internal/services"
	"github.com/alimgiray/familytree/internal/workers"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialFeed(t *testing.T, s *testServer, url string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if s.cookie != nil {
		header.Set("Cookie", "session="+s.cookie.Value)
	}
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/api/feed", header)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// nextMembers reads snapshots until a members snapshot satisfying match arrives
func nextMembers(t *testing.T, conn *websocket.Conn, match func(services.Snapshot) bool) services.Snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var snapshot services.Snapshot
		require.NoError(t, conn.ReadJSON(&snapshot))
		if snapshot.Collection == services.CollectionMembers && match(snapshot) {
			return snapshot
		}
	}
}

func TestFeedStream(t *testing.T) {
	s := newTestServer(t)

	manager := workers.NewWorkerManager(s.feed)
	require.NoError(t, manager.StartAll())
	t.Cleanup(func() { manager.StopAll() })

	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	w := s.do(t, http.MethodPost, "/auth/anonymous", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var first services.SaveResult
	w = s.do(t, http.MethodPost, "/api/members", gin.H{"name": "Ada", "gender": "female"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &first)

	conn := dialFeed(t, s, srv.URL)

	t.Run("initial snapshot", func(t *testing.T) {
		snapshot := nextMembers(t, conn, func(services.Snapshot) bool { return true })
		require.Len(t, snapshot.Members, 1)
		assert.Equal(t, first.Person.ID, snapshot.Members[0].ID)
		assert.Equal(t, first.Person.ID, snapshot.RootID)
	})

	t.Run("pushed after save", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/members", gin.H{
			"name":     "Byron",
			"gender":   "male",
			"childIds": []string{first.Person.ID},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		snapshot := nextMembers(t, conn, func(snap services.Snapshot) bool { return len(snap.Members) == 2 })
		assert.Equal(t, first.Person.ID, snapshot.RootID)
		ids := []string{snapshot.Members[0].ID, snapshot.Members[1].ID}
		assert.Contains(t, ids, first.Person.ID)
	})
}

func TestFeedRequiresSession(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/feed", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
