package handlers

import (
	"net/http"
	"time"

	"github.com/alimgiray/familytree/internal/services"
	"github.com/alimgiray/familytree/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     allowSameOrigin,
}

type FeedHandler struct {
	feed *services.FeedService
}

func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// Stream pushes member and note snapshots of the current user over a websocket
// until the client goes away
func (h *FeedHandler) Stream(c *gin.Context) {
	session := currentSession(c)
	log := logger.WithUser(session.UserID)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("Failed to upgrade feed connection")
		return
	}
	defer ws.Close()

	updates := make(chan services.Snapshot, 8)
	deliver := func(snapshot services.Snapshot) {
		for {
			select {
			case updates <- snapshot:
				return
			default:
			}
			// Slow reader, the newest snapshot supersedes the oldest queued one
			select {
			case <-updates:
			default:
			}
		}
	}

	unsubscribeMembers := h.feed.Subscribe(session.UserID, services.CollectionMembers, deliver)
	defer unsubscribeMembers()
	unsubscribeNotes := h.feed.Subscribe(session.UserID, services.CollectionNotes, deliver)
	defer unsubscribeNotes()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		ws.SetReadLimit(512)
		ws.SetReadDeadline(time.Now().Add(feedPongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(feedPongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Info("Feed client connected")
	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			log.Info("Feed client disconnected")
			return
		case snapshot := <-updates:
			ws.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := ws.WriteJSON(snapshot); err != nil {
				log.WithError(err).Warn("Failed to write feed snapshot")
				return
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(feedWriteWait)); err != nil {
				return
			}
		}
	}
}

// allowSameOrigin keeps the default origin check but tolerates clients that send none
func allowSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
}
