package handlers

import (
	"net/http"
	"os"
	"strings"
	"time"

	"classroom-live/internal/realtime"
	"classroom-live/internal/utils"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func closeDeadline() time.Time {
	return time.Now().Add(10 * time.Second)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		allowedOrigins := []string{
			"http://localhost:3000",
			"https://localhost:3000",
			"http://localhost",
			"https://localhost",
		}

		if customOrigins := os.Getenv("ALLOWED_ORIGINS"); customOrigins != "" {
			for _, customOrigin := range strings.Split(customOrigins, ",") {
				allowedOrigins = append(allowedOrigins, strings.TrimSpace(customOrigin))
			}
		}

		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				return true
			}
		}

		if origin != "" && (strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")) {
			return true
		}

		return false
	},
}

type WSHandler struct {
	registry *realtime.Registry
}

func NewWSHandler(registry *realtime.Registry) *WSHandler {
	return &WSHandler{registry: registry}
}

// HandleChat subscribes the connection to a course channel for chat and
// presence. GET /ws/chat/:courseId
func (h *WSHandler) HandleChat(c *gin.Context) {
	courseID, ok := h.courseID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	h.serve(c, userID, realtime.ChatIntent(courseID))
}

// HandlePresence subscribes the connection for presence updates only.
// GET /ws/presence/:courseId
func (h *WSHandler) HandlePresence(c *gin.Context) {
	courseID, ok := h.courseID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	h.serve(c, userID, realtime.PresenceIntent(courseID))
}

// HandleNotifications binds the connection as the user's direct
// notification target. GET /ws/notifications?userId={id}
func (h *WSHandler) HandleNotifications(c *gin.Context) {
	authUserID, ok := h.userID(c)
	if !ok {
		return
	}

	// The bound user id comes from the query parameter but must match the
	// authenticated session.
	userIDStr := c.Query("userId")
	if userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId parameter is required"})
		return
	}
	userID, err := utils.StringToUint(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId parameter"})
		return
	}
	if userID != authUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "userId does not match authenticated user"})
		return
	}

	h.serve(c, userID, realtime.NotifyIntent(userID))
}

// HandleUnknown rejects any other path under /ws explicitly: the connection
// is upgraded, then closed with a protocol error so the peer learns why it
// will never receive traffic.
func (h *WSHandler) HandleUnknown(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	slog.Warn("Rejecting unknown WebSocket path", "path", c.Request.URL.Path)
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseProtocolError, "unknown path"),
		closeDeadline(),
	)
	conn.Close()
}

func (h *WSHandler) serve(c *gin.Context, userID uint, intent realtime.Intent) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "userID", userID, "error", err)
		return
	}

	client := realtime.NewClient(h.registry, conn, userID, intent)
	if err := h.registry.Accept(client); err != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseProtocolError, err.Error()),
			closeDeadline(),
		)
		conn.Close()
		return
	}

	slog.Info("WebSocket connection established", "clientID", client.ID(), "userID", userID, "intent", intent.String())
	h.registry.Serve(client)
}

func (h *WSHandler) courseID(c *gin.Context) (uint, bool) {
	courseID, err := utils.StringToUint(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid courseId parameter"})
		return 0, false
	}
	return courseID, true
}

func (h *WSHandler) userID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	userID, ok := v.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}
