package web

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/PancyStudios/ModRelayGo/pkg/queue"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// QueueStore is what the routes need from the command queue
type QueueStore interface {
	Enqueue(ctx context.Context, action models.Action, payload json.RawMessage) (int64, error)
	ListPending(ctx context.Context, limit int) ([]models.Command, error)
	MarkExecuted(ctx context.Context, id int64) (bool, error)
	ListBans(ctx context.Context) ([]models.Ban, error)
	GetBan(ctx context.Context, subjectID string) (*models.Ban, error)
	ListBlacklistedGroups(ctx context.Context) ([]models.BlacklistedGroup, error)
	Stats(ctx context.Context) (queue.Stats, error)
}

// Notifier receives queue events. It is a hint channel only.
type Notifier interface {
	CommandEnqueued(id int64, action models.Action)
	CommandExecuted(id int64)
}

// RoutesConfig wires the queue routes
type RoutesConfig struct {
	Store    QueueStore
	Auth     *Authenticator
	Notifier Notifier
	Service  string
	Instance string
	// BatchSize is the poll size used when the consumer gives no limit
	BatchSize int
	Now       func() time.Time
}

type queueHandlers struct {
	cfg RoutesConfig
}

// SetupQueueRoutes registers the queue API on s
func SetupQueueRoutes(s *Server, cfg RoutesConfig) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Service == "" {
		cfg.Service = "ModRelay Moderation API"
	}
	h := &queueHandlers{cfg: cfg}

	s.GET("/", h.health)

	api := s.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/stats", cfg.Auth.Middleware(), h.stats)
	}

	authed := s.Group("/", cfg.Auth.Middleware())
	{
		authed.POST("/command", h.submit)
		authed.GET("/commands", h.pending)
		authed.POST("/commands/complete", h.complete)
		authed.GET("/bans", h.bans)
		authed.GET("/bans/:userId", h.ban)
		authed.GET("/blacklistedcrews", h.groups)
	}
}

// health is the unauthenticated liveness probe
func (h *queueHandlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"message":   h.cfg.Service,
		"instance":  h.cfg.Instance,
		"timestamp": h.cfg.Now().UnixMilli(),
	})
}

func (h *queueHandlers) submit(c *gin.Context) {
	var req struct {
		Action models.Action   `json:"action"`
		Data   json.RawMessage `json:"data"`
	}
	body, err := c.GetRawData()
	if err != nil || json.Unmarshal(body, &req) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing action or data"})
		return
	}

	id, err := h.cfg.Store.Enqueue(c.Request.Context(), req.Action, req.Data)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.cfg.Notifier != nil {
		h.cfg.Notifier.CommandEnqueued(id, req.Action)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"commandId": id,
	})
}

type pendingCommand struct {
	ID        int64           `json:"id"`
	Action    models.Action   `json:"action"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}

func (h *queueHandlers) pending(c *gin.Context) {
	limit := h.cfg.BatchSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	commands, err := h.cfg.Store.ListPending(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]pendingCommand, 0, len(commands))
	for _, cmd := range commands {
		out = append(out, pendingCommand{
			ID:        cmd.ID,
			Action:    cmd.Action,
			Data:      cmd.Payload,
			CreatedAt: cmd.CreatedAt.UnixMilli(),
		})
	}
	c.JSON(http.StatusOK, out)
}

// commandID accepts the id as a JSON number or numeric string
type commandID int64

func (id *commandID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*id = commandID(n)
	return nil
}

func (h *queueHandlers) complete(c *gin.Context) {
	var req struct {
		CommandID commandID `json:"commandId"`
	}
	body, err := c.GetRawData()
	if err != nil || json.Unmarshal(body, &req) != nil || req.CommandID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing commandId"})
		return
	}

	changed, err := h.cfg.Store.MarkExecuted(c.Request.Context(), int64(req.CommandID))
	if err != nil {
		respondError(c, err)
		return
	}

	if changed && h.cfg.Notifier != nil {
		h.cfg.Notifier.CommandExecuted(int64(req.CommandID))
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// banRow keeps the column names the game server already reads
type banRow struct {
	RobloxID  string `json:"roblox_id"`
	Username  string `json:"username"`
	Reason    string `json:"reason"`
	Proof     string `json:"proof"`
	BannedBy  string `json:"banned_by"`
	BannedAt  int64  `json:"banned_at"`
	ExpiresAt *int64 `json:"expires_at"`
}

func toBanRow(b models.Ban) banRow {
	row := banRow{
		RobloxID: b.SubjectID,
		Username: b.Username,
		Reason:   b.Reason,
		Proof:    b.Proof,
		BannedBy: b.IssuedBy,
		BannedAt: b.IssuedAt.UnixMilli(),
	}
	if b.ExpiresAt != nil {
		ms := b.ExpiresAt.UnixMilli()
		row.ExpiresAt = &ms
	}
	return row
}

func (h *queueHandlers) bans(c *gin.Context) {
	bans, err := h.cfg.Store.ListBans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]banRow, 0, len(bans))
	for _, b := range bans {
		out = append(out, toBanRow(b))
	}
	c.JSON(http.StatusOK, out)
}

func (h *queueHandlers) ban(c *gin.Context) {
	ban, err := h.cfg.Store.GetBan(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBanRow(*ban))
}

type groupRow struct {
	GroupID       string `json:"group_id"`
	BlacklistedBy string `json:"blacklisted_by"`
	BlacklistedAt int64  `json:"blacklisted_at"`
}

func (h *queueHandlers) groups(c *gin.Context) {
	groups, err := h.cfg.Store.ListBlacklistedGroups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]groupRow, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupRow{
			GroupID:       g.GroupID,
			BlacklistedBy: g.IssuedBy,
			BlacklistedAt: g.IssuedAt.UnixMilli(),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *queueHandlers) stats(c *gin.Context) {
	st, err := h.cfg.Store.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"instance": h.cfg.Instance,
		"queue":    st,
	})
}

// compile-time check that the SQLite store satisfies the routes
var _ QueueStore = (*queue.Store)(nil)
