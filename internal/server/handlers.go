package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/chitpool/internal/calculator"
	"github.com/mmynk/chitpool/internal/ledger"
	"github.com/mmynk/chitpool/internal/metrics"
	"github.com/mmynk/chitpool/internal/middleware"
	"github.com/mmynk/chitpool/internal/models"
)

// PoolHandler serves the REST surface over the ledger.
type PoolHandler struct {
	ledger *ledger.Ledger
}

// NewPoolHandler creates a PoolHandler backed by the given ledger.
func NewPoolHandler(l *ledger.Ledger) *PoolHandler {
	return &PoolHandler{ledger: l}
}

type createPoolRequest struct {
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	TotalAmount       int64     `json:"total_amount"`
	InstallmentAmount int64     `json:"installment_amount"`
	ParticipantLimit  int       `json:"participant_limit"`
	Deadline          time.Time `json:"deadline"`
	Creator           string    `json:"creator"`
}

type joinPoolRequest struct {
	Member string `json:"member"`
}

// CreatePool handles POST /api/v1/pools.
func (h *PoolHandler) CreatePool(c *gin.Context) {
	var req createPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reject(c, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	slog.Info("CreatePool request received",
		"title", req.Title,
		"participant_limit", req.ParticipantLimit,
		"creator", req.Creator,
		"request_id", middleware.GetRequestID(c),
	)

	pool, err := h.ledger.CreatePool(c.Request.Context(), ledger.CreatePoolInput{
		Title:             req.Title,
		Description:       req.Description,
		TotalAmount:       req.TotalAmount,
		InstallmentAmount: req.InstallmentAmount,
		ParticipantLimit:  req.ParticipantLimit,
		Deadline:          req.Deadline,
		Creator:           req.Creator,
	})
	if err != nil {
		slog.Warn("CreatePool rejected", "error", err, "request_id", middleware.GetRequestID(c))
		h.reject(c, err)
		return
	}

	metrics.PoolsCreated.Inc()
	slog.Info("Pool created", "pool_id", pool.ID, "title", pool.Title)

	c.JSON(http.StatusCreated, gin.H{"pool": pool})
}

// JoinPool handles POST /api/v1/pools/:id/join.
func (h *PoolHandler) JoinPool(c *gin.Context) {
	id, ok := poolIDParam(c)
	if !ok {
		return
	}

	var req joinPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reject(c, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	slog.Info("JoinPool request received",
		"pool_id", id,
		"member", req.Member,
		"request_id", middleware.GetRequestID(c),
	)

	if err := h.ledger.JoinPool(c.Request.Context(), id, req.Member); err != nil {
		slog.Warn("JoinPool rejected", "pool_id", id, "member", req.Member, "error", err)
		h.reject(c, err)
		return
	}

	metrics.PoolJoins.Inc()
	slog.Info("Pool joined", "pool_id", id, "member", req.Member)

	c.Status(http.StatusNoContent)
}

// ListPools handles GET /api/v1/pools. Without parameters it returns every
// pool in ascending id order. With member=, view=created narrows to pools
// the member opened (participant 0) and view=joined (the default) to any
// pool the member belongs to. Both views are derived from the participant
// lists on the fly, never from separate state.
func (h *PoolHandler) ListPools(c *gin.Context) {
	member := c.Query("member")
	view := c.Query("view")

	if view != "" && member == "" {
		respondError(c, fmt.Errorf("%w: view requires member", models.ErrInvalidInput))
		return
	}

	pools := h.ledger.ListAll()
	if member != "" {
		var keep func(models.Pool) bool
		switch view {
		case "created":
			keep = func(p models.Pool) bool { return p.Creator() == member }
		case "", "joined":
			keep = func(p models.Pool) bool { return p.HasParticipant(member) }
		default:
			respondError(c, fmt.Errorf("%w: unknown view %q", models.ErrInvalidInput, view))
			return
		}

		filtered := make([]models.Pool, 0, len(pools))
		for _, p := range pools {
			if keep(p) {
				filtered = append(filtered, p)
			}
		}
		pools = filtered
	}

	c.JSON(http.StatusOK, gin.H{"pools": pools})
}

// GetPool handles GET /api/v1/pools/:id.
func (h *PoolHandler) GetPool(c *gin.Context) {
	id, ok := poolIDParam(c)
	if !ok {
		return
	}

	pool, err := h.ledger.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pool": pool})
}

// GetParticipants handles GET /api/v1/pools/:id/participants. The list is
// in join order with the creator first.
func (h *PoolHandler) GetParticipants(c *gin.Context) {
	id, ok := poolIDParam(c)
	if !ok {
		return
	}

	participants, err := h.ledger.Participants(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

// GetSchedule handles GET /api/v1/pools/:id/schedule with the derived
// contribution timeline for the pool.
func (h *PoolHandler) GetSchedule(c *gin.Context) {
	id, ok := poolIDParam(c)
	if !ok {
		return
	}

	pool, err := h.ledger.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	schedule, err := calculator.ComputeSchedule(pool, time.Now().UTC())
	if err != nil {
		slog.Error("ComputeSchedule failed", "pool_id", id, "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

// Health handles GET /healthz.
func (h *PoolHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "pools": h.ledger.Count()})
}

// reject records a refused mutation in the rejection counter and writes the
// error envelope. Read-path failures skip the counter.
func (h *PoolHandler) reject(c *gin.Context, err error) {
	metrics.LedgerRejections.WithLabelValues(codeForError(err)).Inc()
	respondError(c, err)
}

// poolIDParam parses the :id route parameter. On failure it writes the
// error response and returns ok=false.
func poolIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, fmt.Errorf("%w: pool id must be an integer", models.ErrInvalidInput))
		return 0, false
	}
	return id, true
}
