package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/buxdao/nft-ownership-sync/internal/api/shared/executor"
)

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// GetNFT retrieves a tracked NFT by mint address
	// GET /api/v1/nfts/:mint?events=<limit>
	GetNFT(c *gin.Context)

	// GetCollectionStats retrieves the listing stats of a collection
	// GET /api/v1/collections/:symbol/stats
	GetCollectionStats(c *gin.Context)

	// GetLastRun retrieves the summary of the last reconciliation pass of a collection
	// GET /api/v1/collections/:symbol/runs/last
	GetLastRun(c *gin.Context)

	// ListOutboxEntries lists notification outbox entries
	// GET /api/v1/outbox?status=<status1>,<status2>&limit=<limit>&offset=<offset>
	ListOutboxEntries(c *gin.Context)

	// RequeueOutboxEntry moves a failed or stuck outbox entry back to pending (requires authentication)
	// POST /api/v1/outbox/:id/requeue
	RequeueOutboxEntry(c *gin.Context)

	// RequeueFailedOutboxEntries moves failed outbox entries back to pending (requires authentication)
	// POST /api/v1/outbox/requeue?limit=<limit>
	RequeueFailedOutboxEntries(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{
		executor: exec,
	}
}

// getNFTQueryParams holds query parameters for GET /nfts/:mint
type getNFTQueryParams struct {
	Events int `form:"events,default=0" binding:"min=0"`
}

// listOutboxQueryParams holds query parameters for GET /outbox
type listOutboxQueryParams struct {
	Status []string `form:"status" collection_format:"csv"`
	Limit  int      `form:"limit,default=20" binding:"min=1"`
	Offset uint64   `form:"offset,default=0"`
}

// requeueQueryParams holds query parameters for POST /outbox/requeue
type requeueQueryParams struct {
	Limit int `form:"limit,default=0" binding:"min=0"`
}

func (h *handler) GetNFT(c *gin.Context) {
	var params getNFTQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, "Invalid query parameters", err.Error())
		return
	}

	nft, err := h.executor.GetNFT(c.Request.Context(), c.Param("mint"), params.Events)
	if err != nil {
		respondError(c, err, "Failed to get nft")
		return
	}
	if nft == nil {
		respondNotFound(c, "NFT not found")
		return
	}

	c.JSON(http.StatusOK, nft)
}

func (h *handler) GetCollectionStats(c *gin.Context) {
	symbol := c.Param("symbol")

	stats, err := h.executor.GetCollectionStats(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, err, "Failed to get collection stats")
		return
	}
	if stats == nil {
		respondNotFound(c, "Collection not found", symbol)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *handler) GetLastRun(c *gin.Context) {
	symbol := c.Param("symbol")

	summary, err := h.executor.GetLastRun(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, err, "Failed to get last run")
		return
	}
	if summary == nil {
		respondNotFound(c, "No reconciliation run recorded", symbol)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *handler) ListOutboxEntries(c *gin.Context) {
	var params listOutboxQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, "Invalid query parameters", err.Error())
		return
	}

	resp, err := h.executor.ListOutboxEntries(c.Request.Context(), params.Status, params.Limit, params.Offset)
	if err != nil {
		respondError(c, err, "Failed to list outbox entries")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) RequeueOutboxEntry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid outbox entry id")
		return
	}

	if err := h.executor.RequeueOutboxEntry(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to requeue outbox entry")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handler) RequeueFailedOutboxEntries(c *gin.Context) {
	var params requeueQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, "Invalid query parameters", err.Error())
		return
	}

	resp, err := h.executor.RequeueFailedOutboxEntries(c.Request.Context(), params.Limit)
	if err != nil {
		respondError(c, err, "Failed to requeue outbox entries")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "nft-sync-api",
	})
}
