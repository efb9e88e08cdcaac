package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"staff_rota_backend/internal/services"
	"staff_rota_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SwapHandler holds the swap service.
type SwapHandler struct {
	swapService services.SwapService
}

// NewSwapHandler creates a new SwapHandler.
func NewSwapHandler(ss services.SwapService) *SwapHandler {
	return &SwapHandler{swapService: ss}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid "+name+" parameter.", c.Param(name)))
		return 0, false
	}
	return id, true
}

func respondWorkflowError(c *gin.Context, err error, context string) {
	utils.LogError(err, context)
	switch {
	case errors.Is(err, services.ErrShiftNotFound),
		errors.Is(err, services.ErrSwapNotFound),
		errors.Is(err, services.ErrCycleNotFound),
		errors.Is(err, services.ErrUserNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Referenced record not found.", err.Error()))
	case errors.Is(err, services.ErrNotOwner):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not own this shift.", err.Error()))
	case errors.Is(err, services.ErrAlreadyTerminal),
		errors.Is(err, services.ErrNotOpen),
		errors.Is(err, services.ErrDuplicatePending),
		errors.Is(err, services.ErrAlreadyCycled),
		errors.Is(err, services.ErrIneligible),
		errors.Is(err, services.ErrSelfReference),
		errors.Is(err, services.ErrAlreadyVolunteered),
		errors.Is(err, services.ErrCovererMissing):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Workflow precondition failed.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Internal server error.", "Internal error"))
	}
}

// RequestSwap opens a swap request for one of the caller's shifts.
func (h *SwapHandler) RequestSwap(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.RequestSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "RequestSwap: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	swap, err := h.swapService.Request(userID, req)
	if err != nil {
		respondWorkflowError(c, err, "RequestSwap: Error from swapService.Request")
		return
	}
	c.JSON(http.StatusCreated, swap)
}

// ApproveSwap approves a pending swap request. The payload may name a
// different coverer than the suggested target.
func (h *SwapHandler) ApproveSwap(c *gin.Context) {
	swapID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.ApproveSwapRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.LogError(err, "ApproveSwap: Failed to bind JSON")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
			return
		}
	}

	swap, err := h.swapService.Approve(swapID, req.CovererID)
	if err != nil {
		respondWorkflowError(c, err, "ApproveSwap: Error from swapService.Approve")
		return
	}
	c.JSON(http.StatusOK, swap)
}

// DenySwap denies a pending swap request.
func (h *SwapHandler) DenySwap(c *gin.Context) {
	swapID, ok := pathID(c, "id")
	if !ok {
		return
	}

	swap, err := h.swapService.Deny(swapID)
	if err != nil {
		respondWorkflowError(c, err, "DenySwap: Error from swapService.Deny")
		return
	}
	c.JSON(http.StatusOK, swap)
}

// GetMySwapRequests lists the caller's outgoing swap requests.
func (h *SwapHandler) GetMySwapRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	swaps, err := h.swapService.ListForRequester(userID)
	if err != nil {
		respondInternal(c, err, "GetMySwapRequests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"swap_requests": swaps})
}

// GetIncomingSwapRequests lists pending swaps targeting the caller.
func (h *SwapHandler) GetIncomingSwapRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	swaps, err := h.swapService.ListPendingForTarget(userID)
	if err != nil {
		respondInternal(c, err, "GetIncomingSwapRequests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"swap_requests": swaps})
}
