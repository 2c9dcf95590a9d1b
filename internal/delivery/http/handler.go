package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dealhound/backend/internal/domain"
)

// ShoppingListMatcher is the pipeline entry point the handler depends on
type ShoppingListMatcher interface {
	MatchShoppingList(ctx context.Context, req *domain.MatchRequest) (*domain.MatchResponse, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	matcher ShoppingListMatcher
}

// NewHandler creates a new HTTP handler
func NewHandler(matcher ShoppingListMatcher) *Handler {
	return &Handler{matcher: matcher}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dealhound-backend",
		"version": "1.0.0",
	})
}

// MatchShoppingList handles shopping list matching requests
func (h *Handler) MatchShoppingList(c *gin.Context) {
	var req domain.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "shopping_list is required and must be a non-empty array",
		})
		return
	}

	if len(req.ShoppingList) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "shopping_list is required and must be a non-empty array",
		})
		return
	}

	response, err := h.matcher.MatchShoppingList(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		log.Printf("[HANDLER] Match request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}
