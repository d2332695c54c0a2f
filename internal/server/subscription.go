package server

import (
	subscriptiondomain "github.com/fairpricelabs/fairprice/internal/subscription/domain"
	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	Tier subscriptiondomain.TierName `json:"tier" binding:"required"`
}

// @Summary      Get Subscription
// @Tags         subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]any
// @Router       /api/v1/subscription [get]
func (s *Server) GetSubscription(c *gin.Context) {
	sub, err := s.subscriptionSvc.Get(c.Request.Context(), ownerID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	tier, ok := s.subscriptionSvc.TierByName(sub.Tier)
	if !ok {
		AbortWithError(c, subscriptiondomain.ErrUnknownTier)
		return
	}
	respondData(c, gin.H{"subscription": sub, "tier": tier})
}

// @Summary      List Tiers
// @Tags         subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]any
// @Router       /api/v1/subscription/tiers [get]
func (s *Server) ListTiers(c *gin.Context) {
	respondData(c, s.subscriptionSvc.Tiers())
}

// @Summary      Create Checkout Session
// @Tags         subscription
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body checkoutRequest true "Checkout Request"
// @Success      200 {object} map[string]any
// @Router       /api/v1/subscription/checkout [post]
func (s *Server) CreateCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err.Error()))
		return
	}

	url, err := s.subscriptionSvc.CheckoutURL(c.Request.Context(), ownerID(c), req.Tier)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"url": url})
}

// @Summary      Create Billing Portal Session
// @Tags         subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]any
// @Router       /api/v1/subscription/portal [post]
func (s *Server) CreatePortal(c *gin.Context) {
	url, err := s.subscriptionSvc.PortalURL(c.Request.Context(), ownerID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"url": url})
}
