package server

import (
	"io"
	"net/http"

	identitydomain "github.com/fairpricelabs/fairprice/internal/identity/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      Identity Provider Webhook
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200 {object} map[string]any
// @Router       /webhooks/identity [post]
func (s *Server) HandleIdentityWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError("unreadable body"))
		return
	}

	err = s.identityWebhook.HandleEvent(c.Request.Context(), payload, identitydomain.WebhookHeaders{
		ID:        c.GetHeader("svix-id"),
		Timestamp: c.GetHeader("svix-timestamp"),
		Signature: c.GetHeader("svix-signature"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// @Summary      Billing Provider Webhook
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200 {object} map[string]any
// @Router       /webhooks/billing [post]
func (s *Server) HandleBillingWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError("unreadable body"))
		return
	}

	err = s.billingWebhook.HandleEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
