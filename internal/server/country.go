package server

import (
	countrydomain "github.com/fairpricelabs/fairprice/internal/country/domain"
	"github.com/gin-gonic/gin"
)

type updateDiscountsRequest struct {
	Discounts []countrydomain.DiscountUpdate `json:"discounts" binding:"required"`
}

// @Summary      List Country Groups With Discounts
// @Tags         countries
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "Product ID"
// @Success      200 {object} map[string]any
// @Router       /api/v1/products/{product_id}/country-discounts [get]
func (s *Server) ListCountryDiscounts(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}

	groups, err := s.countrySvc.GroupsWithDiscounts(c.Request.Context(), id, ownerID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, groups)
}

// @Summary      Update Country Group Discounts
// @Tags         countries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "Product ID"
// @Param        request body updateDiscountsRequest true "Discount Updates"
// @Success      200 {object} map[string]any
// @Router       /api/v1/products/{product_id}/country-discounts [put]
func (s *Server) UpdateCountryDiscounts(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}

	var req updateDiscountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err.Error()))
		return
	}

	owner := ownerID(c)
	if err := s.countrySvc.UpdateDiscounts(c.Request.Context(), id, owner, req.Discounts); err != nil {
		AbortWithError(c, err)
		return
	}

	groups, err := s.countrySvc.GroupsWithDiscounts(c.Request.Context(), id, owner)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, groups)
}
