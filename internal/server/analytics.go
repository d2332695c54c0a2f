package server

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/fairpricelabs/fairprice/internal/analytics/domain"
	productdomain "github.com/fairpricelabs/fairprice/internal/product/domain"
	"github.com/gin-gonic/gin"
)

// analyticsQuery binds the shared query parameters and enforces the tier
// gate. Returns false when the request was already answered.
func (s *Server) analyticsQuery(c *gin.Context) (analyticsdomain.Query, bool) {
	owner := ownerID(c)

	allowed, err := s.subscriptionSvc.CanAccessAnalytics(c.Request.Context(), owner)
	if err != nil {
		AbortWithError(c, err)
		return analyticsdomain.Query{}, false
	}
	if !allowed {
		AbortWithError(c, productdomain.ErrPermissionDenied)
		return analyticsdomain.Query{}, false
	}

	q := analyticsdomain.Query{
		OwnerID:  owner,
		Timezone: c.DefaultQuery("timezone", "UTC"),
		Interval: analyticsdomain.Interval(c.DefaultQuery("interval", string(analyticsdomain.IntervalLast7Days))),
	}
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			AbortWithError(c, invalidRequestError("invalid product id"))
			return analyticsdomain.Query{}, false
		}
		sid := snowflake.ID(id)
		q.ProductID = &sid
	}
	return q, true
}

// @Summary      Views By Day
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        interval   query string false "last7Days | last30Days | last365Days"
// @Param        timezone   query string false "IANA timezone"
// @Param        product_id query int    false "Product filter"
// @Success      200 {object} map[string]any
// @Router       /api/v1/analytics/views-by-day [get]
func (s *Server) ViewsByDay(c *gin.Context) {
	q, ok := s.analyticsQuery(c)
	if !ok {
		return
	}

	series, err := s.analyticsSvc.ViewsByDay(c.Request.Context(), q)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, series)
}

// @Summary      Views By Country
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        interval   query string false "last7Days | last30Days | last365Days"
// @Param        timezone   query string false "IANA timezone"
// @Param        product_id query int    false "Product filter"
// @Success      200 {object} map[string]any
// @Router       /api/v1/analytics/views-by-country [get]
func (s *Server) ViewsByCountry(c *gin.Context) {
	q, ok := s.analyticsQuery(c)
	if !ok {
		return
	}

	rows, err := s.analyticsSvc.ViewsByCountry(c.Request.Context(), q)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, rows)
}

// @Summary      Views By Purchasing Power Group
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        interval   query string false "last7Days | last30Days | last365Days"
// @Param        timezone   query string false "IANA timezone"
// @Param        product_id query int    false "Product filter"
// @Success      200 {object} map[string]any
// @Router       /api/v1/analytics/views-by-ppp-group [get]
func (s *Server) ViewsByPPPGroup(c *gin.Context) {
	q, ok := s.analyticsQuery(c)
	if !ok {
		return
	}

	rows, err := s.analyticsSvc.ViewsByPPPGroup(c.Request.Context(), q)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, rows)
}
