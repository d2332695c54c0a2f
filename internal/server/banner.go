package server

import (
	"context"
	"strconv"

	"github.com/bwmarrin/snowflake"
	bannerdomain "github.com/fairpricelabs/fairprice/internal/banner/domain"
	viewdomain "github.com/fairpricelabs/fairprice/internal/view/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type bannerResponse struct {
	Message           string `json:"message"`
	Coupon            string `json:"coupon"`
	CountryName       string `json:"country_name"`
	BackgroundColor   string `json:"background_color"`
	TextColor         string `json:"text_color"`
	FontSize          string `json:"font_size"`
	BannerContainer   string `json:"banner_container"`
	IsSticky          bool   `json:"is_sticky"`
	ClassPrefix       string `json:"class_prefix"`
	CanRemoveBranding bool   `json:"can_remove_branding"`
}

// @Summary      Resolve Banner
// @Description  Public endpoint embedded on customer pages. Resolves the
// @Description  visitor's country to the product owner's discount.
// @Tags         banner
// @Produce      json
// @Param        product_id path int true "Product ID"
// @Success      200 {object} map[string]any
// @Router       /api/banner/{product_id} [get]
func (s *Server) GetBanner(c *gin.Context) {
	raw, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		AbortWithError(c, invalidRequestError("invalid product id"))
		return
	}
	productID := snowflake.ID(raw)

	countryCode := c.GetHeader(s.cfg.Banner.CountryHeader)
	if countryCode == "" && s.cfg.IsDevelopment() {
		countryCode = s.cfg.Banner.TestCountryCode
	}
	if countryCode == "" {
		AbortWithError(c, bannerdomain.ErrNoBanner)
		return
	}

	// The embedding page, for the URL match.
	pageURL := c.GetHeader("Referer")
	if pageURL == "" {
		pageURL = c.GetHeader("Origin")
	}

	ctx := c.Request.Context()
	res, err := s.bannerSvc.Resolve(ctx, bannerdomain.ResolveRequest{
		ProductID:   productID,
		CountryCode: countryCode,
		PageURL:     pageURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	banner := res.Banner()
	if banner == nil {
		AbortWithError(c, bannerdomain.ErrNoBanner)
		return
	}

	// Quota gate before anything is shown or counted.
	canShow, err := s.subscriptionSvc.CanShowBanner(ctx, banner.OwnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !canShow {
		AbortWithError(c, bannerdomain.ErrNoBanner)
		return
	}

	canRemoveBranding, err := s.subscriptionSvc.CanRemoveBranding(ctx, banner.OwnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The impression is recorded off the request path; a failed write must
	// not block the render.
	go func(req viewdomain.RecordRequest) {
		if err := s.viewSvc.Record(context.WithoutCancel(ctx), req); err != nil {
			s.log.Error("record view", zap.Int64("product_id", int64(req.ProductID)), zap.Error(err))
		}
	}(viewdomain.RecordRequest{
		ProductID: banner.ProductID,
		OwnerID:   banner.OwnerID,
		CountryID: &banner.CountryID,
	})

	respondData(c, bannerResponse{
		Message:           banner.Message,
		Coupon:            banner.Coupon,
		CountryName:       banner.CountryName,
		BackgroundColor:   banner.BackgroundColor,
		TextColor:         banner.TextColor,
		FontSize:          banner.FontSize,
		BannerContainer:   banner.BannerContainer,
		IsSticky:          banner.IsSticky,
		ClassPrefix:       banner.ClassPrefix,
		CanRemoveBranding: canRemoveBranding,
	})
}
