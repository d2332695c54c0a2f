package server

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
	productdomain "github.com/fairpricelabs/fairprice/internal/product/domain"
	"github.com/gin-gonic/gin"
)

func productIDParam(c *gin.Context) (snowflake.ID, bool) {
	raw, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		AbortWithError(c, invalidRequestError("invalid product id"))
		return 0, false
	}
	return snowflake.ID(raw), true
}

// @Summary      List Products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]any
// @Router       /api/v1/products [get]
func (s *Server) ListProducts(c *gin.Context) {
	products, err := s.productSvc.List(c.Request.Context(), ownerID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, products)
}

// @Summary      Create Product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body productdomain.CreateProductRequest true "Create Product Request"
// @Success      200 {object} map[string]any
// @Router       /api/v1/products [post]
func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err.Error()))
		return
	}
	req.OwnerID = ownerID(c)

	product, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, product)
}

// @Summary      Get Product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "Product ID"
// @Success      200 {object} map[string]any
// @Router       /api/v1/products/{product_id} [get]
func (s *Server) GetProduct(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}

	product, err := s.productSvc.Get(c.Request.Context(), ownerID(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, product)
}

// @Summary      Update Product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "Product ID"
// @Param        request body productdomain.UpdateProductRequest true "Update Product Request"
// @Success      200 {object} map[string]any
// @Router       /api/v1/products/{product_id} [put]
func (s *Server) UpdateProduct(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}

	var req productdomain.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err.Error()))
		return
	}
	req.OwnerID = ownerID(c)
	req.ID = id

	product, err := s.productSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, product)
}

// @Summary      Delete Product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "Product ID"
// @Success      200 {object} map[string]any
// @Router       /api/v1/products/{product_id} [delete]
func (s *Server) DeleteProduct(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}

	if err := s.productSvc.Delete(c.Request.Context(), ownerID(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"deleted": true})
}

// @Summary      Get Banner Customization
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "Product ID"
// @Success      200 {object} map[string]any
// @Router       /api/v1/products/{product_id}/customization [get]
func (s *Server) GetCustomization(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}

	customization, err := s.productSvc.GetCustomization(c.Request.Context(), ownerID(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, customization)
}

// @Summary      Update Banner Customization
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "Product ID"
// @Param        request body productdomain.UpdateCustomizationRequest true "Update Customization Request"
// @Success      200 {object} map[string]any
// @Router       /api/v1/products/{product_id}/customization [put]
func (s *Server) UpdateCustomization(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}

	var req productdomain.UpdateCustomizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err.Error()))
		return
	}
	req.OwnerID = ownerID(c)
	req.ProductID = id

	customization, err := s.productSvc.UpdateCustomization(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, customization)
}
