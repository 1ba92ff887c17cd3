package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	movementdomain "github.com/smallbiznis/stockroom/internal/movement/domain"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
)

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Name       string `form:"name"`
		CategoryID string `form:"category_id"`
		Enable     string `form:"enable"`
		InStock    string `form:"in_stock"`
		MinPrice   string `form:"min_price"`
		MaxPrice   string `form:"max_price"`
		SortBy     string `form:"sort_by"`
		OrderBy    string `form:"order_by"`
		pagination.Page
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	enable, err := parseOptionalBool(query.Enable)
	if err != nil {
		AbortWithError(c, newValidationError("enable", "invalid_enable", "invalid enable"))
		return
	}
	inStock, err := parseOptionalBool(query.InStock)
	if err != nil {
		AbortWithError(c, newValidationError("in_stock", "invalid_in_stock", "invalid in_stock"))
		return
	}
	minPrice, err := parseOptionalDecimal(query.MinPrice)
	if err != nil {
		AbortWithError(c, newValidationError("min_price", "invalid_min_price", "invalid min_price"))
		return
	}
	maxPrice, err := parseOptionalDecimal(query.MaxPrice)
	if err != nil {
		AbortWithError(c, newValidationError("max_price", "invalid_max_price", "invalid max_price"))
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		Name:       strings.TrimSpace(query.Name),
		CategoryID: query.CategoryID,
		Enable:     enable,
		InStock:    inStock,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		SortBy:     query.SortBy,
		OrderBy:    query.OrderBy,
		Page:       query.Page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.productSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	req.ID = c.Param("id")

	resp, err := s.productSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListProductMovements returns the stock journal of one product. The product
// must exist so that an unknown id is a 404 rather than an empty page.
func (s *Server) ListProductMovements(c *gin.Context) {
	var query struct {
		Reason string `form:"reason"`
		pagination.Page
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.productSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.movementSvc.List(c.Request.Context(), movementdomain.ListRequest{
		ProductID: product.ID,
		Reason:    query.Reason,
		Page:      query.Page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
