package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	variantdomain "github.com/smallbiznis/stockroom/internal/variant/domain"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
)

type batchCreateVariantsRequest struct {
	Items []variantdomain.CreateRequest `json:"items" binding:"required,dive"`
}

func (s *Server) ListVariants(c *gin.Context) {
	var query struct {
		ProductID string `form:"product_id"`
		ColorID   string `form:"color_id"`
		SizeID    string `form:"size_id"`
		SortBy    string `form:"sort_by"`
		OrderBy   string `form:"order_by"`
		pagination.Page
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.variantSvc.List(c.Request.Context(), variantdomain.ListRequest{
		ProductID: query.ProductID,
		ColorID:   query.ColorID,
		SizeID:    query.SizeID,
		SortBy:    query.SortBy,
		OrderBy:   query.OrderBy,
		Page:      query.Page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateVariant(c *gin.Context) {
	var req variantdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.variantSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) BatchCreateVariants(c *gin.Context) {
	var req batchCreateVariantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.variantSvc.BatchCreate(c.Request.Context(), req.Items)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetVariantByID(c *gin.Context) {
	resp, err := s.variantSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateVariant(c *gin.Context) {
	var req variantdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	req.ID = c.Param("id")

	resp, err := s.variantSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteVariant(c *gin.Context) {
	if err := s.variantSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
