package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	sizedomain "github.com/smallbiznis/stockroom/internal/size/domain"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
)

type batchCreateSizesRequest struct {
	Items []sizedomain.CreateRequest `json:"items" binding:"required,dive"`
}

func (s *Server) ListSizes(c *gin.Context) {
	var query struct {
		Name    string `form:"name"`
		Height  string `form:"height"`
		Weight  string `form:"weight"`
		SortBy  string `form:"sort_by"`
		OrderBy string `form:"order_by"`
		pagination.Page
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	height, err := parseOptionalInt(query.Height)
	if err != nil {
		AbortWithError(c, newValidationError("height", "invalid_height", "invalid height"))
		return
	}
	weight, err := parseOptionalInt(query.Weight)
	if err != nil {
		AbortWithError(c, newValidationError("weight", "invalid_weight", "invalid weight"))
		return
	}

	resp, err := s.sizeSvc.List(c.Request.Context(), sizedomain.ListRequest{
		Name:    strings.TrimSpace(query.Name),
		Height:  height,
		Weight:  weight,
		SortBy:  query.SortBy,
		OrderBy: query.OrderBy,
		Page:    query.Page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateSize(c *gin.Context) {
	var req sizedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.sizeSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) BatchCreateSizes(c *gin.Context) {
	var req batchCreateSizesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.sizeSvc.BatchCreate(c.Request.Context(), req.Items)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetSizeByID(c *gin.Context) {
	resp, err := s.sizeSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSize(c *gin.Context) {
	var req sizedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	req.ID = c.Param("id")

	resp, err := s.sizeSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSize(c *gin.Context) {
	if err := s.sizeSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
