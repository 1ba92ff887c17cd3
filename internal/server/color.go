package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	colordomain "github.com/smallbiznis/stockroom/internal/color/domain"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
)

type batchCreateColorsRequest struct {
	Items []colordomain.CreateRequest `json:"items" binding:"required,dive"`
}

func (s *Server) ListColors(c *gin.Context) {
	var query struct {
		Name    string `form:"name"`
		SortBy  string `form:"sort_by"`
		OrderBy string `form:"order_by"`
		pagination.Page
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.colorSvc.List(c.Request.Context(), colordomain.ListRequest{
		Name:    strings.TrimSpace(query.Name),
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

func (s *Server) CreateColor(c *gin.Context) {
	var req colordomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.colorSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) BatchCreateColors(c *gin.Context) {
	var req batchCreateColorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.colorSvc.BatchCreate(c.Request.Context(), req.Items)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetColorByID(c *gin.Context) {
	resp, err := s.colorSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateColor(c *gin.Context) {
	var req colordomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	req.ID = c.Param("id")

	resp, err := s.colorSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteColor(c *gin.Context) {
	if err := s.colorSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
