package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	movementdomain "github.com/smallbiznis/stockroom/internal/movement/domain"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"go.uber.org/zap"
)

func (s *Server) ListMovements(c *gin.Context) {
	var query struct {
		ProductID  string `form:"product_id"`
		CategoryID string `form:"category_id"`
		Reason     string `form:"reason"`
		pagination.Page
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.movementSvc.List(c.Request.Context(), movementdomain.ListRequest{
		ProductID:  query.ProductID,
		CategoryID: query.CategoryID,
		Reason:     query.Reason,
		Page:       query.Page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReconcileStock runs one reconciliation pass synchronously and returns what
// it repaired.
func (s *Server) ReconcileStock(c *gin.Context) {
	report, err := s.reconciler.Run(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.log.Info("manual stock reconcile",
		zap.Int("products_fixed", report.ProductsFixed),
		zap.Int("categories_fixed", report.CategoriesFixed),
	)
	c.JSON(http.StatusOK, gin.H{"data": report})
}
