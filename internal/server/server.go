package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/stockroom/internal/category"
	categorydomain "github.com/smallbiznis/stockroom/internal/category/domain"
	"github.com/smallbiznis/stockroom/internal/color"
	colordomain "github.com/smallbiznis/stockroom/internal/color/domain"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/movement"
	movementdomain "github.com/smallbiznis/stockroom/internal/movement/domain"
	"github.com/smallbiznis/stockroom/internal/observability"
	obslogger "github.com/smallbiznis/stockroom/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	obstracing "github.com/smallbiznis/stockroom/internal/observability/tracing"
	"github.com/smallbiznis/stockroom/internal/product"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/internal/scheduler"
	"github.com/smallbiznis/stockroom/internal/size"
	sizedomain "github.com/smallbiznis/stockroom/internal/size/domain"
	"github.com/smallbiznis/stockroom/internal/variant"
	variantdomain "github.com/smallbiznis/stockroom/internal/variant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	category.Module,
	color.Module,
	size.Module,
	product.Module,
	variant.Module,
	movement.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(classifyErrorForLog))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, gatherer)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	log         *zap.Logger
	categorySvc categorydomain.Service
	colorSvc    colordomain.Service
	sizeSvc     sizedomain.Service
	productSvc  productdomain.Service
	variantSvc  variantdomain.Service
	movementSvc movementdomain.Service
	reconciler  scheduler.Reconciler
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Log         *zap.Logger
	CategorySvc categorydomain.Service
	ColorSvc    colordomain.Service
	SizeSvc     sizedomain.Service
	ProductSvc  productdomain.Service
	VariantSvc  variantdomain.Service
	MovementSvc movementdomain.Service
	Reconciler  scheduler.Reconciler
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		log:         p.Log.Named("http.server"),
		categorySvc: p.CategorySvc,
		colorSvc:    p.ColorSvc,
		sizeSvc:     p.SizeSvc,
		productSvc:  p.ProductSvc,
		variantSvc:  p.VariantSvc,
		movementSvc: p.MovementSvc,
		reconciler:  p.Reconciler,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/categories", s.ListCategories)
	api.POST("/categories", s.CreateCategory)
	api.GET("/categories/:id", s.GetCategoryByID)
	api.PATCH("/categories/:id", s.UpdateCategory)
	api.DELETE("/categories/:id", s.DeleteCategory)

	api.GET("/colors", s.ListColors)
	api.POST("/colors", s.CreateColor)
	api.POST("/colors/batch", s.BatchCreateColors)
	api.GET("/colors/:id", s.GetColorByID)
	api.PATCH("/colors/:id", s.UpdateColor)
	api.DELETE("/colors/:id", s.DeleteColor)

	api.GET("/sizes", s.ListSizes)
	api.POST("/sizes", s.CreateSize)
	api.POST("/sizes/batch", s.BatchCreateSizes)
	api.GET("/sizes/:id", s.GetSizeByID)
	api.PATCH("/sizes/:id", s.UpdateSize)
	api.DELETE("/sizes/:id", s.DeleteSize)

	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProductByID)
	api.PATCH("/products/:id", s.UpdateProduct)
	api.DELETE("/products/:id", s.DeleteProduct)
	api.GET("/products/:id/movements", s.ListProductMovements)

	api.GET("/variants", s.ListVariants)
	api.POST("/variants", s.CreateVariant)
	api.POST("/variants/batch", s.BatchCreateVariants)
	api.GET("/variants/:id", s.GetVariantByID)
	api.PATCH("/variants/:id", s.UpdateVariant)
	api.DELETE("/variants/:id", s.DeleteVariant)

	api.GET("/stock/movements", s.ListMovements)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.POST("/stock/reconcile", s.ReconcileStock)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
