package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dastkala/dastkala-api/internal/auth"
	"github.com/dastkala/dastkala-api/internal/cart"
	"github.com/dastkala/dastkala-api/internal/config"
	"github.com/dastkala/dastkala-api/internal/enrich"
	"github.com/dastkala/dastkala-api/internal/httpx"
	"github.com/dastkala/dastkala-api/internal/order"
	"github.com/dastkala/dastkala-api/internal/product"
	"github.com/dastkala/dastkala-api/internal/user"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[api] postgres: %v", err)
	}
	defer pool.Close()

	userRepo := user.NewPGRepo(pool)
	productRepo := product.NewPGRepo(pool)
	cartRepo := cart.NewPGRepo(pool)
	orderRepo := order.NewPGRepo(pool)

	var cache enrich.Cache = enrich.NewMemoryCache(500)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = enrich.NewRedisCache(rdb)
		log.Printf("[api] translation cache backed by redis at %s", cfg.RedisAddr)
	}
	translator := enrich.NewTranslator(
		cfg.TranslatorEndpoint, cfg.TranslatorKey, cfg.TranslatorRegion,
		cache, enrich.NewDailyCharBudget(cfg.TranslatorDailyCharLimit))
	classifier := enrich.NewClassifier(cfg.ClassifierEndpoint, cfg.ClassifierKey)
	pipeline := enrich.NewPipeline(productRepo, translator, classifier, cfg.EnrichQueueSize)
	pipeline.Start(cfg.EnrichWorkers)

	orderSvc := order.NewService(orderRepo, cartRepo, cfg.ShippingCostToman)

	r := newRouter(cfg, userRepo, productRepo, cartRepo, orderRepo, orderSvc, pipeline)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Printf("[api] listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[api] serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[api] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	pipeline.Close()
}

func newRouter(
	cfg config.Config,
	userRepo user.Repository,
	productRepo product.Repository,
	cartRepo cart.Repository,
	orderRepo order.Repository,
	orderSvc *order.Service,
	pipeline *enrich.Pipeline,
) *gin.Engine {
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(), httpx.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.POST("/auth/register", user.RegisterHandler(userRepo))
	r.POST("/auth/login", user.LoginHandler(userRepo, cfg.JWTSecret))

	r.GET("/products", product.ListHandler(productRepo))
	r.GET("/products/:slug", product.GetBySlugHandler(productRepo))

	authed := r.Group("/", auth.Require(cfg.JWTSecret))
	{
		authed.GET("/cart", cart.GetHandler(cartRepo))
		authed.POST("/cart", cart.AddItemHandler(cartRepo, productRepo))
		authed.PUT("/cart/items/:id", cart.UpdateItemHandler(cartRepo))
		authed.DELETE("/cart/items/:id", cart.RemoveItemHandler(cartRepo))

		authed.POST("/orders", order.CheckoutHandler(orderSvc))
		authed.GET("/orders", order.ListHandler(orderRepo))
		authed.GET("/orders/:id", order.GetHandler(orderRepo))
	}

	seller := authed.Group("/seller", auth.RequireRole(auth.RoleSeller))
	{
		seller.GET("/products", product.SellerListHandler(productRepo))
		seller.POST("/products", product.CreateHandler(productRepo, pipeline))
		seller.PUT("/products/:id", product.UpdateHandler(productRepo, pipeline))
		seller.DELETE("/products/:id", product.DeleteHandler(productRepo))

		seller.GET("/orders", order.SellerListHandler(orderRepo))
		seller.PUT("/orders/:id/status", order.UpdateStatusHandler(orderSvc))
	}

	return r
}
