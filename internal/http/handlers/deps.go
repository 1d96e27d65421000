package handlers

import (
	"beecommerce/internal/auth"
	"beecommerce/internal/config"
	"beecommerce/internal/metrics"
	"beecommerce/internal/repos"
	"beecommerce/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Tokens  *auth.Tokens
	Metrics *metrics.ServerMetrics

	AuthService *services.AuthService

	AuthHandler      *AuthHandler
	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	CartHandler      *CartHandler
	OrderHandler     *OrderHandler
	AdminHandler     *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	m := metrics.NewServerMetrics("api")

	authSvc := services.NewAuthService(db, tokens)
	catalogSvc := services.NewCatalogService(db, cfg.PageSize)
	invSvc := services.NewInventoryService(repos.NewInventoryRepo(db))
	cartSvc := services.NewCartService(db)
	orderSvc := services.NewOrderService(db, cfg.PageSize)

	return &Deps{
		Tokens:           tokens,
		Metrics:          m,
		AuthService:      authSvc,
		AuthHandler:      &AuthHandler{Auth: authSvc},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		CartHandler:      &CartHandler{Cart: cartSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc, Metrics: m},
		AdminHandler:     &AdminHandler{Orders: orderSvc, Inv: invSvc},
	}
}
