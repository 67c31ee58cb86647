package http

import (
	"net/http"

	_ "github.com/DRSN-tech/furniture-search/docs" // Регистрация swagger-спецификации
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(itemUC usecase.ItemUC, searchUC usecase.SearchUC) {
	r.router.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerItemRoutes(v1, NewItemHandler(itemUC, r.logger))
		registerSearchRoutes(v1, NewSearchHandler(searchUC, r.logger))
	})
}

func registerItemRoutes(router chi.Router, h *ItemHandler) {
	router.Route("/items", func(items chi.Router) {
		items.Post("/", h.addItem)
		items.Get("/{sku}", h.getItem)
	})
}

func registerSearchRoutes(router chi.Router, h *SearchHandler) {
	router.Route("/search", func(search chi.Router) {
		search.Get("/text", h.textSearch)
		search.Get("/semantic", h.semanticSearch)
		search.Post("/image", h.imageSearch)
		search.Post("/embedding", h.embeddingSearch)
	})
	router.Get("/suggest", h.suggest)
}
