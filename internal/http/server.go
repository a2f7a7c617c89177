// README: API gateway; builds the gin engine, registers routes, and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"villaquote/internal/http/handlers"
	"villaquote/internal/http/middleware"
	"villaquote/internal/modules/exchange"
	"villaquote/internal/modules/quote"
	"villaquote/internal/modules/villa"
)

type ServerDeps struct {
	Quote       *quote.Service
	Villa       *villa.Service
	Exchange    *exchange.Service
	Logger      *zap.Logger
	FeederToken string
}

type Server struct {
	quote       *quote.Service
	villa       *villa.Service
	exchange    *exchange.Service
	logger      *zap.Logger
	feederToken string
}

func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		quote:       deps.Quote,
		villa:       deps.Villa,
		exchange:    deps.Exchange,
		logger:      logger,
		feederToken: deps.FeederToken,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(s.logger), middleware.Logging(s.logger))

	var fx handlers.Converter
	if s.exchange != nil {
		fx = s.exchange
	}
	quoteHandler := handlers.NewQuoteHandler(s.quote, fx)
	r.POST("/api/quotes/calculate", quoteHandler.Calculate)
	r.POST("/api/quotes", quoteHandler.Create)
	r.GET("/api/quotes", quoteHandler.List)
	r.GET("/api/quotes/:id", quoteHandler.Get)
	r.GET("/api/quotes/:id/load", quoteHandler.Load)
	r.PUT("/api/quotes/:id", quoteHandler.Update)
	r.DELETE("/api/quotes/:id", quoteHandler.Delete)

	if s.villa != nil {
		villaHandler := handlers.NewVillaHandler(s.villa)
		r.GET("/api/villas", villaHandler.List)
		r.GET("/api/villas/:id", villaHandler.Get)
		r.PUT("/api/villas/:id", villaHandler.Put)
	}

	if s.exchange != nil {
		exchangeHandler := handlers.NewExchangeHandler(s.exchange)
		r.GET("/api/exchange/rates", exchangeHandler.GetRates)
		r.PUT("/api/exchange/rates", middleware.FeederAuth(s.feederToken), exchangeHandler.PutRates)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r
}
