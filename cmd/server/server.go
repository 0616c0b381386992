package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/application/invoice"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/fiscal"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/resolution"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/taxrate"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/infrastructure/config"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/infrastructure/logger"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/infrastructure/telemetry"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/interfaces/http/dto"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/interfaces/http/handler"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/interfaces/http/middleware"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/interfaces/http/router"
)

// newFiscalService builds the engine collaborators from configuration
func newFiscalService(cfg *config.Config, opts ...invoice.ServiceOption) (*invoice.Service, handler.EngineInfo, error) {
	similarity, err := resolution.SimilarityByName(cfg.Resolution.SimilarityAlgorithm)
	if err != nil {
		return nil, handler.EngineInfo{}, err
	}
	resolver, err := resolution.NewResolver(
		resolution.WithThreshold(cfg.Resolution.SimilarityThreshold),
		resolution.WithSimilarity(similarity),
	)
	if err != nil {
		return nil, handler.EngineInfo{}, fmt.Errorf("identity resolver: %w", err)
	}

	rates, err := taxrate.NewRateTableFromFloats(cfg.Tax.StandardRates)
	if err != nil {
		return nil, handler.EngineInfo{}, fmt.Errorf("rate table: %w", err)
	}
	reconciler, err := taxrate.NewReconciler(
		taxrate.WithRateTable(rates),
		taxrate.WithBalanceTolerance(decimal.NewFromFloat(cfg.Tax.BalanceTolerance)),
		taxrate.WithDirectRateTolerance(decimal.NewFromFloat(cfg.Tax.DirectRateTolerance)),
		taxrate.WithCorrectedRateTolerance(decimal.NewFromFloat(cfg.Tax.CorrectedRateTolerance)),
	)
	if err != nil {
		return nil, handler.EngineInfo{}, fmt.Errorf("tax reconciler: %w", err)
	}

	info := handler.EngineInfo{
		StandardRates:       make([]string, 0, rates.Len()),
		SimilarityThreshold: resolver.Threshold(),
		SimilarityAlgorithm: cfg.Resolution.SimilarityAlgorithm,
	}
	for _, rate := range rates.Rates() {
		info.StandardRates = append(info.StandardRates, rate.String())
	}

	return invoice.NewService(fiscal.NewExtractor(), resolver, reconciler, opts...), info, nil
}

// newHTTPEngine assembles the middleware stack and routes. A nil meter
// disables HTTP metrics.
func newHTTPEngine(cfg *config.Config, log *zap.Logger, meter metric.Meter, engine handler.FiscalEngine, info handler.EngineInfo) (*gin.Engine, *router.Router) {
	middleware.SetupValidator()

	e := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := e.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// RequestID runs first so spans and request logs carry the ID.
	e.Use(middleware.RequestID())
	e.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	e.Use(middleware.SpanEnricher())
	e.Use(logger.Recovery(log))
	e.Use(logger.GinMiddleware(log))
	e.Use(middleware.HTTPMetrics(meter))
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
		AllowMethods:  cfg.HTTP.CORSAllowMethods,
		AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))
	e.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	r := router.NewRouter(e, router.WithAPIVersion("v1"))
	registerRoutes(r,
		handler.NewFiscalHandler(engine),
		handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, info),
	)
	r.Setup()

	e.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	return e, r
}

func registerRoutes(r *router.Router, fiscalHandler *handler.FiscalHandler, systemHandler *handler.SystemHandler) {
	fiscalIDs := router.NewDomainGroup("fiscal-ids", "/fiscal-ids")
	fiscalIDs.POST("/extract", "Extract and validate fiscal identifiers from OCR text", fiscalHandler.ExtractFiscalIDs)
	fiscalIDs.POST("/extract-pdf", "Extract fiscal identifiers from the text layer of a PDF", fiscalHandler.ExtractFiscalIDsFromPDF)
	fiscalIDs.POST("/validate", "Validate a single fiscal identifier", fiscalHandler.ValidateFiscalID)
	r.Register(fiscalIDs)

	identities := router.NewDomainGroup("identities", "/identities")
	identities.POST("/resolve", "Assign company and partner tax IDs", fiscalHandler.ResolveIdentities)
	r.Register(identities)

	taxRates := router.NewDomainGroup("tax-rates", "/tax-rates")
	taxRates.POST("/reconcile", "Infer missing amounts and validate the tax rate", fiscalHandler.ReconcileTaxRate)
	r.Register(taxRates)

	invoices := router.NewDomainGroup("invoices", "/invoices")
	invoices.POST("/reconcile", "Resolve identities and reconcile amounts of one invoice", fiscalHandler.ReconcileInvoice)
	r.Register(invoices)

	system := router.NewDomainGroup("system", "/system")
	system.GET("/info", "Service version and engine parameters", systemHandler.GetSystemInfo)
	system.GET("/ping", "Liveness probe", systemHandler.Ping)
	r.Register(system)
}
