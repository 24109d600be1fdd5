package api

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eventdesk/server/internal/api/handlers"
	"github.com/eventdesk/server/internal/api/middleware"
	"github.com/eventdesk/server/internal/audit"
	"github.com/eventdesk/server/internal/auth"
	"github.com/eventdesk/server/internal/config"
	"github.com/eventdesk/server/internal/domain/customers"
	"github.com/eventdesk/server/internal/domain/events"
	"github.com/eventdesk/server/internal/metrics"
)

// Deps are the services the router mounts. Health may be nil, in which
// case the readiness probe reports every check as unknown.
type Deps struct {
	Events    *events.Service
	Customers *customers.Service
	JWT       *auth.JWTManager
	Health    *handlers.HealthChecker

	Version   string
	GitCommit string
	BuildDate string
}

// NewRouter builds the HTTP handler. ctx bounds background work such as
// the rate limiter cleanup.
func NewRouter(ctx context.Context, cfg config.Config, logger zerolog.Logger, deps Deps) http.Handler {
	env := cfg.Environment

	eventsHandler := handlers.NewEventsHandler(deps.Events, env, cfg.Server.MaxUploadBytes)
	customersHandler := handlers.NewCustomersHandler(deps.Customers, env)
	publicHandler := handlers.NewPublicHandler(deps.Events, env)
	health := deps.Health
	if health == nil {
		health = handlers.NewHealthChecker(nil, nil, deps.Version, deps.GitCommit)
	}

	staffAuth := middleware.StaffAuth(deps.JWT, env)
	requireWrite := middleware.RequireWrite(env)
	bodyLimit := middleware.RequestSize(middleware.DefaultMaxBodySize)
	audited := middleware.Audit(audit.NewLogger(logger), cfg.RateLimit.TrustedProxyCIDRs)

	read := func(h http.HandlerFunc) http.Handler {
		return staffAuth(h)
	}
	write := func(h http.HandlerFunc) http.Handler {
		return staffAuth(requireWrite(audited(bodyLimit(h))))
	}
	// Uploads are bounded by the handler's own limit.
	upload := func(h http.HandlerFunc) http.Handler {
		return staffAuth(requireWrite(audited(h)))
	}

	rateLimit := middleware.RateLimit(ctx, cfg.RateLimit, env)
	publicAccess := middleware.PublicAccess(deps.Customers, env)
	public := func(h http.HandlerFunc) http.Handler {
		return rateLimit(publicAccess(h))
	}

	mux := http.NewServeMux()
	route := func(pattern string, h http.Handler) {
		mux.Handle(pattern, metrics.HTTPMiddleware(middleware.RouteTag(h)))
	}

	route("/healthz", health.Healthz())
	route("/readyz", health.Readyz())
	route("/version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))
	route("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	route("/api/v1/events", methodMux(map[string]http.Handler{
		http.MethodGet:  read(eventsHandler.List),
		http.MethodPost: write(eventsHandler.Create),
	}))
	route("/api/v1/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    read(eventsHandler.Get),
		http.MethodPatch:  write(eventsHandler.Patch),
		http.MethodDelete: write(eventsHandler.Delete),
	}))
	route("/api/v1/events/{id}/editors", methodMux(map[string]http.Handler{
		http.MethodGet: read(eventsHandler.Editors),
	}))
	route("/api/v1/events/{id}/tags", methodMux(map[string]http.Handler{
		http.MethodGet:  read(eventsHandler.Tags),
		http.MethodPost: write(eventsHandler.AddTag),
	}))
	route("/api/v1/events/{id}/tags/{tag}", methodMux(map[string]http.Handler{
		http.MethodDelete: write(eventsHandler.DeleteTag),
	}))
	route("/api/v1/events/{id}/customers", methodMux(map[string]http.Handler{
		http.MethodGet:  read(eventsHandler.Customers),
		http.MethodPost: write(eventsHandler.AddCustomer),
	}))
	route("/api/v1/events/{id}/customers/{customer}", methodMux(map[string]http.Handler{
		http.MethodDelete: write(eventsHandler.DeleteCustomer),
	}))
	route("/api/v1/events/{id}/sub-events", methodMux(map[string]http.Handler{
		http.MethodGet:  read(eventsHandler.SubEvents),
		http.MethodPost: write(eventsHandler.AddSubEvent),
	}))
	route("/api/v1/events/{id}/sub-events/{sub}", methodMux(map[string]http.Handler{
		http.MethodGet:    read(eventsHandler.GetSubEvent),
		http.MethodPatch:  write(eventsHandler.PatchSubEvent),
		http.MethodDelete: write(eventsHandler.DeleteSubEvent),
	}))
	route("/api/v1/events/{id}/prices", methodMux(map[string]http.Handler{
		http.MethodGet:  read(eventsHandler.Prices),
		http.MethodPost: write(eventsHandler.AddPrice),
	}))
	route("/api/v1/prices/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    read(eventsHandler.GetPrice),
		http.MethodPatch:  write(eventsHandler.PatchPrice),
		http.MethodDelete: write(eventsHandler.DeletePrice),
	}))
	route("/api/v1/events/{id}/images", methodMux(map[string]http.Handler{
		http.MethodGet:  read(eventsHandler.Images),
		http.MethodPost: upload(eventsHandler.AddImage),
	}))
	route("/api/v1/images", methodMux(map[string]http.Handler{
		http.MethodGet: read(eventsHandler.AllImages),
	}))
	route("/api/v1/images/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    read(eventsHandler.GetImage),
		http.MethodPatch:  write(eventsHandler.PatchImage),
		http.MethodDelete: write(eventsHandler.DeleteImage),
	}))
	route("/api/v1/tags", methodMux(map[string]http.Handler{
		http.MethodGet: read(eventsHandler.Vocabulary),
	}))
	route("/api/v1/customers", methodMux(map[string]http.Handler{
		http.MethodGet: read(customersHandler.List),
	}))
	route("/api/v1/customers/{id}/access-token", methodMux(map[string]http.Handler{
		http.MethodPost:   write(customersHandler.IssueToken),
		http.MethodDelete: write(customersHandler.RevokeToken),
	}))

	route("/api/v1/pub/events", methodMux(map[string]http.Handler{
		http.MethodGet: public(publicHandler.List),
	}))
	route("/api/v1/pub/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: public(publicHandler.Get),
	}))
	route("/api/v1/pub/images/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: public(publicHandler.Image),
	}))

	var handler http.Handler = mux
	handler = middleware.SecurityHeaders(env == "production")(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
