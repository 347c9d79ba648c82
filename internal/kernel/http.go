// Package kernel assembles the HTTP handler: global middleware, the
// operational endpoints and the API routes.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/stockpile/app/controllers"
	"github.com/shashiranjanraj/stockpile/app/routes"
	"github.com/shashiranjanraj/stockpile/pkg/app"
	"github.com/shashiranjanraj/stockpile/pkg/metrics"
	"github.com/shashiranjanraj/stockpile/pkg/middleware"
	"github.com/shashiranjanraj/stockpile/pkg/reqid"
	"github.com/shashiranjanraj/stockpile/pkg/response"
	"github.com/shashiranjanraj/stockpile/pkg/router"
)

// HTTPKernel owns the router for one application.
type HTTPKernel struct {
	app    *app.App
	router *router.Router
}

// NewHTTPKernel builds the router. Handlers only touch a.DB when they
// run, so route listing works with an App that has no database.
func NewHTTPKernel(a *app.App) *HTTPKernel {
	r := router.New()

	// Outermost first: metrics sees total latency, the request id exists
	// before anything logs, Recovery logs panics with that id.
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.NewRateLimiter(a.RateLimit, time.Minute).Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	k := &HTTPKernel{app: a, router: r}

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", k.health)

	inventory := a.InventoryService()
	routes.RegisterAPI(r, routes.Controllers{
		Auth:      controllers.NewAuthController(a.AuthService()),
		Products:  controllers.NewProductController(inventory),
		Purchases: controllers.NewPurchaseController(inventory),
	}, a.Tokens)

	return k
}

func (k *HTTPKernel) Handler() http.Handler  { return k.router.Handler() }
func (k *HTTPKernel) Router() *router.Router { return k.router }

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

func (k *HTTPKernel) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	st := healthStatus{Status: "ok", Database: "up", Cache: "disabled"}
	if err := k.app.Ping(ctx); err != nil {
		st.Status, st.Database = "degraded", "down"
	}
	if k.app.Cache != nil {
		st.Cache = "up"
		if err := k.app.Cache.Ping(ctx); err != nil {
			st.Cache = "down"
		}
	}

	if st.Database != "up" {
		response.Write(w, http.StatusServiceUnavailable, response.Envelope{Status: http.StatusServiceUnavailable, Data: st})
		return
	}
	response.Success(w, st)
}
