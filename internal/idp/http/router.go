package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/httpx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/jwtx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"

	_ "github.com/LoganSeven/publik-famille-demo-sub016/api/idp" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	engine       *service.Engine
	keys         *jwtx.KeyManager
	store        store.Store
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	// Metrics serves GET /metrics when set.
	Metrics http.Handler

	// SecureCookies marks the session cookie Secure.
	SecureCookies bool

	// Limits are the per-route rate limit profiles.
	Limits httpx.Limits

	// RateLimited, when set, is called with the route pattern of every
	// request refused by a route limiter.
	RateLimited func(route string)
}

func NewRouter(
	engine *service.Engine,
	keys *jwtx.KeyManager,
	st store.Store,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		engine:       engine,
		keys:         keys,
		store:        st,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		Limits:       httpx.DefaultLimits(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		httpx.RemoteIPMiddleware(),
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOIDC()
	r.registerSession()
	r.registerAPI()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// limit builds the rate limiter middleware for one route.
func (r *Router) limit(route string, l httpx.Limit, key httpx.KeyFunc) httpx.Middleware {
	rl := httpx.NewRouteLimiter(l, key)
	rl.OnReject = func(*http.Request, string) {
		if r.RateLimited != nil {
			r.RateLimited(route)
		}
	}
	return rl.Middleware()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Identity Provider API
//	@version		0.1.0
//	@description	OpenID Connect provider: authorization code and implicit flows, password grant,
//	@description	refresh token rotation, pairwise subject identifiers and front-channel logout.
//	@description
//	@description				ID tokens are signed with RS256, ES256 or HS256 depending on the client.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Opaque access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOIDC() {
	authorizeHandler := &AuthorizeHandler{Engine: r.engine}

	// GET /authorize - lenient rate limit (redirects and consent prompts)
	r.Mux.Handle("GET /idp/oidc/authorize",
		httpx.Chain(http.HandlerFunc(authorizeHandler.HandleGet),
			r.limit("GET /idp/oidc/authorize", r.Limits.Lenient, httpx.ByIP()),
		),
	)

	// POST /authorize - moderate rate limit (consent answers)
	r.Mux.Handle("POST /idp/oidc/authorize",
		httpx.Chain(http.HandlerFunc(authorizeHandler.HandlePost),
			r.limit("POST /idp/oidc/authorize", r.Limits.Moderate, httpx.ByIP()),
		),
	)

	// POST /token - moderate limit by client; the password grant adds its
	// own backoff and window counters in the service layer
	tokenHandler := &TokenHandler{Engine: r.engine}
	r.Mux.Handle("POST /idp/oidc/token",
		httpx.Chain(tokenHandler,
			r.limit("POST /idp/oidc/token", r.Limits.Moderate, httpx.ByClient()),
		),
	)

	// GET|POST /user_info - bearer token required
	userInfoHandler := &UserInfoHandler{Engine: r.engine}
	secured := httpx.Chain(userInfoHandler,
		httpx.BearerMiddleware(),
		r.limit("/idp/oidc/user_info", r.Limits.Lenient, httpx.ByIP()),
	)
	r.Mux.Handle("GET /idp/oidc/user_info", secured)
	r.Mux.Handle("POST /idp/oidc/user_info", secured)

	revokeHandler := &RevokeHandler{Engine: r.engine}
	r.Mux.Handle("POST /idp/oidc/revoke",
		httpx.Chain(revokeHandler,
			r.limit("POST /idp/oidc/revoke", r.Limits.Moderate, httpx.ByClient()),
		),
	)

	// GET /certs - public endpoint with high limit
	r.Mux.Handle("GET /idp/oidc/certs",
		httpx.Chain(JWKSHandler(r.keys),
			r.limit("GET /idp/oidc/certs", r.Limits.Public, httpx.ByIP()),
		),
	)
}

func (r *Router) registerSession() {
	loginHandler := &LoginHandler{Engine: r.engine, SecureCookies: r.SecureCookies}

	// POST /login - strict rate limit by IP + username (brute force prevention)
	r.Mux.Handle("POST /login",
		httpx.Chain(loginHandler,
			r.limit("POST /login", r.Limits.Strict, httpx.ByIPAndField("username")),
		),
	)

	logoutHandler := &LogoutHandler{Engine: r.engine, SecureCookies: r.SecureCookies}
	r.Mux.Handle("GET /idp/oidc/logout",
		httpx.Chain(logoutHandler,
			r.limit("GET /idp/oidc/logout", r.Limits.Lenient, httpx.ByIP()),
		),
	)
}

func (r *Router) registerAPI() {
	h := &SubjectLookupHandler{Engine: r.engine}
	r.Mux.Handle("POST /idp/oidc/api/subject",
		httpx.Chain(h,
			r.limit("POST /idp/oidc/api/subject", r.Limits.Moderate, httpx.ByClient()),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.limit("GET /livez", r.Limits.Lenient, httpx.ByIP()),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			r.limit("GET /readyz", r.Limits.Lenient, httpx.ByIP()),
		),
	)
	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics)
	}
}
