package router // package router defines how HTTP routes are registered

import (
    "net/http"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/hotel-backoffice/internal/config"
    "github.com/iliyamo/hotel-backoffice/internal/handler"
    "github.com/iliyamo/hotel-backoffice/internal/middleware"
    "github.com/iliyamo/hotel-backoffice/internal/model"
    "github.com/iliyamo/hotel-backoffice/internal/service"
)

// Handlers are the endpoint groups built by cmd/server.
type Handlers struct {
    Health    echo.HandlerFunc
    Auth      *handler.AuthHandler
    Dashboard *handler.DashboardHandler
    Orders    *handler.OrderHandler
    Catalog   *handler.CatalogHandler
    Rooms     *handler.RoomHandler
    Messages  *handler.MessageHandler
    Settings  *handler.SettingsHandler
}

// Deps are what the middlewares need.  Redis may be nil, in which case the
// response cache and the rate limiter pass every request through.
type Deps struct {
    JWTSecret     string
    Sessions      middleware.SessionValidator
    Redis         *redis.Client
    Cache         config.CacheConfig
    RateLimit     config.RateLimitConfig
    SecureCookies bool
}

// formValidator plugs the package-level validator into c.Validate.
type formValidator struct{}

func (formValidator) Validate(i interface{}) error { return service.Validate(i) }

// Setup installs the global middlewares and every route on e.
func Setup(e *echo.Echo, h Handlers, d Deps) {
    e.Validator = formValidator{}

    // Request ids are generated first so the logger and the handlers'
    // degraded-mode warnings can print them.
    e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
    e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
        Format: "${time_rfc3339} ${id} ${remote_ip} ${method} ${uri} ${status} ${latency_human}\n",
    }))
    e.Use(echomw.Recover())

    // The health check is registered before CSRF so probes never get a
    // token cookie.
    e.GET("/healthz", h.Health)

    csrf := middleware.CSRF(d.SecureCookies)
    auth := middleware.SessionAuth(d.JWTSecret, d.Sessions)
    limit := middleware.NewThrottle(d.RateLimit, d.Redis)
    cache := middleware.NewRedisCache(d.Cache, d.Redis)
    purge := middleware.PurgeCache(d.Cache, d.Redis)

    e.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusSeeOther, "/admin") })
    e.GET("/login", h.Auth.LoginForm, csrf)
    e.POST("/login", h.Auth.Login, csrf, limit)
    e.POST("/logout", h.Auth.Logout, csrf, auth)

    // Every staff role reaches the day-to-day pages.
    staff := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)

    // Successful admin writes drop the cached /api listings.
    admin := e.Group("/admin", csrf, auth, staff, purge)
    admin.GET("", h.Dashboard.Page)
    admin.GET("/orders", h.Orders.List)
    admin.POST("/orders", h.Orders.Post)
    admin.GET("/categories", h.Catalog.Categories)
    admin.POST("/categories", h.Catalog.PostCategories)
    admin.GET("/items", h.Catalog.Items)
    admin.POST("/items", h.Catalog.PostItems)
    admin.GET("/rooms", h.Rooms.Page)
    admin.POST("/rooms", h.Rooms.Post)
    admin.GET("/messages", h.Messages.Page)
    admin.POST("/messages", h.Messages.Post)

    // Theme and hotel settings change what guests see: admins only.
    owner := admin.Group("", middleware.RequireRole(model.RoleAdmin))
    owner.GET("/theme", h.Settings.ThemePage)
    owner.POST("/theme", h.Settings.PostTheme)
    owner.GET("/settings", h.Settings.SettingsPage)
    owner.POST("/settings", h.Settings.PostSettings)

    e.GET("/export-orders", h.Orders.Export, auth, staff, limit)

    api := e.Group("/api", auth, staff)
    // Clients poll this one; it is never cached.
    api.GET("/dashboard-updates", h.Dashboard.Updates)
    api.GET("/rooms", h.Rooms.APIList, cache)
    api.GET("/rooms/stats", h.Rooms.APIStats, cache)
    api.GET("/categories", h.Catalog.APICategories, cache)
}
