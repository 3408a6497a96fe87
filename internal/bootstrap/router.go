package bootstrap

import (
	"database/sql"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	adminhttp "github.com/shoplist-app/shoplist-backend/internal/admin/http"
	adminrepo "github.com/shoplist-app/shoplist-backend/internal/admin/repository"
	adminservice "github.com/shoplist-app/shoplist-backend/internal/admin/service"
	httpapi "github.com/shoplist-app/shoplist-backend/internal/api/http"
	apimiddleware "github.com/shoplist-app/shoplist-backend/internal/api/http/middleware"
	authhttp "github.com/shoplist-app/shoplist-backend/internal/auth/http"
	authmiddleware "github.com/shoplist-app/shoplist-backend/internal/auth/middleware"
	authservice "github.com/shoplist-app/shoplist-backend/internal/auth/service"
	"github.com/shoplist-app/shoplist-backend/config"
	grouphttp "github.com/shoplist-app/shoplist-backend/internal/groups/http"
	grouprepo "github.com/shoplist-app/shoplist-backend/internal/groups/repository"
	groupservice "github.com/shoplist-app/shoplist-backend/internal/groups/service"
	listhttp "github.com/shoplist-app/shoplist-backend/internal/lists/http"
	listrepo "github.com/shoplist-app/shoplist-backend/internal/lists/repository"
	listservice "github.com/shoplist-app/shoplist-backend/internal/lists/service"
	"github.com/shoplist-app/shoplist-backend/internal/observability/metrics"
	"github.com/shoplist-app/shoplist-backend/internal/realtime"
	"github.com/shoplist-app/shoplist-backend/internal/store"
	userhttp "github.com/shoplist-app/shoplist-backend/internal/users/http"
	userrepo "github.com/shoplist-app/shoplist-backend/internal/users/repository"
)

type RouterDeps struct {
	Cfg        *config.Config
	AuthClient *fbauth.Client
	Store      store.Store
	Bus        *realtime.Bus
	AuditDB    *sql.DB
}

// BuildRouter wires repositories, services and handlers into a gin engine.
// AuditDB and Bus may be nil; the affected features degrade gracefully.
func BuildRouter(dep RouterDeps) (*gin.Engine, *adminservice.AdminService, *adminrepo.AuditRepository) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(apimiddleware.RequestIDMiddleware())
	r.Use(metrics.GinMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.Cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
	}))

	healthHandler := httpapi.NewHealthHandler("shoplist-backend", dep.Cfg.App.Version, dep.AuditDB)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", metrics.Handler())

	users := userrepo.NewUserRepository(dep.Store)
	lists := listrepo.NewListRepository(dep.Store)
	items := listrepo.NewItemRepository(dep.Store)
	groups := grouprepo.NewGroupRepository(dep.Store)

	var audit *adminrepo.AuditRepository
	if dep.AuditDB != nil {
		audit = adminrepo.NewAuditRepository(dep.AuditDB)
	}

	listSvc := listservice.NewListService(lists, items, groups, users, busOrNil(dep.Bus), dep.Cfg.Admin.Email)
	groupSvc := groupservice.NewGroupService(groups, users)
	authSvc := authservice.NewAuthService(dep.AuthClient, users)
	adminSvc := adminservice.NewAdminService(users, lists, groups, audit, dep.Cfg.Admin.Email)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(apimiddleware.RateLimit(rate.Limit(1), 5))
	authhttp.New(authSvc).Register(authGroup)

	authed := api.Group("")
	authed.Use(authmiddleware.FirebaseAuth(dep.AuthClient, users))

	listhttp.New(listSvc, dep.Bus).Register(authed.Group("/lists"))
	grouphttp.New(groupSvc).Register(authed.Group("/groups"))
	userhttp.New(users).Register(authed.Group("/users"))

	adminGroup := authed.Group("/admin")
	adminGroup.Use(authmiddleware.RequireAdmin(dep.Cfg.Admin.Email))
	adminhttp.New(adminSvc).Register(adminGroup)

	return r, adminSvc, audit
}

// busOrNil keeps a typed-nil *realtime.Bus from hiding inside the EventSink
// interface.
func busOrNil(bus *realtime.Bus) listservice.EventSink {
	if bus == nil {
		return nil
	}
	return bus
}
