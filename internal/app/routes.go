package app

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akshayrajput12/chronical-sub004/internal/middleware"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/content/category"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/content/city"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/content/event"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/content/faq"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/content/gallery"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/content/post"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/content/stat"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/storage/media"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/system/redirect"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/cacheflush"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/response"
	"go.uber.org/zap"
)

// registerRoutes wires every module under /api/v1. Admin tokens are
// resolved on every request so list endpoints can branch between the
// public and the editorial view; mutations additionally require one.
func (a *App) registerRoutes() {
	flush := cacheflush.New(a.rc, a.logger)

	redirects := redirect.NewService(a.db)

	postSvc := post.NewService(a.db)
	postSvc.SetRedirects(redirects)
	postSvc.SetCacheFlush(flush)

	eventSvc := event.NewService(a.db)
	eventSvc.SetRedirects(redirects)
	eventSvc.SetCacheFlush(flush)

	categorySvc := category.NewService(a.db)
	categorySvc.SetRedirects(redirects)
	categorySvc.SetCacheFlush(flush)

	citySvc := city.NewService(a.db)
	citySvc.SetRedirects(redirects)
	citySvc.SetCacheFlush(flush)

	faqSvc := faq.NewService(a.db)
	faqSvc.SetCacheFlush(flush)

	gallerySvc := gallery.NewService(a.db)
	gallerySvc.SetCacheFlush(flush)

	statSvc := stat.NewService(a.db)
	statSvc.SetCacheFlush(flush)

	var mediaSvc *media.Service
	if a.cfg.S3.Bucket != "" {
		svc, err := media.NewService(a.cfg.S3)
		if err != nil {
			a.logger.Warn("media storage disabled", zap.Error(err))
		} else {
			mediaSvc = svc
		}
	}

	api := a.router.Group("/api/v1")
	api.Use(middleware.OptionalAuth())
	if !a.cfg.Cache.Disable {
		api.Use(middleware.HTTPCache(a.rc.Raw(), middleware.HTTPCacheOptions{
			TTL:       time.Duration(a.cfg.Cache.TTLSeconds) * time.Second,
			SkipPaths: a.cfg.Cache.SkipPaths,
		}))
	}

	authMW := middleware.Auth()

	post.NewHandler(postSvc).RegisterRoutes(api, authMW)
	event.NewHandler(eventSvc).RegisterRoutes(api, authMW)
	category.NewHandler(categorySvc).RegisterRoutes(api, authMW)
	city.NewHandler(citySvc).RegisterRoutes(api, authMW)
	faq.NewHandler(faqSvc).RegisterRoutes(api, authMW)
	gallery.NewHandler(gallerySvc).RegisterRoutes(api, authMW)
	stat.NewHandler(statSvc).RegisterRoutes(api, authMW)
	media.NewHandler(mediaSvc).RegisterRoutes(api, authMW)
	redirect.NewHandler(redirects).RegisterRoutes(api)

	a.router.GET("/ping", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})
	a.router.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	a.router.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})
}
