package api

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"elysion/cmd/middleware"
	"elysion/internal/fee"
	"elysion/internal/metrics"
	"elysion/internal/service"
	"elysion/internal/site"
	"elysion/web"
)

type Routers struct {
	Service        service.Service
	Content        *site.Content
	Mode           string
	AllowedOrigins string
}

func NewRouters(r *Routers) (*ginext.Engine, error) {
	mode := r.Mode
	if mode == "" {
		mode = "release"
	}
	app := ginext.New(mode)

	app.Use(middleware.LoggingMiddleware())
	app.Use(corsMiddleware(r.AllowedOrigins))

	tmpl, err := Templates(r.Content)
	if err != nil {
		return nil, err
	}
	app.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	app.StaticFS("/static", http.FS(static))

	app.GET("/", r.Service.Index)
	app.POST("/register", r.Service.Register)
	app.POST("/register/confirm", r.Service.ConfirmPayment)

	apiGroup := app.Group("/v1")

	apiGroup.POST("/quote", r.Service.Quote)
	apiGroup.POST("/desks", r.Service.CreateDesk)
	apiGroup.GET("/desks/:desk", r.Service.GetDesk)
	apiGroup.POST("/desks/:desk/submit", r.Service.SubmitDesk)
	apiGroup.POST("/desks/:desk/confirm", r.Service.ConfirmDesk)
	apiGroup.GET("/desks/:desk/qr.png", r.Service.DeskQR)

	app.GET("/healthz", r.Service.Health)

	promHandler := metrics.Handler()
	app.GET("/metrics", func(c *ginext.Context) {
		promHandler.ServeHTTP(c.Writer, c.Request)
	})

	return app, nil
}

// corsMiddleware allows every origin unless a comma separated list is
// configured.
func corsMiddleware(origins string) ginext.HandlerFunc {
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		return cors.Default()
	}

	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = allowed
	return cors.New(cfg)
}

// Templates parses the page templates with the helpers they use.
func Templates(content *site.Content) (*template.Template, error) {
	funcs := template.FuncMap{
		"rupees": fee.Rupees,
		"workshopTitle": func(key string) string {
			return content.WorkshopTitle(key)
		},
		"pad2": func(n int) string {
			return fmt.Sprintf("%02d", n)
		},
		"unixMilli": func() int64 {
			return content.Event.Starts.UnixMilli()
		},
	}

	tmpl, err := template.New(service.PageTemplate).Funcs(funcs).ParseFS(web.FS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}
