package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/John-Robertt/cldfolders/internal/app"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 2 * time.Minute // 一次构建要翻完上游全部分页
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Config 是 HTTP 交付层的参数。零值字段使用默认超时。
type Config struct {
	Addr        string
	Root        string // 仅用于首页展示
	CORSOrigins []string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server 对外暴露只读接口；每个请求都重新构建 FolderMap，请求之间不共享可变状态。
type Server struct {
	builder app.Builder
	log     *slog.Logger
	cfg     Config
	engine  *gin.Engine
}

// New 组装路由与中间件。gin 的运行模式（debug/release/test）由调用方全局设置。
func New(b app.Builder, log *slog.Logger, cfg Config) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{builder: b, log: log, cfg: withDefaults(cfg)}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), requestID(), accessLog(log), securityHeaders())
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(s.cfg.CORSOrigins)))
	}
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")))

	r.GET("/", s.handleIndex)
	r.GET("/folders", s.handleFolders)
	r.GET("/healthz", handleHealth)
	r.GET("/version", handleVersion)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	s.engine = r
	return s
}

// corsConfig 把白名单转换为 cors.Config；出现 "*" 时放开全部来源。
func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Accept", "Content-Type", headerRequestID},
		ExposeHeaders: []string{headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}

func withDefaults(cfg Config) Config {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return cfg
}

// Handler 返回完整的 http.Handler（测试直接用 httptest 驱动）。
func (s *Server) Handler() http.Handler { return s.engine }

// Run 监听 cfg.Addr，直到 ctx 结束后优雅关闭。
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve 在给定 listener 上提供服务；ctx 结束时等待在途请求完成（最多 ShutdownTimeout）。
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("http shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
