// App собирает зависимости приложения (конфигурация, хранилище, логгер)
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/SversusN/tinyapp/config"
	"github.com/SversusN/tinyapp/internal/grpcsrv"
	"github.com/SversusN/tinyapp/internal/handlers"
	"github.com/SversusN/tinyapp/internal/logger"
	"github.com/SversusN/tinyapp/internal/metrics"
	mw "github.com/SversusN/tinyapp/internal/middleware"
	"github.com/SversusN/tinyapp/internal/pkg/utils"
	"github.com/SversusN/tinyapp/internal/storage/primitivestorage"
	"github.com/SversusN/tinyapp/internal/storage/storage"
	"github.com/SversusN/tinyapp/internal/views"
)

const shutdownTimeout = 10 * time.Second

// App структура приложения
type App struct {
	Config   *config.Config       // Объект конфигурации
	Storage  storage.Storage      // Интерфейс хранилища
	Handlers *handlers.Handlers   //Объект http обработчиков
	Logger   *logger.ServerLogger //Внедрение логера
	Auth     *mw.AuthMW           //Подпись и проверка сессий
	Metrics  *metrics.Metrics     //Счетчики Prometheus
	GRPC     *grpcsrv.Server      //nil если gRPC выключен
}

// New Конструктор пакета, создает целевой объект приложения с нужными зависимостями
func New(cfg *config.Config, lg *logger.ServerLogger) (*App, error) {
	ctx := context.Background()
	ns := primitivestorage.NewStorage()
	if cfg.SeedDemoLinks {
		if err := storage.Seed(ctx, ns); err != nil {
			return nil, fmt.Errorf("seed demo links: %w", err)
		}
	}
	if cfg.SecretKey == config.DefaultSecretKey {
		lg.Logger.Warn("using default session secret, set SECRET_KEY")
	}
	ts, err := utils.GetCIDR(cfg.TrustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("trusted subnet: %w", err)
	}
	v, err := views.New()
	if err != nil {
		return nil, err
	}
	auth := mw.NewAuthMW(cfg.SecretKey, ns, cfg.EnableHTTPS, lg.Logger)
	m := metrics.New()
	nh := handlers.NewHandlers(cfg, ns, auth, v, m, lg.Logger, ts)

	a := &App{Config: cfg, Storage: ns, Handlers: nh, Logger: lg, Auth: auth, Metrics: m}
	if cfg.GRPCAddress != "" {
		a.GRPC = grpcsrv.NewGRPCServer(ns, lg.Logger)
	}
	return a, nil
}

// CreateRouter Создание роутера Chi
func (a *App) CreateRouter() chi.Router {
	hnd := a.Handlers
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(a.Logger.LoggingMW())
	r.Use(chimw.Recoverer)
	r.Use(mw.GzipRequestMiddleware(a.Logger.Logger))
	r.Use(chimw.Compress(5, "text/html", "application/json"))
	r.Use(mw.MethodOverride)
	r.Use(a.Auth.Identify)

	//Инициализация маршрута для роутера Chi
	r.Get("/", hnd.HandlerRoot)
	r.Get("/login", hnd.HandlerLoginPage)
	r.Post("/login", hnd.HandlerLogin)
	r.Post("/logout", hnd.HandlerLogout)
	r.Get("/register", hnd.HandlerRegisterPage)
	r.Post("/register", hnd.HandlerRegister)
	r.Get("/u/{shortURL}", hnd.HandlerRedirect)
	r.Get("/urls.json", hnd.HandlerURLsJSON)
	r.Get("/ping", hnd.HandlerDBPing)
	r.Get("/api/internal/stats", hnd.HandlerGetStats)
	r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())

	r.Group(func(r chi.Router) { //secure
		r.Use(a.Auth.RequireUser)
		r.Get("/urls", hnd.HandlerListURLs)
		r.Post("/urls", hnd.HandlerCreateURL)
		r.Get("/urls/new", hnd.HandlerNewURLPage)
		r.Get("/urls/{id}", hnd.HandlerShowURL)
		r.Put("/urls/{id}", hnd.HandlerUpdateURL)
		r.Delete("/urls/{id}/delete", hnd.HandlerDeleteURL)
	})
	return r
}

// Run запускает веб сервер (и gRPC если настроен) до отмены ctx
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.Config.FlagAddress,
		Handler:           a.CreateRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	var lis net.Listener
	if a.GRPC != nil {
		var err error
		lis, err = net.Listen("tcp", a.Config.GRPCAddress)
		if err != nil {
			return fmt.Errorf("listen gRPC: %w", err)
		}
		a.GRPC.CheckStorage(ctx)
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Logger.Info("running", zap.String("address", a.Config.FlagAddress), zap.Bool("https", a.Config.EnableHTTPS))
		var err error
		if a.Config.EnableHTTPS {
			manager := &autocert.Manager{
				// директория для хранения сертификатов
				Cache: autocert.DirCache("cache-dir"),
				// функция, принимающая Terms of Service издателя сертификатов
				Prompt: autocert.AcceptTOS,
				// перечень доменов, для которых будут поддерживаться сертификаты
				HostPolicy: autocert.HostWhitelist(a.Config.HTTPSDomain),
			}
			server.Addr = ":443"
			server.TLSConfig = manager.TLSConfig()
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	if lis != nil {
		g.Go(func() error {
			a.Logger.Logger.Info("gRPC health running", zap.String("address", a.Config.GRPCAddress))
			if err := a.GRPC.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if a.GRPC != nil {
			a.GRPC.GracefulStop()
		}
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
