package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/peterszarvas94/moneyapp-sub000/internal/access"
	"github.com/peterszarvas94/moneyapp-sub000/internal/auth"
	"github.com/peterszarvas94/moneyapp-sub000/internal/config"
	"github.com/peterszarvas94/moneyapp-sub000/internal/directory"
	"github.com/peterszarvas94/moneyapp-sub000/internal/gate"
	"github.com/peterszarvas94/moneyapp-sub000/internal/notify"
	"github.com/peterszarvas94/moneyapp-sub000/internal/rpc"
	"github.com/peterszarvas94/moneyapp-sub000/internal/service"
	"github.com/peterszarvas94/moneyapp-sub000/internal/storage/sqlite"
	"github.com/peterszarvas94/moneyapp-sub000/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Log.Level)

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireHours)*time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	dir := directory.New(store)
	resolver := access.NewResolver(dir)
	g := gate.New(store, resolver)

	var notifier notify.Sender = notify.Noop{}
	if cfg.SMTP.Host != "" {
		notifier = notify.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
		slog.Info("Invite mail enabled", "smtp_host", cfg.SMTP.Host)
	}

	mux := http.NewServeMux()
	rpc.Register(mux, rpc.Services{
		Auth:        service.NewAuthService(authenticator, jwtManager),
		Accounts:    service.NewAccountService(store, g),
		Memberships: service.NewMembershipService(store, dir, resolver, g, notifier),
		Payees:      service.NewPayeeService(store, g),
		Events:      service.NewEventService(store, g),
	}, jwtManager)

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// h2c allows HTTP/2 without TLS, which Connect clients expect when
	// running behind a TLS-terminating proxy.
	handler := h2c.NewHandler(mux, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
