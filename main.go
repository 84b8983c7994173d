package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"github.com/ry44444n/Ma-Anong-Ulam-App/identity"
	"github.com/ry44444n/Ma-Anong-Ulam-App/protocol"
	"github.com/ry44444n/Ma-Anong-Ulam-App/relay"
	ws "github.com/ry44444n/Ma-Anong-Ulam-App/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	log := setupLogger(cfg.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(cfg.BadgerFilepath).WithLogger(nil))
	if err != nil {
		log.Error("identity store open failed", "path", cfg.BadgerFilepath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	users := identity.NewHandler(log,
		identity.NewStore(db),
		identity.NewTokens(cfg.JWTSecret, cfg.AuthTokenDuration),
	)

	room := relay.New(log, cfg.HistoryLimit)
	handler := protocol.NewHandler(log, room)

	r := mux.NewRouter()
	r.HandleFunc("/ws", wsHandler(room, handler))
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/stats", statsHandler(room)).Methods(http.MethodGet)
	r.HandleFunc("/api/users/register", users.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/users/login", users.Login).Methods(http.MethodPost)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: r,
	}

	go func() {
		log.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

func setupLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log
}

func wsHandler(room *relay.Relay, handler *protocol.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("upgrade error", "error", err)
			return
		}

		// Trust boundary: the display name is whatever the client claims.
		// Two sessions may present the same name.
		user := r.URL.Query().Get("user")
		user = lo.Ternary(user != "", user, "Anon")

		wsConn := ws.NewConn(uuid.New().String(), user, conn, room, handler)
		wsConn.Start()
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func statsHandler(room *relay.Relay) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, messages := room.Stats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"sessions": sessions, "messages": messages})
	}
}
