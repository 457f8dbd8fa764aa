package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"

	"github.com/fourline/server/internal/config"
	"github.com/fourline/server/internal/repository/postgres"
	"github.com/fourline/server/internal/repository/redis"
	"github.com/fourline/server/internal/service/bot"
	"github.com/fourline/server/internal/service/game"
	"github.com/fourline/server/internal/service/matchmaking"
	transportHttp "github.com/fourline/server/internal/transport/http"
	"github.com/fourline/server/internal/transport/http/middleware"
	"github.com/fourline/server/internal/transport/websocket"
)

func main() {
	log.Println("Starting connect-four server...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()

	db, err := postgres.InitDB(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	cache := redis.InitRedis(cfg.RedisAddr, cfg.RedisPassword)
	defer cache.Close()

	gameRepo := postgres.NewGameRepo(db)
	strategy := bot.NewStrategy(rand.New(rand.NewSource(time.Now().UnixNano())))
	clk := clock.New()

	connManager := websocket.NewConnectionManager()
	sessionManager := game.NewSessionManager(gameRepo, strategy, clk, cfg.BotMoveDelay, cfg.ReconnectGrace)
	queue := matchmaking.NewQueue(cfg.MatchmakingTimeout, clk)

	go matchmaking.Listener(queue, sessionManager, connManager)

	wsHandler := websocket.NewHandler(connManager, queue, sessionManager, cfg.HeartbeatInterval)
	leaderboardHandler := transportHttp.NewLeaderboardHandler(gameRepo, cache)
	historyHandler := transportHttp.NewHistoryHandler(gameRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)
	mux.HandleFunc("/api/leaderboard", leaderboardHandler.GetLeaderboard)
	mux.HandleFunc("/api/history", historyHandler.GetHistory)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: middleware.EnableCORS(cfg.AllowedOrigins, mux),
	}

	go func() {
		log.Printf("Server is listening on port %s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Server is shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
