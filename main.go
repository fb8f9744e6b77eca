package main

import (
	"github.com/duoparty/gameserver/config"
	"github.com/duoparty/gameserver/logger"
	"github.com/duoparty/gameserver/monitor"
	"github.com/duoparty/gameserver/persistence"
	"github.com/duoparty/gameserver/server"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize shared state store
	store, err := persistence.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.OpTimeout)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to redis: %v", err)
	}
	logger.Log.Info("Redis connection successful.")

	// Initialize question catalog
	catalog, err := newCatalog(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Info("Database connection successful.")

	// Initialize metrics endpoint
	mon := monitor.NewMonitor("duoparty")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Initialize game server
	gameServer := server.NewGameServer(cfg, store, catalog, mon)

	// Start server
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

// newCatalog 按配置选择题库实现
func newCatalog(cfg *config.Config) (persistence.Catalog, error) {
	pg := cfg.Database.Postgres
	if cfg.Database.Driver == "postgres-raw" {
		return persistence.NewPostgreSQLCatalog(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	}
	return persistence.NewGormCatalog(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
}
