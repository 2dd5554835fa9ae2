package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"photoshare/config"
	"photoshare/database"
	"photoshare/filestore"
	"photoshare/logger"
	"photoshare/service"
	"photoshare/session"
	"photoshare/store"
)

// app holds the wired backends for one process. close releases whatever
// connections were opened.
type app struct {
	cfg      *config.Config
	db       *database.DB
	services *service.Services
	sessions *session.Manager
	files    filestore.Storage
	closers  []func(context.Context) error
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

// newApp wires stores, sessions and file storage from cfg. With memory set,
// Mongo is skipped and data lives only as long as the process.
func newApp(ctx context.Context, cfg *config.Config, memory bool) (*app, error) {
	a := &app{cfg: cfg}

	deps := service.Deps{}
	if memory {
		logger.Log.Warn("Using in-memory stores; data will not survive a restart")
		deps.Users = store.NewMemoryUsers()
		deps.Photos = store.NewMemoryPhotos()
		deps.Favorites = store.NewMemoryFavorites()
	} else {
		db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.closers = append(a.closers, db.Disconnect)
		if err := db.EnsureIndexes(ctx); err != nil {
			a.close(ctx)
			return nil, err
		}
		deps.Users = store.NewMongoUsers(db.Users)
		deps.Photos = store.NewMongoPhotos(db.Photos)
		deps.Favorites = store.NewMongoFavorites(db.Favorites)
	}

	var sessStore session.Store
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		sessStore = session.NewRedisStore(client)
		logger.Log.Info("Sessions stored in Redis")
	default:
		sessStore = session.NewMemoryStore()
		logger.Log.Info("Sessions stored in memory")
	}
	a.sessions = session.NewManager(sessStore, cfg.SessionSecret, cfg.SessionTTL)
	deps.Sessions = a.sessions

	switch cfg.StorageBackend {
	case config.StorageBackendCloudinary:
		files, err := filestore.NewCloudinaryStorage(cfg.CloudinaryURL)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.files = files
	default:
		files, err := filestore.NewDiskStorage(cfg.UploadDir)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.files = files
	}
	deps.Files = a.files

	a.services = service.New(deps)
	return a, nil
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Log.Warn("Error during shutdown", zap.Error(err))
		}
	}
	a.closers = nil
}
