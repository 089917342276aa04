package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/annie987/todo/internal/cache"
	"github.com/annie987/todo/internal/config"
	"github.com/annie987/todo/internal/repo"
	"github.com/annie987/todo/internal/service"
	"github.com/annie987/todo/migrations"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type App struct {
	cfg    config.Config
	pool   *pgxpool.Pool
	sqlDB  *sql.DB
	redis  *redis.Client
	router *gin.Engine
}

func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg}

	pool, err := newPostgres(cfg.PG)
	if err != nil {
		return nil, err
	}
	a.pool = pool
	// database/sql view of the same pool, shared by goose and GORM.
	a.sqlDB = stdlib.OpenDBFromPool(pool)

	if err := migrations.Up(a.sqlDB); err != nil {
		a.closeDB()
		return nil, err
	}

	gdb, err := newGorm(a.sqlDB)
	if err != nil {
		a.closeDB()
		return nil, err
	}

	var listCache service.ListCache
	if cfg.Redis.Enabled() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			a.closeDB()
			return nil, err
		}
		a.redis = rdb
		listCache = cache.NewTaskCache(rdb, cfg.Redis.DefaultTTL.Duration())
	} else {
		log.Printf("redis not configured, task list cache disabled")
	}

	svc := service.NewTaskService(repo.NewGormTaskRepo(gdb), listCache)
	a.router = newRouter(cfg, svc, a.pool.Ping)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Close releases Redis and the database pool, giving up when ctx ends.
func (a *App) Close(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		var err error
		if a.redis != nil {
			err = a.redis.Close()
		}
		a.closeDB()
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("redis close: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("close: %w", ctx.Err())
	}
}

func (a *App) closeDB() {
	if a.sqlDB != nil {
		_ = a.sqlDB.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func newPostgres(cfg config.PGConfig) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	pcfg.MaxConns = cfg.MaxConns
	pcfg.MinConns = cfg.MinConns
	pcfg.MaxConnIdleTime = 5 * time.Minute
	pcfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newGorm(sqlDB *sql.DB) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}
	return gdb, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func newRouter(cfg config.Config, svc *service.TaskService, ping func(context.Context) error) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, svc, ping)
	return r
}
