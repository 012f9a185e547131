package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AnshRaj112/afterthedoll-backend/internal/config"
	"github.com/AnshRaj112/afterthedoll-backend/internal/database"
	"github.com/AnshRaj112/afterthedoll-backend/internal/handlers"
	"github.com/AnshRaj112/afterthedoll-backend/internal/logging"
	"github.com/AnshRaj112/afterthedoll-backend/internal/middleware"
	"github.com/AnshRaj112/afterthedoll-backend/internal/routes"
	"github.com/AnshRaj112/afterthedoll-backend/internal/services"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store/memstore"
	"github.com/AnshRaj112/afterthedoll-backend/pkg/auth"
	"github.com/AnshRaj112/afterthedoll-backend/pkg/utils"
)

// stores is the set of backends the services run on.
type stores struct {
	accounts store.AccountStore
	profiles store.ProfileStore
	journal  store.JournalStore
	friends  store.FriendStore
	forum    store.ForumStore
	kv       services.KV
	close    func()
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found")
	}
	cfg := config.Load()

	log, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = run(cfg, log)
	if err != nil {
		log.Error("server exited", zap.Error(err))
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until SIGINT or SIGTERM. Every deferred cleanup has run by the
// time it returns.
func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.Background()
	st, err := connectStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s stores: %w", cfg.Store, err)
	}
	defer st.close()

	var enc *utils.Encryptor
	if cfg.EncryptionKey == "" {
		log.Warn("ENCRYPTION_KEY not set; recovery emails will not be stored. Generate one with: openssl rand -base64 32")
	} else if enc, err = utils.NewEncryptor(cfg.EncryptionKey); err != nil {
		return fmt.Errorf("ENCRYPTION_KEY must be base64-encoded 32 bytes: %w", err)
	}

	seed, err := readSeedFile(cfg.ForumCategoriesFile)
	if err != nil {
		return fmt.Errorf("read forum categories: %w", err)
	}
	if n, err := services.SeedCategories(ctx, st.forum, seed); err != nil {
		log.Error("failed to seed forum categories", zap.Error(err))
	} else {
		log.Info("forum categories seeded", zap.Int("count", n))
	}

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	sessions := services.NewSessionService(st.kv, tokens)
	cache := services.NewProfileCache(st.kv, services.DefaultProfileTTL)

	users := services.NewUserService(st.accounts, st.profiles, cache, enc, log.Named("users"))
	friendships := services.NewFriendshipService(st.friends, users, log.Named("friends"))
	journal := services.NewJournalService(st.journal, users, friendships, log.Named("journal"))
	forum := services.NewForumService(st.forum, users, log.Named("forum"), cfg.ForumMonotonicLastReply)

	var avatars *services.AvatarService
	if cfg.CloudinaryEnabled() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Warn("avatar uploads disabled", zap.Error(err))
		} else {
			avatars = services.NewAvatarService(cld, users, cfg.CloudinaryFolder)
		}
	} else {
		log.Warn("Cloudinary credentials not found; avatar uploads will not be available")
	}

	r := routes.NewRouter(cfg, log, routes.Handlers{
		Auth:    handlers.NewAuthHandler(users, sessions, log),
		Users:   handlers.NewUserHandler(users, journal, avatars, log),
		Journal: handlers.NewJournalHandler(journal, log),
		Friends: handlers.NewFriendHandler(friendships, log),
		Forum:   handlers.NewForumHandler(forum, log),
		AuthMW:  middleware.NewAuthMiddleware(sessions),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("After the Doll backend running",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store),
			zap.Bool("monotonic_last_reply", cfg.ForumMonotonicLastReply),
		)
		serveErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-quit:
	}

	log.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	log.Info("server stopped")
	return nil
}

var connectStores = openStores

// openStores connects the configured backends. STORE=memory keeps everything
// in process for local development.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on restart")
		mem := memstore.New()
		return &stores{
			accounts: mem,
			profiles: mem,
			journal:  mem,
			friends:  mem,
			forum:    mem,
			kv:       memstore.NewKV(),
			close:    func() {},
		}, nil
	}

	var (
		pg     *sqlx.DB
		rdb    *redis.Client
		client *mongo.Client
		db     *mongo.Database
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if pg, err = database.ConnectPostgres(gctx, cfg.PostgresURI, log); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if rdb, err = database.ConnectRedis(gctx, cfg.RedisURI, log); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if client, db, err = database.ConnectMongo(gctx, cfg.MongoURI, log); err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
		return nil
	})
	closeAll := func() {
		if client != nil {
			_ = database.DisconnectMongo(client)
		}
		if rdb != nil {
			_ = database.DisconnectRedis(rdb)
		}
		if pg != nil {
			_ = database.DisconnectPostgres(pg)
		}
	}
	if err := g.Wait(); err != nil {
		closeAll()
		return nil, err
	}

	mongoStore := store.NewMongoStore(db)
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		log.Warn("failed to ensure MongoDB indexes", zap.Error(err))
	}

	return &stores{
		accounts: store.NewPostgresAccounts(pg),
		profiles: mongoStore,
		journal:  mongoStore,
		friends:  mongoStore,
		forum:    mongoStore,
		kv:       services.NewRedisKV(rdb),
		close:    closeAll,
	}, nil
}

func readSeedFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}
