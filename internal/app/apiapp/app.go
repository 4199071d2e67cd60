package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/AuvroIslam/Mio-sub001/internal/config"
	"github.com/AuvroIslam/Mio-sub001/internal/infra/chatclient"
	mongoinfra "github.com/AuvroIslam/Mio-sub001/internal/infra/mongodb"
	s3infra "github.com/AuvroIslam/Mio-sub001/internal/infra/s3"
	"github.com/AuvroIslam/Mio-sub001/internal/infra/telegram"
	"github.com/AuvroIslam/Mio-sub001/internal/jobs/reconcile"
	"github.com/AuvroIslam/Mio-sub001/internal/repo/docstore"
	pgrepo "github.com/AuvroIslam/Mio-sub001/internal/repo/postgres"
	redrepo "github.com/AuvroIslam/Mio-sub001/internal/repo/redis"
	analyticsvc "github.com/AuvroIslam/Mio-sub001/internal/services/analytics"
	candidatesvc "github.com/AuvroIslam/Mio-sub001/internal/services/candidates"
	cooldownsvc "github.com/AuvroIslam/Mio-sub001/internal/services/cooldown"
	interestssvc "github.com/AuvroIslam/Mio-sub001/internal/services/interests"
	matchersvc "github.com/AuvroIslam/Mio-sub001/internal/services/matcher"
	mediasvc "github.com/AuvroIslam/Mio-sub001/internal/services/media"
	ratesvc "github.com/AuvroIslam/Mio-sub001/internal/services/rate"
	"github.com/AuvroIslam/Mio-sub001/internal/store/mongostore"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	mongo      *mongo.Client
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler

	reconcileJob *reconcile.Job
	jobsCtx      context.Context
	jobsCancel   context.CancelFunc
}

// New wires the matching service. MongoDB is the system of record and is
// required; postgres, redis, object storage, telegram, and the chat service
// degrade to warnings when unavailable.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	mongoClient, err := mongoinfra.NewClient(ctx, cfg.Mongo.URI)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	docs, err := mongostore.New(mongoClient, cfg.Mongo.Database)
	if err != nil {
		return nil, fmt.Errorf("init document store: %w", err)
	}

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)

	profileRepo := docstore.NewProfileRepo(docs)
	indexRepo := docstore.NewInterestIndexRepo(docs)
	matchRepo := docstore.NewMatchRepo(docs)
	cooldownRepo := docstore.NewCooldownRepo(docs)

	var eventRepo *pgrepo.EventRepo
	var eventStore analyticsvc.Store
	if pool != nil {
		eventRepo = pgrepo.NewEventRepo(pool)
		eventStore = eventRepo
	}
	analyticsService := analyticsvc.NewService(eventStore, log)

	photoResolver := func() *mediasvc.Resolver {
		client, err := s3infra.NewClient(s3infra.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			log.Warn("s3 init failed, photos served as raw keys", zap.Error(err))
			return mediasvc.NewResolver(nil, cfg.S3.Bucket, cfg.S3.PresignedTTL)
		}
		return mediasvc.NewResolver(client, cfg.S3.Bucket, cfg.S3.PresignedTTL)
	}()

	interestsService := interestssvc.NewService(profileRepo, indexRepo)
	candidateService := candidatesvc.NewService(indexRepo, log, candidatesvc.Config{
		ScanBatchSize:  cfg.Matching.ScanBatchSize,
		MatchThreshold: cfg.Matching.MatchThreshold,
	})
	cooldownService := cooldownsvc.NewService(cooldownRepo, nil, log, cooldownsvc.Config{
		FreeMatchQuota:   cfg.Matching.FreeMatchQuota,
		CooldownDuration: cfg.Matching.CooldownDuration,
		DefaultIsPremium: cfg.Matching.DefaultIsPremium,
	})
	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Matching.PassesPerMinute, cfg.Matching.PassesPerHour)

	matcherDeps := matchersvc.Dependencies{
		Profiles:    profileRepo,
		Matches:     matchRepo,
		Candidates:  candidateService,
		Gate:        cooldownService,
		RateLimiter: rateLimiter,
		Photos:      photoResolver,
		Analytics:   analyticsService,
		Logger:      log,
	}
	if cfg.Chat.BaseURL != "" {
		matcherDeps.Chat = chatclient.New(cfg.Chat.BaseURL, cfg.Chat.Timeout)
	}
	if notifier, err := telegram.NewNotifier(cfg.Bot.Token); err != nil {
		log.Warn("telegram init failed, match notifications disabled", zap.Error(err))
	} else {
		matcherDeps.Notifier = telegramNotifier{bot: notifier}
	}
	matcherService := matchersvc.NewService(matcherDeps, matchersvc.Config{
		PropagationChunkSize: cfg.Matching.PropagationChunkSize,
		MaxCandidatesPerPass: cfg.Matching.MaxCandidatesPerPass,
	})

	var reconcileJob *reconcile.Job
	if cfg.Reconcile.Enabled && eventRepo != nil {
		reconcileJob = reconcile.NewJob(eventRepo, matchRepo, matcherService, log, reconcile.Config{
			Interval:  cfg.Reconcile.Interval,
			Lookback:  cfg.Reconcile.Lookback,
			UserLimit: cfg.Reconcile.UserLimit,
		})
	} else if cfg.Reconcile.Enabled {
		log.Warn("reconcile job disabled: no analytics database for the activity feed")
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		InterestsService: interestsService,
		MatcherService:   matcherService,
		CooldownService:  cooldownService,
		AnalyticsService: analyticsService,
		Logger:           log,
		Config:           cfg,
	})

	jobsCtx, jobsCancel := context.WithCancel(context.Background())

	return &App{
		cfg:          cfg,
		logger:       log,
		server:       server,
		mongo:        mongoClient,
		postgres:     pool,
		redis:        redisClient,
		httpRouter:   r,
		reconcileJob: reconcileJob,
		jobsCtx:      jobsCtx,
		jobsCancel:   jobsCancel,
	}, nil
}

func (a *App) Run() error {
	if a.reconcileJob != nil {
		go a.reconcileJob.Run(a.jobsCtx)
	}

	a.logger.Info("matching api started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	a.jobsCancel()

	var shutdownErr error
	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

// telegramNotifier bridges string user ids to numeric Telegram chat ids. Ids
// that are not Telegram chats are silently skipped.
type telegramNotifier struct {
	bot *telegram.Notifier
}

func (n telegramNotifier) NotifyMatch(ctx context.Context, userID, otherDisplayName string, strength int) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil
	}
	return n.bot.NotifyMatch(ctx, chatID, otherDisplayName, strength)
}
