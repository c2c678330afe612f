package cli

import (
	"context"
	"time"

	"classbattle-client/internal/app"
	"classbattle-client/internal/config"
	"classbattle-client/internal/domain"
	"classbattle-client/internal/infra/file"
	"classbattle-client/internal/infra/memory"
	redisstore "classbattle-client/internal/infra/redis"
	"classbattle-client/internal/logger"
	"classbattle-client/internal/rest"
	"classbattle-client/internal/socket"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runtime is everything a command needs, built from config once per run.
type runtime struct {
	cfg      config.Config
	logger   *zap.Logger
	store    app.DeviceStore
	api      *rest.Client
	subjects app.SubjectCache
	sockets  *socket.Manager
	redis    *redis.Client
}

func bootstrap(configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}

	rt := &runtime{cfg: cfg, logger: log}
	if cfg.Storage.Addr != "" {
		rt.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Addr,
			Password: cfg.Storage.Password,
			DB:       cfg.Storage.DB,
		})
		rt.store = redisstore.NewDeviceStore(rt.redis, "", config.TTLDuration(cfg.Storage.TTL, 24*time.Hour))
	} else {
		path, err := file.DefaultPath()
		if err != nil {
			return nil, err
		}
		rt.store = file.NewDeviceStore(path)
	}

	rt.api = rest.NewClient(cfg.API.URL, rt.requestTimeout(), rt.store, rest.WithLogger(log))

	loader := memory.SubjectLoaderFunc(func(ctx context.Context, _ string) ([]domain.Subject, error) {
		return rt.api.ListSubjects(ctx)
	})
	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 5*time.Minute)
	if rt.redis != nil {
		rt.subjects = redisstore.NewSubjectCache(rt.redis, loader, cacheTTL)
	} else {
		rt.subjects = memory.NewSubjectCache(loader, cacheTTL)
	}
	return rt, nil
}

func (rt *runtime) requestTimeout() time.Duration {
	return config.TTLDuration(rt.cfg.API.Timeout, 10*time.Second)
}

// currentUser returns the cached profile, refusing expired tokens.
func (rt *runtime) currentUser(ctx context.Context) (domain.User, error) {
	token, err := rt.store.Token(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if token == "" || rest.TokenExpired(token, time.Now()) {
		return domain.User{}, domain.ErrNotLoggedIn
	}
	user, ok, err := rt.store.User(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.ErrNotLoggedIn
	}
	return user, nil
}

func (rt *runtime) currentTeacher(ctx context.Context) (domain.User, error) {
	user, err := rt.currentUser(ctx)
	if err != nil {
		return user, err
	}
	if !user.IsTeacher() {
		return user, errors.New("this command needs a teacher account")
	}
	return user, nil
}

// connect dials the socket with the cached token as handshake auth.
func (rt *runtime) connect(ctx context.Context) (*socket.Client, error) {
	if rt.sockets == nil {
		token, err := rt.store.Token(ctx)
		if err != nil {
			return nil, err
		}
		rt.sockets = socket.NewManager(socket.Options{
			URL:         rt.cfg.Socket.URL,
			Path:        rt.cfg.Socket.Path,
			Auth:        map[string]any{"token": token},
			Reconnect:   rt.cfg.ReconnectEnabled(),
			MaxAttempts: rt.cfg.Socket.MaxAttempts,
			BackoffMin:  config.TTLDuration(rt.cfg.Socket.BackoffMin, time.Second),
			BackoffMax:  config.TTLDuration(rt.cfg.Socket.BackoffMax, 5*time.Second),
			Logger:      rt.logger,
		})
	}
	client, err := rt.sockets.Connect(ctx)
	return client, errors.Wrap(err, "connect socket")
}

func (rt *runtime) sessionOptions() app.SessionOptions {
	return app.SessionOptions{
		QuestionDuration: time.Duration(rt.cfg.Game.QuestionSeconds) * time.Second,
		Feedback:         config.TTLDuration(rt.cfg.Game.Feedback, 2*time.Second),
		Podium:           config.TTLDuration(rt.cfg.Game.Podium, 5*time.Second),
		Logger:           rt.logger,
	}
}

// rememberRoom keeps the teacher's recent rooms, newest first.
func (rt *runtime) rememberRoom(ctx context.Context, teacherID string, room domain.RoomRef) {
	rooms, err := rt.store.Rooms(ctx, teacherID)
	if err != nil {
		rt.logger.Warn("read rooms", zap.Error(err))
	}
	next := []domain.RoomRef{room}
	for _, r := range rooms {
		if r.Code != room.Code && len(next) < 10 {
			next = append(next, r)
		}
	}
	if err := rt.store.SetRooms(ctx, teacherID, next); err != nil {
		rt.logger.Warn("save rooms", zap.Error(err))
	}
}

func (rt *runtime) Close() {
	if rt.sockets != nil {
		rt.sockets.Disconnect()
	}
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	_ = rt.logger.Sync()
}

// withRuntime wraps a command body with bootstrap and teardown.
func withRuntime(cmd *cobra.Command, configPath *string, fn func(ctx context.Context, rt *runtime) error) error {
	rt, err := bootstrap(*configPath)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(cmd.Context(), rt)
}
