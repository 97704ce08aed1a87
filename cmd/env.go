package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/blink-new/studytrack/internal/auth"
	"github.com/blink-new/studytrack/internal/config"
	"github.com/blink-new/studytrack/internal/content"
	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/llm"
	"github.com/blink-new/studytrack/internal/logging"
	"github.com/blink-new/studytrack/internal/quizgen"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/session"
	"github.com/blink-new/studytrack/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env holds the services one command invocation works with.
type env struct {
	cfg     config.Config
	log     *zap.Logger
	sqlite  *store.Store // nil with the memory backend
	kv      store.KV
	user    auth.User
	profile ledger.Profile
	deps    *screen.Deps
	closers []func()
}

// openEnv loads the config, opens storage, signs the user in and builds
// the ledger services. Callers must Close the result.
func openEnv(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	e := &env{cfg: cfg, log: logger, closers: []func(){closeLog}}

	if err := e.openStorage(ctx); err != nil {
		e.Close()
		return nil, err
	}

	e.user, err = e.signIn(ctx)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("sign in: %w", err)
	}

	l := ledger.New(e.kv, ledger.WithLogger(logger))
	e.profile, err = l.EnsureProfile(ctx, e.user)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("load profile: %w", err)
	}

	engine := cfg.Engine()
	ctrl := session.NewController(l, e.user.ID, engine,
		session.WithLogger(logger),
		session.WithDefaultSubject(cfg.Study.DefaultSubject),
	)
	e.closers = append(e.closers, ctrl.Close)

	e.deps = &screen.Deps{
		Ledger:     l,
		UserID:     e.user.ID,
		Engine:     engine,
		Controller: ctrl,
		Content:    content.Default(),
		GoalHours:  cfg.Study.DailyGoalHours,
		Now:        time.Now,
		Log:        logger,
	}
	logger.Debug("environment ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("user", e.user.ID))
	return e, nil
}

// openStorage opens the ledger backend. The SQLite file is opened for the
// sqlite and redis backends since LLM events always live there.
func (e *env) openStorage(ctx context.Context) error {
	if e.cfg.Storage.Backend == config.BackendMemory {
		e.kv = store.NewMemory()
		return nil
	}

	path, err := resolveDBPath(e.cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	e.sqlite = st
	e.closers = append(e.closers, func() { st.Close() })
	e.kv = st

	if e.cfg.Storage.Backend == config.BackendRedis {
		rc := e.cfg.Storage.Redis
		r, err := store.OpenRedis(ctx, store.RedisOptions{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
			Prefix:   rc.Prefix,
		})
		if err != nil {
			return fmt.Errorf("open redis: %w", err)
		}
		e.closers = append(e.closers, func() { r.Close() })
		e.kv = r
	}
	return nil
}

// signIn resolves the user from the configured token, or the device
// identity when no token is set.
func (e *env) signIn(ctx context.Context) (auth.User, error) {
	a := e.cfg.Auth
	if a.Token != "" {
		return auth.NewTokenProvider(a.Secret).SignIn(a.Token)
	}

	p := auth.NewLocalProvider(e.kv, auth.User{DisplayName: a.DisplayName, Email: a.Email})
	errc := make(chan error, 1)
	go func() {
		_, err := p.Resolve(ctx)
		errc <- err
	}()
	u, err := auth.Await(ctx, p)
	if err != nil {
		if rerr := <-errc; rerr != nil {
			return auth.User{}, rerr
		}
		return auth.User{}, err
	}
	return u, nil
}

// events returns the LLM event repository, or nil without SQLite.
func (e *env) events() store.EventRepo {
	if e.sqlite == nil {
		return nil
	}
	return e.sqlite.EventRepo()
}

// enableGenerator sets up quiz generation from the LLM environment.
func (e *env) enableGenerator(ctx context.Context) error {
	provider, err := llm.New(ctx, llm.ConfigFromEnv(), e.events(), e.log)
	if err != nil {
		return err
	}
	e.deps.Generator = quizgen.New(provider, quizgen.DefaultConfig())
	return nil
}

// today returns the local calendar date.
func (e *env) today() ledger.Date {
	return e.deps.Today()
}

// snapshot returns the signed-in user's ledger.
func (e *env) snapshot(ctx context.Context) (ledger.Snapshot, error) {
	return e.deps.Snapshot(ctx)
}

// Close releases everything openEnv acquired, newest first.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}
