package sessiongate

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coursedesk/sessiongate/internal/audit"
	"github.com/coursedesk/sessiongate/logger"
	"github.com/coursedesk/sessiongate/store"
)

// Builder assembles a Manager. A Builder can be used once.
type Builder struct {
	config Config

	store     store.Store
	auth      Authenticator
	navigator Navigator
	notifier  Notifier
	log       logger.Logger
	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore overrides the backend selected by Config.Store.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithAuthenticator sets the required authentication collaborator.
func (b *Builder) WithAuthenticator(a Authenticator) *Builder {
	b.auth = a
	return b
}

func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

func (b *Builder) WithLogger(l logger.Logger) *Builder {
	b.log = l
	return b
}

// WithAuditSink sets the audit destination. Events flow only when Config.Audit.Enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock replaces time.Now, used for token expiry checks and latency.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and returns a Manager in the Uninitialized state.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.auth == nil {
		return nil, errors.New("authenticator required")
	}

	m := &Manager{
		cfg:       cfg,
		auth:      b.auth,
		navigator: b.navigator,
		notifier:  b.notifier,
		log:       b.log,
		now:       b.now,
		metrics:   NewMetrics(cfg.Metrics),
		ready:     make(chan struct{}),
		status:    StatusUninitialized,
	}
	if m.navigator == nil {
		m.navigator = NoopNavigator
	}
	if m.notifier == nil {
		m.notifier = NoopNotifier
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.log == nil {
		m.log = logger.NewLogger(&logger.Config{
			Level:      cfg.Log.Level,
			JSON:       cfg.Log.JSON,
			Output:     os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
	m.log = m.log.With("component", "session")

	if b.store != nil {
		m.store = b.store
	} else {
		s, closer, err := openStore(cfg.Store)
		if err != nil {
			return nil, err
		}
		m.store = s
		if closer != nil {
			m.closers = append(m.closers, closer)
		}
	}

	m.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true
	return m, nil
}

func openStore(cfg StoreConfig) (store.Store, func() error, error) {
	switch cfg.Backend {
	case BackendMemory:
		return store.NewMemory(), nil, nil
	case BackendFile:
		s, err := store.NewFile(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return store.NewRedis(client, cfg.Prefix), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported Store Backend %q", cfg.Backend)
	}
}
