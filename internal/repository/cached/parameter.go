package cached

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/admin-security/internal/model"
	"github.com/jwalitptl/admin-security/internal/repository"
	"github.com/jwalitptl/admin-security/pkg/messaging"
)

// ChannelParametersUpdated is published after security parameters change.
const ChannelParametersUpdated = "security.parameters.updated"

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// missing marks keys known to be absent from the backing store.
type missing struct{}

// ParameterStore caches parameter reads in process. Writes go straight to the
// backing repository and evict the key.
type ParameterStore struct {
	repo   repository.ParameterRepository
	cache  *cache.Cache
	logger *zerolog.Logger
}

func NewParameterStore(repo repository.ParameterRepository, cfg Config, logger *zerolog.Logger) *ParameterStore {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &ParameterStore{
		repo:   repo,
		cache:  cache.New(cfg.TTL, cfg.CleanupInterval),
		logger: logger,
	}
}

func (s *ParameterStore) FindByKey(ctx context.Context, key string) (*model.Parameter, error) {
	if v, ok := s.cache.Get(key); ok {
		switch p := v.(type) {
		case model.Parameter:
			return &p, nil
		case missing:
			return nil, nil
		}
	}

	p, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if p == nil {
		s.cache.SetDefault(key, missing{})
		return nil, nil
	}
	s.cache.SetDefault(key, *p)

	out := *p
	return &out, nil
}

func (s *ParameterStore) Update(ctx context.Context, key, value string) error {
	defer s.cache.Delete(key)
	return s.repo.Update(ctx, key, value)
}

func (s *ParameterStore) List(ctx context.Context) ([]*model.Parameter, error) {
	return s.repo.List(ctx)
}

// Flush drops every cached parameter.
func (s *ParameterStore) Flush() {
	s.cache.Flush()
}

// Listen flushes the cache whenever another instance announces a parameter
// change. It returns when ctx is done.
func (s *ParameterStore) Listen(ctx context.Context, broker messaging.Broker) error {
	msgs, err := broker.Subscribe(ctx, ChannelParametersUpdated)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-msgs:
			if !ok {
				return nil
			}
			s.Flush()
			s.logger.Debug().Msg("security parameter cache flushed")
		}
	}
}
