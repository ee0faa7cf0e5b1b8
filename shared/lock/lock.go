package lock

//go:generate go run go.uber.org/mock/mockgen -source=./lock.go -destination=./mocks/lock_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"hotelops/config"
	"hotelops/infras/otel"
	"hotelops/shared/failure"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DriverRedis  = "redis"
	DriverMemory = "memory"

	otelScopeName   = "lock"
	otelKeyAttibute = "lock.key"
	keyPrefix       = "lock:"
)

const (
	defaultTTL  = 10 * time.Second
	defaultWait = 3 * time.Second
	defaultPoll = 25 * time.Millisecond
)

var ErrNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the key only while it still holds our token, so an
// expired lease never removes a lock taken over by another holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker serializes work per key across goroutines (memory) or instances (redis).
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type Options struct {
	TTL  time.Duration
	Wait time.Duration
	Poll time.Duration
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}

	if o.Wait <= 0 {
		o.Wait = defaultWait
	}

	if o.Poll <= 0 {
		o.Poll = defaultPoll
	}

	return o
}

// New picks the driver configured under BOOKING_LOCK_DRIVER.
func New(cfg *config.Config, client *redis.Client, otl otel.Otel) Locker {
	opts := Options{
		TTL:  time.Duration(cfg.Booking.Lock.TTLMs) * time.Millisecond,
		Wait: time.Duration(cfg.Booking.Lock.WaitMs) * time.Millisecond,
		Poll: time.Duration(cfg.Booking.Lock.PollMs) * time.Millisecond,
	}

	if strings.EqualFold(cfg.Booking.Lock.Driver, DriverMemory) || client == nil {
		log.Info().Msg("Using in-process booking lock")

		return NewMemory(opts)
	}

	log.Info().Msg("Using redis booking lock")

	return NewRedis(client, otl, opts)
}

func busy(key string) error {
	return fmt.Errorf("%w: %w", failure.ServiceUnavailable("resource is busy, try again"), fmt.Errorf("%w: %s", ErrNotAcquired, key))
}

type redisLocker struct {
	client *redis.Client
	otel   otel.Otel
	opts   Options
}

func NewRedis(client *redis.Client, otl otel.Otel, opts Options) Locker {
	return &redisLocker{
		client: client,
		otel:   otl,
		opts:   opts.withDefaults(),
	}
}

func (l *redisLocker) Acquire(ctx context.Context, key string) (release func(), err error) {
	ctx, scope := l.otel.NewScope(ctx, otelScopeName, otelScopeName+".Acquire")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelKeyAttibute, key)

	redisKey := keyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.opts.Wait)

	ticker := time.NewTicker(l.opts.Poll)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.opts.TTL).Result()
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to acquire lock")

			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}

		if ok {
			return func() { l.release(redisKey, token) }, nil
		}

		if time.Now().After(deadline) {
			log.Warn().Str("key", key).Dur("wait", l.opts.Wait).Msg("lock wait elapsed")

			return nil, busy(key)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to acquire lock: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *redisLocker) release(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), l.opts.Poll*40) //nolint:mnd
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
		log.Error().Err(err).Str("key", redisKey).Msg("failed to release lock")
	}
}

type slot struct {
	ch   chan struct{}
	refs int
}

type memoryLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
	opts  Options
}

func NewMemory(opts Options) Locker {
	return &memoryLocker{
		slots: map[string]*slot{},
		opts:  opts.withDefaults(),
	}
}

func (l *memoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()

	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}

	s.refs++
	l.mu.Unlock()

	timer := time.NewTimer(l.opts.Wait)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
		var once sync.Once

		return func() {
			once.Do(func() {
				<-s.ch
				l.unref(key, s)
			})
		}, nil
	case <-timer.C:
		l.unref(key, s)

		return nil, busy(key)
	case <-ctx.Done():
		l.unref(key, s)

		return nil, fmt.Errorf("failed to acquire lock: %w", ctx.Err())
	}
}

func (l *memoryLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
