// Package session provides a Redis-backed session store plugin for
// dispatch.Engine. Session data is process-wide shared state keyed by a
// cookie-carried session id, the kind of plugin state §5 Concurrency &
// Resource Model calls out as living outside any single Context.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/evalgo-org/cutelyst-go/dispatch"
)

const (
	cookieName = "eve_session"
	pluginKey  = "session"
	stashKey   = "id"
)

// Config configures the Redis-backed session store, following
// queue/redis/queue.go's Config/NewQueue shape.
type Config struct {
	RedisURL  string        // defaults to EVE_SESSION_REDIS_URL or redis://localhost:6379/0
	KeyPrefix string        // defaults to "session:"
	TTL       time.Duration // defaults to 30 minutes
}

// Store is the Redis-backed session plugin.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New connects to Redis and returns a ready-to-install Store, grounded on
// queue/redis/queue.go's NewQueue connection pattern (parse URL, ping to
// fail fast, key prefix convention).
func New(ctx context.Context, cfg Config) (*Store, error) {
	url := cfg.RedisURL
	if url == "" {
		url = os.Getenv("EVE_SESSION_REDIS_URL")
	}
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("session: parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("session: connecting to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "session:"
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 30 * time.Minute
	}

	return &Store{client: client, prefix: prefix, ttl: ttl}, nil
}

// Close releases the underlying Redis connection.
func (s *Store) Close() error { return s.client.Close() }

// Install registers the store's beforePrepareAction/afterDispatch hooks:
// load the session before dispatch, persist any mutation after.
func (s *Store) Install(engine *dispatch.Engine) {
	engine.Hooks().AddBeforePrepareAction(s.load)
	engine.Hooks().AddAfterDispatch(s.save)
}

func (s *Store) load(ctx *dispatch.Context) {
	id, ok := ctx.Req.Cookie(cookieName)
	if !ok || id == "" {
		id = uuid.NewString()
		ctx.Resp.AddHeader("Set-Cookie", fmt.Sprintf("%s=%s; Path=/; HttpOnly", cookieName, id))
	}

	stash := ctx.PluginStash(pluginKey)
	stash[stashKey] = dispatch.NewStashString(id)

	raw, err := s.client.Get(context.Background(), s.key(id)).Result()
	if err != nil {
		return // no existing session; stash starts empty
	}
	var data map[string]string
	if json.Unmarshal([]byte(raw), &data) != nil {
		return
	}
	for k, v := range data {
		stash[k] = dispatch.NewStashString(v)
	}
}

func (s *Store) save(ctx *dispatch.Context) {
	stash := ctx.PluginStash(pluginKey)
	id, ok := stash.GetString(stashKey)
	if !ok {
		return
	}

	data := make(map[string]string, len(stash))
	for k, v := range stash {
		if k == stashKey {
			continue
		}
		if str, ok := v.String(); ok {
			data[k] = str
		}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	s.client.Set(context.Background(), s.key(id), raw, s.ttl)
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

// Get reads a string value out of the current request's session stash.
func Get(ctx *dispatch.Context, key string) (string, bool) {
	return ctx.PluginStash(pluginKey).GetString(key)
}

// Set writes a string value into the current request's session stash; it
// is persisted by the afterDispatch hook once the request completes.
func Set(ctx *dispatch.Context, key, value string) {
	ctx.PluginStash(pluginKey).Set(key, dispatch.NewStashString(value))
}
