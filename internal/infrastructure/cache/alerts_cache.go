package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
)

const (
	versionKey  = "inventory:alerts:version"
	bumpChannel = "inventory.alerts.bump"

	// defaultVersionRefresh cada cuánto se relee la versión de Redis si no llegó ningún bump.
	defaultVersionRefresh = 5 * time.Second
)

var _ inventory.AlertsCache = (*AlertsCache)(nil)

// AlertsCache caché de alertas en Redis con versión global.
// Cada movimiento sube la versión, así las claves viejas quedan huérfanas y expiran por TTL.
// La instancia guarda una copia local de la versión: sus propios bumps y los que publican
// otras instancias (ListenForInvalidation) la actualizan al instante, y sin noticias se
// relee de Redis cada refresh.
// Con client nil funciona como passthrough (siempre ejecuta el loader).
type AlertsCache struct {
	client  *redis.Client
	ttl     time.Duration
	refresh time.Duration
	group   singleflight.Group
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	version int64
	seenAt  time.Time
}

// NewAlertsCache crea la caché. ttl <= 0 deja las claves sin expiración.
func NewAlertsCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *AlertsCache {
	return &AlertsCache{client: client, ttl: ttl, refresh: defaultVersionRefresh, log: log, now: time.Now}
}

// localVersion versión conocida si todavía está dentro de la ventana de refresco.
func (c *AlertsCache) localVersion() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version == 0 || c.refresh <= 0 || c.now().Sub(c.seenAt) >= c.refresh {
		return 0, false
	}
	return c.version, true
}

// setVersion guarda la versión leída de Redis, que es la autoritativa.
func (c *AlertsCache) setVersion(ver int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = ver
	c.seenAt = c.now()
}

// advanceVersion aplica un bump; un mensaje atrasado nunca retrocede la versión.
func (c *AlertsCache) advanceVersion(ver int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ver <= c.version {
		return false
	}
	c.version = ver
	c.seenAt = c.now()
	return true
}

func (c *AlertsCache) enabled() bool {
	return c != nil && c.client != nil
}

// Version devuelve la versión actual, inicializándola en 1 si falta.
func (c *AlertsCache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	if ver, ok := c.localVersion(); ok {
		return ver, nil
	}
	ver, err := c.readVersion(ctx)
	if err != nil {
		return 0, err
	}
	c.setVersion(ver)
	return ver, nil
}

func (c *AlertsCache) readVersion(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		// SetNX evita pisar un Bump concurrente.
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	return ver, err
}

// BuildKey arma la clave con la versión vigente al final.
func (c *AlertsCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON lee key en dest; en un miss ejecuta loader una sola vez por clave
// aunque haya varios llamadores concurrentes, y guarda el resultado.
func (c *AlertsCache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader requerido")
	}
	if !c.enabled() {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		return roundTrip(value, dest)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}

	raw, err, shared := c.group.Do(key, func() (any, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			// el valor sigue siendo válido aunque no se haya podido guardar
			c.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar alertas en caché")
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	if shared {
		c.log.Debug().Str("key", key).Msg("carga de alertas compartida")
	}
	return json.Unmarshal(raw.([]byte), dest)
}

// Bump invalida las claves vigentes y publica la nueva versión.
func (c *AlertsCache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return err
	}
	c.advanceVersion(ver)
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation escucha los bumps publicados por otras instancias y adelanta la
// versión local, así esta instancia deja de servir alertas viejas sin esperar al refresco.
// Termina cuando ctx se cancela.
func (c *AlertsCache) ListenForInvalidation(ctx context.Context) {
	if !c.enabled() {
		return
	}
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					c.log.Warn().Str("payload", msg.Payload).Msg("bump de alertas ilegible")
					continue
				}
				if c.advanceVersion(ver) {
					c.log.Debug().Int64("version", ver).Msg("alertas invalidadas por otra instancia")
				}
			}
		}
	}()
}

func roundTrip(value, dest any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
