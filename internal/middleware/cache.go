package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-feed/internal/config"
)

// Cache scopes.  Every cached response belongs to one scope so writes can
// purge exactly the responses they invalidate.
const (
	ScopeFeed = "feed"
)

// EventScope is the scope of responses about one event (detail and
// comment thread).
func EventScope(id string) string { return "event:" + id }

// ScopeFunc picks the scope of a request.
type ScopeFunc func(c echo.Context) string

// FeedScope puts a response in ScopeFeed.
func FeedScope(echo.Context) string { return ScopeFeed }

// EventParamScope puts a response in the scope of the event named by the
// :id path parameter.  The id is canonicalized so "01" and "1" share the
// scope that writes purge.
func EventParamScope(c echo.Context) string {
	raw := c.Param("id")
	if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return EventScope(strconv.FormatUint(id, 10))
	}
	return EventScope(raw)
}

// ResponseCache stores successful responses in Redis keyed by scope and
// request.  A nil Redis client or disabled config turns it into a
// pass-through.
type ResponseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewResponseCache returns a ResponseCache.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	if cfg.TTL <= 0 {
		cfg.TTL = config.LoadCacheConfig().TTL
	}
	return &ResponseCache{cfg: cfg, rdb: rdb}
}

func (rc *ResponseCache) enabled() bool { return rc != nil && rc.cfg.Enabled && rc.rdb != nil }

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
		cw.truncated = true
	} else if !cw.truncated {
		cw.buf.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

// cacheKey builds "<prefix>:<scope>:<sha1(method route query)>".
func cacheKey(prefix, scope string, c echo.Context) string {
	r := c.Request()
	sum := sha1.Sum([]byte(r.Method + " " + c.Path() + "?" + r.URL.RawQuery))
	return fmt.Sprintf("%s:%s:%x", prefix, scope, sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// Middleware caches responses of the configured methods under the scope
// chosen by scope.  Only 200 responses that fit MaxBodyBytes are stored.
// Hits are marked with X-Cache: HIT.
func (rc *ResponseCache) Middleware(scope ScopeFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !rc.enabled() {
			return next
		}
		return func(c echo.Context) error {
			if !rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cacheKey(rc.cfg.Prefix, scope(c), c)

			if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, err := c.Response().Write(body)
					return err
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: rc.cfg.MaxBodyBytes}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated {
				return nil
			}

			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			// the request context may already be cancelled by the client
			if err := rc.rdb.SetEx(context.WithoutCancel(ctx), key, payload, rc.cfg.TTL).Err(); err != nil {
				log.Printf("cache: store %s: %v", key, err)
			}
			return nil
		}
	}
}

// Purge deletes every cached response in the given scopes.
func (rc *ResponseCache) Purge(ctx context.Context, scopes ...string) error {
	if !rc.enabled() {
		return nil
	}
	for _, scope := range scopes {
		pattern := rc.cfg.Prefix + ":" + scope + ":*"
		iter := rc.rdb.Scan(ctx, 0, pattern, 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("cache purge %s: %w", scope, err)
		}
		if len(keys) == 0 {
			continue
		}
		if err := rc.rdb.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("cache purge %s: %w", scope, err)
		}
	}
	return nil
}
