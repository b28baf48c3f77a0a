package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-feed/internal/auth"
	"github.com/iliyamo/event-feed/internal/config"
)

const testSecret = "test-secret"

func whoAmI(c echo.Context) error {
	id, err := auth.ContextIdentity{}.CurrentUser(c.Request().Context())
	if err != nil {
		return c.String(http.StatusTeapot, "no user")
	}
	return c.String(http.StatusOK, id+"/"+c.Get("user_id").(string))
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoAmI, JWTAuth(testSecret))

	good, err := auth.NewAccessToken(testSecret, "user-1", RoleAuthenticated, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	forged, _ := auth.NewAccessToken("other", "user-1", RoleAuthenticated, time.Hour)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + good.Token, http.StatusOK, "user-1/user-1"},
		{"missing", "", http.StatusUnauthorized, "missing bearer token"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "missing bearer token"},
		{"forged", "Bearer " + forged.Token, http.StatusUnauthorized, "invalid token"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tc.status || !strings.Contains(rec.Body.String(), tc.body) {
			t.Errorf("%s: %d %q, want %d containing %q", tc.name, rec.Code, rec.Body.String(), tc.status, tc.body)
		}
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.POST("/w", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		JWTAuth(testSecret), RequireRole(RoleAuthenticated))

	for role, want := range map[string]int{RoleAuthenticated: http.StatusNoContent, "anon": http.StatusForbidden} {
		tok, _ := auth.NewAccessToken(testSecret, "u", role, time.Hour)
		req := httptest.NewRequest(http.MethodPost, "/w", nil)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("role %q: status %d, want %d", role, rec.Code, want)
		}
	}
}

func TestCacheWithoutRedisIsPassThrough(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil)
	e := echo.New()
	calls := 0
	e.GET("/v1/events", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	}, rc.Middleware(FeedScope))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events", nil))
		if rec.Header().Get("X-Cache") != "" {
			t.Fatalf("X-Cache set without redis: %q", rec.Header().Get("X-Cache"))
		}
	}
	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2", calls)
	}
	if err := rc.Purge(httptest.NewRequest(http.MethodGet, "/", nil).Context(), ScopeFeed); err != nil {
		t.Fatalf("Purge: %v", err)
	}
}

func TestCacheKeyIsScoped(t *testing.T) {
	e := echo.New()
	mk := func(target string) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/events/:id")
		c.SetParamNames("id")
		c.SetParamValues("12")
		return c
	}
	a := cacheKey("fc", EventParamScope(mk("/v1/events/12")), mk("/v1/events/12"))
	b := cacheKey("fc", EventParamScope(mk("/v1/events/12?x=1")), mk("/v1/events/12?x=1"))
	if !strings.HasPrefix(a, "fc:event:12:") || !strings.HasPrefix(b, "fc:event:12:") {
		t.Fatalf("keys = %q %q", a, b)
	}
	if a == b {
		t.Fatal("query string ignored in key")
	}
}

func TestPayloadDecodeRejectsTruncated(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}
	status, got, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || got.Get("Content-Type") != "application/json" || string(body) != `{"a":1}` {
		t.Fatalf("decode = %d %v %q %v", status, got, body, ok)
	}
	if _, _, _, ok := decodePayload(bs[:10]); ok {
		t.Fatal("truncated payload accepted")
	}
	if _, _, _, ok := decodePayload([]byte{0, 1}); ok {
		t.Fatal("short payload accepted")
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/events/3/comments", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/events/:id/comments")
	if got, want := buildRateKey("rl", c), "rl:ip:10.0.0.9:user:anon:route:POST /v1/events/:id/comments"; got != want {
		t.Fatalf("key = %q, want %q", got, want)
	}
	c.Set("user_id", "u-7")
	if got := buildRateKey("rl", c); !strings.Contains(got, ":user:u-7:") {
		t.Fatalf("key = %q", got)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	for ms, want := range map[int64]int{-5: 0, 0: 0, 1: 1, 1000: 1, 1001: 2} {
		if got := retryAfterSeconds(ms); got != want {
			t.Errorf("retryAfterSeconds(%d) = %d, want %d", ms, got, want)
		}
	}
}
