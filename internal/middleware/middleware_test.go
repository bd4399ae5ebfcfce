package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

func TestEnsureClientID(t *testing.T) {
	app := fiber.New()
	app.Use(EnsureClientID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(ClientIDKey).(string))
	})

	cases := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"Header", "alice", "", "alice"},
		{"Query", "", "bob", "bob"},
		{"HeaderWins", "alice", "bob", "alice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := "/"
			if tc.query != "" {
				target += "?clientId=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("X-Client-ID", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Test: %v", err)
			}
			if got := resp.Header.Get("X-Client-ID"); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}

	t.Run("Generated", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		if err != nil {
			t.Fatalf("Test: %v", err)
		}
		if len(resp.Header.Get("X-Client-ID")) != 36 {
			t.Fatalf("expected a generated uuid, got %q", resp.Header.Get("X-Client-ID"))
		}
	})
}

func TestWebSocketUpgrade(t *testing.T) {
	app := fiber.New()
	app.Use(EnsureClientID())
	app.Get("/ws/game/:gameId", WebSocketUpgrade(func(id string) bool { return id == "abc" }), func(c *fiber.Ctx) error {
		return c.SendString("upgraded")
	})

	upgrade := func(path string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		return req
	}

	cases := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"PlainRequest", httptest.NewRequest(http.MethodGet, "/ws/game/abc", nil), fiber.StatusUpgradeRequired},
		{"UnknownGame", upgrade("/ws/game/zzz"), fiber.StatusNotFound},
		{"KnownGame", upgrade("/ws/game/abc"), fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(tc.req)
			if err != nil {
				t.Fatalf("Test: %v", err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	app := fiber.New()
	app.Use(RequestLogger(log))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/gone", func(c *fiber.Ctx) error { return fiber.ErrGone })

	for _, path := range []string{"/ok", "/gone"} {
		if _, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil)); err != nil {
			t.Fatalf("Test: %v", err)
		}
	}
	out := buf.String()
	if !strings.Contains(out, `"path":"/ok","status":200`) {
		t.Errorf("missing access line for /ok: %s", out)
	}
	if !strings.Contains(out, `"path":"/gone","status":410`) {
		t.Errorf("missing access line for /gone: %s", out)
	}
}
