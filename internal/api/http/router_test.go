package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/staff-roster/internal/api/http/handlers"
	"github.com/spec-kit/staff-roster/internal/auth"
	"github.com/spec-kit/staff-roster/internal/config"
	"github.com/spec-kit/staff-roster/internal/domain"
	"github.com/spec-kit/staff-roster/internal/events"
	"github.com/spec-kit/staff-roster/internal/observability"
	"github.com/spec-kit/staff-roster/internal/persistence"
	"github.com/spec-kit/staff-roster/internal/remote"
	"github.com/spec-kit/staff-roster/internal/repository"
	"github.com/spec-kit/staff-roster/internal/service"
	apperrors "github.com/spec-kit/staff-roster/pkg/util/errorutil"
)

const testPin = "31728504"

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	app      *fiber.App
	metrics  *observability.Metrics
	replaced []events.StaffReplacedPayload
}

func newTestServer(t *testing.T, deps map[string]handlers.Pinger) *testServer {
	t.Helper()

	verifier, err := auth.NewPinVerifier(config.AuthConfig{AdminPin: testPin, PinLength: 8, BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}

	ts := &testServer{metrics: observability.NewMetrics()}
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventStaffReplaced, func(_ context.Context, e events.Event) error {
		ts.replaced = append(ts.replaced, e.Payload.(events.StaffReplacedPayload))
		return nil
	})

	staffService := service.NewStaffService(service.StaffDependencies{
		StaffRepo:  repository.NewMemoryStaffRepository(),
		Dispatcher: dispatcher,
	}, zap.NewNop())

	ts.app = fiber.New()
	RegisterMiddlewares(ts.app, zap.NewNop(), ts.metrics, 0)
	RegisterRoutes(ts.app, RouteConfig{
		Health:        handlers.NewHealthHandler("staff-roster", "test", deps, ts.metrics),
		Staff:         handlers.NewStaffHandler(staffService),
		PinMiddleware: auth.NewPinMiddleware(verifier),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body, pin string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if pin != "" {
		req.Header.Set(domain.CredentialHeader, pin)
	}
	resp, err := ts.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error body %s: %v", body, err)
	}
	return payload.Error.Code
}

func TestGetStaffEmpty(t *testing.T) {
	ts := newTestServer(t, nil)

	status, body := ts.do(t, fiber.MethodGet, "/api/staff", "", "")
	if status != fiber.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("expected empty array, got %d %s", status, body)
	}
}

func TestPutStaffReplacesList(t *testing.T) {
	ts := newTestServer(t, nil)

	payload := `[{"id":"a","name":"Ann","avatarUrl":"ftp://x"},{"id":"b","nickname":"Bo","order":9}]`
	status, body := ts.do(t, fiber.MethodPut, "/api/staff", payload, testPin)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d %s", status, body)
	}
	var ack struct {
		OK    bool `json:"ok"`
		Count int  `json:"count"`
	}
	if err := json.Unmarshal(body, &ack); err != nil || !ack.OK || ack.Count != 2 {
		t.Fatalf("unexpected ack %s", body)
	}

	status, body = ts.do(t, fiber.MethodGet, "/api/staff", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var list domain.StaffList
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 || list[0].Nickname != "Ann" || list[0].AvatarURL != "" || list[1].Order != 1 {
		t.Fatalf("expected sanitized list, got %+v", list)
	}
	if len(ts.replaced) != 1 || ts.replaced[0].Count != 2 {
		t.Fatalf("expected one staff_replaced event, got %+v", ts.replaced)
	}
}

func TestPutStaffErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		pin        string
		wantStatus int
		wantCode   string
	}{
		{name: "missing pin", body: `[]`, wantStatus: fiber.StatusUnauthorized, wantCode: apperrors.CodeUnauthorized},
		{name: "wrong pin", body: `[]`, pin: "00000000", wantStatus: fiber.StatusUnauthorized, wantCode: apperrors.CodeUnauthorized},
		{name: "malformed json", body: `[{`, pin: testPin, wantStatus: fiber.StatusBadRequest, wantCode: apperrors.CodeValidation},
		{name: "object body", body: `{"staff":[]}`, pin: testPin, wantStatus: fiber.StatusBadRequest, wantCode: apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			status, body := ts.do(t, fiber.MethodPut, "/api/staff", tt.body, tt.pin)
			if status != tt.wantStatus {
				t.Fatalf("expected %d, got %d %s", tt.wantStatus, status, body)
			}
			if code := errorCode(t, body); code != tt.wantCode {
				t.Fatalf("expected code %s, got %s", tt.wantCode, code)
			}
			if len(ts.replaced) != 0 {
				t.Fatalf("rejected write must not publish")
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil)

	status, body := ts.do(t, fiber.MethodGet, "/nope", "", "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if code := errorCode(t, body); code != "HTTP_404" {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestHealthReady(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	off := pingerFunc(func(context.Context) error { return persistence.ErrNotConfigured })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	ts := newTestServer(t, map[string]handlers.Pinger{"postgres": ok, "redis": off})
	if status, body := ts.do(t, fiber.MethodGet, "/health/ready", "", ""); status != fiber.StatusOK {
		t.Fatalf("expected ready, got %d %s", status, body)
	}

	ts = newTestServer(t, map[string]handlers.Pinger{"postgres": down})
	status, body := ts.do(t, fiber.MethodGet, "/health/ready", "", "")
	if status != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", status)
	}
	if code := errorCode(t, body); code != "DEPENDENCY_UNAVAILABLE" {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestRequestsAreCounted(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(t, fiber.MethodGet, "/health/live", "", "")
	ts.do(t, fiber.MethodPut, "/api/staff", `[]`, "00000000")

	snap := ts.metrics.Snapshot()
	if snap["requests"]["/health/live|GET|200"] != 1 {
		t.Fatalf("expected live request counted, got %v", snap["requests"])
	}
	if snap["errors"]["/api/staff|PUT|"+apperrors.CodeUnauthorized] != 1 {
		t.Fatalf("expected unauthorized error counted, got %v", snap["errors"])
	}
}

func TestRemoteClientAgainstServer(t *testing.T) {
	ts := newTestServer(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = ts.app.Listener(ln) }()
	t.Cleanup(func() { _ = ts.app.Shutdown() })

	endpoint := "http://" + ln.Addr().String() + "/api/staff"
	client := remote.NewClient(remote.Config{}, nil, zap.NewNop())
	ctx := context.Background()

	list := domain.StaffList{{ID: "a", Nickname: "Ann"}, {ID: "b", Nickname: "Bo"}}
	if err := client.Save(ctx, endpoint, list, "11111111"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized from server, got %v", err)
	}
	if err := client.Save(ctx, endpoint, list, testPin); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := client.Load(ctx, endpoint)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].Nickname != "Bo" {
		t.Fatalf("unexpected round trip %+v", got)
	}

	resp, err := nethttp.Get("http://" + ln.Addr().String() + "/health/live")
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("expected live 200, got %d", resp.StatusCode)
	}
}
