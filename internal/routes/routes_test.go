package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/bank_terminal/internal/account"
	"github.com/congo-pay/bank_terminal/internal/config"
	"github.com/congo-pay/bank_terminal/internal/logging"
	"github.com/congo-pay/bank_terminal/internal/notification"
	"github.com/congo-pay/bank_terminal/internal/session"
	"github.com/congo-pay/bank_terminal/internal/terminal"
)

func testConfig() config.Config {
	return config.Config{
		AppName:         "test",
		AppEnv:          "development",
		IdempotencyTTL:  time.Minute,
		SessionTTL:      time.Minute,
		StatusTTL:       time.Minute,
		ActionRateLimit: 1000,
		CurrencySymbol:  "₹",
	}
}

func setupApp(t *testing.T, cache *redis.Client) *fiber.App {
	t.Helper()
	var storage session.Storage = session.NewMemoryStorage()
	if cache != nil {
		storage = session.NewRedisStorage(cache, time.Minute)
	}
	return setupAppWithStorage(t, cache, storage)
}

func setupAppWithStorage(t *testing.T, cache *redis.Client, storage session.Storage) *fiber.App {
	t.Helper()
	registry := terminal.NewRegistry(storage, terminal.Options{
		Scheduler: func(time.Duration, func()) {},
	}, time.Minute, logging.Discard())

	app := fiber.New()
	if err := Setup(app, Deps{Cfg: testConfig(), Cache: cache, Logger: logging.Discard(), Registry: registry}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body string, headers ...string) (int, terminal.Snapshot) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var snap terminal.Snapshot
	payload, _ := io.ReadAll(resp.Body)
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		if err := json.Unmarshal(payload, &snap); err != nil {
			t.Fatalf("decode %s: %v", payload, err)
		}
	}
	return resp.StatusCode, snap
}

func createSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	code, snap := call(t, app, fiber.MethodPost, "/api/v1/sessions", "")
	if code != fiber.StatusCreated {
		t.Fatalf("create session: status %d", code)
	}
	if _, err := uuid.Parse(snap.SessionID); err != nil {
		t.Fatalf("expected uuid session id, got %q", snap.SessionID)
	}
	if snap.View != terminal.ViewMain || snap.ActiveInput != terminal.InputChoice {
		t.Fatalf("expected main view with choice input, got %s/%s", snap.View, snap.ActiveInput)
	}
	return snap.SessionID
}

func TestTerminalScenarioOverHTTP(t *testing.T) {
	app := setupApp(t, nil)
	base := "/api/v1/sessions/" + createSession(t, app)

	if code, snap := call(t, app, fiber.MethodPost, base+"/menu", `{"choice":"1"}`); code != fiber.StatusOK || snap.View != terminal.ViewDeposit {
		t.Fatalf("menu 1: status %d view %s", code, snap.View)
	}
	code, snap := call(t, app, fiber.MethodPost, base+"/deposit", `{"amount":"500"}`)
	if code != fiber.StatusOK || snap.Balance != 500 || snap.BalanceDisplay != "₹500.00" {
		t.Fatalf("deposit: status %d snapshot %+v", code, snap)
	}

	call(t, app, fiber.MethodPost, base+"/back", "")
	call(t, app, fiber.MethodPost, base+"/menu", `{"choice":"3"}`)
	if _, snap := call(t, app, fiber.MethodGet, base, ""); snap.Tier != account.TierModerate {
		t.Fatalf("expected moderate tier, got %s", snap.Tier)
	}
	call(t, app, fiber.MethodPost, base+"/back", "")
	call(t, app, fiber.MethodPost, base+"/menu", `{"choice":"2"}`)

	code, snap = call(t, app, fiber.MethodPost, base+"/withdraw", `{"amount":"450"}`)
	if code != fiber.StatusOK || snap.Balance != 50 || snap.Tier != account.TierLow {
		t.Fatalf("withdraw 450: status %d snapshot %+v", code, snap)
	}
	if last := snap.Messages[len(snap.Messages)-1]; last.Severity != notification.SeverityWarning {
		t.Fatalf("expected warning, got %s", last.Severity)
	}

	code, snap = call(t, app, fiber.MethodPost, base+"/withdraw", `{"amount":"100"}`)
	if code != fiber.StatusUnprocessableEntity || snap.Balance != 50 {
		t.Fatalf("withdraw 100: status %d balance %v", code, snap.Balance)
	}
	if last := snap.Messages[len(snap.Messages)-1]; last.Severity != notification.SeverityError {
		t.Fatalf("expected error message, got %s", last.Severity)
	}
}

func TestTerminalErrorMapping(t *testing.T) {
	app := setupApp(t, nil)
	base := "/api/v1/sessions/" + createSession(t, app)

	if code, snap := call(t, app, fiber.MethodPost, base+"/menu", `{"choice":"7"}`); code != fiber.StatusUnprocessableEntity || snap.View != terminal.ViewMain {
		t.Fatalf("invalid choice: status %d view %s", code, snap.View)
	}
	if code, _ := call(t, app, fiber.MethodPost, base+"/deposit", `{"amount":"5"}`); code != fiber.StatusConflict {
		t.Fatalf("deposit on main: expected 409, got %d", code)
	}
	if code, _ := call(t, app, fiber.MethodPost, base+"/menu", `{bad json`); code != fiber.StatusBadRequest {
		t.Fatalf("bad json: expected 400, got %d", code)
	}
	if code, _ := call(t, app, fiber.MethodGet, "/api/v1/sessions/not-a-session", ""); code != fiber.StatusBadRequest {
		t.Fatalf("bad session id: expected 400, got %d", code)
	}

	if code, snap := call(t, app, fiber.MethodDelete, base+"/messages", ""); code != fiber.StatusOK || len(snap.Messages) != 0 {
		t.Fatalf("clear messages: status %d messages %d", code, len(snap.Messages))
	}
}

func TestResetAndReloadOverHTTP(t *testing.T) {
	app := setupApp(t, nil)
	base := "/api/v1/sessions/" + createSession(t, app)

	call(t, app, fiber.MethodPost, base+"/menu", `{"choice":"1"}`)
	call(t, app, fiber.MethodPost, base+"/deposit", `{"amount":"75"}`)

	code, snap := call(t, app, fiber.MethodPost, base+"/reload", "")
	if code != fiber.StatusOK || snap.View != terminal.ViewMain || snap.Balance != 75 || len(snap.Messages) != 0 {
		t.Fatalf("reload: status %d snapshot %+v", code, snap)
	}

	call(t, app, fiber.MethodPost, base+"/menu", `{"choice":"4"}`)
	if code, snap := call(t, app, fiber.MethodPost, base+"/reset", ""); code != fiber.StatusOK || snap.Balance != 0 {
		t.Fatalf("reset: status %d balance %v", code, snap.Balance)
	}

	_, snap = call(t, app, fiber.MethodPost, base+"/reload", "")
	if snap.Balance != 0 || len(snap.Transactions) != 0 {
		t.Fatalf("expected fresh state after reset and reload, got %+v", snap)
	}
}

func TestDepositReplayWithIdempotencyKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := setupApp(t, cache)
	base := "/api/v1/sessions/" + createSession(t, app)
	call(t, app, fiber.MethodPost, base+"/menu", `{"choice":"1"}`)

	for i := 0; i < 2; i++ {
		code, snap := call(t, app, fiber.MethodPost, base+"/deposit", `{"amount":"20"}`, "Idempotency-Key", "dep-1")
		if code != fiber.StatusOK || snap.Balance != 20 {
			t.Fatalf("attempt %d: status %d balance %v", i, code, snap.Balance)
		}
	}

	if _, snap := call(t, app, fiber.MethodGet, base, ""); snap.Balance != 20 || len(snap.Transactions) != 1 {
		t.Fatalf("expected a single deposit, got balance %v history %d", snap.Balance, len(snap.Transactions))
	}
}

// readOnlyStorage rejects every write.
type readOnlyStorage struct {
	session.Storage
}

func (readOnlyStorage) SetItem(context.Context, string, string, string) error {
	return errors.New("read only")
}

func TestRetriedDepositAfterStorageFailureAppliesOnce(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := setupAppWithStorage(t, cache, readOnlyStorage{Storage: session.NewMemoryStorage()})
	base := "/api/v1/sessions/" + createSession(t, app)
	call(t, app, fiber.MethodPost, base+"/menu", `{"choice":"1"}`)

	for i := 0; i < 2; i++ {
		if code, _ := call(t, app, fiber.MethodPost, base+"/deposit", `{"amount":"20"}`, "Idempotency-Key", "dep-1"); code != fiber.StatusInternalServerError {
			t.Fatalf("attempt %d: expected 500, got %d", i, code)
		}
	}

	if _, snap := call(t, app, fiber.MethodGet, base, ""); snap.Balance != 0 || len(snap.Transactions) != 0 {
		t.Fatalf("failed deposits must not apply, got balance %v history %d", snap.Balance, len(snap.Transactions))
	}
}

func TestHealthz(t *testing.T) {
	app := setupApp(t, nil)
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
