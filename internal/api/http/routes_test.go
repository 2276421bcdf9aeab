package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/i474232898/plant-care/internal/auth"
	"github.com/i474232898/plant-care/internal/care"
	"github.com/i474232898/plant-care/internal/common"
	"github.com/i474232898/plant-care/internal/store"
	"github.com/i474232898/plant-care/internal/tasks"
	"github.com/i474232898/plant-care/internal/weather"
)

var fixedNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type stubSource struct {
	err error
}

func (s stubSource) Current(_ context.Context, loc weather.Location) (weather.WeatherSnapshot, error) {
	if s.err != nil {
		return weather.WeatherSnapshot{}, s.err
	}
	return weather.WeatherSnapshot{Location: loc, Temperature: 36, Description: "Sunny"}, nil
}

func newTestApp(t *testing.T, src weather.Source) *fiber.App {
	t.Helper()
	return newTestAppWithLogger(t, src, nil)
}

func newTestAppWithLogger(t *testing.T, src weather.Source, logger *zap.Logger) *fiber.App {
	t.Helper()

	s := store.NewMemoryStore()
	tokens := auth.NewTokens("test-secret", time.Hour)
	engine := tasks.NewEngine(s, s, src, clock, time.Second, nil)
	taskSvc := tasks.NewService(s, engine, nil, clock, nil)
	careSvc := care.NewService(s, clock,
		care.WithWeather(src, nil, time.Second),
		care.WithResync(func(ctx context.Context, userID string) { _, _ = taskSvc.Sync(ctx, userID) }),
	)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	RegisterRoutes(app, Deps{
		Auth:    auth.NewService(s, tokens),
		Tokens:  tokens,
		Care:    careSvc,
		Tasks:   taskSvc,
		Weather: src,
		Logger:  logger,
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func signUp(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	resp, body := do(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"email": email, "password": "sunflower-seeds",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": email, "password": "sunflower-seeds",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Token == "" {
		t.Fatalf("login: no token in %s", body)
	}
	return out.Token
}

func TestRoutesRequireToken(t *testing.T) {
	app := newTestApp(t, nil)

	resp, _ := do(t, app, http.MethodGet, "/api/v1/plants", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}
	resp, _ = do(t, app, http.MethodGet, "/api/v1/plants", "garbage", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestLoginWithWrongPassword(t *testing.T) {
	app := newTestApp(t, nil)
	signUp(t, app, "a@example.com")

	resp, body := do(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "a@example.com", "password": "not-the-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.StatusCode, body)
	}

	resp, _ = do(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"email": "a@example.com", "password": "sunflower-seeds",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}
}

func TestPlantValidation(t *testing.T) {
	app := newTestApp(t, nil)
	token := signUp(t, app, "v@example.com")

	cases := []fiber.Map{
		{"name": ""},
		{"name": "Fern", "waterEveryDays": -2},
		{"name": "Fern", "lastWatered": "yesterday"},
	}
	for _, body := range cases {
		resp, raw := do(t, app, http.MethodPost, "/api/v1/plants", token, body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %v: expected 400, got %d: %s", body, resp.StatusCode, raw)
		}
	}
}

func TestPlantTaskLifecycle(t *testing.T) {
	app := newTestApp(t, nil)
	token := signUp(t, app, "grower@example.com")

	lastWatered := common.AddDays(common.DateOf(fixedNow), -9).Format(common.DateLayout)
	resp, body := do(t, app, http.MethodPost, "/api/v1/plants", token, fiber.Map{
		"name": "Calathea", "waterEveryDays": 7, "lastWatered": lastWatered,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create plant: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var plant care.Plant
	_ = json.Unmarshal(body, &plant)

	// creating the plant resyncs, so the WATER task already exists
	resp, body = do(t, app, http.MethodGet, "/api/v1/tasks", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list tasks: expected 200, got %d", resp.StatusCode)
	}
	var list []care.CareTask
	_ = json.Unmarshal(body, &list)
	if len(list) != 1 || list[0].Status != care.StatusDue || list[0].PlantID != plant.ID {
		t.Fatalf("expected one DUE task for the plant, got %s", body)
	}

	resp, body = do(t, app, http.MethodPost, "/api/v1/tasks/"+list[0].ID+"/done", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("done: expected 200, got %d: %s", resp.StatusCode, body)
	}

	resp, _ = do(t, app, http.MethodPost, "/api/v1/tasks/"+list[0].ID+"/cancel", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected replaced task to be gone, got %d", resp.StatusCode)
	}

	resp, body = do(t, app, http.MethodGet, "/api/v1/plants/"+plant.ID+"/tasks", token, nil)
	_ = json.Unmarshal(body, &list)
	if resp.StatusCode != http.StatusOK || len(list) != 1 || list[0].Status != care.StatusUpcoming {
		t.Fatalf("expected fresh UPCOMING task, got %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, http.MethodPost, "/api/v1/tasks/"+list[0].ID+"/missed", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("missed: expected 200, got %d: %s", resp.StatusCode, body)
	}
	resp, _ = do(t, app, http.MethodPost, "/api/v1/tasks/"+list[0].ID+"/cancel", token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on closed task, got %d", resp.StatusCode)
	}

	resp, body = do(t, app, http.MethodGet, "/api/v1/logs?plantId="+plant.ID, token, nil)
	var logs []care.CareLogEntry
	_ = json.Unmarshal(body, &logs)
	if resp.StatusCode != http.StatusOK || len(logs) != 1 || logs[0].Action != care.TaskWater {
		t.Fatalf("expected completion log, got %d %s", resp.StatusCode, body)
	}
}

func TestOtherUsersPlantIsForbidden(t *testing.T) {
	app := newTestApp(t, nil)
	owner := signUp(t, app, "owner@example.com")
	other := signUp(t, app, "other@example.com")

	_, body := do(t, app, http.MethodPost, "/api/v1/plants", owner, fiber.Map{"name": "Orchid"})
	var plant care.Plant
	_ = json.Unmarshal(body, &plant)

	for _, path := range []string{"/api/v1/plants/" + plant.ID, "/api/v1/plants/" + plant.ID + "/advice"} {
		resp, _ := do(t, app, http.MethodGet, path, other, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", path, resp.StatusCode)
		}
	}
	resp, _ := do(t, app, http.MethodGet, "/api/v1/plants/missing", owner, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPlantAdviceQuery(t *testing.T) {
	app := newTestApp(t, nil)
	token := signUp(t, app, "adv@example.com")

	_, body := do(t, app, http.MethodPost, "/api/v1/plants", token, fiber.Map{"name": "Pilea", "waterEveryDays": 5})
	var plant care.Plant
	_ = json.Unmarshal(body, &plant)

	resp, body := do(t, app, http.MethodGet, "/api/v1/plants/"+plant.ID+"/advice?moisture=12", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var adv struct {
		Action     string  `json:"action"`
		Confidence float64 `json:"confidence"`
	}
	_ = json.Unmarshal(body, &adv)
	if adv.Action != "WATER_NOW" || adv.Confidence != 0.95 {
		t.Fatalf("unexpected advice %s", body)
	}

	for _, raw := range []string{"wet", "NaN", "Inf", "-Inf"} {
		resp, _ = do(t, app, http.MethodGet, "/api/v1/plants/"+plant.ID+"/advice?moisture="+raw, token, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("moisture=%s: expected 400, got %d", raw, resp.StatusCode)
		}
	}
}

func TestSupplies(t *testing.T) {
	app := newTestApp(t, nil)
	token := signUp(t, app, "s@example.com")

	resp, body := do(t, app, http.MethodPost, "/api/v1/supplies", token, fiber.Map{"name": "Perlite", "quantity": 1, "refillBelow": 2})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}
	var item struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &item)
	if item.Status != "LOW" {
		t.Fatalf("expected LOW, got %s", body)
	}

	resp, body = do(t, app, http.MethodPost, "/api/v1/supplies/"+item.ID+"/adjust", token, fiber.Map{"delta": 5})
	_ = json.Unmarshal(body, &item)
	if resp.StatusCode != http.StatusOK || item.Status != "IN_STOCK" {
		t.Fatalf("expected IN_STOCK after restock, got %d %s", resp.StatusCode, body)
	}
}

func TestCurrentWeather(t *testing.T) {
	app := newTestApp(t, stubSource{})
	token := signUp(t, app, "w@example.com")

	resp, body := do(t, app, http.MethodGet, "/api/v1/weather/current?lat=41.9&lon=12.5", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Weather weather.WeatherSnapshot `json:"weather"`
		Advice  string                  `json:"advice"`
	}
	_ = json.Unmarshal(body, &out)
	if out.Weather.Location.Lat == nil || *out.Weather.Location.Lat != 41.9 {
		t.Fatalf("expected query coordinates forwarded, got %s", body)
	}
	if out.Advice != "Hot day — check soil; likely water needed." {
		t.Fatalf("unexpected advice %q", out.Advice)
	}

	resp, _ = do(t, app, http.MethodGet, "/api/v1/weather/current?lat=41.9", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for lat without lon, got %d", resp.StatusCode)
	}
}

func TestCurrentWeatherUnavailable(t *testing.T) {
	app := newTestApp(t, stubSource{err: errors.New("all providers down")})
	token := signUp(t, app, "down@example.com")

	resp, _ := do(t, app, http.MethodGet, "/api/v1/weather/current", token, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestCurrentWeatherQueryFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	app := newTestAppWithLogger(t, stubSource{err: errors.New("all providers down")}, zap.New(core))
	token := signUp(t, app, "logged@example.com")

	resp, _ := do(t, app, http.MethodGet, "/api/v1/weather/current?city=Lisbon", token, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	if logs.FilterMessage("weather unavailable for location query").Len() != 1 {
		t.Fatalf("expected the provider failure to be logged, got %v", logs.All())
	}
}

func TestEmptyListsRenderAsArrays(t *testing.T) {
	app := newTestApp(t, nil)
	token := signUp(t, app, "empty@example.com")

	_, body := do(t, app, http.MethodPost, "/api/v1/plants", token, fiber.Map{"name": "Cactus"})
	var plant care.Plant
	_ = json.Unmarshal(body, &plant)

	for _, path := range []string{
		"/api/v1/tasks",
		"/api/v1/tasks/upcoming",
		"/api/v1/logs",
		"/api/v1/supplies",
		"/api/v1/plants/" + plant.ID + "/journal",
	} {
		resp, body := do(t, app, http.MethodGet, path, token, nil)
		if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
			t.Fatalf("%s: expected 200 [], got %d %s", path, resp.StatusCode, body)
		}
	}
}

func TestPlantJournal(t *testing.T) {
	app := newTestApp(t, nil)
	owner := signUp(t, app, "journal@example.com")
	other := signUp(t, app, "nosy@example.com")

	_, body := do(t, app, http.MethodPost, "/api/v1/plants", owner, fiber.Map{"name": "Fiddle leaf fig"})
	var plant care.Plant
	_ = json.Unmarshal(body, &plant)
	path := "/api/v1/plants/" + plant.ID + "/journal"

	resp, body := do(t, app, http.MethodPost, path, owner, fiber.Map{"content": "Two new leaves", "photoRef": "photos/fig-1.jpg"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create entry: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var entry care.JournalEntry
	_ = json.Unmarshal(body, &entry)
	if entry.PlantName != "Fiddle leaf fig" || entry.PhotoRef != "photos/fig-1.jpg" || !entry.EntryDate.Equal(fixedNow) {
		t.Fatalf("unexpected entry %s", body)
	}

	resp, _ = do(t, app, http.MethodPost, path, owner, fiber.Map{"content": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty content, got %d", resp.StatusCode)
	}
	resp, _ = do(t, app, http.MethodPost, path, owner, fiber.Map{"content": "x", "entryDate": "yesterday"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad entryDate, got %d", resp.StatusCode)
	}

	resp, body = do(t, app, http.MethodGet, path, owner, nil)
	var entries []care.JournalEntry
	_ = json.Unmarshal(body, &entries)
	if resp.StatusCode != http.StatusOK || len(entries) != 1 || entries[0].ID != entry.ID {
		t.Fatalf("expected the entry listed, got %d %s", resp.StatusCode, body)
	}

	resp, _ = do(t, app, http.MethodGet, path, other, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for another user's journal, got %d", resp.StatusCode)
	}
	resp, _ = do(t, app, http.MethodDelete, "/api/v1/journal/"+entry.ID, other, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 deleting another user's entry, got %d", resp.StatusCode)
	}
	resp, _ = do(t, app, http.MethodDelete, "/api/v1/journal/"+entry.ID, owner, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestTaskDashboardViews(t *testing.T) {
	app := newTestApp(t, nil)
	token := signUp(t, app, "dash@example.com")

	today := common.DateOf(fixedNow)
	do(t, app, http.MethodPost, "/api/v1/plants", token, fiber.Map{
		"name": "Overdue fern", "waterEveryDays": 7,
		"lastWatered": common.AddDays(today, -9).Format(common.DateLayout),
	})
	do(t, app, http.MethodPost, "/api/v1/plants", token, fiber.Map{
		"name": "Fresh basil", "waterEveryDays": 3,
		"lastWatered": today.Format(common.DateLayout),
	})

	resp, body := do(t, app, http.MethodGet, "/api/v1/tasks/upcoming", token, nil)
	var upcoming []care.CareTask
	_ = json.Unmarshal(body, &upcoming)
	if resp.StatusCode != http.StatusOK || len(upcoming) != 1 || upcoming[0].PlantName != "Fresh basil" {
		t.Fatalf("expected only the basil task upcoming, got %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, http.MethodGet, "/api/v1/tasks/notifications", token, nil)
	var n tasks.Notifications
	_ = json.Unmarshal(body, &n)
	if resp.StatusCode != http.StatusOK || n.Due != 1 || n.Missed != 0 {
		t.Fatalf("expected 1 due, 0 missed, got %d %s", resp.StatusCode, body)
	}
}
