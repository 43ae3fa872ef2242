package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ircomercio/portal/internal/auth"
	"github.com/ircomercio/portal/internal/db"
	"github.com/ircomercio/portal/internal/hours"
	"github.com/ircomercio/portal/internal/models"
	"github.com/ircomercio/portal/internal/ratelimit"
	"github.com/ircomercio/portal/internal/security"
	"gorm.io/gorm"
)

const allowedIP = "1.2.3.4"

var sessionTokenPattern = regexp.MustCompile(`^sess_[0-9a-f]{64}$`)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type portalFixture struct {
	engine   *gin.Engine
	identity *gorm.DB
	business *gorm.DB
	clock    *fakeClock
}

func newPortalFixture(t *testing.T) *portalFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	identity, errIdentity := db.Open("file:" + filepath.Join(t.TempDir(), "identity.db"))
	if errIdentity != nil {
		t.Fatalf("open identity store: %v", errIdentity)
	}
	if errMigrate := db.MigrateIdentity(identity); errMigrate != nil {
		t.Fatalf("migrate identity store: %v", errMigrate)
	}
	business, errBusiness := db.Open("file:" + filepath.Join(t.TempDir(), "business.db"))
	if errBusiness != nil {
		t.Fatalf("open business store: %v", errBusiness)
	}
	if errMigrate := db.MigrateBusiness(business); errMigrate != nil {
		t.Fatalf("migrate business store: %v", errMigrate)
	}

	loc, errLoc := time.LoadLocation(hours.DefaultTimezone)
	if errLoc != nil {
		t.Fatalf("load location: %v", errLoc)
	}
	clock := &fakeClock{now: time.Date(2026, time.March, 4, 10, 0, 0, 0, loc)}

	checker, errChecker := hours.NewChecker("", clock.Now)
	if errChecker != nil {
		t.Fatalf("new checker: %v", errChecker)
	}
	allowlist := auth.IPAllowlist{allowedIP}
	limiter := ratelimit.NewManager(ratelimit.RedisOptions{}, clock.Now)
	sessions := auth.NewSessions(identity, clock.Now)
	service := auth.NewService(identity, limiter, checker, allowlist, sessions, clock.Now)

	engine := gin.New()
	RegisterRoutes(engine, Deps{
		Identity:    identity,
		Business:    business,
		Service:     service,
		Hours:       checker,
		Allowlist:   allowlist,
		Environment: "test",
	})
	return &portalFixture{engine: engine, identity: identity, business: business, clock: clock}
}

func (f *portalFixture) createUser(t *testing.T, username string, admin bool, apps models.AppList) {
	t.Helper()
	hash, errHash := security.HashPassword("segredo")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	user := models.User{
		Username: username,
		Password: hash,
		Name:     "Test User",
		Sector:   "Compras",
		IsAdmin:  admin,
		IsActive: true,
		Apps:     apps,
	}
	if errCreate := f.identity.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
}

// request performs an HTTP request against the engine with the client address
// spoofed via X-Forwarded-For.
func (f *portalFixture) request(t *testing.T, method, path, ip, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		data, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
		payload = bytes.NewBuffer(data)
	} else {
		payload = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "portal-test")
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), errDecode)
	}
	return body
}

func (f *portalFixture) login(t *testing.T, username string) string {
	t.Helper()
	rec := f.request(t, http.MethodPost, "/api/login", allowedIP, "", gin.H{
		"username":    username,
		"password":    "segredo",
		"deviceToken": "device-" + username,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	session, ok := body["session"].(map[string]any)
	if !ok {
		t.Fatalf("login body = %v", body)
	}
	token, _ := session["sessionToken"].(string)
	if !sessionTokenPattern.MatchString(token) {
		t.Fatalf("token %q does not match sess_ + 64 hex", token)
	}
	return token
}

func TestLoginUnauthorizedIP(t *testing.T) {
	fixture := newPortalFixture(t)
	fixture.createUser(t, "maria", false, nil)

	rec := fixture.request(t, http.MethodPost, "/api/login", "9.9.9.9", "", gin.H{
		"username":    "maria",
		"password":    "segredo",
		"deviceToken": "device-1",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Acesso negado" {
		t.Fatalf("error = %v", body["error"])
	}

	var attempt models.LoginAttempt
	if errFind := fixture.identity.Order("id DESC").First(&attempt).Error; errFind != nil {
		t.Fatalf("load attempt: %v", errFind)
	}
	if attempt.Success || attempt.FailureReason != "IP não autorizado" {
		t.Fatalf("attempt = %+v", attempt)
	}
}

func TestProtectedRouteRequiresSession(t *testing.T) {
	fixture := newPortalFixture(t)

	rec := fixture.request(t, http.MethodGet, "/api/precos", allowedIP, "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["redirectToLogin"] != true {
		t.Fatalf("body = %v, want redirectToLogin", body)
	}

	rec = fixture.request(t, http.MethodGet, "/api/precos", allowedIP, "sess_bogus", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for bogus token", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Sessão inválida" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestSessionTokenQueryParameter(t *testing.T) {
	fixture := newPortalFixture(t)
	fixture.createUser(t, "maria", false, models.AppList{"precos"})
	token := fixture.login(t, "maria")

	rec := fixture.request(t, http.MethodGet, "/api/precos?sessionToken="+token, allowedIP, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRequireAppAllowlist(t *testing.T) {
	fixture := newPortalFixture(t)
	fixture.createUser(t, "maria", false, models.AppList{"precos"})
	fixture.createUser(t, "root", true, nil)

	token := fixture.login(t, "maria")

	rec := fixture.request(t, http.MethodGet, "/api/precos", allowedIP, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("allowed app status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = fixture.request(t, http.MethodGet, "/api/cotacoes", allowedIP, token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("blocked app status = %d, want 403", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Acesso negado" {
		t.Fatalf("error = %v", body["error"])
	}

	adminToken := fixture.login(t, "root")
	for _, path := range []string{"/api/precos", "/api/cotacoes", "/api/ordens"} {
		rec = fixture.request(t, http.MethodGet, path, allowedIP, adminToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("admin %s status = %d", path, rec.Code)
		}
	}
}

func TestPrecoCRUD(t *testing.T) {
	fixture := newPortalFixture(t)
	fixture.createUser(t, "maria", false, models.AppList{"precos"})
	token := fixture.login(t, "maria")

	rec := fixture.request(t, http.MethodGet, "/api/precos", allowedIP, token, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "[]" {
		t.Fatalf("empty list: status = %d, body %q", rec.Code, rec.Body.String())
	}

	rec = fixture.request(t, http.MethodPost, "/api/precos", allowedIP, token, gin.H{
		"marca": "ACME", "codigo": "A-1", "preco": 10.5, "descricao": "Filtro de ar",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)
	id := int(created["id"].(float64))

	rec = fixture.request(t, http.MethodPost, "/api/precos", allowedIP, token, gin.H{
		"marca": "ACME", "codigo": "A-2",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("incomplete create status = %d, want 400", rec.Code)
	}

	rec = fixture.request(t, http.MethodPut, "/api/precos/"+itoa(id), allowedIP, token, gin.H{
		"marca": "ACME", "codigo": "A-1", "preco": 12.0, "descricao": "Filtro de óleo",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	if updated := decodeBody(t, rec); updated["descricao"] != "Filtro de óleo" {
		t.Fatalf("updated = %v", updated)
	}

	rec = fixture.request(t, http.MethodGet, "/api/precos/abc", allowedIP, token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", rec.Code)
	}

	rec = fixture.request(t, http.MethodDelete, "/api/precos/"+itoa(id), allowedIP, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	rec = fixture.request(t, http.MethodDelete, "/api/precos/"+itoa(id), allowedIP, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d, want 404", rec.Code)
	}

	rec = fixture.request(t, http.MethodGet, "/api/precos/"+itoa(id), allowedIP, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted status = %d, want 404", rec.Code)
	}
}

func TestVerifySessionEndpoint(t *testing.T) {
	fixture := newPortalFixture(t)
	fixture.createUser(t, "maria", false, nil)
	token := fixture.login(t, "maria")

	rec := fixture.request(t, http.MethodPost, "/api/verify-session", allowedIP, "", gin.H{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing token status = %d, want 400", rec.Code)
	}
	if body := decodeBody(t, rec); body["reason"] != "token_missing" {
		t.Fatalf("reason = %v", body["reason"])
	}

	rec = fixture.request(t, http.MethodPost, "/api/verify-session", allowedIP, "", gin.H{"sessionToken": "sess_bogus"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bogus token status = %d, want 401", rec.Code)
	}
	if body := decodeBody(t, rec); body["reason"] != "session_not_found" {
		t.Fatalf("reason = %v", body["reason"])
	}

	rec = fixture.request(t, http.MethodPost, "/api/verify-session", allowedIP, "", gin.H{"sessionToken": token})
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["valid"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	fixture := newPortalFixture(t)
	fixture.createUser(t, "maria", false, models.AppList{"precos"})
	token := fixture.login(t, "maria")

	rec := fixture.request(t, http.MethodPost, "/api/logout", allowedIP, "", gin.H{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty logout status = %d, want 400", rec.Code)
	}

	rec = fixture.request(t, http.MethodPost, "/api/logout", allowedIP, "", gin.H{"sessionToken": token})
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}

	rec = fixture.request(t, http.MethodGet, "/api/precos", allowedIP, token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status after logout = %d, want 401", rec.Code)
	}

	// Logging out an already revoked token still succeeds.
	rec = fixture.request(t, http.MethodPost, "/api/logout", allowedIP, "", gin.H{"sessionToken": token})
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat logout status = %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	fixture := newPortalFixture(t)

	rec := fixture.request(t, http.MethodGet, "/health", allowedIP, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "healthy" || body["database"] != "connected" {
		t.Fatalf("body = %v", body)
	}
	if body["authorizedIPs"] != "configured" {
		t.Fatalf("authorizedIPs = %v", body["authorizedIPs"])
	}
	if body["environment"] != "test" {
		t.Fatalf("environment = %v", body["environment"])
	}
}

func TestMetaEndpoints(t *testing.T) {
	fixture := newPortalFixture(t)

	rec := fixture.request(t, http.MethodGet, "/api/ip", allowedIP, "", nil)
	if body := decodeBody(t, rec); body["ip"] != allowedIP {
		t.Fatalf("ip = %v", body["ip"])
	}

	rec = fixture.request(t, http.MethodGet, "/api/check-ip-access", allowedIP, "", nil)
	if body := decodeBody(t, rec); body["authorized"] != true || body["message"] != "IP autorizado" {
		t.Fatalf("body = %v", body)
	}

	rec = fixture.request(t, http.MethodGet, "/api/check-ip-access", "9.9.9.9", "", nil)
	if body := decodeBody(t, rec); body["authorized"] != false || body["message"] != "IP não autorizado" {
		t.Fatalf("body = %v", body)
	}

	rec = fixture.request(t, http.MethodGet, "/api/business-hours", allowedIP, "", nil)
	if body := decodeBody(t, rec); body["isBusinessHours"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestUnknownRoute(t *testing.T) {
	fixture := newPortalFixture(t)
	fixture.createUser(t, "maria", false, nil)
	token := fixture.login(t, "maria")

	rec := fixture.request(t, http.MethodGet, "/api/nada", allowedIP, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Rota não encontrada" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestCORSPreflight(t *testing.T) {
	fixture := newPortalFixture(t)

	rec := fixture.request(t, http.MethodOptions, "/api/precos", allowedIP, "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS origin header")
	}
}

func itoa(id int) string {
	return strconv.Itoa(id)
}
