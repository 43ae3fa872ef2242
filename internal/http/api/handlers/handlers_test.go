package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ircomercio/portal/internal/db"
	"gorm.io/gorm"
)

func openBusinessDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := db.Open("file:" + filepath.Join(t.TempDir(), "business.db"))
	if errOpen != nil {
		t.Fatalf("open business store: %v", errOpen)
	}
	if errMigrate := db.MigrateBusiness(conn); errMigrate != nil {
		t.Fatalf("migrate business store: %v", errMigrate)
	}
	return conn
}

func perform(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
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
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), errDecode)
	}
	return body
}

func newCotacaoEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewCotacaoHandler(openBusinessDB(t))
	engine.GET("/cotacoes", handler.List)
	engine.GET("/cotacoes/:id", handler.Get)
	engine.POST("/cotacoes", handler.Create)
	engine.PUT("/cotacoes/:id", handler.Update)
	engine.DELETE("/cotacoes/:id", handler.Delete)
	return engine
}

func TestCotacaoCreateRequiresFields(t *testing.T) {
	engine := newCotacaoEngine(t)

	rec := perform(t, engine, http.MethodPost, "/cotacoes", gin.H{
		"responsavel": "Ana", "transportadora": "TransLog",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCotacaoPartialUpdate(t *testing.T) {
	engine := newCotacaoEngine(t)

	rec := perform(t, engine, http.MethodPost, "/cotacoes", gin.H{
		"responsavel":    "Ana",
		"transportadora": "TransLog",
		"destino":        "Curitiba/PR",
		"dataCotacao":    "2026-03-04",
		"valorFrete":     350.0,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode(t, rec)
	id := int(created["id"].(float64))
	if created["negocioFechado"] != false {
		t.Fatalf("negocioFechado = %v, want false", created["negocioFechado"])
	}

	// Toggling the closed flag must not clobber the other fields.
	rec = perform(t, engine, http.MethodPut, fmt.Sprintf("/cotacoes/%d", id), gin.H{"negocioFechado": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decode(t, rec)
	if updated["negocioFechado"] != true {
		t.Fatalf("negocioFechado = %v, want true", updated["negocioFechado"])
	}
	if updated["transportadora"] != "TransLog" || updated["valorFrete"] != 350.0 {
		t.Fatalf("other fields clobbered: %v", updated)
	}

	rec = perform(t, engine, http.MethodPut, fmt.Sprintf("/cotacoes/%d", id), gin.H{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty update status = %d, want 400", rec.Code)
	}

	rec = perform(t, engine, http.MethodPut, "/cotacoes/9999", gin.H{"negocioFechado": true})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing row update status = %d, want 404", rec.Code)
	}
}

func TestCotacaoDelete(t *testing.T) {
	engine := newCotacaoEngine(t)

	rec := perform(t, engine, http.MethodPost, "/cotacoes", gin.H{
		"responsavel":    "Ana",
		"transportadora": "TransLog",
		"destino":        "Curitiba/PR",
		"dataCotacao":    "2026-03-04",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	id := int(decode(t, rec)["id"].(float64))

	rec = perform(t, engine, http.MethodDelete, fmt.Sprintf("/cotacoes/%d", id), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	rec = perform(t, engine, http.MethodDelete, fmt.Sprintf("/cotacoes/%d", id), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d, want 404", rec.Code)
	}
}

func newOrdemEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewOrdemHandler(openBusinessDB(t))
	engine.GET("/ordens", handler.List)
	engine.GET("/ordens/:id", handler.Get)
	engine.POST("/ordens", handler.Create)
	engine.PUT("/ordens/:id", handler.Update)
	engine.DELETE("/ordens/:id", handler.Delete)
	return engine
}

func TestOrdemCreateDefaultsStatus(t *testing.T) {
	engine := newOrdemEngine(t)

	rec := perform(t, engine, http.MethodPost, "/ordens", gin.H{
		"fornecedor":   "ACME",
		"numeroPedido": "PO-100",
		"valorTotal":   1200.50,
		"dataPedido":   "2026-03-04",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode(t, rec)
	if created["status"] != "aberta" {
		t.Fatalf("status = %v, want aberta", created["status"])
	}
}

func TestOrdemUpdateRewritesRow(t *testing.T) {
	engine := newOrdemEngine(t)

	rec := perform(t, engine, http.MethodPost, "/ordens", gin.H{
		"fornecedor":   "ACME",
		"numeroPedido": "PO-100",
		"valorTotal":   1200.50,
		"dataPedido":   "2026-03-04",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	id := int(decode(t, rec)["id"].(float64))

	rec = perform(t, engine, http.MethodPut, fmt.Sprintf("/ordens/%d", id), gin.H{
		"fornecedor":   "ACME",
		"numeroPedido": "PO-100",
		"valorTotal":   1500.00,
		"dataPedido":   "2026-03-04",
		"status":       "recebida",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decode(t, rec)
	if updated["status"] != "recebida" || updated["valorTotal"] != 1500.0 {
		t.Fatalf("updated = %v", updated)
	}

	rec = perform(t, engine, http.MethodPut, fmt.Sprintf("/ordens/%d", id), gin.H{
		"fornecedor": "ACME",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("incomplete update status = %d, want 400", rec.Code)
	}
}

func TestOrdemListOrder(t *testing.T) {
	engine := newOrdemEngine(t)

	for _, data := range []string{"2026-03-01", "2026-03-10", "2026-03-05"} {
		rec := perform(t, engine, http.MethodPost, "/ordens", gin.H{
			"fornecedor":   "ACME",
			"numeroPedido": "PO-" + data,
			"valorTotal":   100.0,
			"dataPedido":   data,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d", rec.Code)
		}
	}

	rec := perform(t, engine, http.MethodGet, "/ordens", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var rows []map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &rows); errDecode != nil {
		t.Fatalf("decode list: %v", errDecode)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0]["dataPedido"] != "2026-03-10" || rows[2]["dataPedido"] != "2026-03-01" {
		t.Fatalf("list not sorted by dataPedido DESC: %v", rows)
	}
}

func TestClientIPResolution(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/ip", func(c *gin.Context) {
		c.String(http.StatusOK, ClientIP(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.5:4444"
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Body.String() != "10.0.0.5" {
		t.Fatalf("socket peer ip = %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.5:4444"
	req.Header.Set("X-Forwarded-For", "::ffff:1.2.3.4, 10.0.0.1")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Body.String() != "1.2.3.4" {
		t.Fatalf("forwarded ip = %q", rec.Body.String())
	}
}
