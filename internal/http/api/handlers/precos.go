package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ircomercio/portal/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PrecoHandler manages the price table endpoints.
type PrecoHandler struct {
	db *gorm.DB
}

// NewPrecoHandler constructs a PrecoHandler.
func NewPrecoHandler(db *gorm.DB) *PrecoHandler {
	return &PrecoHandler{db: db}
}

// Head is the liveness probe the price table frontend polls.
func (h *PrecoHandler) Head(c *gin.Context) {
	c.Status(http.StatusOK)
}

// List returns all prices ordered by brand.
func (h *PrecoHandler) List(c *gin.Context) {
	rows := make([]models.Preco, 0)
	if errFind := h.db.WithContext(c.Request.Context()).Order("marca ASC").Find(&rows).Error; errFind != nil {
		log.WithError(errFind).Error("list precos failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar preços"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Get returns a price by ID.
func (h *PrecoHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var row models.Preco
	if errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Preço não encontrado"})
			return
		}
		log.WithError(errFind).Error("get preco failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar preço"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// precoRequest defines the request body for price creation and updates.
type precoRequest struct {
	Marca     string   `json:"marca"`
	Codigo    string   `json:"codigo"`
	Preco     *float64 `json:"preco"`
	Descricao string   `json:"descricao"`
}

func (r precoRequest) incomplete() bool {
	return strings.TrimSpace(r.Marca) == "" ||
		strings.TrimSpace(r.Codigo) == "" ||
		r.Preco == nil ||
		strings.TrimSpace(r.Descricao) == ""
}

// Create inserts a new price row.
func (h *PrecoHandler) Create(c *gin.Context) {
	var body precoRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.incomplete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Todos os campos são obrigatórios"})
		return
	}
	row := models.Preco{
		Marca:     strings.TrimSpace(body.Marca),
		Codigo:    strings.TrimSpace(body.Codigo),
		Preco:     *body.Preco,
		Descricao: strings.TrimSpace(body.Descricao),
		Timestamp: time.Now().UTC(),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		log.WithError(errCreate).Error("create preco failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar preço"})
		return
	}
	c.JSON(http.StatusCreated, row)
}

// Update rewrites a price row.
func (h *PrecoHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body precoRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.incomplete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Todos os campos são obrigatórios"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Model(&models.Preco{}).Where("id = ?", id).
		Updates(map[string]any{
			"marca":     strings.TrimSpace(body.Marca),
			"codigo":    strings.TrimSpace(body.Codigo),
			"preco":     *body.Preco,
			"descricao": strings.TrimSpace(body.Descricao),
			"timestamp": time.Now().UTC(),
		})
	if res.Error != nil {
		log.WithError(res.Error).Error("update preco failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar preço"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Preço não encontrado"})
		return
	}
	var row models.Preco
	if errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error; errFind != nil {
		log.WithError(errFind).Error("reload preco failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar preço"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete removes a price row.
func (h *PrecoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Preco{}, id)
	if res.Error != nil {
		log.WithError(res.Error).Error("delete preco failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao excluir preço"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Preço não encontrado"})
		return
	}
	c.Status(http.StatusNoContent)
}

// parseID reads the :id path parameter, answering 400 itself on garbage.
func parseID(c *gin.Context) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return 0, false
	}
	return id, true
}
