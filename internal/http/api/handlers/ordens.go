package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ircomercio/portal/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OrdemHandler manages the purchase order endpoints.
type OrdemHandler struct {
	db *gorm.DB
}

// NewOrdemHandler constructs an OrdemHandler.
func NewOrdemHandler(db *gorm.DB) *OrdemHandler {
	return &OrdemHandler{db: db}
}

// Head is the liveness probe the orders frontend polls.
func (h *OrdemHandler) Head(c *gin.Context) {
	c.Status(http.StatusOK)
}

// List returns all orders, newest order date first.
func (h *OrdemHandler) List(c *gin.Context) {
	rows := make([]models.Ordem, 0)
	if errFind := h.db.WithContext(c.Request.Context()).Order("data_pedido DESC").Find(&rows).Error; errFind != nil {
		log.WithError(errFind).Error("list ordens failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar ordens"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Get returns an order by ID.
func (h *OrdemHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var row models.Ordem
	if errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ordem não encontrada"})
			return
		}
		log.WithError(errFind).Error("get ordem failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar ordem"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// ordemRequest defines the request body for order creation and updates.
type ordemRequest struct {
	Fornecedor      string   `json:"fornecedor"`
	NumeroPedido    string   `json:"numeroPedido"`
	Comprador       string   `json:"comprador"`
	ValorTotal      *float64 `json:"valorTotal"`
	DataPedido      string   `json:"dataPedido"`
	PrevisaoEntrega string   `json:"previsaoEntrega"`
	Status          string   `json:"status"`
	Observacoes     string   `json:"observacoes"`
}

func (r ordemRequest) incomplete() bool {
	return strings.TrimSpace(r.Fornecedor) == "" ||
		strings.TrimSpace(r.NumeroPedido) == "" ||
		r.ValorTotal == nil ||
		strings.TrimSpace(r.DataPedido) == ""
}

func (r ordemRequest) status() string {
	status := strings.TrimSpace(r.Status)
	if status == "" {
		return "aberta"
	}
	return status
}

// Create inserts a new order.
func (h *OrdemHandler) Create(c *gin.Context) {
	var body ordemRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.incomplete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Todos os campos são obrigatórios"})
		return
	}
	row := models.Ordem{
		Fornecedor:      strings.TrimSpace(body.Fornecedor),
		NumeroPedido:    strings.TrimSpace(body.NumeroPedido),
		Comprador:       strings.TrimSpace(body.Comprador),
		ValorTotal:      *body.ValorTotal,
		DataPedido:      strings.TrimSpace(body.DataPedido),
		PrevisaoEntrega: strings.TrimSpace(body.PrevisaoEntrega),
		Status:          body.status(),
		Observacoes:     strings.TrimSpace(body.Observacoes),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		log.WithError(errCreate).Error("create ordem failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar ordem"})
		return
	}
	c.JSON(http.StatusCreated, row)
}

// Update rewrites an order.
func (h *OrdemHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body ordemRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.incomplete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Todos os campos são obrigatórios"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Model(&models.Ordem{}).Where("id = ?", id).
		Updates(map[string]any{
			"fornecedor":       strings.TrimSpace(body.Fornecedor),
			"numero_pedido":    strings.TrimSpace(body.NumeroPedido),
			"comprador":        strings.TrimSpace(body.Comprador),
			"valor_total":      *body.ValorTotal,
			"data_pedido":      strings.TrimSpace(body.DataPedido),
			"previsao_entrega": strings.TrimSpace(body.PrevisaoEntrega),
			"status":           body.status(),
			"observacoes":      strings.TrimSpace(body.Observacoes),
		})
	if res.Error != nil {
		log.WithError(res.Error).Error("update ordem failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar ordem"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ordem não encontrada"})
		return
	}
	var row models.Ordem
	if errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error; errFind != nil {
		log.WithError(errFind).Error("reload ordem failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar ordem"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete removes an order.
func (h *OrdemHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Ordem{}, id)
	if res.Error != nil {
		log.WithError(res.Error).Error("delete ordem failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao excluir ordem"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ordem não encontrada"})
		return
	}
	c.Status(http.StatusNoContent)
}
