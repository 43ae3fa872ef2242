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

// CotacaoHandler manages the freight quote endpoints.
type CotacaoHandler struct {
	db *gorm.DB
}

// NewCotacaoHandler constructs a CotacaoHandler.
func NewCotacaoHandler(db *gorm.DB) *CotacaoHandler {
	return &CotacaoHandler{db: db}
}

// Head is the liveness probe the quotes frontend polls.
func (h *CotacaoHandler) Head(c *gin.Context) {
	c.Status(http.StatusOK)
}

// List returns all quotes, newest quote date first.
func (h *CotacaoHandler) List(c *gin.Context) {
	rows := make([]models.Cotacao, 0)
	if errFind := h.db.WithContext(c.Request.Context()).Order("data_cotacao DESC").Find(&rows).Error; errFind != nil {
		log.WithError(errFind).Error("list cotacoes failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar cotações"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Get returns a quote by ID.
func (h *CotacaoHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var row models.Cotacao
	if errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cotação não encontrada"})
			return
		}
		log.WithError(errFind).Error("get cotacao failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar cotação"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// createCotacaoRequest defines the request body for quote creation.
type createCotacaoRequest struct {
	Responsavel               string  `json:"responsavel"`
	Documento                 string  `json:"documento"`
	Vendedor                  string  `json:"vendedor"`
	Transportadora            string  `json:"transportadora"`
	Destino                   string  `json:"destino"`
	NumeroCotacao             string  `json:"numeroCotacao"`
	ValorFrete                float64 `json:"valorFrete"`
	PrevisaoEntrega           string  `json:"previsaoEntrega"`
	CanalComunicacao          string  `json:"canalComunicacao"`
	CodigoColeta              string  `json:"codigoColeta"`
	ResponsavelTransportadora string  `json:"responsavelTransportadora"`
	DataCotacao               string  `json:"dataCotacao"`
	Observacoes               string  `json:"observacoes"`
	NegocioFechado            bool    `json:"negocioFechado"`
}

// Create inserts a new quote.
func (h *CotacaoHandler) Create(c *gin.Context) {
	var body createCotacaoRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corpo da requisição inválido"})
		return
	}
	if strings.TrimSpace(body.Responsavel) == "" ||
		strings.TrimSpace(body.Transportadora) == "" ||
		strings.TrimSpace(body.Destino) == "" ||
		strings.TrimSpace(body.DataCotacao) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Todos os campos são obrigatórios"})
		return
	}
	row := models.Cotacao{
		Responsavel:               strings.TrimSpace(body.Responsavel),
		Documento:                 strings.TrimSpace(body.Documento),
		Vendedor:                  strings.TrimSpace(body.Vendedor),
		Transportadora:            strings.TrimSpace(body.Transportadora),
		Destino:                   strings.TrimSpace(body.Destino),
		NumeroCotacao:             strings.TrimSpace(body.NumeroCotacao),
		ValorFrete:                body.ValorFrete,
		PrevisaoEntrega:           strings.TrimSpace(body.PrevisaoEntrega),
		CanalComunicacao:          strings.TrimSpace(body.CanalComunicacao),
		CodigoColeta:              strings.TrimSpace(body.CodigoColeta),
		ResponsavelTransportadora: strings.TrimSpace(body.ResponsavelTransportadora),
		DataCotacao:               strings.TrimSpace(body.DataCotacao),
		Observacoes:               strings.TrimSpace(body.Observacoes),
		NegocioFechado:            body.NegocioFechado,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		log.WithError(errCreate).Error("create cotacao failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar cotação"})
		return
	}
	c.JSON(http.StatusCreated, row)
}

// updateCotacaoRequest allows partial updates; the frontend toggles the
// negocioFechado flag on its own.
type updateCotacaoRequest struct {
	Responsavel               *string  `json:"responsavel"`
	Documento                 *string  `json:"documento"`
	Vendedor                  *string  `json:"vendedor"`
	Transportadora            *string  `json:"transportadora"`
	Destino                   *string  `json:"destino"`
	NumeroCotacao             *string  `json:"numeroCotacao"`
	ValorFrete                *float64 `json:"valorFrete"`
	PrevisaoEntrega           *string  `json:"previsaoEntrega"`
	CanalComunicacao          *string  `json:"canalComunicacao"`
	CodigoColeta              *string  `json:"codigoColeta"`
	ResponsavelTransportadora *string  `json:"responsavelTransportadora"`
	DataCotacao               *string  `json:"dataCotacao"`
	Observacoes               *string  `json:"observacoes"`
	NegocioFechado            *bool    `json:"negocioFechado"`
}

func (r updateCotacaoRequest) updates() map[string]any {
	updates := map[string]any{}
	setString := func(column string, value *string) {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}
	setString("responsavel", r.Responsavel)
	setString("documento", r.Documento)
	setString("vendedor", r.Vendedor)
	setString("transportadora", r.Transportadora)
	setString("destino", r.Destino)
	setString("numero_cotacao", r.NumeroCotacao)
	setString("previsao_entrega", r.PrevisaoEntrega)
	setString("canal_comunicacao", r.CanalComunicacao)
	setString("codigo_coleta", r.CodigoColeta)
	setString("responsavel_transportadora", r.ResponsavelTransportadora)
	setString("data_cotacao", r.DataCotacao)
	setString("observacoes", r.Observacoes)
	if r.ValorFrete != nil {
		updates["valor_frete"] = *r.ValorFrete
	}
	if r.NegocioFechado != nil {
		updates["negocio_fechado"] = *r.NegocioFechado
	}
	return updates
}

// Update modifies the provided fields of a quote.
func (h *CotacaoHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body updateCotacaoRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corpo da requisição inválido"})
		return
	}
	updates := body.updates()
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nenhum campo para atualizar"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Model(&models.Cotacao{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		log.WithError(res.Error).Error("update cotacao failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar cotação"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cotação não encontrada"})
		return
	}
	var row models.Cotacao
	if errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error; errFind != nil {
		log.WithError(errFind).Error("reload cotacao failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar cotação"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete removes a quote.
func (h *CotacaoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Cotacao{}, id)
	if res.Error != nil {
		log.WithError(res.Error).Error("delete cotacao failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao excluir cotação"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cotação não encontrada"})
		return
	}
	c.Status(http.StatusNoContent)
}
