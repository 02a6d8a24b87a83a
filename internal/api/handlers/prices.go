package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codyseavey/cardvault/internal/models"
)

type PriceHandler struct {
	db     *gorm.DB
	tenant string
}

func NewPriceHandler(db *gorm.DB, tenant string) *PriceHandler {
	if tenant == "" {
		tenant = models.DefaultTenant
	}
	return &PriceHandler{db: db, tenant: tenant}
}

type PricePayload struct {
	CardUUID        string   `json:"card_uuid" binding:"required"`
	ConditionType   string   `json:"condition_type"`
	GradeScale      string   `json:"grade_scale"`
	GradeValue      string   `json:"grade_value"`
	SaleDate        string   `json:"sale_date"`
	SourceMarket    string   `json:"source_market"`
	SourceLotURL    string   `json:"source_lot_url"`
	AmountAllIn     *float64 `json:"amount_all_in"`
	Currency        string   `json:"currency"`
	FeesIncluded    string   `json:"fees_included"`
	BuyerPremiumPct string   `json:"buyer_premium_pct"`
	IsAskOrBid      string   `json:"is_ask_or_bid"`
	Confidence      string   `json:"confidence"`
	Notes           string   `json:"notes"`
}

func (h *PriceHandler) ListPrices(c *gin.Context) {
	q := h.db.Where("deleted_at IS NULL")
	if cardUUID := c.Query("card_uuid"); cardUUID != "" {
		q = q.Where("card_uuid = ?", cardUUID)
	}

	var rows []models.Price
	if err := q.Order("sale_date DESC, updated_at DESC").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *PriceHandler) CreatePrice(c *gin.Context) {
	var payload PricePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !cardExists(h.db, payload.CardUUID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card_uuid does not exist"})
		return
	}

	currency := payload.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC().Truncate(time.Second)
	row := models.Price{
		PriceUUID:       "p_" + uuid.New().String(),
		TenantID:        h.tenant,
		SchemaVersion:   models.SchemaVersion,
		CreatedAt:       now,
		UpdatedAt:       now,
		CardUUID:        payload.CardUUID,
		ConditionType:   payload.ConditionType,
		GradeScale:      payload.GradeScale,
		GradeValue:      payload.GradeValue,
		SaleDate:        payload.SaleDate,
		SourceMarket:    payload.SourceMarket,
		SourceLotURL:    payload.SourceLotURL,
		AmountAllIn:     payload.AmountAllIn,
		Currency:        currency,
		FeesIncluded:    payload.FeesIncluded,
		BuyerPremiumPct: payload.BuyerPremiumPct,
		IsAskOrBid:      payload.IsAskOrBid,
		Confidence:      payload.Confidence,
		Notes:           payload.Notes,
	}

	if err := h.db.Create(&row).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *PriceHandler) DeletePrice(c *gin.Context) {
	var row models.Price
	err := h.db.Where("price_uuid = ? AND deleted_at IS NULL", c.Param("price_uuid")).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Price not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC().Truncate(time.Second)
	row.DeletedAt = &now
	if err := h.db.Save(&row).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
