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

type OwnershipHandler struct {
	db     *gorm.DB
	tenant string
}

func NewOwnershipHandler(db *gorm.DB, tenant string) *OwnershipHandler {
	if tenant == "" {
		tenant = models.DefaultTenant
	}
	return &OwnershipHandler{db: db, tenant: tenant}
}

type OwnershipPayload struct {
	CardUUID      string   `json:"card_uuid" binding:"required"`
	ConditionType string   `json:"condition_type"`
	GradeScale    string   `json:"grade_scale"`
	GradeValue    string   `json:"grade_value"`
	CertNo        string   `json:"cert_no"`
	AcquiredDate  string   `json:"acquired_date"`
	PricePaid     *float64 `json:"price_paid"`
	Currency      string   `json:"currency"`
	Source        string   `json:"source"`
	Location      string   `json:"location"`
	Quantity      int      `json:"quantity"`
	Status        string   `json:"status"`
	Notes         string   `json:"notes"`
}

func (h *OwnershipHandler) ListOwnership(c *gin.Context) {
	q := h.db.Where("deleted_at IS NULL")
	if cardUUID := c.Query("card_uuid"); cardUUID != "" {
		q = q.Where("card_uuid = ?", cardUUID)
	}

	var rows []models.Ownership
	if err := q.Order("updated_at DESC").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *OwnershipHandler) CreateOwnership(c *gin.Context) {
	var payload OwnershipPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Reject records pointing at a card that does not exist.
	if !cardExists(h.db, payload.CardUUID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card_uuid does not exist"})
		return
	}

	quantity := payload.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	currency := payload.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC().Truncate(time.Second)
	row := models.Ownership{
		OwnershipUUID: "o_" + uuid.New().String(),
		TenantID:      h.tenant,
		SchemaVersion: models.SchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
		CardUUID:      payload.CardUUID,
		ConditionType: payload.ConditionType,
		GradeScale:    payload.GradeScale,
		GradeValue:    payload.GradeValue,
		CertNo:        payload.CertNo,
		AcquiredDate:  payload.AcquiredDate,
		PricePaid:     payload.PricePaid,
		Currency:      currency,
		Source:        payload.Source,
		Location:      payload.Location,
		Quantity:      quantity,
		Status:        payload.Status,
		Notes:         payload.Notes,
	}

	if err := h.db.Create(&row).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *OwnershipHandler) DeleteOwnership(c *gin.Context) {
	var row models.Ownership
	err := h.db.Where("ownership_uuid = ? AND deleted_at IS NULL", c.Param("ownership_uuid")).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ownership not found"})
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

func cardExists(db *gorm.DB, cardUUID string) bool {
	var count int64
	db.Model(&models.Card{}).Where("card_uuid = ?", cardUUID).Count(&count)
	return count > 0
}
