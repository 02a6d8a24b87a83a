package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codyseavey/cardvault/internal/metrics"
	"github.com/codyseavey/cardvault/internal/models"
	"github.com/codyseavey/cardvault/internal/services"
)

type CardHandler struct {
	db      *gorm.DB
	catalog *services.CatalogService
	tenant  string
}

func NewCardHandler(db *gorm.DB, catalog *services.CatalogService, tenant string) *CardHandler {
	if tenant == "" {
		tenant = models.DefaultTenant
	}
	return &CardHandler{db: db, catalog: catalog, tenant: tenant}
}

// CardPayload is the JSON body for card create/update. Pointer fields let
// PATCH distinguish "not sent" from "set to empty".
type CardPayload struct {
	Year     *int    `json:"year"`
	Brand    *string `json:"brand"`
	SetName  *string `json:"set_name"`
	Subset   *string `json:"subset"`
	CardNo   *string `json:"card_no"`
	Player   *string `json:"player"`
	Team     *string `json:"team"`
	Sport    *string `json:"sport"`
	Parallel *string `json:"parallel"`
	Variant  *string `json:"variant"`
	PrintRun *int    `json:"print_run"`
	Notes    *string `json:"notes"`
}

func (h *CardHandler) ListCards(c *gin.Context) {
	filter := services.CardFilter{
		Query: c.Query("q"),
		Sort:  c.Query("sort"),
		Order: c.Query("order"),
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.PageSize, _ = strconv.Atoi(c.Query("page_size"))

	if raw := c.Query("wishlisted"); raw != "" {
		wishlisted, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "wishlisted must be true or false"})
			return
		}
		filter.Wishlisted = &wishlisted
	}

	result, err := h.catalog.ListCards(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CardHandler) GetCard(c *gin.Context) {
	card, ok := h.findLiveCard(c, c.Param("card_uuid"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) CreateCard(c *gin.Context) {
	var payload CardPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC().Truncate(time.Second)
	card := models.Card{
		CardUUID:      "c_" + uuid.New().String(),
		TenantID:      h.tenant,
		SchemaVersion: models.SchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	applyPayload(&card, payload)
	card.CanonicalKey = cardKey(&card)

	if h.liveKeyTaken(card.CanonicalKey, "") {
		metrics.CanonicalKeyConflicts.Inc()
		c.JSON(http.StatusConflict, gin.H{"error": "a live card with the same canonical key already exists"})
		return
	}

	if err := h.db.Create(&card).Error; err != nil {
		// A concurrent writer can still win the race between the check
		// above and this insert; the partial unique index catches it.
		if isUniqueViolation(err) {
			metrics.CanonicalKeyConflicts.Inc()
			c.JSON(http.StatusConflict, gin.H{"error": "a live card with the same canonical key already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (h *CardHandler) UpdateCard(c *gin.Context) {
	card, ok := h.findLiveCard(c, c.Param("card_uuid"))
	if !ok {
		return
	}

	var payload CardPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applyPayload(&card, payload)

	// Updates re-key the card; a re-key can collide with a different live
	// card and is treated as a conflict, not a field change.
	card.CanonicalKey = cardKey(&card)
	if h.liveKeyTaken(card.CanonicalKey, card.CardUUID) {
		metrics.CanonicalKeyConflicts.Inc()
		c.JSON(http.StatusConflict, gin.H{"error": "another live card already has this canonical key"})
		return
	}

	card.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	if err := h.db.Save(&card).Error; err != nil {
		if isUniqueViolation(err) {
			metrics.CanonicalKeyConflicts.Inc()
			c.JSON(http.StatusConflict, gin.H{"error": "another live card already has this canonical key"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) DeleteCard(c *gin.Context) {
	card, ok := h.findLiveCard(c, c.Param("card_uuid"))
	if !ok {
		return
	}

	now := time.Now().UTC().Truncate(time.Second)
	card.DeletedAt = &now
	if err := h.db.Save(&card).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *CardHandler) SetWishlist(c *gin.Context) {
	card, ok := h.findLiveCard(c, c.Param("card_uuid"))
	if !ok {
		return
	}

	var req struct {
		Wishlisted bool `json:"wishlisted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card.Wishlisted = req.Wishlisted
	card.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	if err := h.db.Save(&card).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

// ListProducts returns deduplicated product labels (brand + set name) for
// filter dropdowns, optionally limited to one sport.
func (h *CardHandler) ListProducts(c *gin.Context) {
	labels, err := h.catalog.ProductLabelsForSport(c.Query("sport"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": labels})
}

func (h *CardHandler) findLiveCard(c *gin.Context, cardUUID string) (models.Card, bool) {
	var card models.Card
	err := h.db.Where("card_uuid = ? AND deleted_at IS NULL", cardUUID).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return card, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return card, false
	}
	return card, true
}

func (h *CardHandler) liveKeyTaken(key, excludeUUID string) bool {
	var count int64
	q := h.db.Model(&models.Card{}).
		Where("tenant_id = ? AND canonical_key = ? AND deleted_at IS NULL", h.tenant, key)
	if excludeUUID != "" {
		q = q.Where("card_uuid <> ?", excludeUUID)
	}
	q.Count(&count)
	return count > 0
}

func applyPayload(card *models.Card, p CardPayload) {
	if p.Year != nil {
		card.Year = p.Year
	}
	if p.Brand != nil {
		card.Brand = *p.Brand
	}
	if p.SetName != nil {
		card.SetName = *p.SetName
	}
	if p.Subset != nil {
		card.Subset = *p.Subset
	}
	if p.CardNo != nil {
		card.CardNo = *p.CardNo
	}
	if p.Player != nil {
		card.Player = *p.Player
	}
	if p.Team != nil {
		card.Team = *p.Team
	}
	if p.Sport != nil {
		card.Sport = models.Sport(*p.Sport)
	}
	if p.Parallel != nil {
		card.Parallel = *p.Parallel
	}
	if p.Variant != nil {
		card.Variant = *p.Variant
	}
	if p.PrintRun != nil {
		card.PrintRun = p.PrintRun
	}
	if p.Notes != nil {
		card.Notes = *p.Notes
	}
}

func cardKey(card *models.Card) string {
	return services.CanonicalKey(card.Year, card.Brand, card.SetName, card.Subset,
		card.CardNo, card.Parallel, card.Variant)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
