package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codyseavey/cardvault/internal/models"
	"github.com/codyseavey/cardvault/internal/services"
)

type MediaHandler struct {
	db      *gorm.DB
	storage *services.MediaStorageService
	tenant  string
}

func NewMediaHandler(db *gorm.DB, storage *services.MediaStorageService, tenant string) *MediaHandler {
	if tenant == "" {
		tenant = models.DefaultTenant
	}
	return &MediaHandler{db: db, storage: storage, tenant: tenant}
}

// UploadMedia accepts a multipart photo for a card or an ownership record.
// When a kind (front|back) is given, prior media of that kind for the same
// target is soft-deleted so the newest photo wins.
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	cardUUID := c.PostForm("card_uuid")
	ownershipUUID := c.PostForm("ownership_uuid")
	if cardUUID == "" && ownershipUUID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide card_uuid or ownership_uuid"})
		return
	}
	if cardUUID != "" && !cardExists(h.db, cardUUID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card_uuid not found"})
		return
	}
	if ownershipUUID != "" && !ownershipExists(h.db, ownershipUUID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownership_uuid not found"})
		return
	}

	kind := strings.ToLower(strings.TrimSpace(c.PostForm("kind")))
	if kind != "" && kind != models.MediaKindFront && kind != models.MediaKindBack {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be front or back"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > services.MaxMediaBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large (> 15 MB)"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}

	mediaUUID, filename, sum, err := h.storage.SaveMedia(data, file.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC().Truncate(time.Second)

	if kind != "" {
		q := h.db.Model(&models.Media{}).Where("kind = ? AND deleted_at IS NULL", kind)
		if cardUUID != "" {
			q = q.Where("card_uuid = ?", cardUUID)
		} else {
			q = q.Where("ownership_uuid = ?", ownershipUUID)
		}
		if err := q.Update("deleted_at", now).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	row := models.Media{
		MediaUUID:     mediaUUID,
		TenantID:      h.tenant,
		SchemaVersion: models.SchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
		CardUUID:      cardUUID,
		OwnershipUUID: ownershipUUID,
		Path:          filename,
		Kind:          kind,
		SHA256:        sum,
		FilesizeBytes: int64(len(data)),
	}

	if err := h.db.Create(&row).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":         true,
		"media_uuid": row.MediaUUID,
		"kind":       row.Kind,
		"url":        mediaURL(row.Path),
	})
}

// LatestMedia returns the newest live photo for a card, optionally filtered
// by kind.
func (h *MediaHandler) LatestMedia(c *gin.Context) {
	cardUUID := c.Query("card_uuid")
	if cardUUID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card_uuid is required"})
		return
	}

	q := h.db.Where("card_uuid = ? AND deleted_at IS NULL", cardUUID).
		Order("created_at DESC")
	if kind := strings.ToLower(strings.TrimSpace(c.Query("kind"))); kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var row models.Media
	err := q.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"url": nil})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"media_uuid": row.MediaUUID,
		"kind":       row.Kind,
		"url":        mediaURL(row.Path),
		"created_at": row.CreatedAt,
	})
}

// MediaPair returns the newest front and back photos for a card.
func (h *MediaHandler) MediaPair(c *gin.Context) {
	cardUUID := c.Query("card_uuid")
	if cardUUID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card_uuid is required"})
		return
	}

	latest := func(kind string) gin.H {
		var row models.Media
		err := h.db.Where("card_uuid = ? AND kind = ? AND deleted_at IS NULL", cardUUID, kind).
			Order("created_at DESC").
			First(&row).Error
		if err != nil {
			return nil
		}
		return gin.H{
			"media_uuid": row.MediaUUID,
			"url":        mediaURL(row.Path),
			"created_at": row.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"front": latest(models.MediaKindFront),
		"back":  latest(models.MediaKindBack),
	})
}

func (h *MediaHandler) ListMedia(c *gin.Context) {
	q := h.db.Where("deleted_at IS NULL")
	if cardUUID := c.Query("card_uuid"); cardUUID != "" {
		q = q.Where("card_uuid = ?", cardUUID)
	}
	if ownershipUUID := c.Query("ownership_uuid"); ownershipUUID != "" {
		q = q.Where("ownership_uuid = ?", ownershipUUID)
	}
	if kind := strings.ToLower(strings.TrimSpace(c.Query("kind"))); kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var rows []models.Media
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, m := range rows {
		out = append(out, gin.H{
			"media_uuid":     m.MediaUUID,
			"card_uuid":      m.CardUUID,
			"ownership_uuid": m.OwnershipUUID,
			"kind":           m.Kind,
			"url":            mediaURL(m.Path),
			"created_at":     m.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	var row models.Media
	err := h.db.Where("media_uuid = ? AND deleted_at IS NULL", c.Param("media_uuid")).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Media not found"})
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

func mediaURL(rel string) string {
	if rel == "" {
		return ""
	}
	return "/media/" + rel
}

func ownershipExists(db *gorm.DB, ownershipUUID string) bool {
	var count int64
	db.Model(&models.Ownership{}).Where("ownership_uuid = ?", ownershipUUID).Count(&count)
	return count > 0
}
