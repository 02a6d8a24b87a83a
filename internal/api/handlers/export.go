package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codyseavey/cardvault/internal/models"
)

type ExportHandler struct {
	db     *gorm.DB
	tenant string
}

func NewExportHandler(db *gorm.DB, tenant string) *ExportHandler {
	if tenant == "" {
		tenant = models.DefaultTenant
	}
	return &ExportHandler{db: db, tenant: tenant}
}

// ExportCardsCSV streams every live card as a CSV download.
func (h *ExportHandler) ExportCardsCSV(c *gin.Context) {
	var cards []models.Card
	err := h.db.Where("tenant_id = ? AND deleted_at IS NULL", h.tenant).
		Order("created_at ASC").
		Find(&cards).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="cards.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{
		"card_uuid", "year", "brand", "set_name", "subset", "card_no", "player",
		"team", "sport", "parallel", "variant", "print_run", "notes",
		"canonical_key", "created_at", "updated_at",
	})
	for _, card := range cards {
		_ = w.Write([]string{
			card.CardUUID,
			intString(card.Year),
			card.Brand,
			card.SetName,
			card.Subset,
			card.CardNo,
			card.Player,
			card.Team,
			string(card.Sport),
			card.Parallel,
			card.Variant,
			intString(card.PrintRun),
			card.Notes,
			card.CanonicalKey,
			card.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			card.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	w.Flush()
}

func intString(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
