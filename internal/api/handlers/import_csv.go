package handlers

import (
	"encoding/csv"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codyseavey/cardvault/internal/models"
	"github.com/codyseavey/cardvault/internal/services"
)

type ImportHandler struct {
	db     *gorm.DB
	tenant string
}

func NewImportHandler(db *gorm.DB, tenant string) *ImportHandler {
	if tenant == "" {
		tenant = models.DefaultTenant
	}
	return &ImportHandler{db: db, tenant: tenant}
}

// ImportCardsCSV bulk-loads cards from an uploaded CSV. Rows go through the
// same dedup upsert pipeline as the card-list importer; malformed rows are
// counted and skipped, never fatal.
func (h *ImportHandler) ImportCardsCSV(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload a .csv file"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer src.Close()

	engine, err := services.NewUpsertEngine(h.tenant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read CSV header"})
		return
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	created, updated, errCount := 0, 0, 0

	err = h.db.Transaction(func(tx *gorm.DB) error {
		for {
			row, err := reader.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				errCount++
				continue
			}

			rec, ok := recordFromCSVRow(cols, row)
			if !ok {
				errCount++
				continue
			}

			status, err := engine.Upsert(tx, rec)
			if err != nil {
				return err
			}
			if status == services.UpsertCreated {
				created++
			} else {
				updated++
			}
		}
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "created": created, "updated": updated, "errors": errCount})
}

// recordFromCSVRow maps one CSV row onto a card record. A row with no
// identifying fields at all is rejected.
func recordFromCSVRow(cols map[string]int, row []string) (services.CardRecord, bool) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	getInt := func(name string) *int {
		if n, err := strconv.Atoi(get(name)); err == nil {
			return &n
		}
		return nil
	}

	rec := services.CardRecord{
		Year:     getInt("year"),
		Brand:    get("brand"),
		SetName:  get("set_name"),
		Subset:   get("subset"),
		CardNo:   get("card_no"),
		Player:   get("player"),
		Team:     get("team"),
		Sport:    models.Sport(get("sport")),
		Parallel: get("parallel"),
		Variant:  get("variant"),
		PrintRun: getInt("print_run"),
		Notes:    get("notes"),
	}

	if rec.Year == nil && rec.Brand == "" && rec.SetName == "" && rec.CardNo == "" && rec.Player == "" {
		return rec, false
	}
	return rec, true
}
