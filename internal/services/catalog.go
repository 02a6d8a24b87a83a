package services

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/codyseavey/cardvault/internal/models"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// searchColumns are the text fields a query token can match, by substring.
var searchColumns = []string{
	"player", "brand", "set_name", "subset", "card_no", "parallel", "variant", "team", "notes",
}

// sortColumns whitelists the sortable fields. Keys are the API parameter
// values.
var sortColumns = map[string]string{
	"updated_at": "updated_at",
	"created_at": "created_at",
	"year":       "year",
	"brand":      "brand",
	"set_name":   "set_name",
	"player":     "player",
	"card_no":    "card_no",
}

type CardFilter struct {
	// Query is free text. It is tokenized into alphanumeric lower-cased
	// tokens; every token must match at least one search column (an
	// all-digit token also matches the year exactly).
	Query      string
	Wishlisted *bool
	Sort       string
	Order      string // asc | desc
	Page       int
	PageSize   int
}

// CatalogService is the read side of the catalog. It assumes the canonical
// key invariant already holds and never recomputes keys.
type CatalogService struct {
	db     *gorm.DB
	tenant string
}

func NewCatalogService(db *gorm.DB, tenant string) *CatalogService {
	if tenant == "" {
		tenant = models.DefaultTenant
	}
	return &CatalogService{db: db, tenant: tenant}
}

// ListCards filters, sorts, and paginates live cards.
func (s *CatalogService) ListCards(f CardFilter) (models.CardListResult, error) {
	page, pageSize := clampPage(f.Page, f.PageSize)

	q := s.db.Model(&models.Card{}).
		Where("tenant_id = ? AND deleted_at IS NULL", s.tenant)

	for _, token := range SearchTokens(f.Query) {
		q = q.Where(tokenCondition(s.db, token))
	}

	if f.Wishlisted != nil {
		q = q.Where("wishlisted = ?", *f.Wishlisted)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return models.CardListResult{}, err
	}

	var cards []models.Card
	err := q.Order(orderClause(f.Sort, f.Order)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&cards).Error
	if err != nil {
		return models.CardListResult{}, err
	}

	return models.CardListResult{
		Cards:      cards,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// ProductLabelsForSport returns the deduplicated product labels (brand + set
// name, year-stripped) of live cards, optionally limited to one sport.
func (s *CatalogService) ProductLabelsForSport(sport string) ([]string, error) {
	q := s.db.Model(&models.Card{}).
		Where("tenant_id = ? AND deleted_at IS NULL", s.tenant).
		Distinct("brand", "set_name", "year")
	if sport != "" {
		q = q.Where("sport = ?", sport)
	}

	var rows []struct {
		Brand   string
		SetName string
		Year    *int
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, CleanAndMerge(r.Brand, r.SetName, r.Year))
	}
	return ProductLabels(labels), nil
}

// SearchTokens splits a free-text query into lower-cased alphanumeric
// tokens. Anything that is not a letter or digit separates tokens.
func SearchTokens(query string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(query) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

func tokenCondition(db *gorm.DB, token string) *gorm.DB {
	like := "%" + token + "%"
	cond := db.Where(fmt.Sprintf("lower(%s) LIKE ?", searchColumns[0]), like)
	for _, col := range searchColumns[1:] {
		cond = cond.Or(fmt.Sprintf("lower(%s) LIKE ?", col), like)
	}
	if year, err := strconv.Atoi(token); err == nil {
		cond = cond.Or("year = ?", year)
	}
	return cond
}

func orderClause(sortKey, order string) string {
	col, ok := sortColumns[sortKey]
	if !ok {
		col = "updated_at"
	}
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}

// clampPage bounds pagination: page at least 1, page size within [1,200]
// with a default of 50 when unset.
func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize == 0:
		pageSize = DefaultPageSize
	case pageSize < 1:
		pageSize = 1
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return page, pageSize
}
