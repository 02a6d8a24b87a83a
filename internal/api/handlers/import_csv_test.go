package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codyseavey/cardvault/internal/models"
)

func postCSV(t *testing.T, router http.Handler, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/import/cards.csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportCardsCSV(t *testing.T) {
	router, db := newTestRouter(t)

	csvBody := "year,brand,set_name,card_no,player\n" +
		"1990,Topps,1990 Topps Baseball,414,Frank Thomas\n" +
		"1990,Topps,1990 Topps Baseball,1,Nolan Ryan\n" +
		",,,,\n" + // no identifying fields: counted as error
		"1990,Topps,1990 Topps Baseball,414,Frank Thomas\n" // dup key: updated

	w := postCSV(t, router, "cards.csv", csvBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Created int `json:"created"`
		Updated int `json:"updated"`
		Errors  int `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Created != 2 || resp.Updated != 1 || resp.Errors != 1 {
		t.Errorf("created/updated/errors = %d/%d/%d, want 2/1/1", resp.Created, resp.Updated, resp.Errors)
	}

	var count int64
	db.Model(&models.Card{}).Where("deleted_at IS NULL").Count(&count)
	if count != 2 {
		t.Errorf("live cards = %d, want 2", count)
	}
}

func TestImportCardsCSVRejectsNonCSV(t *testing.T) {
	router, _ := newTestRouter(t)
	if w := postCSV(t, router, "cards.txt", "year,brand\n"); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestImportCardsCSVMalformedRowsCounted(t *testing.T) {
	router, _ := newTestRouter(t)

	// Second data row has an unterminated quote; it is skipped, the rest
	// of the rows still import.
	csvBody := "year,brand,set_name,card_no,player\n" +
		"1990,Topps,1990 Topps Baseball,414,Frank Thomas\n" +
		"1991,\"Broken,Upper Deck,1,X\n"

	w := postCSV(t, router, "cards.csv", csvBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Created int `json:"created"`
		Errors  int `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Created != 1 {
		t.Errorf("created = %d, want 1", resp.Created)
	}
	if resp.Errors == 0 {
		t.Error("malformed row not counted as error")
	}
}
