package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"

	"brewcost/internal/catalog"
	"brewcost/internal/storage/jsonstore"
	"brewcost/models"
)

func f64(v float64) *float64 { return &v }

// withTestCatalog installs a document-backed catalog for the duration of a
// test and restores the previous handler dependencies afterwards.
func withTestCatalog(t *testing.T) *catalog.Store {
	t.Helper()

	gw, err := jsonstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open jsonstore: %v", err)
	}
	cat, err := catalog.Open(gw)
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}

	original := store
	store = cat
	t.Cleanup(func() { store = original })
	return cat
}

func withTestSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()

	sm := scs.New()
	original := sessionManager
	sessionManager = sm
	t.Cleanup(func() { sessionManager = original })
	return sm
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("failed to encode request payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func seedIngredient(t *testing.T, cat *catalog.Store, name, category string, cost, units float64) models.Ingredient {
	t.Helper()
	ing, err := cat.UpsertIngredient(models.Ingredient{
		Name:     name,
		Category: category,
		Cost:     f64(cost),
		Units:    f64(units),
	})
	if err != nil {
		t.Fatalf("failed to seed ingredient %s: %v", name, err)
	}
	return ing
}
