package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"adminpanel/models"
	"adminpanel/pkg/config"
	"adminpanel/pkg/logging"
	"adminpanel/pkg/notify"

	"github.com/gin-gonic/gin"
)

func setupIntegrationServer(t *testing.T) (*app, *gin.Engine) {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	cfg := config.Load()
	cfg.RecordStore = "postgres"
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	a, err := newApp(ctx, cfg, logging.Discard())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	r := gin.New()
	a.setupRoutes(r)
	return a, r
}

func TestFullFlow(t *testing.T) {
	a, r := setupIntegrationServer(t)
	sub := a.hub.Subscribe(notify.StudentsChannel)
	defer sub.Close()

	// 1. Login as the seeded admin
	loginBody, _ := json.Marshal(map[string]string{"username": "admin", "password": a.cfg.AdminPassword})
	resp := performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(loginBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}

	// 2. Create a record
	createBody, _ := json.Marshal(map[string]string{"name": "A", "course": "X", "rollNo": "1", "batch": "B1", "timing": "9am"})
	resp = performRequest(r, http.MethodPost, "/api/items", bytes.NewBuffer(createBody), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("create failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var created models.Record
	_ = json.Unmarshal(resp.Body.Bytes(), &created)
	if created.ID == "" {
		t.Fatalf("record id not assigned: %s", resp.Body.String())
	}
	select {
	case env := <-sub.Events():
		if env.Event != notify.EventCreated {
			t.Fatalf("unexpected event %q", env.Event)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no created event")
	}

	// 3. Update every field
	updBody, _ := json.Marshal(map[string]string{"name": "A2", "course": "Y", "rollNo": "2", "batch": "B2", "timing": "10am"})
	resp = performRequest(r, http.MethodPut, "/api/items/"+created.ID, bytes.NewBuffer(updBody), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("update failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var updated models.Record
	_ = json.Unmarshal(resp.Body.Bytes(), &updated)
	if updated.Name != "A2" || updated.Timing != "10am" || updated.ID != created.ID {
		t.Fatalf("update did not replace fields: %+v", updated)
	}

	// 4. Update of an unknown id is 404
	resp = performRequest(r, http.MethodPut, "/api/items/01ZZZZZZZZZZZZZZZZZZZZZZZZ", bytes.NewBuffer(updBody), token, "application/json")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}

	// 5. Delete, twice
	for i := 0; i < 2; i++ {
		resp = performRequest(r, http.MethodDelete, "/api/items/"+created.ID, nil, token, "")
		if resp.Code != 200 {
			t.Fatalf("delete %d failed status=%d body=%s", i, resp.Code, resp.Body.String())
		}
	}

	// 6. Unauthorized access to protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/api/items", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list got %d", unauth.Code)
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	cfg := config.Load()
	db, err := openDB(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("openDB: %v", err)
	}
	if _, err := seedAdmin(context.Background(), gormAccounts{db: db}, cfg.AdminPassword); err != nil {
		t.Fatalf("seed: %v", err)
	}
}
