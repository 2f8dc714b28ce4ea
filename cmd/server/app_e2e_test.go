package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"autoparc/internal/auth"
	"autoparc/internal/blob"
	"autoparc/internal/db"
	"autoparc/internal/models"
)

func setupE2EDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:e2e_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(dbi); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Seed(dbi); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return dbi
}

func newE2EApp(t *testing.T, dbi *gorm.DB) *App {
	t.Helper()
	blobs, err := blob.NewDiskStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return NewApp(dbi, blobs)
}

func e2eUser(t *testing.T, dbi *gorm.DB, email, profileName string) (*models.User, *http.Cookie) {
	t.Helper()
	user := models.User{Email: email}
	require.NoError(t, user.SetPassword("secret123"))
	if profileName != "" {
		var profile models.Profile
		require.NoError(t, dbi.Where("name = ?", profileName).First(&profile).Error)
		user.ProfileID = &profile.ID
	}
	require.NoError(t, dbi.Create(&user).Error)

	rec := httptest.NewRecorder()
	require.NoError(t, auth.CreateSession(rec, user.ID))
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return &user, c
		}
	}
	t.Fatal("no session cookie")
	return nil, nil
}

func jsonReq(t *testing.T, app *App, sess *http.Cookie, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		req.AddCookie(sess)
	}
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	return rr
}

func seedE2EClient(t *testing.T, dbi *gorm.DB) models.Client {
	t.Helper()
	client := models.Client{Type: models.ClientParticulier, Nom: "Sow"}
	require.NoError(t, dbi.Create(&client).Error)
	return client
}

func TestLoginFlowE2E(t *testing.T) {
	dbi := setupE2EDB(t)
	app := newE2EApp(t, dbi)

	user := models.User{Email: "gerant@autoparc.test"}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, dbi.Create(&user).Error)

	form := url.Values{"email": {"gerant@autoparc.test"}, "password": {"secret123"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))
	var hasSession bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			hasSession = true
		}
	}
	assert.True(t, hasSession)

	// Wrong password stays out.
	form.Set("password", "nope")
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCommandeLifecycleE2E(t *testing.T) {
	dbi := setupE2EDB(t)
	app := newE2EApp(t, dbi)
	_, sess := e2eUser(t, dbi, "admin@autoparc.test", "gerant")
	client := seedE2EClient(t, dbi)

	rr := jsonReq(t, app, sess, http.MethodPost, "/commandes", map[string]any{
		"client_id":      client.ID,
		"nombre_portes":  4,
		"transmission":   "AUTOMATIQUE",
		"moteur":         "ESSENCE",
		"couleur":        "Rouge",
		"date_livraison": time.Now().AddDate(0, 3, 0).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created models.Commande
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, models.EtapeProposition, created.Etape)

	advance := func(target string) *httptest.ResponseRecorder {
		return jsonReq(t, app, sess, http.MethodPost,
			fmt.Sprintf("/commandes/%d/advance", created.ID),
			map[string]string{"etape": target})
	}

	rr = advance("VALIDE")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Jumping over TRANSITE and RENSEIGNEE is rejected.
	rr = advance("ARRIVE")
	require.Equal(t, http.StatusConflict, rr.Code)
	var errBody struct {
		Error   string `json:"error"`
		Details struct {
			From    string   `json:"from"`
			Allowed []string `json:"allowed"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errBody))
	assert.Equal(t, "invalid_transition", errBody.Error)
	assert.Equal(t, "VALIDE", errBody.Details.From)
	assert.Contains(t, errBody.Details.Allowed, "TRANSITE")

	// Workshop loop: MONTAGE -> CORRECTION -> MONTAGE -> TESTE.
	require.NoError(t, dbi.Model(&models.Commande{}).Where("id = ?", created.ID).
		Update("etape", models.EtapeMontage).Error)
	require.Equal(t, http.StatusOK, advance("CORRECTION").Code)
	require.Equal(t, http.StatusOK, advance("MONTAGE").Code)
	require.Equal(t, http.StatusOK, advance("TESTE").Code)
}

func TestCascadeE2E(t *testing.T) {
	dbi := setupE2EDB(t)
	app := newE2EApp(t, dbi)
	_, sess := e2eUser(t, dbi, "magasinier@autoparc.test", "magasinier")
	client := seedE2EClient(t, dbi)

	ctr := models.Conteneur{Numero: "MSKU-E2E", Etape: models.ConteneurRenseigne}
	require.NoError(t, dbi.Create(&ctr).Error)
	for _, etape := range []models.EtapeCommande{models.EtapeTransite, models.EtapeRenseignee, models.EtapeArrive} {
		cmd := models.Commande{
			ClientID: client.ID, NombrePortes: 4, Couleur: "Gris",
			Transmission: models.TransmissionManuelle, Moteur: models.MoteurDiesel,
			DateLivraison: time.Now(), Etape: etape, Flag: models.FlagDisponible,
			ConteneurID: &ctr.ID,
		}
		require.NoError(t, dbi.Create(&cmd).Error)
	}

	cascadePath := fmt.Sprintf("/conteneurs/%d/cascade", ctr.ID)

	// Cascade before arrival is a conflict.
	rr := jsonReq(t, app, sess, http.MethodPost, cascadePath, nil)
	require.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())

	rr = jsonReq(t, app, sess, http.MethodPost,
		fmt.Sprintf("/conteneurs/%d/advance", ctr.ID),
		map[string]string{"etape": "ARRIVE"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = jsonReq(t, app, sess, http.MethodPost, cascadePath, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res struct {
		Advanced int `json:"advanced"`
		Skipped  int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Advanced)
	assert.Equal(t, 1, res.Skipped)

	// Second run is a no-op.
	rr = jsonReq(t, app, sess, http.MethodPost, cascadePath, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 0, res.Advanced)
	assert.Equal(t, 3, res.Skipped)
}

func TestRoleGateE2E(t *testing.T) {
	dbi := setupE2EDB(t)
	app := newE2EApp(t, dbi)
	_, commercial := e2eUser(t, dbi, "commercial@autoparc.test", "commercial")
	client := seedE2EClient(t, dbi)

	// A commercial cannot create containers.
	rr := jsonReq(t, app, commercial, http.MethodPost, "/conteneurs", map[string]any{"numero": "MSKU-X"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// But can create commandes.
	rr = jsonReq(t, app, commercial, http.MethodPost, "/commandes", map[string]any{
		"client_id":      client.ID,
		"nombre_portes":  2,
		"transmission":   "MANUELLE",
		"moteur":         "HYBRIDE",
		"couleur":        "Bleu",
		"date_livraison": time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created models.Commande
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	// And cannot validate them: that is the comptable's transition.
	rr = jsonReq(t, app, commercial, http.MethodPost,
		fmt.Sprintf("/commandes/%d/advance", created.ID),
		map[string]string{"etape": "VALIDE"})
	assert.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())

	_, comptable := e2eUser(t, dbi, "comptable@autoparc.test", "comptable")
	rr = jsonReq(t, app, comptable, http.MethodPost,
		fmt.Sprintf("/commandes/%d/advance", created.ID),
		map[string]string{"etape": "VALIDE"})
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestAnonymousRedirectE2E(t *testing.T) {
	dbi := setupE2EDB(t)
	app := newE2EApp(t, dbi)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/commandes", nil)
	req.Header.Set("Accept", "application/json")
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
