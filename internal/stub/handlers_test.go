package stub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/conorls/dublinrent/internal/models"
)

func newTestServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	store := NewStore()
	handler := &Handler{Store: store, Log: zap.NewNop()}
	srv := httptest.NewServer(NewRouter(handler, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func signupAndLogin(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/signup", `{"email":"a@b.ie","password":"pw"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup returned %d", resp.StatusCode)
	}

	form := url.Values{"username": {"a@b.ie"}, "password": {"pw"}}
	loginResp, err := http.PostForm(srv.URL+"/login", form)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", loginResp.StatusCode)
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return body.AccessToken
}

func TestSignup_DuplicateEmail(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/signup", `{"email":"a@b.ie","password":"pw"}`)
	resp.Body.Close()

	dup := postJSON(t, srv.URL+"/signup", `{"email":"a@b.ie","password":"other"}`)
	defer dup.Body.Close()
	if dup.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", dup.StatusCode)
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(dup.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Detail != "Email already registered" {
		t.Errorf("unexpected detail %q", body.Detail)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv.URL+"/signup", `{"email":"a@b.ie","password":"pw"}`)
	resp.Body.Close()

	loginResp, err := http.PostForm(srv.URL+"/login", url.Values{
		"username": {"a@b.ie"}, "password": {"wrong"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", loginResp.StatusCode)
	}
}

func TestMe_RequiresBearer(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/users/me")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestMe_WithToken(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signupAndLogin(t, srv)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var identity models.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		t.Fatal(err)
	}
	if identity.Email != "a@b.ie" || identity.ID == 0 {
		t.Errorf("unexpected identity %+v", identity)
	}
}

func TestPredict_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name         string
		body         string
		expectedCode int
	}{
		{
			name:         "property ok",
			body:         `{"bedrooms":"2","bathrooms":"1","propertyType":"apartment","dublinArea":"dublin-4","isShared":false}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "property missing bathrooms",
			body:         `{"bedrooms":"2","propertyType":"apartment","dublinArea":"dublin-4","isShared":false}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "sharing ok",
			body:         `{"propertyType":"house","dublinArea":"dublin-6","roomType":"double","isShared":true}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "sharing missing roomType",
			body:         `{"propertyType":"house","dublinArea":"dublin-6","isShared":true}`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/predict", tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != tt.expectedCode {
				t.Errorf("expected %d, got %d", tt.expectedCode, resp.StatusCode)
			}
			if tt.expectedCode == http.StatusOK {
				var result models.PredictionResult
				if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
					t.Fatal(err)
				}
				if result.PredictedPrice <= 0 {
					t.Errorf("expected positive price, got %v", result.PredictedPrice)
				}
				if result.LowerBound == nil || result.UpperBound == nil {
					t.Error("expected both bounds")
				}
			}
		})
	}
}

func TestPredict_AnonymousRecordsNothing(t *testing.T) {
	srv, store := newTestServer(t)

	resp := postJSON(t, srv.URL+"/predict",
		`{"bedrooms":"2","bathrooms":"1","propertyType":"apartment","dublinArea":"dublin-4"}`)
	resp.Body.Close()

	if items := store.History(1); len(items) != 0 {
		t.Errorf("anonymous prediction must not be recorded, got %d items", len(items))
	}
}

func TestPredict_AuthenticatedRecordsHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signupAndLogin(t, srv)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/predict",
		strings.NewReader(`{"propertyType":"house","dublinArea":"dublin-6","roomType":"double","isShared":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	histReq, _ := http.NewRequest(http.MethodGet, srv.URL+"/users/me/search-history", nil)
	histReq.Header.Set("Authorization", "Bearer "+token)
	histResp, err := http.DefaultClient.Do(histReq)
	if err != nil {
		t.Fatal(err)
	}
	defer histResp.Body.Close()

	var items []models.SearchHistoryItem
	if err := json.NewDecoder(histResp.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 history item, got %d", len(items))
	}
	if items[0].SearchParameters["roomType"] != "double" {
		t.Errorf("unexpected parameters %v", items[0].SearchParameters)
	}
	if _, present := items[0].SearchParameters["bedrooms"]; present {
		t.Error("sharing search must not record bedrooms")
	}
}

func TestModelInfo_Variants(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		query        string
		expectedType string
	}{
		{"", "property"},
		{"?model_type=property", "property"},
		{"?model_type=sharing", "sharing"},
		{"?model_type=bogus", "property"},
	}

	for _, tt := range tests {
		resp, err := http.Get(srv.URL + "/model-info" + tt.query)
		if err != nil {
			t.Fatal(err)
		}
		var info models.ModelInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if info.ModelType != tt.expectedType {
			t.Errorf("query %q: expected %q, got %q", tt.query, tt.expectedType, info.ModelType)
		}
	}
}

func TestHealthcheck(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthcheck")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var status models.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if !status.Healthy() || !status.BothModelsReady {
		t.Errorf("expected healthy status, got %+v", status)
	}
}
