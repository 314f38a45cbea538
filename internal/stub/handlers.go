package stub

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/conorls/dublinrent/internal/api"
	"github.com/conorls/dublinrent/internal/middleware"
	"github.com/conorls/dublinrent/internal/models"
)

// Handler serves the stub endpoints.
type Handler struct {
	Store *Store
	Log   *zap.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail mirrors the real service's error shape.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// Login handles POST /login. The real service takes an OAuth2 password
// form, so the body is form-encoded, not JSON.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid form body")
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, ok := h.Store.Authenticate(email, password)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Signup handles POST /signup with a JSON body.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "invalid request")
		return
	}

	identity, err := h.Store.CreateUser(req.Email, req.Password)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// Me handles GET /users/me. RequireBearer has already resolved the
// identity.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// Predict handles POST /predict. Authenticated requests additionally
// record a history row, exactly like the real service.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req api.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.IsShared {
		if req.PropertyType == "" || req.DublinArea == "" || req.RoomType == "" {
			writeDetail(w, http.StatusBadRequest,
				"For shared properties, propertyType, dublinArea, and roomType are required")
			return
		}
	} else {
		if req.Bedrooms == "" || req.Bathrooms == "" || req.PropertyType == "" || req.DublinArea == "" {
			writeDetail(w, http.StatusBadRequest,
				"For whole properties, bedrooms, bathrooms, propertyType, and dublinArea are required")
			return
		}
	}

	result := estimate(req)

	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		params := map[string]any{
			"propertyType": req.PropertyType,
			"dublinArea":   req.DublinArea,
			"isShared":     req.IsShared,
		}
		if req.IsShared {
			params["roomType"] = req.RoomType
		} else {
			params["bedrooms"] = req.Bedrooms
			params["bathrooms"] = req.Bathrooms
		}
		h.Store.RecordSearch(identity.ID, params, result)
		h.Log.Debug("recorded search", zap.Int("user_id", identity.ID))
	}

	writeJSON(w, http.StatusOK, result)
}

// ModelInfo handles GET /model-info?model_type=property|sharing. An
// unknown model_type falls back to the property model, matching the
// real service.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	variant := models.VariantProperty
	if r.URL.Query().Get("model_type") == string(models.VariantSharing) {
		variant = models.VariantSharing
	}
	writeJSON(w, http.StatusOK, modelInfoFor(variant))
}

// Healthcheck handles GET /healthcheck.
func (h *Handler) Healthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthStatus())
}

// SearchHistory handles GET /users/me/search-history.
func (h *Handler) SearchHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, h.Store.History(identity.ID))
}
