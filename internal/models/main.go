// Package models defines the core data structures shared between the
// client components and the stub server.
package models

// Identity is the authenticated user as reported by the identity service.
// It is derived from the bearer credential on every process start and is
// never persisted locally.
type Identity struct {
	// ID is the unique identifier for the user.
	ID int `json:"id"`
	// Email is the address the user registered with.
	Email string `json:"email"`
}

// Variant selects one of the two mutually exclusive prediction request
// shapes: an entire property or a shared room.
type Variant string

const (
	// VariantProperty estimates rent for an entire property.
	VariantProperty Variant = "property"
	// VariantSharing estimates rent for a single room in a shared property.
	VariantSharing Variant = "sharing"
)

// PredictionResult holds the estimate returned for a single submission.
// It is ephemeral: each new submission replaces it entirely.
type PredictionResult struct {
	// PredictedPrice is the point estimate in euro per month.
	PredictedPrice float64 `json:"predictedPrice"`
	// LowerBound is the lower edge of the confidence interval, if provided.
	LowerBound *float64 `json:"lowerBound,omitempty"`
	// UpperBound is the upper edge of the confidence interval, if provided.
	UpperBound *float64 `json:"upperBound,omitempty"`
}

// SearchHistoryItem is one past estimate request recorded server-side for
// an authenticated user. Read-only from the client's perspective.
type SearchHistoryItem struct {
	ID               int               `json:"id"`
	UserID           int               `json:"user_id"`
	SearchParameters map[string]any    `json:"search_parameters"`
	PredictionResult *PredictionResult `json:"prediction_result"`
	// Timestamp is an ISO-8601 string; items are displayed newest first.
	Timestamp string `json:"timestamp"`
}

// ModelInfo is a per-variant snapshot of the trained model's statistics.
// A fetch for a variant fully replaces any previous snapshot; snapshots
// for different variants are never merged.
type ModelInfo struct {
	// FeatureImportances maps feature name to weight. Weights are
	// fractions of 1 summing to roughly 1 over the full feature set.
	FeatureImportances map[string]float64  `json:"feature_importances"`
	ModelType          string              `json:"model_type"`
	ModelName          string              `json:"model_name,omitempty"`
	Status             string              `json:"status"`
	ModelMetrics       map[string]any      `json:"model_metrics"`
	DataSummary        map[string]any      `json:"data_summary"`
	AvailableOptions   map[string][]string `json:"available_options"`
}

// HealthStatus is the readiness report of the prediction backend. Each
// poll replaces the previous value wholesale.
type HealthStatus struct {
	// Status is "healthy" when both models are ready; the service may also
	// report "not_ready" or "error".
	Status               string `json:"status"`
	PropertyModelTrained bool   `json:"property_model_trained"`
	SharedModelTrained   bool   `json:"shared_model_trained"`
	BothModelsReady      bool   `json:"both_models_ready"`
}

// Healthy reports whether the backend declared itself fully ready.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}
