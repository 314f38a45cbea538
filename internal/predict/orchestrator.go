// Package predict builds and dispatches rent-estimate requests. The two
// request shapes are mutually exclusive and validated at construction,
// before any network call is made.
package predict

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/conorls/dublinrent/internal/api"
	"github.com/conorls/dublinrent/internal/models"
)

// ErrSubmitInFlight is returned when Submit is called while a previous
// submission has not completed. The duplicate call makes no network
// request.
var ErrSubmitInFlight = errors.New("a prediction is already in flight")

// Fields holds the raw form values for either variant. Which fields are
// required depends on the active variant.
type Fields struct {
	Bedrooms     string
	Bathrooms    string
	PropertyType string
	DublinArea   string
	RoomType     string
}

// ValidationError reports form fields that are required by the active
// variant but empty. It is always raised before any network call.
type ValidationError struct {
	Missing []string
}

// Error lists the missing fields.
func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Request is a validated prediction request. It can only be built
// through BuildRequest, which guarantees exactly one variant is active
// and all of that variant's fields are populated.
type Request struct {
	variant models.Variant
	wire    api.PredictRequest
}

// Variant returns the shape this request was built for.
func (r Request) Variant() models.Variant { return r.variant }

// Wire returns the payload sent to the prediction service.
func (r Request) Wire() api.PredictRequest { return r.wire }

// BuildRequest validates fields against the variant's requirements and
// constructs the request. The inactive variant's fields are never
// carried: an entire-property request has no room type, a shared-room
// request has no bedroom or bathroom counts.
func BuildRequest(variant models.Variant, f Fields) (Request, error) {
	var missing []string
	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	switch variant {
	case models.VariantProperty:
		require("bedrooms", f.Bedrooms)
		require("bathrooms", f.Bathrooms)
		require("propertyType", f.PropertyType)
		require("dublinArea", f.DublinArea)
		if len(missing) > 0 {
			return Request{}, &ValidationError{Missing: missing}
		}
		return Request{
			variant: variant,
			wire: api.PredictRequest{
				Bedrooms:     f.Bedrooms,
				Bathrooms:    f.Bathrooms,
				PropertyType: f.PropertyType,
				DublinArea:   f.DublinArea,
				IsShared:     false,
			},
		}, nil

	case models.VariantSharing:
		require("propertyType", f.PropertyType)
		require("dublinArea", f.DublinArea)
		require("roomType", f.RoomType)
		if len(missing) > 0 {
			return Request{}, &ValidationError{Missing: missing}
		}
		return Request{
			variant: variant,
			wire: api.PredictRequest{
				PropertyType: f.PropertyType,
				DublinArea:   f.DublinArea,
				RoomType:     f.RoomType,
				IsShared:     true,
			},
		}, nil

	default:
		return Request{}, fmt.Errorf("unknown prediction variant %q", variant)
	}
}

// Predictor is the slice of the backend API the orchestrator needs.
type Predictor interface {
	Predict(ctx context.Context, pr api.PredictRequest) (models.PredictionResult, error)
}

// Orchestrator holds the active variant, its form fields and the result
// of the latest submission. At most one submission is in flight at a
// time; the guard is checked synchronously, before any suspension point.
type Orchestrator struct {
	client Predictor
	log    *zap.Logger

	mu         sync.Mutex
	variant    models.Variant
	fields     Fields
	submitting bool
	result     *models.PredictionResult
}

// NewOrchestrator returns an orchestrator with the entire-property
// variant active.
func NewOrchestrator(client Predictor, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		client:  client,
		log:     log,
		variant: models.VariantProperty,
	}
}

// Variant returns the active request variant.
func (o *Orchestrator) Variant() models.Variant {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.variant
}

// SetVariant switches the active variant. Switching clears all field
// values and the previous result so no stale cross-variant data is ever
// displayed.
func (o *Orchestrator) SetVariant(v models.Variant) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if v == o.variant {
		return
	}
	o.variant = v
	o.fields = Fields{}
	o.result = nil
}

// SetFields replaces the current form values.
func (o *Orchestrator) SetFields(f Fields) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fields = f
}

// Fields returns the current form values.
func (o *Orchestrator) Fields() Fields {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fields
}

// Result returns the latest prediction, or nil if none is held.
func (o *Orchestrator) Result() *models.PredictionResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.result == nil {
		return nil
	}
	r := *o.result
	return &r
}

// Submit validates the current fields, posts the request and records
// the result. Validation failures and a submission already in flight
// both return before any network call. Service failures surface as a
// generic error without detail extraction.
func (o *Orchestrator) Submit(ctx context.Context) (models.PredictionResult, error) {
	o.mu.Lock()
	if o.submitting {
		o.mu.Unlock()
		return models.PredictionResult{}, ErrSubmitInFlight
	}
	req, err := BuildRequest(o.variant, o.fields)
	if err != nil {
		o.mu.Unlock()
		return models.PredictionResult{}, err
	}
	o.submitting = true
	o.mu.Unlock()

	result, err := o.client.Predict(ctx, req.Wire())

	o.mu.Lock()
	o.submitting = false
	if err != nil {
		o.mu.Unlock()
		o.log.Warn("prediction failed", zap.String("variant", string(req.Variant())), zap.Error(err))
		return models.PredictionResult{}, fmt.Errorf("unable to get a price estimate: %w", err)
	}
	o.result = &result
	o.mu.Unlock()

	o.log.Info("prediction received",
		zap.String("variant", string(req.Variant())),
		zap.Float64("predicted_price", result.PredictedPrice),
	)
	return result, nil
}
