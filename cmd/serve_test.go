package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/contract-intake/internal/config"
	"github.com/sells-group/contract-intake/pkg/servicecenter"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// stubLeadClient scripts CreateLead and LookupOrder outcomes.
type stubLeadClient struct {
	createErr   error
	lookupID    string
	lookupErr   error
	lookupCalls int
}

func (c *stubLeadClient) CreateLead(ctx context.Context, lead servicecenter.Lead) (string, error) {
	if c.createErr != nil {
		return "", c.createErr
	}
	return "ORDTEST123", nil
}

func (c *stubLeadClient) LookupOrder(ctx context.Context, orderNumber string) (string, bool, error) {
	c.lookupCalls++
	if c.lookupErr != nil {
		return "", false, c.lookupErr
	}
	if c.lookupID == "" {
		return "", false, nil
	}
	return c.lookupID, true, nil
}

func setTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{}
	cfg.ServiceCenter.ProgramGroup = "SF&I Water Treatment"
	cfg.ServiceCenter.AcquireMaxAttempts = 2
	cfg.ServiceCenter.AcquireMultiplier = 1.5
	// Sub-second delays keep handler tests fast.
	cfg.ServiceCenter.AcquireInitialSecs = 0
	cfg.ServiceCenter.AcquireMaxDelaySecs = 0
	t.Cleanup(func() { cfg = prev })
}

func leadBody() string {
	return `{
		"first_name": "Maria",
		"last_name": "Gonzalez",
		"phone": "555-123-4567",
		"address": "742 Evergreen Terrace",
		"city": "Springfield",
		"state": "IL",
		"zip": "62704",
		"store_id": "1234"
	}`
}

func postLead(t *testing.T, client servicecenter.Client, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/create-lead", strings.NewReader(body))
	rec := httptest.NewRecorder()
	createLeadHandler(client)(rec, req)
	return rec
}

func TestCreateLeadHandler_Success(t *testing.T) {
	setTestConfig(t)
	rec := postLead(t, &stubLeadClient{lookupID: "F54933529"}, leadBody())

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "F54933529", resp["service_center_id"])
	assert.Equal(t, "Maria Gonzalez", resp["customer_name"])
	assert.NotEmpty(t, resp["appointment_date"])
}

func TestCreateLeadHandler_MissingFields(t *testing.T) {
	setTestConfig(t)
	rec := postLead(t, &stubLeadClient{}, `{"first_name": "Maria"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "last_name")
	assert.Contains(t, resp["error"], "store_id")
}

func TestCreateLeadHandler_CreationFailure(t *testing.T) {
	setTestConfig(t)
	client := &stubLeadClient{createErr: &servicecenter.CreationError{Err: errors.New("rejected")}}
	rec := postLead(t, client, leadBody())

	require.Equal(t, http.StatusBadGateway, rec.Code)
	// Creation failures are terminal; no acquisition polling happens.
	assert.Zero(t, client.lookupCalls)
}

func TestCreateLeadHandler_AcquisitionExhausted(t *testing.T) {
	setTestConfig(t)
	rec := postLead(t, &stubLeadClient{}, leadBody())

	require.Equal(t, http.StatusGatewayTimeout, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "acquisition_exhausted", resp["error_kind"])
	assert.Equal(t, "ORDTEST123", resp["order_number"])
	// No placeholder ID is ever fabricated.
	_, hasID := resp["service_center_id"]
	assert.False(t, hasID)
}

func TestAppointmentFor_Defaults(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.Local)

	appt, err := appointmentFor(createLeadRequest{}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 13, 8, 0, 0, 0, time.Local), appt)
}

func TestAppointmentFor_ExplicitDateAndTime(t *testing.T) {
	appt, err := appointmentFor(createLeadRequest{
		AppointmentDate: "2026-05-01",
		AppointmentTime: "14:30",
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 14, 30, 0, 0, time.Local), appt)
}

func TestAppointmentFor_Invalid(t *testing.T) {
	_, err := appointmentFor(createLeadRequest{AppointmentDate: "05/01/2026"}, time.Now())
	assert.Error(t, err)

	_, err = appointmentFor(createLeadRequest{AppointmentTime: "2pm"}, time.Now())
	assert.Error(t, err)
}
