package worker_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"brokerage/src/models"
	"brokerage/src/services"
	"brokerage/src/utils"
	"brokerage/src/worker"
	"brokerage/src/worker/controllers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditService struct {
	runs       atomic.Int32
	violations []models.InvariantViolation
	err        error
}

func (f *fakeAuditService) Run(context.Context) ([]models.InvariantViolation, error) {
	f.runs.Add(1)
	return f.violations, f.err
}

func newWorker(t *testing.T, audit *fakeAuditService) (*httptest.Server, *controllers.Controller) {
	t.Helper()
	controller := controllers.NewController(audit, utils.NewLogger("error", io.Discard))
	t.Cleanup(controller.StopAll)
	ts := httptest.NewServer(worker.NewServer(controller))
	t.Cleanup(ts.Close)
	return ts, controller
}

func TestRunAudit(t *testing.T) {
	audit := &fakeAuditService{violations: []models.InvariantViolation{
		{Check: "conservation_drift", SubjectID: 4, Detail: "available_count=1 held=0 issued_count=2"},
	}}
	ts, _ := newWorker(t, audit)

	res, err := http.Post(ts.URL+"/api/audit/run", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Violations []models.InvariantViolation `json:"violations"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body.Violations, 1)
	assert.Equal(t, "conservation_drift", body.Violations[0].Check)

	audit.err = fmt.Errorf("%w: %w", services.ErrStorage, errors.New("down"))
	res2, err := http.Post(ts.URL+"/api/audit/run", "application/json", nil)
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res2.StatusCode)
}

func TestScheduleAudit(t *testing.T) {
	audit := &fakeAuditService{}
	ts, controller := newWorker(t, audit)

	res, err := http.Post(ts.URL+"/api/audit/schedule", "application/json", bytes.NewBufferString(`{"cron_spec": "@every 1s"}`))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, controller.GetSchedulers(), controllers.AuditJob)

	require.Eventually(t, func() bool { return audit.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	// Rescheduling replaces the job rather than adding a second one.
	_, err = controller.ScheduleAudit("@every 1h")
	require.NoError(t, err)
	assert.Len(t, controller.GetSchedulers(), 1)

	res, err = http.Post(ts.URL+"/api/audit/schedule", "application/json", bytes.NewBufferString(`{"cron_spec": "nope"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = http.Get(ts.URL + "/alive")
	require.NoError(t, err)
	defer res.Body.Close()
	var health struct {
		Jobs map[string]time.Time `json:"jobs"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&health))
	assert.Contains(t, health.Jobs, controllers.AuditJob)
}
