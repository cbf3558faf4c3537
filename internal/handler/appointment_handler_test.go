package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-agenda-api/internal/dto"
	"github.com/noah-isme/clinic-agenda-api/internal/models"
	appErrors "github.com/noah-isme/clinic-agenda-api/pkg/errors"
)

type fakeAppointmentSrv struct {
	items     []models.Appointment
	appt      *models.Appointment
	err       error
	lastQuery dto.AppointmentListQuery
	lastReq   dto.AppointmentRequest
	lastID    string
	deleted   string
}

func (f *fakeAppointmentSrv) List(_ context.Context, q dto.AppointmentListQuery) ([]models.Appointment, *models.Pagination, error) {
	f.lastQuery = q
	return f.items, &models.Pagination{Page: 1, PageSize: 50, TotalCount: len(f.items)}, f.err
}

func (f *fakeAppointmentSrv) Get(_ context.Context, id string) (*models.Appointment, error) {
	f.lastID = id
	return f.appt, f.err
}

func (f *fakeAppointmentSrv) Create(_ context.Context, req dto.AppointmentRequest) (*models.Appointment, error) {
	f.lastReq = req
	return f.appt, f.err
}

func (f *fakeAppointmentSrv) Update(_ context.Context, id string, req dto.AppointmentRequest) (*models.Appointment, error) {
	f.lastID, f.lastReq = id, req
	return f.appt, f.err
}

func (f *fakeAppointmentSrv) UpdateStatus(_ context.Context, id string, _ dto.AppointmentStatusRequest) (*models.Appointment, error) {
	f.lastID = id
	return f.appt, f.err
}

func (f *fakeAppointmentSrv) Delete(_ context.Context, id string) error {
	f.deleted = id
	return f.err
}

func TestAppointmentHandlerListScopesProfessional(t *testing.T) {
	srv := &fakeAppointmentSrv{items: []models.Appointment{{ID: "a-1"}}}
	h := NewAppointmentHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/appointments?date_from=2025-03-01&page=2", nil)
	asProfessional(c, "pro-1")

	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pro-1", srv.lastQuery.ProfessionalID)
	assert.Equal(t, "2025-03-01", srv.lastQuery.DateFrom)
	assert.Equal(t, 2, srv.lastQuery.Page)
	var body struct {
		Data       []map[string]interface{} `json:"data"`
		Pagination map[string]interface{}   `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.NotNil(t, body.Pagination)
}

func TestAppointmentHandlerGetHidesOtherProfessionals(t *testing.T) {
	srv := &fakeAppointmentSrv{appt: &models.Appointment{ID: "a-1", ProfessionalID: "pro-2"}}
	h := NewAppointmentHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/appointments/a-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}
	asProfessional(c, "pro-1")

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppointmentHandlerCreate(t *testing.T) {
	srv := &fakeAppointmentSrv{appt: &models.Appointment{ID: "a-1", Status: models.AppointmentPending}}
	h := NewAppointmentHandler(srv)
	payload := `{"unit_id":"u-1","professional_id":"p-1","patient_name":"Ana","date":"2025-03-10","start_time":"09:00","duration_minutes":30}`
	c, rec := newTestContext(http.MethodPost, "/appointments", []byte(payload))

	h.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ana", srv.lastReq.PatientName)
	assert.Equal(t, 30, srv.lastReq.DurationMinutes)
}

func TestAppointmentHandlerCreateRejectsMalformedJSON(t *testing.T) {
	h := NewAppointmentHandler(&fakeAppointmentSrv{})
	c, rec := newTestContext(http.MethodPost, "/appointments", []byte(`{"duration_minutes":"thirty"}`))

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAppointmentHandlerUpdateStatusNotFound(t *testing.T) {
	srv := &fakeAppointmentSrv{err: appErrors.Clone(appErrors.ErrNotFound, "appointment not found")}
	h := NewAppointmentHandler(srv)
	c, rec := newTestContext(http.MethodPatch, "/appointments/a-9/status", []byte(`{"status":"CANCELLED"}`))
	c.Params = gin.Params{{Key: "id", Value: "a-9"}}

	h.UpdateStatus(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "a-9", srv.lastID)
}

func TestAppointmentHandlerDelete(t *testing.T) {
	srv := &fakeAppointmentSrv{}
	h := NewAppointmentHandler(srv)
	c, _ := newTestContext(http.MethodDelete, "/appointments/a-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}

	h.Delete(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "a-1", srv.deleted)
}
