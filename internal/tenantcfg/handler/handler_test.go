package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"complia/internal/registry"
	"complia/internal/tenantcfg"
)

type ConfigHandlerSuite struct {
	suite.Suite
	router   chi.Router
	tenantID string
}

func TestConfigHandlerSuite(t *testing.T) {
	suite.Run(t, new(ConfigHandlerSuite))
}

func (s *ConfigHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := tenantcfg.NewService(tenantcfg.NewInMemory(), registry.NewBuiltin(), logger)

	s.router = chi.NewRouter()
	NewHandler(service, logger).Register(s.router)
	s.tenantID = uuid.NewString()
}

func (s *ConfigHandlerSuite) putConfig(tenantID string, body any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPut, "/tenants/"+tenantID+"/config", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ConfigHandlerSuite) getConfig(tenantID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/tenants/"+tenantID+"/config", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ConfigHandlerSuite) TestPutAndGetConfig() {
	rec := s.putConfig(s.tenantID, map[string]any{"sectors": []string{"HEALTHCARE", "FINANCIAL"}})
	s.Require().Equal(http.StatusOK, rec.Code)

	var created ConfigResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal(s.tenantID, created.TenantID)
	s.Equal([]string{"HEALTHCARE", "FINANCIAL"}, created.Sectors)

	rec = s.getConfig(s.tenantID)
	s.Require().Equal(http.StatusOK, rec.Code)

	var fetched ConfigResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &fetched))
	s.Equal(created, fetched)
}

func (s *ConfigHandlerSuite) TestPutReplacesSectorSet() {
	rec := s.putConfig(s.tenantID, map[string]any{"sectors": []string{"HEALTHCARE", "FINANCIAL"}})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.putConfig(s.tenantID, map[string]any{"sectors": []string{"GOVERNMENT"}})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.getConfig(s.tenantID)
	s.Require().Equal(http.StatusOK, rec.Code)

	var fetched ConfigResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &fetched))
	s.Equal([]string{"GOVERNMENT"}, fetched.Sectors)
}

func (s *ConfigHandlerSuite) TestGetUnknownTenant() {
	rec := s.getConfig(uuid.NewString())
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ConfigHandlerSuite) TestRejectsBadInput() {
	tests := []struct {
		name     string
		tenantID string
		body     any
		want     int
	}{
		{
			name:     "malformed tenant id",
			tenantID: "not-a-uuid",
			body:     map[string]any{"sectors": []string{"HEALTHCARE"}},
			want:     http.StatusBadRequest,
		},
		{
			name:     "empty sector set",
			tenantID: s.tenantID,
			body:     map[string]any{"sectors": []string{}},
			want:     http.StatusUnprocessableEntity,
		},
		{
			name:     "unknown sector",
			tenantID: s.tenantID,
			body:     map[string]any{"sectors": []string{"AGRICULTURE"}},
			want:     http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, s.putConfig(tt.tenantID, tt.body).Code)
		})
	}
}
