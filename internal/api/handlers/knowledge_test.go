package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kraft-solutions/kraftchat/internal/domain"
	"github.com/kraft-solutions/kraftchat/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockKnowledgeService struct {
	mock.Mock
}

func (m *MockKnowledgeService) Create(ctx context.Context, input service.CreateEntryInput) (*domain.KnowledgeEntry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeEntry), args.Error(1)
}

func (m *MockKnowledgeService) GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeEntry), args.Error(1)
}

func (m *MockKnowledgeService) List(ctx context.Context) ([]*domain.KnowledgeEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeEntry), args.Error(1)
}

func (m *MockKnowledgeService) Update(ctx context.Context, id string, input service.CreateEntryInput) (*domain.KnowledgeEntry, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeEntry), args.Error(1)
}

func (m *MockKnowledgeService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func withEntryParam(req *http.Request, entryID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("entryID", entryID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func newTestEntry() *domain.KnowledgeEntry {
	now := time.Now().UTC()
	return &domain.KnowledgeEntry{
		ID:        "k-123",
		Title:     "Beiträge",
		Content:   "Der Beitrag ist 50 Euro.",
		Scope:     domain.ScopeMembers,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestKnowledgeHandler_Create_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(input service.CreateEntryInput) bool {
		return input.Title == "Beiträge" && input.Scope == "members"
	})).Return(newTestEntry(), nil)

	body := `{"title":"Beiträge","content":"Der Beitrag ist 50 Euro.","scope":"members"}`
	req := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "k-123", data["id"])
	assert.Equal(t, "members", data["scope"])
	mockSvc.AssertExpectations(t)
}

func TestKnowledgeHandler_Create_InvalidScope(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidScope)

	body := `{"title":"t","content":"c","scope":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrCodeValidation)
}

func TestKnowledgeHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("GetByID", mock.Anything, "gone").Return(nil, domain.ErrKnowledgeNotFound)

	req := withEntryParam(httptest.NewRequest(http.MethodGet, "/knowledge/gone", nil), "gone")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestKnowledgeHandler_List_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("List", mock.Anything).Return([]*domain.KnowledgeEntry{newTestEntry()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/knowledge", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	entries := data["entries"].([]interface{})
	assert.Len(t, entries, 1)
}

func TestKnowledgeHandler_Delete_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, "k-123").Return(nil)

	req := withEntryParam(httptest.NewRequest(http.MethodDelete, "/knowledge/k-123", nil), "k-123")
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deleted")
	mockSvc.AssertExpectations(t)
}
