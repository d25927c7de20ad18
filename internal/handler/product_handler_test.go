package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"optika/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func TestProductHandler_GetAll(t *testing.T) {
	logger := zerolog.Nop()

	testProducts := []model.Product{
		{ID: 1, Name: "Ray-Ban Aviator", Price: 500, Quantity: 10, Category: "frames", CreatedAt: time.Now()},
		{ID: 2, Name: "Progressive Lenses", Price: 1500, Quantity: 4, Category: "lenses", CreatedAt: time.Now()},
	}

	tests := []struct {
		name           string
		method         string
		queryParams    string
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success with default pagination",
			method:         http.MethodGet,
			queryParams:    "",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Success with custom pagination",
			method:         http.MethodGet,
			queryParams:    "?limit=5&offset=10",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Service error",
			method:         http.MethodGet,
			queryParams:    "",
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodPost,
			queryParams:    "",
			expectedStatus: http.StatusMethodNotAllowed,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			h := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("GetAll", mock.Anything, mock.AnythingOfType("int"), mock.AnythingOfType("int")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(tt.method, "/api/products"+tt.queryParams, nil)
			rec := httptest.NewRecorder()

			h.GetAll(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var products []model.Product
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
				assert.Len(t, products, 2)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		path           string
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			path:           "/api/products/1",
			mockReturn:     &model.Product{ID: 1, Name: "Ray-Ban Aviator", Price: 500, Quantity: 10},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Invalid id",
			path:           "/api/products/abc",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Not found",
			path:           "/api/products/99",
			mockError:      model.NewProductNotFound(99),
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			h := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("GetByID", mock.Anything, mock.AnythingOfType("int64")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			h.GetByID(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}
