// internal/handlers/products_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/handlers"
	"github.com/anvikram/stocktrack-be/test/helpers"
	"github.com/anvikram/stocktrack-be/test/mocks"
)

type productMocks struct {
	products *mocks.MockProductRepository
	photos   *mocks.MockPhotoStore
	tracker  *mocks.MockReferenceTracker
}

func newProductHandler(t *testing.T) (*handlers.ProductHandler, productMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := productMocks{
		products: mocks.NewMockProductRepository(ctrl),
		photos:   mocks.NewMockPhotoStore(ctrl),
		tracker:  mocks.NewMockReferenceTracker(ctrl),
	}
	handler := handlers.NewProductHandler(m.products, m.photos, m.tracker, helpers.TestLogger())
	return handler, m
}

func TestProductHandler_CreateProduct(t *testing.T) {
	t.Run("creates_product_with_image", func(t *testing.T) {
		handler, m := newProductHandler(t)

		m.photos.EXPECT().
			Persist(gomock.Any(), domain.CategoryProduct, "8901234567890", gomock.Any()).
			Return("product_photos/8901234567890.jpg", nil)
		m.products.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ interface{}, p *domain.Product) error {
				assert.Equal(t, "product_photos/8901234567890.jpg", p.ImagePath)
				return nil
			})

		body := `{"barcode":"8901234567890","name":"Soap Bar","mrp":"45.00","quantity":10,"image":"data:image/jpeg;base64,/9j/4AAQ"}`
		req := httptest.NewRequest("POST", "/api/v1/products", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.CreateProduct(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response domain.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "8901234567890", response.Barcode)
	})

	t.Run("discards_persisted_image_when_save_fails", func(t *testing.T) {
		handler, m := newProductHandler(t)

		m.photos.EXPECT().
			Persist(gomock.Any(), domain.CategoryProduct, "8901234567890", gomock.Any()).
			Return("product_photos/8901234567890.jpg", nil)
		m.products.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("%w: barcode already exists", domain.ErrConflict))
		m.photos.EXPECT().
			Remove(gomock.Any(), "product_photos/8901234567890.jpg").
			Return(nil)

		body := `{"barcode":"8901234567890","name":"Soap Bar","mrp":"45.00","quantity":10,"image":"data:image/jpeg;base64,/9j/4AAQ"}`
		req := httptest.NewRequest("POST", "/api/v1/products", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.CreateProduct(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("rejects_invalid_product", func(t *testing.T) {
		handler, _ := newProductHandler(t)

		body := `{"barcode":"","name":"","mrp":"0","quantity":0}`
		req := httptest.NewRequest("POST", "/api/v1/products", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.CreateProduct(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProductHandler_GetProduct(t *testing.T) {
	t.Run("returns_product", func(t *testing.T) {
		handler, m := newProductHandler(t)

		product := helpers.CreateTestProduct()
		m.products.EXPECT().
			FindByBarcode(gomock.Any(), product.Barcode).
			Return(product, nil)

		req := httptest.NewRequest("GET", "/api/v1/products/"+product.Barcode, nil)
		req.SetPathValue("barcode", product.Barcode)
		w := httptest.NewRecorder()

		handler.GetProduct(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		handler, m := newProductHandler(t)

		m.products.EXPECT().
			FindByBarcode(gomock.Any(), "0000000000000").
			Return(nil, fmt.Errorf("%w: product", domain.ErrNotFound))

		req := httptest.NewRequest("GET", "/api/v1/products/0000000000000", nil)
		req.SetPathValue("barcode", "0000000000000")
		w := httptest.NewRecorder()

		handler.GetProduct(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProductHandler_UpdateProduct(t *testing.T) {
	t.Run("quantity_is_never_writable", func(t *testing.T) {
		handler, m := newProductHandler(t)

		existing := helpers.CreateTestProduct()
		m.products.EXPECT().
			FindByBarcode(gomock.Any(), existing.Barcode).
			Return(existing, nil)
		m.products.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ interface{}, p *domain.Product) error {
				assert.Equal(t, "Renamed Soap", p.Name)
				assert.Equal(t, 10, p.Quantity)
				return nil
			})

		body := `{"name":"Renamed Soap","quantity":999}`
		req := httptest.NewRequest("PUT", "/api/v1/products/"+existing.Barcode, bytes.NewBufferString(body))
		req.SetPathValue("barcode", existing.Barcode)
		w := httptest.NewRecorder()

		handler.UpdateProduct(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("replaced_image_is_safe_deleted", func(t *testing.T) {
		handler, m := newProductHandler(t)

		existing := helpers.CreateTestProduct(func(p *domain.Product) {
			p.ImagePath = "product_photos/old.jpg"
		})
		m.products.EXPECT().
			FindByBarcode(gomock.Any(), existing.Barcode).
			Return(existing, nil)
		m.photos.EXPECT().
			Persist(gomock.Any(), domain.CategoryProduct, existing.Barcode, gomock.Any()).
			Return("product_photos/new.jpg", nil)
		m.products.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			Return(nil)
		m.tracker.EXPECT().
			SafeDelete(gomock.Any(), "product_photos/old.jpg", uuid.Nil).
			Return(true, nil)

		body := `{"image":"data:image/jpeg;base64,/9j/4AAQ"}`
		req := httptest.NewRequest("PUT", "/api/v1/products/"+existing.Barcode, bytes.NewBufferString(body))
		req.SetPathValue("barcode", existing.Barcode)
		w := httptest.NewRecorder()

		handler.UpdateProduct(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestProductHandler_DeleteProduct(t *testing.T) {
	handler, m := newProductHandler(t)

	existing := helpers.CreateTestProduct(func(p *domain.Product) {
		p.ImagePath = "product_photos/8901234567890.jpg"
	})
	m.products.EXPECT().
		FindByBarcode(gomock.Any(), existing.Barcode).
		Return(existing, nil)
	m.products.EXPECT().
		Delete(gomock.Any(), existing.Barcode).
		Return(nil)
	m.tracker.EXPECT().
		SafeDelete(gomock.Any(), existing.ImagePath, uuid.Nil).
		Return(true, nil)

	req := httptest.NewRequest("DELETE", "/api/v1/products/"+existing.Barcode, nil)
	req.SetPathValue("barcode", existing.Barcode)
	w := httptest.NewRecorder()

	handler.DeleteProduct(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProductHandler_ListProducts(t *testing.T) {
	handler, m := newProductHandler(t)

	m.products.EXPECT().
		List(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("database connection failed"))

	req := httptest.NewRequest("GET", "/api/v1/products", nil)
	w := httptest.NewRecorder()

	handler.ListProducts(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
