package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/storefront-backend/internal/cart"
	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/router"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/storage"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type envelope struct {
	Success bool                   `json:"success"`
	Data    json.RawMessage        `json:"data"`
	Error   *utils.APIError        `json:"error"`
	Meta    map[string]interface{} `json:"meta"`
}

type stubOrders struct {
	err   error
	calls int
}

func (s *stubOrders) SubmitOrder(_ context.Context, items []models.OrderItem) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "Order created", nil
}

type CartAPITestSuite struct {
	suite.Suite
	slot   *storage.MemorySlot
	orders *stubOrders
	router *gin.Engine
}

func (suite *CartAPITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(i18n.Initialize("en"))
}

func (suite *CartAPITestSuite) SetupTest() {
	suite.slot = storage.NewMemorySlot()
	suite.orders = &stubOrders{}
	suite.router = suite.buildRouter()
}

func (suite *CartAPITestSuite) buildRouter() *gin.Engine {
	cfg := &config.Config{
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		I18n:      config.I18nConfig{DefaultLocale: "en"},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	catalog := services.NewStaticCatalog(
		models.Product{
			ID:      "tshirt",
			Name:    "T-Shirt",
			Prices:  []models.Price{{Amount: 20}},
			Gallery: []string{"https://cdn.example.com/tshirt.jpg"},
			Attributes: []models.AttributeSet{
				{Name: "Size", Items: []models.Option{{Value: "S"}, {Value: "M"}, {Value: "L"}}},
			},
		},
		models.Product{
			ID:       "imac",
			Name:     "iMac",
			Category: "tech",
			Prices:   []models.Price{{Amount: 1000}},
			Attributes: []models.AttributeSet{
				{Name: "Capacity", Items: []models.Option{{Value: "256GB"}, {Value: "512GB"}}},
				{Name: "Color", Items: []models.Option{{ID: "Green", Value: "#44FF03", DisplayValue: "Green"}}},
			},
		},
	)

	store := cart.NewStore(suite.slot)
	overlay := cart.NewOverlay(suite.slot)
	products := services.NewProductService(catalog)

	r, stop := router.Initialize(router.Services{
		Cart:     services.NewCartService(store, overlay, products, true),
		Checkout: services.NewCheckoutService(store, overlay, suite.orders, time.Second),
		Products: products,
	}, cfg)
	suite.T().Cleanup(stop)
	return r
}

func (suite *CartAPITestSuite) do(method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		suite.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	// unrouted paths answer with plain text
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func itemPath(key, action string) string {
	return "/v1/cart/items/" + url.PathEscape(key) + "/" + action
}

func (suite *CartAPITestSuite) addTShirt(size string) models.LineItem {
	w, env := suite.do(http.MethodPost, "/v1/cart/items", gin.H{
		"product_id":          "tshirt",
		"selected_attributes": gin.H{"Size": size},
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Item models.LineItem `json:"item"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &data))
	return data.Item
}

func (suite *CartAPITestSuite) state() cart.State {
	w, env := suite.do(http.MethodGet, "/v1/cart", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var st cart.State
	suite.Require().NoError(json.Unmarshal(env.Data, &st))
	return st
}

func (suite *CartAPITestSuite) TestHealth() {
	w, _ := suite.do(http.MethodGet, "/health", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "healthy")
	assert.Contains(suite.T(), w.Body.String(), `"languages":["en","zh_TW"]`)
	assert.NotEmpty(suite.T(), w.Header().Get("X-Request-ID"))
}

func (suite *CartAPITestSuite) TestEmptyCart() {
	st := suite.state()
	assert.Empty(suite.T(), st.Items)
	assert.False(suite.T(), st.OverlayVisible)
	assert.Equal(suite.T(), cart.Totals{}, st.Totals)
}

func (suite *CartAPITestSuite) TestAddMergesEquivalentSelections() {
	first := suite.addTShirt("M")
	assert.Equal(suite.T(), `tshirt::[["size","m"]]`, first.ItemKey)
	assert.Equal(suite.T(), "T-Shirt", first.Name)
	assert.Equal(suite.T(), "https://cdn.example.com/tshirt.jpg", first.Image)

	second := suite.addTShirt(" m ")
	assert.Equal(suite.T(), first.ItemKey, second.ItemKey)
	assert.Equal(suite.T(), 2, second.Quantity)

	suite.addTShirt("L")
	st := suite.state()
	suite.Require().Len(st.Items, 2)
	assert.Equal(suite.T(), cart.Totals{Quantity: 3, Amount: 60}, st.Totals)
}

func (suite *CartAPITestSuite) TestAddInlineProduct() {
	w, env := suite.do(http.MethodPost, "/v1/cart/items", `{
		"product": {"id": 99, "name": "Legacy Mug", "price": 7.5, "image": "/img/mug.jpg"}
	}`)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Item    models.LineItem `json:"item"`
		Message string          `json:"message"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &data))
	assert.Equal(suite.T(), "99", data.Item.ProductID)
	assert.Equal(suite.T(), 7.5, data.Item.Price)
	assert.Equal(suite.T(), "/img/mug.jpg", data.Item.Image)
	assert.Equal(suite.T(), "Added to cart", data.Message)
}

func (suite *CartAPITestSuite) TestAddRequiresAttributes() {
	w, env := suite.do(http.MethodPost, "/v1/cart/items", gin.H{
		"product_id":          "imac",
		"selected_attributes": gin.H{"Color": gin.H{"id": "Green"}},
	})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
	suite.Require().NotNil(env.Error)
	assert.Equal(suite.T(), "MISSING_ATTRIBUTES", env.Error.Code)
	assert.Equal(suite.T(), "Please select: Capacity", env.Error.Message)
	assert.Empty(suite.T(), suite.state().Items)
}

func (suite *CartAPITestSuite) TestAddErrors() {
	w, env := suite.do(http.MethodPost, "/v1/cart/items", gin.H{"product_id": "ghost"})
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "Product not found", env.Error.Message)

	w, env = suite.do(http.MethodPost, "/v1/cart/items", gin.H{})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", env.Error.Code)

	w, env = suite.do(http.MethodPost, "/v1/cart/items", "{broken")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "BAD_REQUEST", env.Error.Code)
}

func (suite *CartAPITestSuite) TestIncrementDecrement() {
	item := suite.addTShirt("M")

	w, _ := suite.do(http.MethodPost, itemPath(item.ItemKey, "increment"), nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	assert.Equal(suite.T(), 2, suite.state().Items[0].Quantity)

	w, _ = suite.do(http.MethodPost, itemPath(item.ItemKey, "decrement"), nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w, env := suite.do(http.MethodPost, itemPath(item.ItemKey, "decrement"), nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var data struct {
		Removed bool `json:"removed"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &data))
	assert.True(suite.T(), data.Removed)
	assert.Empty(suite.T(), suite.state().Items)

	w, env = suite.do(http.MethodPost, itemPath(item.ItemKey, "increment"), nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "Cart item not found", env.Error.Message)
}

func (suite *CartAPITestSuite) TestKeyWithSlash() {
	w, env := suite.do(http.MethodPost, "/v1/cart/items", gin.H{
		"product":             gin.H{"id": "fabric", "name": "Fabric"},
		"selected_attributes": gin.H{"Length": "1/2 yard"},
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var data struct {
		Item models.LineItem `json:"item"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &data))

	w, _ = suite.do(http.MethodPost, itemPath(data.Item.ItemKey, "increment"), nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), 2, suite.state().Items[0].Quantity)
}

func (suite *CartAPITestSuite) TestProductIDFallback() {
	suite.addTShirt("S")

	w, _ := suite.do(http.MethodPost, itemPath("tshirt", "increment"), nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Equal(suite.T(), 2, suite.state().Items[0].Quantity)
}

func (suite *CartAPITestSuite) TestUpdateAttributeMergesCollidingLines() {
	medium := suite.addTShirt("M")
	suite.addTShirt("M")
	large := suite.addTShirt("L")

	w, env := suite.do(http.MethodPut, itemPath(large.ItemKey, "attributes"), gin.H{"name": "size", "value": "M"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	assert.Equal(suite.T(), "Cart updated", env.Meta["message"])

	st := suite.state()
	suite.Require().Len(st.Items, 1)
	assert.Equal(suite.T(), medium.ItemKey, st.Items[0].ItemKey)
	assert.Equal(suite.T(), 3, st.Items[0].Quantity)
}

func (suite *CartAPITestSuite) TestUpdateAttributeValidation() {
	item := suite.addTShirt("M")

	w, env := suite.do(http.MethodPut, itemPath(item.ItemKey, "attributes"), gin.H{"name": " ", "value": "L"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", env.Error.Code)

	w, _ = suite.do(http.MethodPut, itemPath("missing", "attributes"), gin.H{"name": "Size", "value": "L"})
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *CartAPITestSuite) TestClear() {
	suite.addTShirt("M")
	suite.addTShirt("L")

	w, _ := suite.do(http.MethodDelete, "/v1/cart", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Empty(suite.T(), suite.state().Items)

	data, err := suite.slot.Load(context.Background(), cart.DefaultCartKey)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "[]", string(data))
}

func (suite *CartAPITestSuite) TestOverlay() {
	w, env := suite.do(http.MethodPost, "/v1/cart/overlay/toggle", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"visible": true}`, string(env.Data))

	w, env = suite.do(http.MethodPut, "/v1/cart/overlay", gin.H{"visible": false})
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"visible": false}`, string(env.Data))

	w, _ = suite.do(http.MethodPut, "/v1/cart/overlay", gin.H{})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	suite.do(http.MethodPut, "/v1/cart/overlay", gin.H{"visible": true})
	suite.addTShirt("M")
	suite.do(http.MethodDelete, "/v1/cart", nil)

	w, env = suite.do(http.MethodGet, "/v1/cart/overlay", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"visible": true}`, string(env.Data))
}

func (suite *CartAPITestSuite) TestOrderPayload() {
	suite.addTShirt("M")
	suite.addTShirt("M")
	suite.addTShirt("L")

	w, env := suite.do(http.MethodGet, "/v1/cart/order-payload", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"items": [
		{"product_id": "tshirt", "quantity": 2},
		{"product_id": "tshirt", "quantity": 1}
	]}`, string(env.Data))
}

func (suite *CartAPITestSuite) TestCheckoutSuccess() {
	suite.addTShirt("M")
	suite.do(http.MethodPost, "/v1/cart/overlay/toggle", nil)

	w, env := suite.do(http.MethodPost, "/v1/checkout", gin.H{"name": "Ana", "address": "1 Main St"},
		"Accept-Language", "zh-TW")
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(suite.T(), "訂單已成功送出！", env.Meta["message"])

	st := suite.state()
	assert.Empty(suite.T(), st.Items)
	assert.False(suite.T(), st.OverlayVisible)
	assert.Equal(suite.T(), 1, suite.orders.calls)
}

func (suite *CartAPITestSuite) TestCheckoutFailureKeepsCart() {
	suite.addTShirt("M")
	suite.orders.err = errors.New("endpoint down")

	w, env := suite.do(http.MethodPost, "/v1/checkout", gin.H{"name": "Ana", "address": "1 Main St"})
	assert.Equal(suite.T(), http.StatusBadGateway, w.Code)
	assert.Equal(suite.T(), "Failed to place order. Please try again.", env.Error.Message)
	assert.Len(suite.T(), suite.state().Items, 1)
}

func (suite *CartAPITestSuite) TestCheckoutRejectsIncompleteForm() {
	suite.addTShirt("M")

	w, env := suite.do(http.MethodPost, "/v1/checkout", gin.H{"name": "Ana", "address": "   "})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(suite.T(), 0, suite.orders.calls)
}

func (suite *CartAPITestSuite) TestCheckoutEmptyCart() {
	w, env := suite.do(http.MethodPost, "/v1/checkout", gin.H{"name": "Ana", "address": "1 Main St"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "EMPTY_CART", env.Error.Code)
}

func (suite *CartAPITestSuite) TestGetProduct() {
	w, env := suite.do(http.MethodGet, "/v1/products/imac", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var data struct {
		Product            models.Product `json:"product"`
		RequiredAttributes []string       `json:"required_attributes"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &data))
	assert.Equal(suite.T(), "iMac", data.Product.Name)
	assert.Equal(suite.T(), []string{"Capacity", "Color"}, data.RequiredAttributes)

	w, _ = suite.do(http.MethodGet, "/v1/products/ghost", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *CartAPITestSuite) TestStateSurvivesRestart() {
	suite.addTShirt("M")
	suite.addTShirt("M")
	suite.do(http.MethodPost, "/v1/cart/overlay/toggle", nil)
	before := suite.state()

	suite.router = suite.buildRouter()
	after := suite.state()

	assert.Equal(suite.T(), before, after)
}

func TestCartAPISuite(t *testing.T) {
	suite.Run(t, new(CartAPITestSuite))
}

func TestRateLimitedCheckout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, i18n.Initialize("en"))

	slot := storage.NewMemorySlot()
	store := cart.NewStore(slot)
	overlay := cart.NewOverlay(slot)
	products := services.NewProductService(services.NewStaticCatalog())

	r, stop := router.Initialize(router.Services{
		Cart:     services.NewCartService(store, overlay, products, true),
		Checkout: services.NewCheckoutService(store, overlay, &stubOrders{}, time.Second),
		Products: products,
	}, &config.Config{
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerSecond: 100, Burst: 100, CheckoutPerMinute: 1},
	})
	defer stop()

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/checkout", bytes.NewReader([]byte(`{"name":"Ana","address":"x"}`)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}

func TestRequestIDReachesCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, i18n.Initialize("en"))

	seen := make(chan string, 1)
	catalogServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"product": {"id": "ps-5", "name": "PlayStation 5", "prices": [{"amount": 844.02}]}}}`))
	}))
	defer catalogServer.Close()

	slot := storage.NewMemorySlot()
	store := cart.NewStore(slot)
	overlay := cart.NewOverlay(slot)
	products := services.NewProductService(services.NewGraphQLCatalog(services.NewGraphQLClient(catalogServer.URL, time.Second)))

	r, stop := router.Initialize(router.Services{
		Cart:     services.NewCartService(store, overlay, products, true),
		Checkout: services.NewCheckoutService(store, overlay, &stubOrders{}, time.Second),
		Products: products,
	}, &config.Config{I18n: config.I18nConfig{DefaultLocale: "en"}})
	defer stop()

	const requestID = "0b7a3c1e-8f2d-4e5a-9c6b-7d1e2f3a4b5c"
	req := httptest.NewRequest(http.MethodGet, "/v1/products/ps-5", nil)
	req.Header.Set("X-Request-ID", requestID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, requestID, <-seen)
	assert.Equal(t, requestID, w.Header().Get("X-Request-ID"))
}
