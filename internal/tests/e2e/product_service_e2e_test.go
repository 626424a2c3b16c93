// Package e2e provides end-to-end tests for the inventory service.
// The suite runs the real HTTP handler, service and in-memory store in an `httptest.Server`
// and uses `testify/suite` for lifecycle management (`SetupSuite`, `SetupTest`, `TearDownTest`).
//
// Key features of the test suite:
//   - Every test gets a fresh store and server, so cases never see each other's products.
//   - Table-driven tests cover the API endpoints (GET, POST, PUT, DELETE).
//   - Test coverage includes:
//   - Happy path CRUD operations in insertion order.
//   - Input validation with per-field messages and numeric strings coerced like form input.
//   - Case-insensitive search over name and type.
//   - Zero quantity shown as "Out of stock".
//   - Idempotent delete.
//   - The change feed observed through a store listener.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"

	"github.com/abgdnv/inventory/internal/product/app"
	"github.com/abgdnv/inventory/internal/product/service"
	"github.com/abgdnv/inventory/internal/product/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/metric/noop"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "INVENTORY_SKIP_E2E_TESTS"

// productURL is the base URL for the inventory API.
const productURL = "/api/v1/products"

// InventoryE2ESuite is a test suite for end-to-end tests of the inventory service.
type InventoryE2ESuite struct {
	suite.Suite
	server     *httptest.Server // HTTP server for the inventory application
	httpClient *http.Client     // HTTP client for making requests to the server
	logger     *slog.Logger
	ctx        context.Context

	mu      sync.Mutex
	changes []store.Change // changes observed by a listener on the store
}

// SetupSuite initializes the logger and the context shared by all tests.
func (s *InventoryE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// SetupTest wires a fresh application with an empty store for each test.
func (s *InventoryE2ESuite) SetupTest() {
	productStore := store.NewInMemoryStore()
	s.mu.Lock()
	s.changes = nil
	s.mu.Unlock()
	productStore.Subscribe(func(c store.Change) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.changes = append(s.changes, c)
	})

	deps, err := app.SetupDependencies(productStore, noop.NewMeterProvider().Meter("e2e"), s.logger)
	require.NoError(s.T(), err, "Failed to setup application for E2E")

	s.server = httptest.NewServer(app.SetupHttpHandler(deps))
	s.httpClient = s.server.Client()
}

// TearDownTest closes the server started for the test.
func (s *InventoryE2ESuite) TearDownTest() {
	if s.server != nil {
		s.server.Close()
	}
}

func TestInventoryE2E(t *testing.T) {
	// Skip E2E tests if the environment variable is set
	if os.Getenv(skipE2ETests) == "1" {
		t.Skip("Skipping E2E tests based on " + skipE2ETests + " env var")
	}
	suite.Run(t, new(InventoryE2ESuite))
}

// --------------------------------------------------------------------------
// ---------- Payload structures and Helper methods for E2E tests -----------
// --------------------------------------------------------------------------

// productPayload is the body of create and update requests.
type productPayload struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// validationResponse is the body of a rejected write.
type validationResponse struct {
	ValidationErrors map[string]string `json:"validation_errors"`
}

var (
	bolt = productPayload{Name: "Bolt", Type: "Hardware", Quantity: 10, Price: 0.5}
	nail = productPayload{Name: "Nail", Type: "Fastener", Quantity: 0, Price: 0.1}
)

// findByID fetches a product by its ID. Returns the ProductDto and the HTTP status code.
func (s *InventoryE2ESuite) findByID(id string) (service.ProductDto, int) {
	s.T().Helper()
	var product service.ProductDto
	body, statusCode := s.doRequest(http.MethodGet, s.server.URL+productURL+"/"+id, nil)
	if statusCode == http.StatusOK {
		s.decode(body, &product)
	}
	return product, statusCode
}

// list fetches all products, or the products matching term when search is true.
func (s *InventoryE2ESuite) list(term string, search bool) []service.ProductDto {
	s.T().Helper()
	target := s.server.URL + productURL
	if search {
		target += "?q=" + url.QueryEscape(term)
	}
	body, statusCode := s.doRequest(http.MethodGet, target, nil)
	require.Equal(s.T(), http.StatusOK, statusCode)
	var products []service.ProductDto
	s.decode(body, &products)
	return products
}

// create adds a product. Returns the raw body and the HTTP status code.
func (s *InventoryE2ESuite) create(payload any) ([]byte, int) {
	s.T().Helper()
	return s.doRequest(http.MethodPost, s.server.URL+productURL, payload)
}

// mustCreate adds a product and fails the test unless it was created.
func (s *InventoryE2ESuite) mustCreate(payload productPayload) service.ProductDto {
	s.T().Helper()
	body, statusCode := s.create(payload)
	require.Equal(s.T(), http.StatusCreated, statusCode, string(body))
	var product service.ProductDto
	s.decode(body, &product)
	return product
}

// update replaces a product. Returns the raw body and the HTTP status code.
func (s *InventoryE2ESuite) update(id string, payload productPayload) ([]byte, int) {
	s.T().Helper()
	return s.doRequest(http.MethodPut, s.server.URL+productURL+"/"+id, payload)
}

// deleteByID deletes a product. Returns the HTTP status code.
func (s *InventoryE2ESuite) deleteByID(id string) int {
	s.T().Helper()
	_, statusCode := s.doRequest(http.MethodDelete, s.server.URL+productURL+"/"+id, nil)
	return statusCode
}

// doRequest makes an HTTP request to the inventory service.
// Returns the response body as a byte slice and the HTTP status code.
func (s *InventoryE2ESuite) doRequest(method, url string, payload any) ([]byte, int) {
	s.T().Helper()
	var body io.Reader
	switch p := payload.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(p)
	default:
		payloadBytes, err := json.Marshal(p)
		require.NoError(s.T(), err)
		body = bytes.NewBuffer(payloadBytes)
	}

	req, err := http.NewRequestWithContext(s.ctx, method, url, body)
	require.NoError(s.T(), err, "Failed to create HTTP request")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err, "HTTP request failed")
	defer func() {
		err := resp.Body.Close()
		require.NoError(s.T(), err, "Failed to close response body")
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err, "Failed to read response body")
	return bodyBytes, resp.StatusCode
}

// decode unmarshals a response body into v.
func (s *InventoryE2ESuite) decode(body []byte, v any) {
	s.T().Helper()
	require.NoError(s.T(), json.Unmarshal(body, v), "Failed to decode response: %s", string(body))
}

// observedKinds returns the kinds of the changes seen by the store listener so far.
func (s *InventoryE2ESuite) observedKinds() []store.ChangeKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]store.ChangeKind, len(s.changes))
	for i, c := range s.changes {
		kinds[i] = c.Kind
	}
	return kinds
}

// --------------------------------------------------------------
// ---------------------- E2E test methods ----------------------
// --------------------------------------------------------------

func (s *InventoryE2ESuite) TestCreate_E2E() {
	// when
	created := s.mustCreate(bolt)

	// then
	require.NotEmpty(s.T(), created.ID)
	assert.Equal(s.T(), "Bolt", created.Name)
	assert.Equal(s.T(), "$0.50", created.PriceLabel)
	assert.Equal(s.T(), "10", created.StockLabel)
	assert.True(s.T(), created.InStock)

	list := s.list("", false)
	require.Len(s.T(), list, 1)
	assert.Equal(s.T(), created, list[0])

	found, statusCode := s.findByID(created.ID)
	require.Equal(s.T(), http.StatusOK, statusCode)
	assert.Equal(s.T(), created, found)
}

func (s *InventoryE2ESuite) TestCreate_Validation_E2E() {
	testCases := []struct {
		name           string
		payload        any
		expectedCode   int
		expectedErrors map[string]string
	}{
		{
			name:           "empty name",
			payload:        productPayload{Name: "", Type: "Hardware", Quantity: 10, Price: 0.5},
			expectedCode:   http.StatusBadRequest,
			expectedErrors: map[string]string{"name": "Product name is required"},
		},
		{
			name:         "every field invalid",
			payload:      productPayload{Name: "  ", Type: "", Quantity: -1, Price: 0},
			expectedCode: http.StatusBadRequest,
			expectedErrors: map[string]string{
				"name":     "Product name is required",
				"type":     "Product type is required",
				"quantity": "Quantity cannot be negative",
				"price":    "Price must be greater than zero",
			},
		},
		{
			name:         "malformed body",
			payload:      `{"name":`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			// when
			body, statusCode := s.create(tc.payload)

			// then
			require.Equal(s.T(), tc.expectedCode, statusCode)
			if tc.expectedErrors != nil {
				var resp validationResponse
				s.decode(body, &resp)
				assert.Equal(s.T(), tc.expectedErrors, resp.ValidationErrors)
			}
			assert.Empty(s.T(), s.list("", false), "rejected writes must leave the store unchanged")
		})
	}
}

func (s *InventoryE2ESuite) TestSearch_E2E() {
	// given
	first := s.mustCreate(bolt)
	second := s.mustCreate(nail)

	testCases := []struct {
		name     string
		term     string
		expected []string
	}{
		{name: "matches type ignoring case", term: "fasten", expected: []string{second.ID}},
		{name: "matches name", term: "BOLT", expected: []string{first.ID}},
		{name: "empty term returns all in insertion order", term: "", expected: []string{first.ID, second.ID}},
		{name: "no match", term: "widget", expected: []string{}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			// when
			found := s.list(tc.term, true)

			// then
			ids := make([]string, len(found))
			for i, p := range found {
				ids[i] = p.ID
			}
			assert.Equal(s.T(), tc.expected, ids)
		})
	}
}

func (s *InventoryE2ESuite) TestUpdate_ZeroQuantity_E2E() {
	// given
	created := s.mustCreate(bolt)
	s.mustCreate(nail)

	// when
	body, statusCode := s.update(created.ID, productPayload{Name: "Bolt v2", Type: "Hardware", Quantity: 0, Price: 0.5})

	// then
	require.Equal(s.T(), http.StatusOK, statusCode, string(body))
	list := s.list("", false)
	require.Len(s.T(), list, 2)
	assert.Equal(s.T(), created.ID, list[0].ID, "update keeps the insertion position")
	assert.Equal(s.T(), "Bolt v2", list[0].Name)
	assert.Equal(s.T(), 0, list[0].Quantity)
	assert.Equal(s.T(), service.OutOfStock, list[0].StockLabel)
	assert.False(s.T(), list[0].InStock)
}

func (s *InventoryE2ESuite) TestUpdate_Errors_E2E() {
	// given
	created := s.mustCreate(bolt)

	testCases := []struct {
		name         string
		id           string
		payload      productPayload
		expectedCode int
	}{
		{
			name:         "unknown product",
			id:           uuid.NewString(),
			payload:      bolt,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "invalid replacement",
			id:           created.ID,
			payload:      productPayload{Name: "Bolt", Type: "Hardware", Quantity: -5, Price: 0.5},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			// when
			_, statusCode := s.update(tc.id, tc.payload)

			// then
			require.Equal(s.T(), tc.expectedCode, statusCode)
			found, code := s.findByID(created.ID)
			require.Equal(s.T(), http.StatusOK, code)
			assert.Equal(s.T(), created, found, "failed updates must leave the product untouched")
		})
	}
}

func (s *InventoryE2ESuite) TestDelete_Idempotent_E2E() {
	// given
	created := s.mustCreate(bolt)

	// when deleted twice
	first := s.deleteByID(created.ID)
	afterFirst := s.list("", false)
	second := s.deleteByID(created.ID)
	afterSecond := s.list("", false)

	// then both succeed and the store stays empty
	assert.Equal(s.T(), http.StatusNoContent, first)
	assert.Equal(s.T(), http.StatusNoContent, second)
	assert.Empty(s.T(), afterFirst)
	assert.Empty(s.T(), afterSecond)
	_, statusCode := s.findByID(created.ID)
	assert.Equal(s.T(), http.StatusNotFound, statusCode)
}

func (s *InventoryE2ESuite) TestFindByID_NotFound_E2E() {
	// when
	_, statusCode := s.findByID(uuid.NewString())

	// then
	require.Equal(s.T(), http.StatusNotFound, statusCode)
}

func (s *InventoryE2ESuite) TestChangeFeed_E2E() {
	// given
	created := s.mustCreate(bolt)
	_, statusCode := s.update(created.ID, productPayload{Name: "Bolt", Type: "Hardware", Quantity: 3, Price: 0.5})
	require.Equal(s.T(), http.StatusOK, statusCode)

	// when deleted twice and a rejected write is attempted
	s.deleteByID(created.ID)
	s.deleteByID(created.ID)
	s.create(productPayload{})

	// then only effective mutations are observed, in order
	assert.Equal(s.T(), []store.ChangeKind{store.Added, store.Updated, store.Deleted}, s.observedKinds())
}

func (s *InventoryE2ESuite) TestHealthz_E2E() {
	_, statusCode := s.doRequest(http.MethodGet, s.server.URL+"/healthz", nil)
	assert.Equal(s.T(), http.StatusOK, statusCode)
}

func (s *InventoryE2ESuite) TestCreate_NumericStrings_E2E() {
	// when quantity and price arrive the way form inputs submit them
	body, statusCode := s.create(`{"name":"Bolt","type":"Hardware","quantity":"0","price":"2.345"}`)

	// then
	require.Equal(s.T(), http.StatusCreated, statusCode, string(body))
	var created service.ProductDto
	s.decode(body, &created)
	assert.Equal(s.T(), 0, created.Quantity)
	assert.Equal(s.T(), 2.345, created.Price)
	assert.Equal(s.T(), "$2.35", created.PriceLabel)
	assert.Equal(s.T(), service.OutOfStock, created.StockLabel)
}
