package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/zuzi-store/internal/config"
	"github.com/javajoker/zuzi-store/internal/database"
	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/models"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta json.RawMessage `json:"meta"`
}

type RouterTestSuite struct {
	suite.Suite
	db            *gorm.DB
	router        *gin.Engine
	adminToken    string
	employeeToken string
}

func (suite *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := database.OpenInMemory()
	suite.Require().NoError(err)
	suite.db = db

	cfg := &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{UploadDir: suite.T().TempDir()},
		JWT:         config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 24},
		Session:     config.SessionConfig{CookieName: "session", RememberDuration: 30},
		Pricing:     config.PricingConfig{ExchangeRate: 1400, Margin: 7000, RoundingUnit: 1000},
		Inventory:   config.InventoryConfig{LowStockThreshold: 1, PriceSearchWindow: 5000},
		Report:      config.ReportConfig{LowStockThreshold: 2, DefaultWindowDays: 30, TopN: 5, Timezone: "UTC"},
		Admin:       config.AdminConfig{Username: "admin", Password: "admin123"},
		CORS:        config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	suite.Require().NoError(database.SeedInitialData(db, cfg.Admin))

	translator, err := i18n.New("en")
	suite.Require().NoError(err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	suite.router, err = Initialize(Dependencies{
		DB:         db,
		Config:     cfg,
		Translator: translator,
		Logger:     logger,
		Clock:      fixedClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)},
	})
	suite.Require().NoError(err)

	suite.adminToken = suite.login("admin", "admin123")

	w := suite.request(http.MethodPost, "/create-employee", suite.adminToken,
		gin.H{"username": "clerk", "password": "secret1"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	suite.employeeToken = suite.login("clerk", "secret1")
}

func (suite *RouterTestSuite) TearDownTest() {
	database.Close(suite.db)
}

func (suite *RouterTestSuite) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *RouterTestSuite) decode(w *httptest.ResponseRecorder) apiResponse {
	var resp apiResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func (suite *RouterTestSuite) login(username, password string) string {
	w := suite.request(http.MethodPost, "/login", "", gin.H{"username": username, "password": password})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &data))
	suite.Require().NotEmpty(data.Token)
	return data.Token
}

func (suite *RouterTestSuite) createProduct(sizes ...gin.H) uint {
	w := suite.request(http.MethodPost, "/add", suite.adminToken, gin.H{
		"season":        "Summer",
		"gender":        "Women",
		"total_cost":    10,
		"shipping_cost": 2,
		"sizes":         sizes,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Product models.Product `json:"product"`
	}
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &data))
	return data.Product.ID
}

func (suite *RouterTestSuite) stock(productID uint, size string) int {
	var stock models.SizeStock
	suite.Require().NoError(suite.db.Where("product_id = ? AND size = ?", productID, size).First(&stock).Error)
	return stock.Quantity
}

func (suite *RouterTestSuite) TestHealth() {
	w := suite.request(http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"storage":"local"`)
	suite.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (suite *RouterTestSuite) TestLoginFailures() {
	w := suite.request(http.MethodPost, "/login", "", gin.H{"username": "admin", "password": "wrong"})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("Invalid username or password", suite.decode(w).Error.Message)

	w = suite.request(http.MethodPost, "/login", "", gin.H{"username": "admin"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *RouterTestSuite) TestSessionCookie() {
	w := suite.request(http.MethodPost, "/login", "", gin.H{"username": "admin", "password": "admin123", "remember_me": true})
	suite.Require().Equal(http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	suite.Require().Len(cookies, 1)
	suite.Equal("session", cookies[0].Name)
	suite.True(cookies[0].HttpOnly)
	suite.Equal(30*24*3600, cookies[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"username":"admin"`)
}

func (suite *RouterTestSuite) TestAuthenticationRequired() {
	for _, path := range []string{"/", "/sell", "/report", "/manage-users", "/me"} {
		w := suite.request(http.MethodGet, path, "", nil)
		suite.Equal(http.StatusUnauthorized, w.Code, path)
	}

	w := suite.request(http.MethodGet, "/", "garbage", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *RouterTestSuite) TestEmployeeCapabilities() {
	productID := suite.createProduct(gin.H{"size": "S", "quantity": 5})

	forbidden := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPost, "/add", gin.H{"season": "Summer", "gender": "Women", "sizes": []gin.H{{"size": "S", "quantity": 1}}}},
		{http.MethodGet, fmt.Sprintf("/edit/%d", productID), nil},
		{http.MethodPost, fmt.Sprintf("/delete/%d", productID), nil},
		{http.MethodGet, "/report", nil},
		{http.MethodGet, "/export", nil},
		{http.MethodGet, "/export_detailed_report", nil},
		{http.MethodPost, "/revert-sale/1", nil},
		{http.MethodGet, "/revert-history", nil},
		{http.MethodGet, "/manage-users", nil},
		{http.MethodPost, "/create-employee", gin.H{"username": "other", "password": "secret1"}},
	}
	for _, tc := range forbidden {
		w := suite.request(tc.method, tc.path, suite.employeeToken, tc.body)
		suite.Equal(http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
	}

	allowed := []string{"/", "/sell", "/recent-sales", fmt.Sprintf("/products/%d", productID), "/search?search_query=S&search_type=size"}
	for _, path := range allowed {
		w := suite.request(http.MethodGet, path, suite.employeeToken, nil)
		suite.Equal(http.StatusOK, w.Code, path)
	}
}

func (suite *RouterTestSuite) TestAddProductWithoutUnits() {
	w := suite.request(http.MethodPost, "/add", suite.adminToken, gin.H{
		"season":        "Summer",
		"gender":        "Women",
		"total_cost":    10,
		"shipping_cost": 2,
		"sizes":         []gin.H{{"size": "S", "quantity": 0}},
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	var count int64
	suite.db.Model(&models.Product{}).Count(&count)
	suite.Zero(count)
}

func (suite *RouterTestSuite) TestSellAndRevertFlow() {
	productID := suite.createProduct(gin.H{"size": "S", "quantity": 5}, gin.H{"size": "M", "quantity": 5})

	w := suite.request(http.MethodPost, "/sell", suite.employeeToken, gin.H{"product_id": productID, "size": "S", "quantity": 3})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	suite.Equal(2, suite.stock(productID, "S"))

	var data struct {
		Sale models.Sale `json:"sale"`
	}
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &data))
	suite.Equal("9000", data.Sale.SellingPrice.String())

	w = suite.request(http.MethodPost, "/sell", suite.employeeToken, gin.H{"product_id": productID, "size": "S", "quantity": 3})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("Not enough stock for size S", suite.decode(w).Error.Message)
	suite.Equal(2, suite.stock(productID, "S"))

	w = suite.request(http.MethodPost, "/sell", suite.employeeToken, gin.H{"product_id": productID, "size": "S", "quantity": 0})
	suite.Equal(http.StatusBadRequest, w.Code)

	revertPath := fmt.Sprintf("/revert-sale/%d", data.Sale.ID)
	w = suite.request(http.MethodPost, revertPath, suite.adminToken, gin.H{"reason": "returned"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Contains(string(suite.decode(w).Data), "3 items of size S")
	suite.Equal(5, suite.stock(productID, "S"))

	w = suite.request(http.MethodPost, revertPath, suite.adminToken, nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(5, suite.stock(productID, "S"))

	w = suite.request(http.MethodGet, fmt.Sprintf("/sale-details/%d", data.Sale.ID), suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"is_reverted":true`)

	w = suite.request(http.MethodGet, "/revert-history", suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(string(suite.decode(w).Meta), `"total_reverts":1`)

	w = suite.request(http.MethodPost, "/revert-sale/999", suite.adminToken, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *RouterTestSuite) TestEditAndDeleteProduct() {
	productID := suite.createProduct(gin.H{"size": "S", "quantity": 5})
	path := fmt.Sprintf("/edit/%d", productID)

	w := suite.request(http.MethodGet, path, suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"cost_inputs":{"total_cost":"10","shipping_cost":"2"}`)

	w = suite.request(http.MethodPost, path, suite.adminToken, gin.H{
		"season":        "Winter",
		"gender":        "Women",
		"total_cost":    10,
		"shipping_cost": 2,
		"sizes":         []gin.H{{"size": "L", "quantity": 4}},
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(4, suite.stock(productID, "L"))

	w = suite.request(http.MethodPost, fmt.Sprintf("/delete/%d", productID), suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, fmt.Sprintf("/products/%d", productID), suite.adminToken, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/products/abc", suite.adminToken, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *RouterTestSuite) TestIndexListsLowStock() {
	suite.createProduct(gin.H{"size": "S", "quantity": 1}, gin.H{"size": "M", "quantity": 6})

	w := suite.request(http.MethodGet, "/?season=All&gender=All", suite.employeeToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	resp := suite.decode(w)
	var meta struct {
		LowStock []struct {
			Size string `json:"size"`
		} `json:"low_stock"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Meta, &meta))
	suite.Equal(int64(1), meta.Pagination.Total)
	suite.Require().Len(meta.LowStock, 1)
	suite.Equal("S", meta.LowStock[0].Size)
}

func (suite *RouterTestSuite) TestSearchPost() {
	suite.createProduct(gin.H{"size": "S", "quantity": 1})

	w := suite.request(http.MethodPost, "/search", suite.employeeToken, gin.H{"search_query": "summer", "search_type": "season"})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"search_type":"season"`)
	suite.Contains(w.Body.String(), `"size":"S"`)
}

func (suite *RouterTestSuite) TestReportsAndExports() {
	productID := suite.createProduct(gin.H{"size": "S", "quantity": 5})
	w := suite.request(http.MethodPost, "/sell", suite.employeeToken, gin.H{"product_id": productID, "size": "S", "quantity": 2})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.request(http.MethodPost, "/report", suite.adminToken, gin.H{"start_date": "2024-03-01", "end_date": "2024-03-31"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Contains(w.Body.String(), `"units_sold":2`)

	w = suite.request(http.MethodGet, "/report?start_date=2024-03-31&end_date=2024-03-01", suite.adminToken, nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/export", suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("attachment; filename=sales_report.csv", w.Header().Get("Content-Disposition"))
	suite.Contains(w.Body.String(), "Date,Product ID,Size,Quantity,Selling Price,Unit Cost,Profit")

	w = suite.request(http.MethodGet, "/export_detailed_report?start_date=2024-03-10&end_date=2024-03-10", suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("attachment; filename=detailed_report_20240310_20240310.csv", w.Header().Get("Content-Disposition"))
	suite.Contains(w.Body.String(), "18000")
}

func (suite *RouterTestSuite) TestUserManagement() {
	w := suite.request(http.MethodPost, "/create-employee", suite.adminToken, gin.H{"username": "clerk", "password": "secret1"})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request(http.MethodPost, "/create-employee", suite.adminToken, gin.H{"username": "x", "password": "secret1"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/manage-users", suite.adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("2", w.Header().Get("X-Total-Count"))
	suite.NotContains(w.Body.String(), "password_hash")

	var admin models.User
	suite.Require().NoError(suite.db.Where("username = ?", "admin").First(&admin).Error)
	w = suite.request(http.MethodPost, fmt.Sprintf("/delete-user/%d", admin.ID), suite.adminToken, nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("Cannot delete the last admin user", suite.decode(w).Error.Message)

	var clerk models.User
	suite.Require().NoError(suite.db.Where("username = ?", "clerk").First(&clerk).Error)
	w = suite.request(http.MethodPost, fmt.Sprintf("/delete-user/%d", clerk.ID), suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)

	// The deleted user's token stops working immediately.
	w = suite.request(http.MethodGet, "/", suite.employeeToken, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *RouterTestSuite) TestChangePassword() {
	w := suite.request(http.MethodPost, "/change-password", suite.employeeToken, gin.H{
		"current_password": "secret1", "new_password": "secret2", "confirm_password": "other",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("New passwords do not match", suite.decode(w).Error.Message)

	w = suite.request(http.MethodPost, "/change-password", suite.employeeToken, gin.H{
		"current_password": "secret1", "new_password": "secret2", "confirm_password": "secret2",
	})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.login("clerk", "secret2")
}

func (suite *RouterTestSuite) TestLocalizedErrors() {
	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	req.Header.Set("Authorization", "Bearer "+suite.employeeToken)
	req.Header.Set("Accept-Language", "ar")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.NotEqual("You do not have permission to perform this action", suite.decode(w).Error.Message)
}

func (suite *RouterTestSuite) TestUploadImage() {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	upload := func(token, filename string, content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", filename)
		suite.Require().NoError(err)
		_, err = part.Write(content)
		suite.Require().NoError(err)
		suite.Require().NoError(writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/upload-image", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)
		return w
	}

	w := upload(suite.adminToken, "shirt.png", png)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		File struct {
			URL string `json:"url"`
			Key string `json:"key"`
		} `json:"file"`
	}
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &data))
	suite.Contains(data.File.URL, "/uploads/products/20240310_")

	w = upload(suite.adminToken, "notes.txt", []byte("hello"))
	suite.Equal(http.StatusBadRequest, w.Code)

	w = upload(suite.adminToken, "fake.png", []byte("hello"))
	suite.Equal(http.StatusBadRequest, w.Code)

	w = upload(suite.employeeToken, "shirt.png", png)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPost, "/delete-image", suite.adminToken, gin.H{"key": "../etc/passwd"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/delete-image", suite.adminToken, gin.H{"key": data.File.Key})
	suite.Equal(http.StatusOK, w.Code)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestInitializeRequiresDependencies(t *testing.T) {
	_, err := Initialize(Dependencies{})
	assert.Error(t, err)
}
