package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"train-booking-backend/config"
	"train-booking-backend/controllers"
	"train-booking-backend/middleware"
	"train-booking-backend/services"
)

func TestParseCorsOrigins(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"", []string{"*"}},
		{" , ,", []string{"*"}},
		{"*", []string{"*"}},
		{"https://a.example, https://b.example ,", []string{"https://a.example", "https://b.example"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseCorsOrigins(tc.raw), tc.raw)
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Status      int               `json:"status"`
		Error       string            `json:"error"`
		Message     string            `json:"message"`
		Path        string            `json:"path"`
		Timestamp   time.Time         `json:"timestamp"`
		FieldErrors map[string]string `json:"fieldErrors"`
	} `json:"error"`
}

type api struct {
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))

	router := SetupRouter(config.Config{CORSOrigins: "*"}, Controllers{
		Booking:   controllers.NewBookingController(services.NewBookingService(db)),
		Passenger: controllers.NewPassengerController(services.NewPassengerService(db)),
		Train:     controllers.NewTrainController(services.NewTrainService(db)),
		User:      controllers.NewUserController(services.NewUserService(db)),
		Admin:     controllers.NewAdminController(services.NewDashboardService(db)),
	})
	return &api{router: router}
}

func (a *api) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// id reads a numeric field out of a success payload.
func (a *api) id(t *testing.T, env envelope, field string) uint {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &m))
	v, ok := m[field].(float64)
	require.True(t, ok, "missing %s in %s", field, env.Data)
	return uint(v)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newAPI(t)

	w, _ := a.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w, _ = a.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRequestIDIsEchoed(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "trace-123")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, "trace-123", w.Header().Get(middleware.RequestIDHeader))
}

func TestBookingFlow(t *testing.T) {
	a := newAPI(t)
	journey := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	nextDay := time.Now().UTC().AddDate(0, 0, 8).Format("2006-01-02")

	w, env := a.do(t, http.MethodPost, "/api/v1/users/register",
		`{"username":"priya","email":"priya@example.com","password":"Secret@123"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	userID := a.id(t, env, "userId")

	w, env = a.do(t, http.MethodPost, "/api/v1/trains", `{
		"trainName": "Coastal Express",
		"source": "Chennai",
		"destination": "Mumbai",
		"departureTime": "08:00",
		"arrivalTime": "20:30",
		"scheduleDays": ["MON","TUE","WED","THU","FRI","SAT","SUN"],
		"fareTypes": [{"classType": "2AC", "price": 1250.00, "seatsAvailable": 2}]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	trainID := a.id(t, env, "trainId")

	var train struct {
		FareTypes []struct {
			FareTypeID uint `json:"fareTypeId"`
		} `json:"fareTypes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &train))
	require.Len(t, train.FareTypes, 1)
	fareID := train.FareTypes[0].FareTypeID

	booking := func(date, passengers string) string {
		return fmt.Sprintf(`{"userId":%d,"trainId":%d,"fareTypeId":%d,"journeyDate":%q,"totalFare":2500.00,"passengers":[%s]}`,
			userID, trainID, fareID, date, passengers)
	}

	w, env = a.do(t, http.MethodPost, "/api/v1/bookings", booking(journey,
		`{"name":"Ravi Kumar","age":30,"gender":"MALE","idProof":"123456789012"},`+
			`{"name":"Meena Kumar","age":28,"gender":"FEMALE","idProof":"123456789013"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	bookingID := a.id(t, env, "bookingId")

	w, env = a.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", bookingID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"status":"CONFIRMED"`)
	assert.Contains(t, string(env.Data), `"trainName":"Coastal Express"`)

	t.Run("sold out", func(t *testing.T) {
		w, env := a.do(t, http.MethodPost, "/api/v1/bookings", booking(nextDay,
			`{"name":"Anil Rao","age":40,"gender":"MALE","idProof":"123456789014"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "Not enough seats available. Available: 0, Required: 1", env.Error.Message)
	})

	t.Run("cancel frees seats once", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/bookings/%d/cancel", bookingID)
		w, env := a.do(t, http.MethodPut, path, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, string(env.Data), `"status":"CANCELLED"`)

		w, env = a.do(t, http.MethodPut, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Booking is already cancelled", env.Error.Message)

		w, env = a.do(t, http.MethodGet, fmt.Sprintf("/api/v1/fare-types/%d", fareID), "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(env.Data), `"seatsAvailable":2`)
	})

	t.Run("dashboard", func(t *testing.T) {
		w, env := a.do(t, http.MethodGet, "/api/v1/admin/dashboard", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(env.Data), `"cancelledBookings":1`)
	})
}

func TestErrorResponses(t *testing.T) {
	a := newAPI(t)

	cases := []struct {
		name    string
		method  string
		path    string
		body    string
		status  int
		message string
	}{
		{"not found", http.MethodGet, "/api/v1/bookings/4242", "", http.StatusNotFound, "Booking not found with ID: 4242"},
		{"bad id", http.MethodGet, "/api/v1/bookings/abc", "", http.StatusBadRequest, "Invalid id: abc"},
		{"empty body", http.MethodPost, "/api/v1/bookings", "", http.StatusBadRequest, "Request body is required"},
		{"malformed body", http.MethodPost, "/api/v1/bookings", `{"userId":`, http.StatusBadRequest, "Malformed JSON request"},
		{"wrong type", http.MethodPost, "/api/v1/bookings", `{"userId":"one"}`, http.StatusBadRequest, "Invalid value for field userId"},
		{"missing query", http.MethodGet, "/api/v1/trains/route?source=Pune", "", http.StatusBadRequest, "Query parameter destination is required"},
		{"bad credentials", http.MethodPost, "/api/v1/users/login", `{"usernameOrEmail":"ghost","password":"Secret@123"}`, http.StatusUnauthorized, "Invalid username/email or password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
				w, env := a.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.False(t, env.Success)
			assert.Equal(t, tc.status, env.Error.Status)
			assert.Equal(t, http.StatusText(tc.status), env.Error.Error)
			assert.Equal(t, tc.message, env.Error.Message)
			assert.Equal(t, strings.SplitN(tc.path, "?", 2)[0], env.Error.Path)
			assert.False(t, env.Error.Timestamp.IsZero())
		})
	}
}

func TestValidationAndConflictResponses(t *testing.T) {
	a := newAPI(t)

	w, env := a.do(t, http.MethodPost, "/api/v1/bookings",
		`{"userId":1,"trainId":1,"fareTypeId":1,"journeyDate":"tomorrow","totalFare":10,"passengers":[{"name":"R2","age":200,"gender":"MALE","idProof":"1"}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", env.Error.Message)
	assert.Contains(t, env.Error.FieldErrors, "journeyDate")
	assert.Contains(t, env.Error.FieldErrors, "passengers[0].age")
	assert.Contains(t, env.Error.FieldErrors, "passengers[0].idProof")

	body := `{"username":"priya","email":"priya@example.com","password":"Secret@123"}`
	w, _ = a.do(t, http.MethodPost, "/api/v1/users/register", body)
	require.Equal(t, http.StatusCreated, w.Code)
	w, env = a.do(t, http.MethodPost, "/api/v1/users/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username priya is already taken", env.Error.Message)
}
