package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(repo *MockRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewAuthHandler(NewAuthUseCase(repo, bcrypt.MinCost), noop.NewTracerProvider().Tracer("test"))
	handler.RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Register(t *testing.T) {
	repo := new(MockRepository)
	router := newTestRouter(repo)

	repo.On("GetUserByEmail", mock.Anything, "brock@pewter.mx").Return(nil, ErrNotFound)
	repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*auth.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*User).ID = 5
		}).
		Return(nil)

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"name":      "Brock",
		"email":     "brock@pewter.mx",
		"password":  "onix123",
		"address":   "Pewter Gym",
		"question1": 1,
		"answer1":   "Onix",
		"question2": 6,
		"answer2":   "Pokemon TCG",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "hash")

	var user PublicUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, int64(5), user.ID)
	assert.Equal(t, "brock@pewter.mx", user.Email)
}

func TestHandler_Register_BadRequest(t *testing.T) {
	repo := new(MockRepository)
	router := newTestRouter(repo)

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	repo.On("GetUserByEmail", mock.Anything, "brock@pewter.mx").Return(&User{ID: 1}, nil)
	w = doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Brock", "email": "brock@pewter.mx", "password": "onix123", "address": "Pewter",
		"question1": 1, "answer1": "a", "question2": 2, "answer2": "b",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), ErrEmailInUse.Error())
}

func TestHandler_Login_Unauthorized(t *testing.T) {
	repo := new(MockRepository)
	router := newTestRouter(repo)

	repo.On("GetUserByEmail", mock.Anything, "nobody@kanto.mx").Return(nil, ErrNotFound)

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{"email": "nobody@kanto.mx", "password": "whatever"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), ErrInvalidCredentials.Error())
}

func TestHandler_Login(t *testing.T) {
	repo := new(MockRepository)
	router := newTestRouter(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.On("GetUserByEmail", mock.Anything, "ash@kanto.mx").
		Return(&User{ID: 1, Name: "Ash", Email: "ash@kanto.mx", PasswordHash: string(hash)}, nil)

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{"email": "ash@kanto.mx", "password": "secret123"})

	require.Equal(t, http.StatusOK, w.Code)
	var user PublicUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "Ash", user.Name)
}

func TestHandler_UpdateUser(t *testing.T) {
	repo := new(MockRepository)
	router := newTestRouter(repo)

	repo.On("GetUserByID", mock.Anything, int64(99)).Return(nil, ErrNotFound)

	w := doJSON(t, router, http.MethodPut, "/api/auth/user/99", gin.H{"name": "A", "email": "a@b.mx", "address": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/auth/user/abc", gin.H{"name": "A", "email": "a@b.mx", "address": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DeleteUser(t *testing.T) {
	repo := new(MockRepository)
	router := newTestRouter(repo)

	repo.On("DeleteUser", mock.Anything, int64(1)).Return(nil)

	w := doJSON(t, router, http.MethodDelete, "/api/auth/user/1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestHandler_OrderHistory(t *testing.T) {
	repo := new(MockRepository)
	router := newTestRouter(repo)

	repo.On("GetUserByID", mock.Anything, int64(1)).Return(&User{ID: 1}, nil)
	repo.On("GetOrderHistory", mock.Anything, int64(1)).Return([]HistoryOrder{
		{ID: 10, PayPalOrderID: "5O190127TN364715T", Status: "COMPLETED", Details: []HistoryDetail{{Quantity: 2, ProductName: "Pikachu"}}},
	}, nil)

	w := doJSON(t, router, http.MethodGet, "/api/auth/history/1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var orders []HistoryOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "Pikachu", orders[0].Details[0].ProductName)
}

func TestHandler_QuestionCatalog(t *testing.T) {
	router := newTestRouter(new(MockRepository))

	w := doJSON(t, router, http.MethodGet, "/api/auth/security-questions/catalog", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var questions []SecurityQuestion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &questions))
	assert.Len(t, questions, len(securityQuestions))
}

func TestHandler_SecurityQuestions_NotFound(t *testing.T) {
	repo := new(MockRepository)
	router := newTestRouter(repo)

	repo.On("GetUserByEmail", mock.Anything, "ghost@lavender.mx").Return(nil, ErrNotFound)

	w := doJSON(t, router, http.MethodPost, "/api/auth/security-questions", gin.H{"email": "ghost@lavender.mx"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ResetPassword_WrongAnswers(t *testing.T) {
	repo := new(MockRepository)
	router := newTestRouter(repo)

	answer, err := bcrypt.GenerateFromPassword([]byte("pikachu"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.On("GetUserByEmail", mock.Anything, "ash@kanto.mx").
		Return(&User{ID: 1, Answer1Hash: string(answer), Answer2Hash: string(answer)}, nil)

	w := doJSON(t, router, http.MethodPost, "/api/auth/reset-password", gin.H{
		"email": "ash@kanto.mx", "answer1": "Pikachu", "answer2": "Raichu", "new_password": "new-secret",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Register_PasswordTooLong(t *testing.T) {
	repo := new(MockRepository)
	router := newTestRouter(repo)

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Brock", "email": "brock@pewter.mx", "password": strings.Repeat("p", 80), "address": "Pewter",
		"question1": 1, "answer1": "a", "question2": 2, "answer2": "b",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), ErrSecretTooLong.Error())
}
