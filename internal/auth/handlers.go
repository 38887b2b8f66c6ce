package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AuthUseCaseInterface define a interface para o use case de contas
type AuthUseCaseInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*User, error)
	UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
	OrderHistory(ctx context.Context, userID int64) ([]HistoryOrder, error)
	SecurityQuestions(ctx context.Context, email string) (*SecurityQuestionsResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

// AuthHandler contém os handlers HTTP de autenticação
type AuthHandler struct {
	useCase AuthUseCaseInterface
	tracer  trace.Tracer
}

// NewAuthHandler cria uma nova instância de AuthHandler
func NewAuthHandler(useCase AuthUseCaseInterface, tracer trace.Tracer) *AuthHandler {
	return &AuthHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// RegisterRoutes registra as rotas em /api/auth
func (h *AuthHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.PUT("/user/:id", h.UpdateUser)
	g.DELETE("/user/:id", h.DeleteUser)
	g.GET("/history/:id", h.OrderHistory)
	g.GET("/security-questions/catalog", h.QuestionCatalog)
	g.POST("/security-questions", h.SecurityQuestions)
	g.POST("/reset-password", h.ResetPassword)
}

// Register cadastra um novo usuário
func (h *AuthHandler) Register(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "register_user")
	defer span.End()

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.useCase.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int64("user_id", user.ID))
	c.JSON(http.StatusCreated, user.Public())
}

// Login autentica por email e senha
func (h *AuthHandler) Login(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "login")
	defer span.End()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.useCase.Login(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int64("user_id", user.ID))
	c.JSON(http.StatusOK, user.Public())
}

// UpdateUser edita o perfil
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "update_user")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", id))

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.useCase.UpdateUser(ctx, id, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user.Public(),
		"message": "User updated",
	})
}

// DeleteUser remove a conta
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "delete_user")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", id))

	if err := h.useCase.DeleteUser(ctx, id); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// OrderHistory lista os pedidos do usuário
func (h *AuthHandler) OrderHistory(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "order_history")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", id))

	orders, err := h.useCase.OrderHistory(ctx, id)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	c.JSON(http.StatusOK, orders)
}

// QuestionCatalog lista as perguntas de segurança disponíveis
func (h *AuthHandler) QuestionCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, Questions())
}

// SecurityQuestions devolve as perguntas de um email
func (h *AuthHandler) SecurityQuestions(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "security_questions")
	defer span.End()

	var req SecurityQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.useCase.SecurityQuestions(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ResetPassword troca a senha usando as respostas de segurança
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "reset_password")
	defer span.End()

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.useCase.ResetPassword(ctx, req); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidAnswers):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, ErrEmailInUse), errors.Is(err, ErrWeakPassword), errors.Is(err, ErrInvalidQuestion),
		errors.Is(err, ErrSecretTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ [AUTH] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
