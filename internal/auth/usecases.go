package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// AuthUseCase contém a lógica de negócio de contas de usuário
type AuthUseCase struct {
	repository Repository
	hashCost   int
}

// NewAuthUseCase cria uma nova instância de AuthUseCase
func NewAuthUseCase(repository Repository, hashCost int) *AuthUseCase {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &AuthUseCase{
		repository: repository,
		hashCost:   hashCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (uc *AuthUseCase) hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), uc.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

func (uc *AuthUseCase) hashAnswer(answer string) (string, error) {
	return uc.hash(NormalizeAnswer(answer))
}

// validatePassword conta caracteres para o mínimo e bytes para o limite do bcrypt
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > maxSecretBytes {
		return ErrSecretTooLong
	}
	return nil
}

func validateAnswer(answer string) error {
	if len(NormalizeAnswer(answer)) > maxSecretBytes {
		return ErrSecretTooLong
	}
	return nil
}

func matches(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// Register cadastra um usuário com senha e perguntas de segurança
func (uc *AuthUseCase) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := normalizeEmail(req.Email)

	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := validateQuestions(req.Question1, req.Question2); err != nil {
		return nil, err
	}
	for _, answer := range []string{req.Answer1, req.Answer2} {
		if err := validateAnswer(answer); err != nil {
			return nil, err
		}
	}

	_, err := uc.repository.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailInUse
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := &User{
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Address:   strings.TrimSpace(req.Address),
		Question1: req.Question1,
		Question2: req.Question2,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if user.PasswordHash, err = uc.hash(req.Password); err != nil {
		return nil, err
	}
	if user.Answer1Hash, err = uc.hashAnswer(req.Answer1); err != nil {
		return nil, err
	}
	if user.Answer2Hash, err = uc.hashAnswer(req.Answer2); err != nil {
		return nil, err
	}

	if err := uc.repository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailInUse) {
			return nil, err
		}
		log.Printf("❌ [REGISTER] Failed to create user: %v", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("✅ [REGISTER] UserID=%d", user.ID)
	return user, nil
}

// Login valida email e senha; ambos os erros retornam ErrInvalidCredentials
func (uc *AuthUseCase) Login(ctx context.Context, req LoginRequest) (*User, error) {
	user, err := uc.repository.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !matches(user.PasswordHash, req.Password) {
		log.Printf("ℹ️ [LOGIN] Wrong password for UserID=%d", user.ID)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// UpdateUser atualiza o perfil e, opcionalmente, as perguntas de segurança
func (uc *AuthUseCase) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	user, err := uc.repository.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if email != user.Email {
		other, err := uc.repository.GetUserByEmail(ctx, email)
		if err == nil && other.ID != id {
			return nil, ErrEmailInUse
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Email = email
	user.Address = strings.TrimSpace(req.Address)

	if err := uc.applySecurityQuestions(user, req); err != nil {
		return nil, err
	}

	if err := uc.repository.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ [UPDATE USER] UserID=%d", user.ID)
	return user, nil
}

// applySecurityQuestions troca perguntas e respostas; mudar uma pergunta exige a nova resposta
func (uc *AuthUseCase) applySecurityQuestions(user *User, req UpdateUserRequest) error {
	q1, q2 := user.Question1, user.Question2
	if req.Question1 != nil {
		q1 = *req.Question1
	}
	if req.Question2 != nil {
		q2 = *req.Question2
	}
	if err := validateQuestions(q1, q2); err != nil {
		return err
	}

	if q1 != user.Question1 && (req.Answer1 == nil || strings.TrimSpace(*req.Answer1) == "") {
		return fmt.Errorf("%w: answer1 is required when changing question1", ErrInvalidQuestion)
	}
	if q2 != user.Question2 && (req.Answer2 == nil || strings.TrimSpace(*req.Answer2) == "") {
		return fmt.Errorf("%w: answer2 is required when changing question2", ErrInvalidQuestion)
	}

	for _, answer := range []*string{req.Answer1, req.Answer2} {
		if answer == nil {
			continue
		}
		if err := validateAnswer(*answer); err != nil {
			return err
		}
	}

	if req.Answer1 != nil && strings.TrimSpace(*req.Answer1) != "" {
		hash, err := uc.hashAnswer(*req.Answer1)
		if err != nil {
			return err
		}
		user.Answer1Hash = hash
	}
	if req.Answer2 != nil && strings.TrimSpace(*req.Answer2) != "" {
		hash, err := uc.hashAnswer(*req.Answer2)
		if err != nil {
			return err
		}
		user.Answer2Hash = hash
	}

	user.Question1, user.Question2 = q1, q2
	return nil
}

// DeleteUser remove a conta
func (uc *AuthUseCase) DeleteUser(ctx context.Context, id int64) error {
	if err := uc.repository.DeleteUser(ctx, id); err != nil {
		return err
	}

	log.Printf("♻️  [DELETE USER] UserID=%d", id)
	return nil
}

// OrderHistory lista os pedidos do usuário
func (uc *AuthUseCase) OrderHistory(ctx context.Context, userID int64) ([]HistoryOrder, error) {
	if _, err := uc.repository.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return uc.repository.GetOrderHistory(ctx, userID)
}

// SecurityQuestions retorna as perguntas cadastradas para o email
func (uc *AuthUseCase) SecurityQuestions(ctx context.Context, email string) (*SecurityQuestionsResponse, error) {
	user, err := uc.repository.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	q1, _ := Question(user.Question1)
	q2, _ := Question(user.Question2)
	return &SecurityQuestionsResponse{
		Email:     user.Email,
		Question1: q1,
		Question2: q2,
	}, nil
}

// ResetPassword troca a senha se as duas respostas conferirem
func (uc *AuthUseCase) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	user, err := uc.repository.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return err
	}

	ok1 := matches(user.Answer1Hash, NormalizeAnswer(req.Answer1))
	ok2 := matches(user.Answer2Hash, NormalizeAnswer(req.Answer2))
	if !ok1 || !ok2 {
		log.Printf("ℹ️ [RESET PASSWORD] Wrong answers for UserID=%d", user.ID)
		return ErrInvalidAnswers
	}

	hash, err := uc.hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := uc.repository.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	log.Printf("✅ [RESET PASSWORD] UserID=%d", user.ID)
	return nil
}
