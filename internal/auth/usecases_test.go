package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUseCase(repo *MockRepository) *AuthUseCase {
	return NewAuthUseCase(repo, bcrypt.MinCost)
}

// storedUser cria um usuário com senha e respostas já hasheadas
func storedUser(t *testing.T, uc *AuthUseCase) *User {
	t.Helper()

	password, err := uc.hash("secret123")
	require.NoError(t, err)
	answer1, err := uc.hashAnswer("Pikachu")
	require.NoError(t, err)
	answer2, err := uc.hashAnswer("Pallet Town")
	require.NoError(t, err)

	return &User{
		ID:           1,
		Name:         "Ash",
		Email:        "ash@kanto.mx",
		Address:      "Pallet Town 1",
		PasswordHash: password,
		Question1:    3,
		Answer1Hash:  answer1,
		Question2:    2,
		Answer2Hash:  answer2,
	}
}

func validRegister() RegisterRequest {
	return RegisterRequest{
		Name:      "Misty",
		Email:     "  Misty@Cerulean.MX ",
		Password:  "starmie",
		Address:   "Cerulean Gym",
		Question1: 1,
		Answer1:   "Psyduck",
		Question2: 2,
		Answer2:   "Cerulean",
	}
}

func TestRegister_Success(t *testing.T) {
	// Arrange
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()

	repo.On("GetUserByEmail", ctx, "misty@cerulean.mx").Return(nil, ErrNotFound)
	repo.On("CreateUser", ctx, mock.AnythingOfType("*auth.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*User).ID = 42
		}).
		Return(nil)

	// Act
	user, err := uc.Register(ctx, validRegister())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "misty@cerulean.mx", user.Email)
	assert.NotEqual(t, "starmie", user.PasswordHash)
	assert.True(t, matches(user.PasswordHash, "starmie"))
	assert.True(t, matches(user.Answer1Hash, "psyduck"))
	repo.AssertExpectations(t)
}

func TestRegister_EmailInUse(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()

	repo.On("GetUserByEmail", ctx, "misty@cerulean.mx").Return(&User{ID: 9}, nil)

	_, err := uc.Register(ctx, validRegister())

	assert.ErrorIs(t, err, ErrEmailInUse)
	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegister_Validation(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)

	weak := validRegister()
	weak.Password = "123"
	_, err := uc.Register(context.Background(), weak)
	assert.ErrorIs(t, err, ErrWeakPassword)

	sameQuestion := validRegister()
	sameQuestion.Question2 = sameQuestion.Question1
	_, err = uc.Register(context.Background(), sameQuestion)
	assert.ErrorIs(t, err, ErrInvalidQuestion)

	repo.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()
	user := storedUser(t, uc)

	repo.On("GetUserByEmail", ctx, "ash@kanto.mx").Return(user, nil)
	repo.On("GetUserByEmail", ctx, "gary@kanto.mx").Return(nil, ErrNotFound)

	got, err := uc.Login(ctx, LoginRequest{Email: "ASH@kanto.mx", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = uc.Login(ctx, LoginRequest{Email: "ash@kanto.mx", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = uc.Login(ctx, LoginRequest{Email: "gary@kanto.mx", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_RepositoryFailure(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()

	repo.On("GetUserByEmail", ctx, "ash@kanto.mx").Return(nil, errors.New("connection refused"))

	_, err := uc.Login(ctx, LoginRequest{Email: "ash@kanto.mx", Password: "secret123"})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateUser_ProfileOnly(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()
	user := storedUser(t, uc)
	oldAnswer := user.Answer1Hash

	repo.On("GetUserByID", ctx, int64(1)).Return(user, nil)
	repo.On("UpdateUser", ctx, user).Return(nil)

	updated, err := uc.UpdateUser(ctx, 1, UpdateUserRequest{
		Name:    "Ash Ketchum",
		Email:   "ash@kanto.mx",
		Address: "Pallet Town 2",
	})

	require.NoError(t, err)
	assert.Equal(t, "Ash Ketchum", updated.Name)
	assert.Equal(t, "Pallet Town 2", updated.Address)
	assert.Equal(t, oldAnswer, updated.Answer1Hash)
	repo.AssertExpectations(t)
}

func TestUpdateUser_EmailTakenByOther(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()
	user := storedUser(t, uc)

	repo.On("GetUserByID", ctx, int64(1)).Return(user, nil)
	repo.On("GetUserByEmail", ctx, "brock@pewter.mx").Return(&User{ID: 2}, nil)

	_, err := uc.UpdateUser(ctx, 1, UpdateUserRequest{Name: "Ash", Email: "brock@pewter.mx", Address: "x"})

	assert.ErrorIs(t, err, ErrEmailInUse)
	repo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestUpdateUser_ChangingQuestionRequiresAnswer(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()
	user := storedUser(t, uc)

	repo.On("GetUserByID", ctx, int64(1)).Return(user, nil)

	q := 5
	_, err := uc.UpdateUser(ctx, 1, UpdateUserRequest{Name: "Ash", Email: "ash@kanto.mx", Address: "x", Question1: &q})

	assert.ErrorIs(t, err, ErrInvalidQuestion)
}

func TestUpdateUser_ChangesQuestionAndAnswer(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()
	user := storedUser(t, uc)

	repo.On("GetUserByID", ctx, int64(1)).Return(user, nil)
	repo.On("UpdateUser", ctx, user).Return(nil)

	q, answer := 5, "Viridian School"
	updated, err := uc.UpdateUser(ctx, 1, UpdateUserRequest{
		Name: "Ash", Email: "ash@kanto.mx", Address: "x",
		Question1: &q, Answer1: &answer,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, updated.Question1)
	assert.True(t, matches(updated.Answer1Hash, "viridian school"))
}

func TestUpdateUser_NotFound(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()

	repo.On("GetUserByID", ctx, int64(7)).Return(nil, ErrNotFound)

	_, err := uc.UpdateUser(ctx, 7, UpdateUserRequest{Name: "A", Email: "a@b.mx", Address: "x"})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()

	repo.On("DeleteUser", ctx, int64(1)).Return(nil)
	repo.On("DeleteUser", ctx, int64(2)).Return(ErrNotFound)

	assert.NoError(t, uc.DeleteUser(ctx, 1))
	assert.ErrorIs(t, uc.DeleteUser(ctx, 2), ErrNotFound)
}

func TestOrderHistory(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()

	history := []HistoryOrder{{ID: 3, Status: "COMPLETED"}}
	repo.On("GetUserByID", ctx, int64(1)).Return(&User{ID: 1}, nil)
	repo.On("GetOrderHistory", ctx, int64(1)).Return(history, nil)

	orders, err := uc.OrderHistory(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, history, orders)
}

func TestSecurityQuestions(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()
	user := storedUser(t, uc)

	repo.On("GetUserByEmail", ctx, "ash@kanto.mx").Return(user, nil)

	resp, err := uc.SecurityQuestions(ctx, "ash@kanto.mx")

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Question1.ID)
	assert.Equal(t, securityQuestions[3], resp.Question1.Text)
	assert.Equal(t, 2, resp.Question2.ID)
}

func TestResetPassword(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()
	user := storedUser(t, uc)

	repo.On("GetUserByEmail", ctx, "ash@kanto.mx").Return(user, nil)

	var newHash string
	repo.On("UpdatePassword", ctx, int64(1), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			newHash = args.String(2)
		}).
		Return(nil)

	err := uc.ResetPassword(ctx, ResetPasswordRequest{
		Email:       "ash@kanto.mx",
		Answer1:     "  pikachu ",
		Answer2:     "PALLET   TOWN",
		NewPassword: "new-secret",
	})

	require.NoError(t, err)
	assert.True(t, matches(newHash, "new-secret"))
}

func TestResetPassword_WrongAnswer(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()
	user := storedUser(t, uc)

	repo.On("GetUserByEmail", ctx, "ash@kanto.mx").Return(user, nil)

	err := uc.ResetPassword(ctx, ResetPasswordRequest{
		Email:       "ash@kanto.mx",
		Answer1:     "Pikachu",
		Answer2:     "Viridian City",
		NewPassword: "new-secret",
	})

	assert.ErrorIs(t, err, ErrInvalidAnswers)
	repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_WeakPassword(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)

	err := uc.ResetPassword(context.Background(), ResetPasswordRequest{
		Email: "ash@kanto.mx", Answer1: "a", Answer2: "b", NewPassword: "123",
	})

	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegister_PasswordLengthCountsCharacters(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)

	req := validRegister()
	req.Password = "ñññ" // 6 bytes, 3 caracteres
	_, err := uc.Register(context.Background(), req)

	assert.ErrorIs(t, err, ErrWeakPassword)
	repo.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
}

func TestRegister_SecretsAboveBcryptLimit(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()

	longPassword := validRegister()
	longPassword.Password = strings.Repeat("a", 80)
	_, err := uc.Register(ctx, longPassword)
	assert.ErrorIs(t, err, ErrSecretTooLong)

	longAnswer := validRegister()
	longAnswer.Answer2 = strings.Repeat("pallet town ", 7)
	_, err = uc.Register(ctx, longAnswer)
	assert.ErrorIs(t, err, ErrSecretTooLong)

	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegister_PasswordAtBcryptLimit(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()

	repo.On("GetUserByEmail", ctx, "misty@cerulean.mx").Return(nil, ErrNotFound)
	repo.On("CreateUser", ctx, mock.AnythingOfType("*auth.User")).Return(nil)

	req := validRegister()
	req.Password = strings.Repeat("a", 72)
	user, err := uc.Register(ctx, req)

	require.NoError(t, err)
	assert.True(t, matches(user.PasswordHash, req.Password))
}

func TestResetPassword_NewPasswordTooLong(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)

	err := uc.ResetPassword(context.Background(), ResetPasswordRequest{
		Email: "ash@kanto.mx", Answer1: "a", Answer2: "b", NewPassword: strings.Repeat("x", 73),
	})

	assert.ErrorIs(t, err, ErrSecretTooLong)
	repo.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
}

func TestUpdateUser_AnswerTooLong(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	ctx := context.Background()
	user := storedUser(t, uc)

	repo.On("GetUserByID", ctx, int64(1)).Return(user, nil)

	answer := strings.Repeat("b", 100)
	_, err := uc.UpdateUser(ctx, 1, UpdateUserRequest{Name: "Ash", Email: "ash@kanto.mx", Address: "x", Answer1: &answer})

	assert.ErrorIs(t, err, ErrSecretTooLong)
	repo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}
