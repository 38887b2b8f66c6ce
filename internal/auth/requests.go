package auth

// RegisterRequest representa a requisição de cadastro
type RegisterRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Address   string `json:"address" binding:"required"`
	Question1 int    `json:"question1" binding:"required"`
	Answer1   string `json:"answer1" binding:"required"`
	Question2 int    `json:"question2" binding:"required"`
	Answer2   string `json:"answer2" binding:"required"`
}

// LoginRequest representa a requisição de login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest representa a edição de perfil; perguntas são opcionais
type UpdateUserRequest struct {
	Name      string  `json:"name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Address   string  `json:"address" binding:"required"`
	Question1 *int    `json:"question1,omitempty"`
	Answer1   *string `json:"answer1,omitempty"`
	Question2 *int    `json:"question2,omitempty"`
	Answer2   *string `json:"answer2,omitempty"`
}

// SecurityQuestionsRequest pede as perguntas de um email
type SecurityQuestionsRequest struct {
	Email string `json:"email" binding:"required"`
}

// SecurityQuestionsResponse devolve as duas perguntas do usuário
type SecurityQuestionsResponse struct {
	Email     string           `json:"email"`
	Question1 SecurityQuestion `json:"question1"`
	Question2 SecurityQuestion `json:"question2"`
}

// ResetPasswordRequest representa a recuperação de senha por perguntas
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Answer1     string `json:"answer1" binding:"required"`
	Answer2     string `json:"answer2" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}
