package dto

// RegisterRequest entrada para crear un usuario (password en texto, se hashea en el caso de uso).
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Fullname string `json:"fullname" validate:"omitempty,max=200"`
	Role     string `json:"role" validate:"omitempty"`
}

// UserResponse salida de un usuario (sin password_hash).
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Fullname  string `json:"fullname"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// LoginRequest entrada para login: username o email más password.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT y usuario.
type LoginResponse struct {
	Token       string       `json:"token"`
	User        UserResponse `json:"user"`
	Permissions []string     `json:"permissions"`
}

// UserStatusRequest cambio de estado de un usuario (active | inactive).
type UserStatusRequest struct {
	Status string `json:"status"`
}
