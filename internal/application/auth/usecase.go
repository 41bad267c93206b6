package auth

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-pos/internal/application/dto"
	"github.com/jhoicas/erp-pos/internal/application/ports"
	"github.com/jhoicas/erp-pos/internal/domain"
	"github.com/jhoicas/erp-pos/internal/domain/entity"
	"github.com/jhoicas/erp-pos/internal/domain/record"
	"github.com/jhoicas/erp-pos/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	store   ports.RecordStore
	auditor ports.Auditor
	jwtCfg  JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth. auditor puede ser nil.
func NewAuthUseCase(store ports.RecordStore, auditor ports.Auditor, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{store: store, auditor: auditor, jwtCfg: jwtCfg}
}

// RegisterUser crea un usuario: hashea password con bcrypt y persiste.
// Username o email ya usados (sin distinguir mayúsculas) devuelven ErrDuplicate.
// Un rol con permisos que actorRole no tiene devuelve ErrForbidden.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, actorID, actorRole string, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("username, email y password son obligatorios: %w", domain.ErrInvalidInput)
	}
	role := in.Role
	if role == "" {
		role = entity.RoleViewer
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("rol %q: %w", role, domain.ErrInvalidInput)
	}
	if !CanGrant(actorRole, role) {
		return nil, fmt.Errorf("asignar rol %q: %w", role, domain.ErrForbidden)
	}
	users, err := uc.users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if sameIdentifier(u.Username, in.Username) || sameIdentifier(u.Email, in.Email) {
			return nil, domain.ErrDuplicate
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	fullname := in.Fullname
	if fullname == "" {
		fullname = in.Username
	}
	rec, err := record.Encode(entity.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		Fullname:     fullname,
		Status:       entity.UserStatusActive,
	})
	if err != nil {
		return nil, err
	}
	delete(rec, record.FieldID)
	saved, err := uc.store.Save(ctx, record.Users, rec)
	if err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	var user entity.User
	if err := record.Decode(saved, &user); err != nil {
		return nil, err
	}
	if uc.auditor != nil {
		uc.auditor.Record(ctx, actorID, entity.AuditCreate, string(record.Users), nil, ToUserResponse(&user))
	}
	return ToUserResponse(&user), nil
}

// Login busca por username o email (sin distinguir mayúsculas), verifica el password y
// genera el JWT. Usuario inexistente → ErrUserNotFound; password incorrecto → ErrUnauthorized;
// usuario inactivo → ErrForbidden.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	users, err := uc.users(ctx)
	if err != nil {
		return nil, err
	}
	var user *entity.User
	for i := range users {
		if sameIdentifier(users[i].Username, in.Username) || sameIdentifier(users[i].Email, in.Username) {
			user = &users[i]
			break
		}
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:       token,
		User:        *ToUserResponse(user),
		Permissions: RolePermissions(user.Role),
	}, nil
}

// ListUsers devuelve todos los usuarios sin password_hash.
func (uc *AuthUseCase) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := uc.users(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *ToUserResponse(&users[i]))
	}
	return out, nil
}

// SetStatus activa o desactiva un usuario. Sólo sobre usuarios cuyo rol actorRole podría asignar.
func (uc *AuthUseCase) SetStatus(ctx context.Context, actorID, actorRole, userID, status string) (*dto.UserResponse, error) {
	if status != entity.UserStatusActive && status != entity.UserStatusInactive {
		return nil, fmt.Errorf("estado %q: %w", status, domain.ErrInvalidInput)
	}
	old, err := uc.store.Get(ctx, record.Users, userID)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, domain.ErrUserNotFound
	}
	if !CanGrant(actorRole, old.String("role")) {
		return nil, fmt.Errorf("usuario %s: %w", userID, domain.ErrForbidden)
	}
	saved, err := uc.store.Save(ctx, record.Users, record.Record{"id": userID, "status": status})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	var user entity.User
	if err := record.Decode(record.Merge(old, saved), &user); err != nil {
		return nil, err
	}
	if uc.auditor != nil {
		uc.auditor.Record(ctx, actorID, entity.AuditUpdate, string(record.Users),
			map[string]any{"status": old.String("status")}, map[string]any{"status": status})
	}
	return ToUserResponse(&user), nil
}

func (uc *AuthUseCase) users(ctx context.Context) ([]entity.User, error) {
	recs, err := uc.store.GetAll(ctx, record.Users)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]entity.User, 0, len(recs))
	for _, r := range recs {
		var u entity.User
		if err := record.Decode(r, &u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// sameIdentifier compara username/email con case folding Unicode. cases.Caser no es
// seguro para uso concurrente, por eso se crea uno por llamada.
func sameIdentifier(a, b string) bool {
	if a == "" {
		return false
	}
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

// ToUserResponse convierte la entidad en DTO sin password_hash.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Fullname:  u.Fullname,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
