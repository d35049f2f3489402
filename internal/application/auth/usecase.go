package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
	"github.com/jhoicas/clinica-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase registro de usuarios y login.
type UseCase struct {
	tx         ports.TxRunner
	repo       repository.UserRepository
	audit      *audit.Recorder
	clock      clock.Clock
	jwtCfg     JWTConfig
	bcryptCost int
}

// NewUseCase construye el caso de uso de auth. bcryptCost es el costo por instalación.
func NewUseCase(tx ports.TxRunner, repo repository.UserRepository, rec *audit.Recorder, c clock.Clock, jwtCfg JWTConfig, bcryptCost int) *UseCase {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UseCase{tx: tx, repo: repo, audit: rec, clock: c, jwtCfg: jwtCfg, bcryptCost: bcryptCost}
}

// CreateUser crea un usuario: hashea el password con bcrypt y persiste. ErrUsernameTaken si ya existe.
func (uc *UseCase) CreateUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	username := normalizeUsername(in.Username)
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.bcryptCost)
	if err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.UserResponse
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		existing, err := r.Users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrUsernameTaken.WithMessage("username %q is already registered", username)
		}
		now := uc.clock.Now()
		user := &entity.User{
			Username:     username,
			PasswordHash: string(hash),
			Name:         in.Name,
			Role:         in.Role,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		resp := toUserResponse(user)
		if err := uc.audit.Created(ctx, r.Audit, audit.ModuleUsers, "user", user.ID, resp); err != nil {
			return err
		}
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Login verifica usuario/password, genera JWT y retorna token + usuario.
// Un password heredado en texto plano se acepta una vez y se reemplaza por su hash bcrypt.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var user *entity.User
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		u, err := r.Users.GetByUsername(ctx, normalizeUsername(in.Username))
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrUnauthorized
		}
		rehash, ok := uc.verify(u.PasswordHash, in.Password)
		if !ok {
			return domain.ErrUnauthorized
		}
		if !u.Active {
			return domain.ErrInactiveUser
		}
		if rehash {
			hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.bcryptCost)
			if err != nil {
				return err
			}
			if err := r.Users.UpdatePasswordHash(ctx, u.ID, string(hash)); err != nil {
				return err
			}
			u.PasswordHash = string(hash)
			snap := map[string]interface{}{"id": u.ID, "password": "rehashed"}
			if err := uc.audit.Updated(ctx, r.Audit, audit.ModuleUsers, "user", u.ID, nil, snap); err != nil {
				return err
			}
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: toUserResponse(user)}, nil
}

// verify compara el password contra el valor almacenado. rehash indica que el valor guardado
// es texto plano heredado o un bcrypt con costo menor al configurado.
func (uc *UseCase) verify(stored, password string) (rehash, ok bool) {
	cost, err := bcrypt.Cost([]byte(stored))
	if err != nil {
		if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
			return false, false
		}
		return true, true
	}
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) != nil {
		return false, false
	}
	return cost < uc.bcryptCost, true
}

// GetByID devuelve un usuario (perfil del actor autenticado).
func (uc *UseCase) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound.WithMessage("user %d not found", id)
	}
	out := toUserResponse(u)
	return &out, nil
}

// List lista los usuarios registrados.
func (uc *UseCase) List(ctx context.Context) ([]dto.UserResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}
