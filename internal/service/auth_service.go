package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"rev-saas-api/internal/model"
	mongorepo "rev-saas-api/internal/repository/mongo"
)

var (
	// ErrEmailAlreadyInUse is returned when the email is already registered.
	ErrEmailAlreadyInUse = errors.New("email is already in use")
	// ErrInvalidCredentials is returned when email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// SignupInput contains the data needed to register a new agency staff user.
// Authentication and multi-tenant packaging are external collaborators per
// spec.md §1 — this covers only what the HTTP layer needs to know who is
// asking before handing a request to the analytics core.
type SignupInput struct {
	Email      string
	Password   string
	FullName   string
	AgencyID   primitive.ObjectID
	Role       string
}

// AuthService handles agency-staff authentication. Email verification,
// billing plans, and company onboarding are out of scope — those concerns
// belong to the agency's own external identity system, not this engine.
type AuthService struct {
	users *mongorepo.UserRepository
	jwt   *JWTService
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *mongorepo.UserRepository, jwt *JWTService) *AuthService {
	return &AuthService{
		users: users,
		jwt:   jwt,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Register creates a new agency staff account.
func (s *AuthService) Register(ctx context.Context, input SignupInput) (*model.AgencyUser, error) {
	input.Email = normalizeEmail(input.Email)

	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyInUse
	}

	if len(input.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = model.RoleStaff
	}

	user := &model.AgencyUser{
		AgencyID: input.AgencyID,
		Email:    input.Email,
		Password: string(hashed),
		FullName: strings.TrimSpace(input.FullName),
		Role:     role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	user.Password = ""
	return user, nil
}

// Login authenticates an agency staff user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.AgencyUser, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID.Hex(), user.AgencyID.Hex(), user.Role)
	if err != nil {
		return "", nil, err
	}

	user.Password = ""
	return token, user, nil
}

// GetUserByID retrieves an agency user by their ID string.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.AgencyUser, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid user id")
	}
	user, err := s.users.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	user.Password = ""
	return user, nil
}

// UpdateProfile updates an agency user's mutable profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, fullName, role string) (*model.AgencyUser, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if fullName != "" {
		user.FullName = fullName
	}
	if role != "" {
		user.Role = role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
