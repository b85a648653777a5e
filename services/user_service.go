package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"train-booking-backend/metrics"
	"train-booking-backend/models"
	"train-booking-backend/utils"
)

// passwordCost is lowered in tests.
var passwordCost = bcrypt.DefaultCost

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,strongpassword"`
	Phone    string `json:"phone" validate:"omitempty,numeric,max=15"`
	Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

// UpdateUserInput replaces a user's profile. An empty password keeps the current one.
type UpdateUserInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"omitempty,strongpassword"`
	Phone    string `json:"phone" validate:"omitempty,numeric,max=15"`
	Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

type LoginInput struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type ResetPasswordInput struct {
	Password string `json:"password" validate:"required,strongpassword"`
}

type UserService struct {
	DB    *gorm.DB
	Clock func() time.Time
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db, Clock: time.Now}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeIdentity(username, email, role string) (string, string, string) {
	return strings.TrimSpace(username),
		strings.ToLower(strings.TrimSpace(email)),
		strings.ToUpper(strings.TrimSpace(role))
}

// checkIdentityFree reports a conflict when another user holds the username or email.
func checkIdentityFree(tx *gorm.DB, username, email string, excludeID uint) error {
	taken := func(column, value string) (bool, error) {
		q := tx.Model(&models.User{}).Where("LOWER("+column+") = ?", strings.ToLower(value))
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		var n int64
		err := q.Count(&n).Error
		return n > 0, err
	}

	if ok, err := taken("username", username); err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	} else if ok {
		return conflictf("Username %s is already taken", username)
	}
	if ok, err := taken("email", email); err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	} else if ok {
		return conflictf("Email %s is already registered", email)
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.UserResponse, error) {
	in.Username, in.Email, in.Role = normalizeIdentity(in.Username, in.Email, in.Role)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	role := models.RoleUser
	if in.Role != "" {
		role = models.Role(in.Role)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Phone:    in.Phone,
		Role:     role,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkIdentityFree(tx, in.Username, in.Email, 0); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.Log(ctx).WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	resp := models.NewUserResponse(user)
	return &resp, nil
}

// Login checks the password of the user matching the identifier by username
// first and by email second.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.LoginResponse, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	ident := strings.TrimSpace(in.UsernameOrEmail)
	logger := utils.Log(ctx).WithField("login", ident)

	db := s.DB.WithContext(ctx)
	var user models.User
	err := db.Where("username = ?", ident).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = db.Where("email = ?", strings.ToLower(ident)).First(&user).Error
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		metrics.Logins.WithLabelValues("failure").Inc()
		logger.Warn("login failed")
		return nil, ErrInvalidCredentials
	}

	metrics.Logins.WithLabelValues("success").Inc()
	logger.WithField("user_id", user.ID).Info("login succeeded")
	return &models.LoginResponse{
		Authenticated: true,
		Message:       "Login successful",
		UserID:        user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Role:          user.Role,
		LoginTime:     s.Clock().UTC(),
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.UserResponse, error) {
	u, found, err := findByID[models.User](s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if !found {
		return nil, notFound("User", id)
	}
	resp := models.NewUserResponse(u)
	return &resp, nil
}

func (s *UserService) findOne(ctx context.Context, field, column, value string) (*models.UserResponse, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where(column+" = ?", value).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "User", Field: field, Value: value}
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	resp := models.NewUserResponse(u)
	return &resp, nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.UserResponse, error) {
	return s.findOne(ctx, "username", "username", strings.TrimSpace(username))
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.UserResponse, error) {
	return s.findOne(ctx, "email", "email", strings.ToLower(strings.TrimSpace(email)))
}

func (s *UserService) findUsers(ctx context.Context, query string, args ...any) ([]models.UserResponse, error) {
	db := s.DB.WithContext(ctx)
	if query != "" {
		db = db.Where(query, args...)
	}
	var users []models.User
	if err := db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	return lo.Map(users, func(u models.User, _ int) models.UserResponse {
		return models.NewUserResponse(u)
	}), nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.UserResponse, error) {
	return s.findUsers(ctx, "")
}

func (s *UserService) UsersByRole(ctx context.Context, role string) ([]models.UserResponse, error) {
	r, ok := models.ParseRole(role)
	if !ok {
		return nil, validationf("Invalid role: %s", role)
	}
	return s.findUsers(ctx, "role = ?", r)
}

func (s *UserService) SearchUsersByUsername(ctx context.Context, q string) ([]models.UserResponse, error) {
	return s.findUsers(ctx, "LOWER(username) LIKE ?", contains(q))
}

func (s *UserService) SearchUsersByEmail(ctx context.Context, q string) ([]models.UserResponse, error) {
	return s.findUsers(ctx, "LOWER(email) LIKE ?", contains(q))
}

func (s *UserService) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*models.UserResponse, error) {
	in.Username, in.Email, in.Role = normalizeIdentity(in.Username, in.Email, in.Role)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"username": in.Username,
		"email":    in.Email,
		"phone":    in.Phone,
	}
	if in.Role != "" {
		updates["role"] = models.Role(in.Role)
	}
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, found, err := findByID[models.User](tx, id)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if !found {
			return notFound("User", id)
		}
		if err := checkIdentityFree(tx, in.Username, in.Email, id); err != nil {
			return err
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.Log(ctx).WithField("user_id", id).Info("user updated")
	return s.GetUser(ctx, id)
}

func (s *UserService) ResetPassword(ctx context.Context, id uint, in ResetPasswordInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return fmt.Errorf("failed to reset password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("User", id)
	}
	utils.Log(ctx).WithField("user_id", id).Info("password reset")
	return nil
}

// DeleteUser removes a user that owns no bookings.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, found, err := findByID[models.User](tx, id); err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		} else if !found {
			return notFound("User", id)
		}

		var refs int64
		if err := tx.Model(&models.Booking{}).Where("user_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to check bookings: %w", err)
		}
		if refs > 0 {
			return validationf("Cannot delete user with existing bookings")
		}
		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	utils.Log(ctx).WithField("user_id", id).Info("user deleted")
	return nil
}

func (s *UserService) exists(ctx context.Context, column, value string) (bool, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("LOWER("+column+") = ?", strings.ToLower(strings.TrimSpace(value))).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check %s: %w", column, err)
	}
	return n > 0, nil
}

func (s *UserService) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "username", username)
}

func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "email", email)
}
