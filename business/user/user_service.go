package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"spiceMarket/domain"
	"spiceMarket/pkg/logger"
	"spiceMarket/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(ctx context.Context, toName, toEmail, subject, message string) error
}

// TokenManager signs and parses the access and password reset tokens.
type TokenManager interface {
	GenerateJWT(userID, role string, ttl time.Duration) (string, error)
	GenerateResetJWT(email, otp string, ttl time.Duration) (string, error)
	GenerateResetVerifiedJWT(email string, ttl time.Duration) (string, error)
	ParseJWT(token string) (*utils.Claims, error)
	CheckOTP(claims *utils.Claims, otp string) bool
}

// AttemptCounter counts OTP guesses per reset token.
type AttemptCounter interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

const (
	AccessTokenTTL = time.Hour
	ResetTokenTTL  = 15 * time.Minute
	MaxOTPAttempts = 5

	SubjectWelcome   = "Welcome to Spice Market!"
	EmailBodyWelcome = "Hello %v,\nyour account %q is ready. Happy cooking!"

	SubjectPasswordReset   = "Your password reset code"
	EmailBodyPasswordReset = "Hello %v,\nyour one-time code is %v.\nIt expires in %v minutes."
)

type RegisterInput struct {
	Name            string `validate:"required,max=100"`
	Email           string `validate:"required,email"`
	Username        string `validate:"required,min=3,max=50"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required"`
	PhoneNumber     string `validate:"required,min=7,max=20"`
}

type userService struct {
	userRepo  UserRepository
	validate  *validator.Validate
	notifRepo NotificationRepository
	tokens    TokenManager
	attempts  AttemptCounter
}

// NewUserService builds the service. A nil attempts counter disables the
// OTP attempt limit.
func NewUserService(
	userRepo UserRepository,
	validate *validator.Validate,
	notifRepo NotificationRepository,
	tokens TokenManager,
	attempts AttemptCounter,
) *userService {
	return &userService{
		userRepo:  userRepo,
		validate:  validate,
		notifRepo: notifRepo,
		tokens:    tokens,
		attempts:  attempts,
	}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.TrimSpace(input.Username)

	if input.Password != input.ConfirmPassword {
		logger.Warn("Register rejected: password mismatch", "username", input.Username)
		return domain.User{}, domain.ErrPasswordMismatch
	}

	if err := s.validate.Struct(input); err != nil {
		logger.Error("Invalid register input", err)
		return domain.User{}, domain.NewValidationError("invalid registration data: %v", err)
	}

	if _, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil {
		return domain.User{}, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		logger.Error("Failed to check username", err)
		return domain.User{}, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, input.Email); err == nil {
		return domain.User{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		logger.Error("Failed to check email", err)
		return domain.User{}, err
	}

	passwordHash, err := utils.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := domain.User{
		Name:        input.Name,
		Email:       input.Email,
		Username:    input.Username,
		PhoneNumber: input.PhoneNumber,
		Password:    string(passwordHash),
		Role:        domain.RoleCustomer,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return domain.User{}, err
	}

	err = s.notifRepo.SendEmail(ctx, newUser.Name, newUser.Email, SubjectWelcome, fmt.Sprintf(EmailBodyWelcome, newUser.Name, newUser.Username))
	if err != nil {
		logger.Warn("Failed to send welcome email", err)
	}

	newUser.Password = ""
	return newUser, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.User{}, domain.ErrBadCredentials
		}
		logger.Error("Failed to find user for login", err)
		return "", domain.User{}, err
	}

	if !utils.CheckPassword(password, user.Password) {
		logger.Warn("User password incorrect", "username", user.Username)
		return "", domain.User{}, domain.ErrBadCredentials
	}

	userIdStr := strconv.FormatUint(uint64(user.ID), 10)
	token, err := s.tokens.GenerateJWT(userIdStr, user.Role, AccessTokenTTL)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return "", domain.User{}, fmt.Errorf("failed to generate token: %w", err)
	}

	user.Password = ""
	return token, user, nil
}

// ForgotPassword mails a one-time code and returns the signed token that
// carries it. Nothing is stored server-side.
func (s *userService) ForgotPassword(ctx context.Context, email string) (string, error) {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", domain.NewValidationError("invalid email format")
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		logger.Error("Failed to generate otp", err)
		return "", err
	}

	token, err := s.tokens.GenerateResetJWT(user.Email, otp, ResetTokenTTL)
	if err != nil {
		logger.Error("Failed to generate reset token", err)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	body := fmt.Sprintf(EmailBodyPasswordReset, user.Name, otp, int(ResetTokenTTL.Minutes()))
	if err := s.notifRepo.SendEmail(ctx, user.Name, user.Email, SubjectPasswordReset, body); err != nil {
		logger.Error("Failed to send otp email", err)
		return "", fmt.Errorf("%w: %v", domain.ErrMailFailure, err)
	}

	return token, nil
}

// VerifyOTP checks the code against the reset token and exchanges it for a
// short-lived token that authorises ResetPassword.
func (s *userService) VerifyOTP(ctx context.Context, resetToken, otp string) (string, error) {
	claims, err := s.parseToken(resetToken, utils.PurposePasswordReset)
	if err != nil {
		return "", err
	}

	remaining := ResetTokenTTL
	if claims.ExpiresAt != nil {
		remaining = time.Until(claims.ExpiresAt.Time)
	}

	if err := s.countAttempt(ctx, claims, remaining); err != nil {
		return "", err
	}

	if !s.tokens.CheckOTP(claims, strings.TrimSpace(otp)) {
		logger.Warn("OTP mismatch", "email", claims.Email)
		return "", domain.ErrInvalidOTP
	}

	token, err := s.tokens.GenerateResetVerifiedJWT(claims.Email, remaining)
	if err != nil {
		logger.Error("Failed to generate verified reset token", err)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return token, nil
}

// countAttempt records one OTP guess against the reset token. The counter
// lives as long as the token, so a fresh ForgotPassword starts over.
func (s *userService) countAttempt(ctx context.Context, claims *utils.Claims, ttl time.Duration) error {
	if s.attempts == nil {
		return nil
	}

	key := claims.ID
	if key == "" {
		key = claims.Email
	}

	count, err := s.attempts.Increment(ctx, "otp_attempts:"+key, ttl)
	if err != nil {
		logger.Error("Failed to count OTP attempt", err)
		return fmt.Errorf("failed to count otp attempt: %w", err)
	}

	if count > MaxOTPAttempts {
		logger.Warn("OTP attempts exhausted", "email", claims.Email, "attempts", count)
		return domain.ErrTooManyAttempts
	}

	return nil
}

func (s *userService) ResetPassword(ctx context.Context, verifiedToken, newPassword string) error {
	claims, err := s.parseToken(verifiedToken, utils.PurposeResetVerified)
	if err != nil {
		return err
	}

	if err := s.validate.Var(newPassword, "required,min=6"); err != nil {
		return domain.NewValidationError("password must be at least 6 characters")
	}

	user, err := s.userRepo.FindByEmail(ctx, claims.Email)
	if err != nil {
		logger.Error("Reset password: user lookup failed", err)
		return err
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(passwordHash)); err != nil {
		logger.Error("Failed to update password", err)
		return err
	}

	logger.Info("Password reset", "user_id", user.ID)
	return nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get user by ID", err)
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}

// GetAllUsers retrieves all users
func (s *userService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to get all users", err)
		return nil, err
	}

	for i := range users {
		users[i].Password = ""
	}

	return users, nil
}

func (s *userService) parseToken(token, purpose string) (*utils.Claims, error) {
	claims, err := s.tokens.ParseJWT(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	if claims.Purpose != purpose || claims.Email == "" {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
