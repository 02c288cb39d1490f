package rest

import (
	"context"
	"net/http"
	"time"

	"spiceMarket/business/user"
	"spiceMarket/domain"
	"spiceMarket/internal/middleware"
	"spiceMarket/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type UserService interface {
	Register(ctx context.Context, input user.RegisterInput) (domain.User, error)
	Login(ctx context.Context, username, password string) (string, domain.User, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, resetToken, otp string) (string, error)
	ResetPassword(ctx context.Context, verifiedToken, newPassword string) error
	GetUserByID(ctx context.Context, id uint) (domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
}

type UserHandler struct {
	userService UserService
	validator   *validator.Validate
	timeout     time.Duration
}

func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
		timeout:     10 * time.Second,
	}
}

type UserRegisterRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	PhoneNumber     string `json:"phoneNumber" validate:"required"`
}

type UserLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	OTP string `json:"OTP" validate:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var reqUser UserRegisterRequest

	if err := c.Bind(&reqUser); err != nil {
		return badRequest(c, err, "Invalid request body")
	}

	if err := h.validator.Struct(&reqUser); err != nil {
		return badRequest(c, err, "Failed to validation user register")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	newUser, err := h.userService.Register(ctx, user.RegisterInput{
		Name:            reqUser.Name,
		Email:           reqUser.Email,
		Username:        reqUser.Username,
		Password:        reqUser.Password,
		ConfirmPassword: reqUser.ConfirmPassword,
		PhoneNumber:     reqUser.PhoneNumber,
	})
	if err != nil {
		return writeError(c, err, "Failed to register user")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"user":    newUser,
	})
}

func (h *UserHandler) Login(c echo.Context) error {
	var reqUser UserLoginRequest

	if err := c.Bind(&reqUser); err != nil {
		return badRequest(c, err, "Failed to bind request")
	}

	if err := h.validator.Struct(&reqUser); err != nil {
		return badRequest(c, err, "Failed to validate user login")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	token, loggedIn, err := h.userService.Login(ctx, reqUser.Username, reqUser.Password)
	if err != nil {
		return writeError(c, err, "Failed to login with user")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user":    loggedIn,
	})
}

func (h *UserHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest

	if err := c.Bind(&req); err != nil {
		return badRequest(c, err, "Invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err, "Failed to validate forgot password request")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	token, err := h.userService.ForgotPassword(ctx, req.Email)
	if err != nil {
		return writeError(c, err, "Failed to start password reset")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "A one-time code has been sent to your email",
		"token":   token,
	})
}

// VerifyOTP expects the token from ForgotPassword as bearer and answers with
// the token ResetPassword accepts. Each reset token allows a limited number of
// guesses; past that it answers 429 and the user has to request a new code.
func (h *UserHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest

	if err := c.Bind(&req); err != nil {
		return badRequest(c, err, "Invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err, "Failed to validate otp request")
	}

	resetToken, _ := c.Get(middleware.ContextToken).(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	verified, err := h.userService.VerifyOTP(ctx, resetToken, req.OTP)
	if err != nil {
		return writeError(c, err, "Failed to verify otp")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "OTP verified",
		"token":   verified,
	})
}

// ResetPassword sets a new password. Its bearer must be the
// password_reset_verified token returned by VerifyOTP; the token from
// ForgotPassword is rejected with 401, so a client cannot skip the OTP step
// by sending the first token straight here.
func (h *UserHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest

	if err := c.Bind(&req); err != nil {
		return badRequest(c, err, "Invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err, "Failed to validate reset password request")
	}

	verifiedToken, _ := c.Get(middleware.ContextToken).(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.userService.ResetPassword(ctx, verifiedToken, req.NewPassword); err != nil {
		return writeError(c, err, "Failed to reset password")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Password updated successfully",
	})
}

// Me returns the profile of the authenticated user.
func (h *UserHandler) Me(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextUserID).(uint)
	if !ok {
		logger.Error("Failed to get user_id from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	profile, err := h.userService.GetUserByID(ctx, userID)
	if err != nil {
		return writeError(c, err, "Failed to get user profile")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user": profile,
	})
}

// GetAllUsers handles getting all users
func (h *UserHandler) GetAllUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	users, err := h.userService.GetAllUsers(ctx)
	if err != nil {
		return writeError(c, err, "Failed to get all users")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Users retrieved successfully",
		"users":   users,
	})
}
