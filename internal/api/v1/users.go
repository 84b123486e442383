package v1

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nahidhasan/feedpulse/internal/auth"
	user "github.com/nahidhasan/feedpulse/internal/models/user"
	"github.com/nahidhasan/feedpulse/pkg/utils"
)

func Register(c *fiber.Ctx) error {
	type UserInput struct {
		FullName        string `json:"full_name" validate:"required,min=2,max=100"`
		Username        string `json:"username" validate:"required,min=3,max=50,username"`
		Email           string `json:"email" validate:"required,email,max=100"`
		Password        string `json:"password" validate:"required,min=6,eqfield=ConfirmPassword"`
		ConfirmPassword string `json:"confirm_password" validate:"required,min=6"`
	}
	ui := new(UserInput)
	if err := utils.StrictBodyParser(c, ui); err != nil {
		Logger.Warn(c.Context()).Logs(fmt.Sprintf("Failed to parse request body: %v", err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}

	if err := Validator.Validate(ui); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err,
		})
	}

	hashedPass, err := utils.HashPassword(ui.Password)
	if err != nil {
		Logger.Error(c.Context()).Logs(fmt.Sprintf("Failed to hash password: %v", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process password",
		})
	}

	u, err := user.NewUser(c.Context(), Redis, DB, ui.Username, ui.Email, hashedPass, user.WithFullName(ui.FullName))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate") {
			Logger.Warn(c.Context()).Logs(fmt.Sprintf("Duplicate username or email: %s", ui.Email))
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Username or email already exists",
			})
		}
		Logger.Error(c.Context()).Logs(fmt.Sprintf("Failed to create user: %v", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	if err := utils.SendWelcomeEmail(c.Context(), EmailCfg, u.Email, u.Username, Logger); err != nil {
		Logger.Warn(c.Context()).Logs(fmt.Sprintf("Welcome email failed but user created: %v", err))
	}

	Logger.Info(c.Context()).Logs(fmt.Sprintf("User registered: %s (ID: %s)", u.Username, u.ID.String()))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"user": fiber.Map{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
		},
	})
}

// Login authenticates a user and issues access/refresh cookies.
func Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email,max=100"`
		Password string `json:"password" validate:"required,min=6,max=100"`
	}

	var lr LoginRequest
	if err := utils.StrictBodyParser(c, &lr); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}

	ipKey := "login:ip:" + c.IP()
	if count, err := Redis.Get(c.Context(), ipKey).Int(); err == nil && count >= 5 {
		Logger.Warn(c.Context()).WithMeta(utils.Map{"ip": c.IP()}).Logs("Login rate limit exceeded")
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many login attempts. Try again later.",
		})
	}
	Redis.Incr(c.Context(), ipKey)
	Redis.Expire(c.Context(), ipKey, 15*time.Minute)

	if err := Validator.Validate(lr); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err,
		})
	}

	lr.Email = strings.ToLower(strings.TrimSpace(lr.Email))

	u, err := user.GetUserBy(c.Context(), Redis, DB, "email = ?", []interface{}{lr.Email})
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}

	if err := utils.ComparePasswords(u.Password, lr.Password); err != nil {
		Logger.Warn(c.Context()).WithMeta(utils.Map{"email": lr.Email}).Logs("Invalid password provided")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}

	accessToken, err := auth.GenerateAccessToken(u.ID.String())
	if err != nil {
		Logger.Error(c.Context()).Logs(fmt.Sprintf("Failed to generate access token: %v", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process login",
		})
	}
	refreshToken := auth.GenerateRefreshToken()

	refreshKey := "refresh:" + refreshToken
	if err := Redis.Set(c.Context(), refreshKey, u.ID.String(), 7*24*time.Hour).Err(); err != nil {
		Logger.Warn(c.Context()).Logs(fmt.Sprintf("Failed to store refresh token: %v", err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Expires:  time.Now().Add(auth.AccessTokenTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Strict",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Strict",
	})

	Redis.Del(c.Context(), ipKey)

	Logger.Info(c.Context()).Logs(fmt.Sprintf("User logged in: %s", u.Username))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Login successful",
		"user": fiber.Map{
			"id":        u.ID,
			"username":  u.Username,
			"email":     u.Email,
			"full_name": u.FullName,
			"avatar":    u.AvatarURL,
		},
	})
}

// Logout blacklists the caller's tokens and clears the cookies.
func Logout(c *fiber.Ctx) error {
	accessToken := c.Cookies("access_token")
	refreshToken := c.Cookies("refresh_token")

	if accessToken != "" {
		if err := Redis.Set(c.Context(), "blacklist:access:"+accessToken, "invalid", auth.AccessTokenTTL).Err(); err != nil {
			Logger.Warn(c.Context()).Logs(fmt.Sprintf("Failed to blacklist access token: %v", err))
		}
	}
	if refreshToken != "" {
		if err := Redis.Set(c.Context(), "blacklist:refresh:"+refreshToken, "invalid", 7*24*time.Hour).Err(); err != nil {
			Logger.Warn(c.Context()).Logs(fmt.Sprintf("Failed to blacklist refresh token: %v", err))
		}
		Redis.Del(c.Context(), "refresh:"+refreshToken)
	}

	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{Name: "access_token", Value: "", Expires: expired, HTTPOnly: true, Secure: true, SameSite: "Strict"})
	c.Cookie(&fiber.Cookie{Name: "refresh_token", Value: "", Expires: expired, HTTPOnly: true, Secure: true, SameSite: "Strict"})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logout successful",
	})
}

// GetProfile returns a user's public profile by username.
func GetProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	u, err := user.GetUserBy(c.Context(), Redis, DB, "username = ?", []interface{}{username}, "Followers", "Following")
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":         u.ID,
		"username":   u.Username,
		"full_name":  u.FullName,
		"bio":        u.Bio,
		"avatar_url": u.AvatarURL,
		"followers":  len(u.Followers),
		"following":  len(u.Following),
		"created_at": u.CreatedAt,
	})
}

// UpdateProfile updates the caller's display fields.
func UpdateProfile(c *fiber.Ctx) error {
	type ProfileInput struct {
		FullName  string `json:"full_name" validate:"omitempty,min=2,max=100"`
		Bio       string `json:"bio" validate:"omitempty,max=255"`
		AvatarURL string `json:"avatar_url" validate:"omitempty,url,max=500"`
	}
	pi := new(ProfileInput)
	if err := utils.StrictBodyParser(c, pi); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}
	if err := Validator.Validate(pi); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err,
		})
	}

	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var opts []user.UserOption
	if pi.FullName != "" {
		opts = append(opts, user.WithFullName(pi.FullName))
	}
	if pi.Bio != "" {
		opts = append(opts, user.WithBio(pi.Bio))
	}
	if pi.AvatarURL != "" {
		opts = append(opts, user.WithAvatarURL(pi.AvatarURL))
	}

	u, err := user.UpdateUser(c.Context(), Redis, DB, userID, opts...)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":         u.ID,
		"username":   u.Username,
		"full_name":  u.FullName,
		"bio":        u.Bio,
		"avatar_url": u.AvatarURL,
	})
}

// FollowUser toggles following the target user.
func FollowUser(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	u, err := user.GetUserBy(c.Context(), Redis, DB, "id = ?", []interface{}{userID}, "Following")
	if err != nil {
		return utils.HandleError(c, err)
	}

	following := false
	for _, followee := range u.Following {
		if followee.ID == targetID {
			following = true
			break
		}
	}

	if following {
		if err := u.UnfollowUser(c.Context(), Redis, DB, targetID); err != nil {
			return utils.HandleError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"following": false})
	}

	if err := u.FollowUser(c.Context(), Redis, DB, targetID); err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"following": true})
}
