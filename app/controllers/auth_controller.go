package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/eubbbruno/instauto/app/models"
	"github.com/eubbbruno/instauto/app/repository"
	"github.com/eubbbruno/instauto/internal/pkg/hcaptcha"
	"github.com/eubbbruno/instauto/internal/pkg/provisioning"
	"github.com/eubbbruno/instauto/internal/pkg/session"
	"github.com/eubbbruno/instauto/internal/pkg/utils"
)

// AuthController handles direct signup, login and logout
type AuthController struct {
	profiles    repository.ProfileRepository
	provisioner *provisioning.Service
	validate    *validator.Validate
	captcha     CaptchaVerifier
}

// CaptchaVerifier checks a signup challenge token. A nil verifier disables the check.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

func NewAuthController(profiles repository.ProfileRepository, provisioner *provisioning.Service) *AuthController {
	return &AuthController{
		profiles:    profiles,
		provisioner: provisioner,
		validate:    validator.New(),
	}
}

var authController *AuthController

func InitializeAuthController() {
	repos := repository.GetGlobalRepositories()
	authController = NewAuthController(repos.Profile, provisioning.NewService(repos.Workshop))
	if v := hcaptcha.NewFromEnv(); v != nil {
		authController.captcha = v
	}
}

func GetAuthController() *AuthController {
	if authController == nil {
		InitializeAuthController()
	}
	return authController
}

func HandleAuthRegister(c *fiber.Ctx) error {
	return GetAuthController().HandleRegister(c)
}

func HandleAuthLogin(c *fiber.Ctx) error {
	return GetAuthController().HandleLogin(c)
}

func HandleAuthLogout(c *fiber.Ctx) error {
	return GetAuthController().HandleLogout(c)
}

type registerRequest struct {
	Name         string `json:"name" form:"name" validate:"required,min=2,max=150"`
	Email        string `json:"email" form:"email" validate:"required,email,max=200"`
	Password     string `json:"password" form:"password" validate:"required,min=8,max=72"`
	AccountType  string `json:"account_type" form:"account_type" validate:"omitempty,oneof=motorist workshop"`
	WorkshopName string `json:"workshop_name" form:"workshop_name" validate:"max=150"`
	CaptchaToken string `json:"h-captcha-response" form:"h-captcha-response"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// HandleRegister creates a profile, opens a session and provisions the workshop plan record
func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.AccountType = strings.ToLower(strings.TrimSpace(req.AccountType))
	if err := ac.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation_failed",
			"fields": validationFields(err),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if ac.captcha != nil {
		if err := ac.captcha.Verify(ctx, req.CaptchaToken, clientIP(c)); err != nil {
			log.Warnf("register: captcha rejected for %s: %v", req.Email, err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "captcha_failed"})
		}
	}

	if _, err := ac.profiles.GetByEmail(ctx, req.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email_taken"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorw("register: email lookup failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "registration_failed"})
	}

	profile, err := models.NewProfile(req.Name, req.Email, req.Password, req.AccountType)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation_failed",
			"fields": validationFields(err),
		})
	}
	profile.AvatarURL = utils.GetGravatarURL(profile.Email, 200)
	if err := ac.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email_taken"})
		}
		log.Errorw("register: create profile failed", "email", req.Email, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "registration_failed"})
	}

	// provisioning problems are logged but never fail the signup
	ac.provisioner.EnsureWorkshopQuietly(ctx, provisioning.Account{
		ProfileID:   profile.ID,
		AccountType: profile.AccountType,
		Name:        firstNonEmpty(strings.TrimSpace(req.WorkshopName), profile.Name),
	})

	if err := session.Login(c, profile.ID, profile.Name, profile.AccountType); err != nil {
		log.Errorw("register: session init failed", "profile_id", profile.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "session_failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":           profile.ID,
		"name":         profile.Name,
		"email":        profile.Email,
		"account_type": profile.AccountType,
	})
}

// HandleLogin checks credentials and opens a session. Workshop profiles
// missing a plan record get one here.
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := ac.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation_failed",
			"fields": validationFields(err),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// notice: never tell the caller which half of the credentials was wrong
	profile, err := ac.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorw("login: profile lookup failed", "error", err)
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_credentials"})
	}
	if !profile.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_credentials"})
	}
	if !profile.IsActive() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account_disabled"})
	}

	ac.provisioner.EnsureWorkshopQuietly(ctx, provisioning.Account{
		ProfileID:   profile.ID,
		AccountType: profile.AccountType,
		Name:        profile.Name,
	})

	if err := session.Login(c, profile.ID, profile.Name, profile.AccountType); err != nil {
		log.Errorw("login: session init failed", "profile_id", profile.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "session_failed"})
	}
	if err := ac.profiles.TouchLastLogin(ctx, profile.ID, time.Now()); err != nil {
		log.Warnf("login: could not update last_login_at for %s: %v", profile.ID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":           profile.ID,
		"name":         profile.Name,
		"account_type": profile.AccountType,
	})
}

func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	if err := session.Logout(c); err != nil {
		log.Warnf("logout: %v", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// validationFields flattens validator errors into field -> rule.
func validationFields(err error) map[string]string {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = fe.Tag()
		}
		return fields
	}
	fields["_"] = err.Error()
	return fields
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
