package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/eubbbruno/instauto/app/models"
	"github.com/eubbbruno/instauto/app/repository"
	"github.com/eubbbruno/instauto/internal/pkg/env"
	"github.com/eubbbruno/instauto/internal/pkg/oauth"
	"github.com/eubbbruno/instauto/internal/pkg/provisioning"
	"github.com/eubbbruno/instauto/internal/pkg/session"
	"github.com/eubbbruno/instauto/internal/pkg/utils"
)

// OAuthController links provider identities to profiles
type OAuthController struct {
	profiles    repository.ProfileRepository
	provisioner *provisioning.Service
}

func NewOAuthController(profiles repository.ProfileRepository, provisioner *provisioning.Service) *OAuthController {
	return &OAuthController{profiles: profiles, provisioner: provisioner}
}

var oauthController *OAuthController

func InitializeOAuthController() {
	repos := repository.GetGlobalRepositories()
	oauthController = NewOAuthController(repos.Profile, provisioning.NewService(repos.Workshop))
}

func GetOAuthController() *OAuthController {
	if oauthController == nil {
		InitializeOAuthController()
	}
	return oauthController
}

// HandleOAuthBegin remembers the requested account type and redirects to the provider
func HandleOAuthBegin(c *fiber.Ctx) error {
	accountType := models.NormalizeAccountType(c.Query("account_type"))
	c.Cookie(&fiber.Cookie{
		Name:     oauth.AccountTypeCookie,
		Value:    accountType,
		Path:     "/auth",
		HTTPOnly: true,
		SameSite: "Lax",
		Expires:  time.Now().Add(15 * time.Minute),
	})
	return gothfiber.BeginAuthHandler(c)
}

func HandleOAuthCallback(c *fiber.Ctx) error {
	return GetOAuthController().HandleCallback(c)
}

// HandleCallback completes the provider flow and logs the user in
func (oc *OAuthController) HandleCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		log.Warnf("oauth: complete auth failed: %v", err)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Não foi possível entrar com o provedor"}).Redirect(frontendURL("/login"))
	}

	accountType := models.NormalizeAccountType(c.Cookies(oauth.AccountTypeCookie))
	c.ClearCookie(oauth.AccountTypeCookie)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	profile, err := oc.resolveProfile(ctx, u, accountType)
	if err != nil {
		log.Errorw("oauth: profile resolution failed", "provider", u.Provider, "provider_user_id", u.UserID, "error", err)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Não foi possível concluir o login"}).Redirect(frontendURL("/login"))
	}
	if !profile.IsActive() {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Conta desativada"}).Redirect(frontendURL("/login"))
	}

	oc.provisioner.EnsureWorkshopQuietly(ctx, provisioning.Account{
		ProfileID:   profile.ID,
		AccountType: profile.AccountType,
		Name:        profile.Name,
	})

	if err := session.Login(c, profile.ID, profile.Name, profile.AccountType); err != nil {
		log.Errorw("oauth: session init failed", "profile_id", profile.ID, "error", err)
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Falha ao iniciar a sessão"}).Redirect(frontendURL("/login"))
	}
	_ = oc.profiles.TouchLastLogin(ctx, profile.ID, time.Now())

	target := "/motorista"
	if profile.IsWorkshop() {
		target = "/oficina"
	}
	return c.Redirect(frontendURL(target), fiber.StatusSeeOther)
}

// resolveProfile finds the profile linked to the provider identity, falling
// back to an email match, and creates one when neither exists.
func (oc *OAuthController) resolveProfile(ctx context.Context, u goth.User, accountType string) (*models.Profile, error) {
	pa, err := oc.profiles.GetProviderAccount(ctx, u.Provider, u.UserID)
	if err == nil {
		pa.AccessToken = u.AccessToken
		pa.RefreshToken = u.RefreshToken
		pa.ExpiresAt = expiresAt(u)
		if err := oc.profiles.SaveProviderAccount(ctx, pa); err != nil {
			return nil, fmt.Errorf("update tokens: %w", err)
		}
		return oc.profiles.GetByID(ctx, pa.ProfileID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var profile *models.Profile
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if email != "" {
		if p, err := oc.profiles.GetByEmail(ctx, email); err == nil {
			profile = p
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if profile == nil {
		if email == "" {
			// unique placeholder so the email index holds
			email = fmt.Sprintf("%s_%s@%s.oauth.local", u.Provider, u.UserID, u.Provider)
		}
		// placeholder password, never used for login
		placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
		p, err := models.NewProfile(firstNonEmpty(u.Name, u.NickName, "Usuário"), email, placeholder, accountType)
		if err != nil {
			return nil, err
		}
		p.AvatarURL = firstNonEmpty(u.AvatarURL, utils.GetGravatarURL(email, 200))
		if err := oc.profiles.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		profile = p
	}

	link := &models.ProviderAccount{
		ProfileID:      profile.ID,
		Provider:       u.Provider,
		ProviderUserID: u.UserID,
		AccessToken:    u.AccessToken,
		RefreshToken:   u.RefreshToken,
		ExpiresAt:      expiresAt(u),
	}
	if err := oc.profiles.SaveProviderAccount(ctx, link); err != nil {
		return nil, fmt.Errorf("link provider: %w", err)
	}
	return profile, nil
}

// frontendURL points redirects at the web client, which may live on another origin.
func frontendURL(path string) string {
	return strings.TrimRight(env.GetEnv("FRONTEND_URL", ""), "/") + path
}

func expiresAt(u goth.User) *time.Time {
	if u.ExpiresAt.IsZero() {
		return nil
	}
	t := u.ExpiresAt
	return &t
}
