package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	AccountTypeMotorist = "motorist"
	AccountTypeWorkshop = "workshop"

	STATUS_ACTIVE   = "active"
	STATUS_DISABLED = "disabled"
)

// Profile is an authenticated account. A profile of type workshop owns exactly
// one Workshop record.
type Profile struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Email       string     `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	Password    string     `gorm:"type:text" json:"-" validate:"required"`
	AccountType string     `gorm:"type:varchar(20);not null;default:'motorist';index" json:"account_type" validate:"oneof=motorist workshop"`
	Status      string     `gorm:"type:varchar(20);default:'active'" json:"status" validate:"oneof=active disabled"`
	AvatarURL   string     `gorm:"type:varchar(255);default:null" json:"avatar_url" validate:"max=255"`
	LastLoginAt *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Profile) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// NewProfile builds a validated profile with a hashed password.
func NewProfile(name, email, password, accountType string) (*Profile, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		ID:          uuid.NewString(),
		Name:        name,
		Email:       email,
		Password:    pw,
		AccountType: NormalizeAccountType(accountType),
		Status:      STATUS_ACTIVE,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NormalizeAccountType maps free-form input to a known account type,
// defaulting to motorist.
func NormalizeAccountType(accountType string) string {
	if strings.ToLower(strings.TrimSpace(accountType)) == AccountTypeWorkshop {
		return AccountTypeWorkshop
	}
	return AccountTypeMotorist
}

// IsWorkshop reports whether the profile represents a repair shop.
func (p *Profile) IsWorkshop() bool {
	return p.AccountType == AccountTypeWorkshop
}

// IsActive reports whether the profile may log in.
func (p *Profile) IsActive() bool {
	return p.Status == STATUS_ACTIVE
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies the password against the stored hash.
func (p *Profile) CheckPassword(password string) bool {
	return CheckPasswordHash(password, p.Password)
}
