package main

import (
	"errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"kondecoracao/schema"
	"strings"
)

const minPasswordLength = 6

type Verification struct {
	PublicId string `json:"sub"`
}

type Session struct {
	PublicId string `json:"sub"`
	Email    string `json:"email"`
}

// RegisterRequest is the only input accepted by /register, identifiers are assigned here
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	gorm.Model   `json:"-"`
	PublicId     string `gorm:"size:36;uniqueIndex" json:"uid"`
	Email        string `gorm:"size:255;uniqueIndex" json:"email"`
	Password     string `gorm:"-" json:"password,omitempty"`
	PasswordHash string `json:"-"`
}

// BeforeCreate assigns public identifier
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.PublicId == "" {
		u.PublicId = uuid.NewString()
	}
	return nil
}

func (u *User) normalizeEmail() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

func (u *User) calculatePasswordHash() error {
	if len(u.Password) < minPasswordLength {
		return errors.New("password is too short")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.Password = ""
	return nil
}

func (u *User) checkPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) event() schema.UserEvent {
	return schema.UserEvent{
		PublicId: u.PublicId,
		Email:    u.Email,
	}
}
