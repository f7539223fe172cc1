package store

import (
	"fmt"

	"github.com/jinzhu/gorm"
	"golang.org/x/crypto/bcrypt"

	"github.com/rotafield/rotafield-api/schema"
)

var (
	ErrWrongPassword = fmt.Errorf("wrong email or password")
)

// CreateAccount registers an authentication identity. The matching mongo
// profile is created separately by the caller.
func (s *RotafieldStore) CreateAccount(email, password string) (*schema.Account, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	a := schema.Account{
		Email:          email,
		PasswordDigest: string(digest),
	}

	if err := s.ormDB.Create(&a).Error; err != nil {
		return nil, err
	}

	return &a, nil
}

// GetAccountByEmail returns the account registered under an email
func (s *RotafieldStore) GetAccountByEmail(email string) (*schema.Account, error) {
	var a schema.Account
	if err := s.ormDB.Where("email = ?", email).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// VerifyAccountPassword checks a login attempt. A missing account and a wrong
// password both yield ErrWrongPassword so callers cannot probe for emails.
func (s *RotafieldStore) VerifyAccountPassword(email, password string) (*schema.Account, error) {
	var a schema.Account
	if err := s.ormDB.Where("email = ?", email).First(&a).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, ErrWrongPassword
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordDigest), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}

	return &a, nil
}

// DeleteAccount removes an account from our system permanently
func (s *RotafieldStore) DeleteAccount(email string) error {
	return s.ormDB.Delete(schema.Account{}, "email = ?", email).Error
}
