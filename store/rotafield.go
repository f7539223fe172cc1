package store

import (
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"github.com/rotafield/rotafield-api/schema"
)

// rotafield main datastore
type RotafieldCore interface {
	Ping() error

	// Account
	CreateAccount(email, password string) (*schema.Account, error)
	GetAccountByEmail(email string) (*schema.Account, error)
	VerifyAccountPassword(email, password string) (*schema.Account, error)
	DeleteAccount(email string) error

	// Customer
	CreateCustomer(customer schema.Customer) (*schema.Customer, error)
	GetCustomer(customerID uuid.UUID) (*schema.Customer, error)
	ListCustomers(sellerIDs []string) ([]schema.Customer, error)
	UpdateCustomer(customer schema.Customer) error
	EnrollCustomer(customerID uuid.UUID) error
}

// RotafieldStore is an implementation of RotafieldCore
type RotafieldStore struct {
	ormDB *gorm.DB
	mongo MongoStore
}

func NewRotafieldStore(ormDB *gorm.DB, mongo MongoStore) *RotafieldStore {
	return &RotafieldStore{
		ormDB: ormDB,
		mongo: mongo,
	}
}

// Ping is to check the storage health status
func (s *RotafieldStore) Ping() error {
	return s.ormDB.DB().Ping()
}
