package store

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"github.com/rotafield/rotafield-api/schema"
)

var (
	ErrCustomerNotFound = fmt.Errorf("customer not found")
)

// CreateCustomer records a sale captured during a visit.
func (s *RotafieldStore) CreateCustomer(customer schema.Customer) (*schema.Customer, error) {
	customer.Status = schema.CustomerPending

	if err := s.ormDB.Create(&customer).Error; err != nil {
		return nil, err
	}

	return &customer, nil
}

// GetCustomer returns one customer by ID
func (s *RotafieldStore) GetCustomer(customerID uuid.UUID) (*schema.Customer, error) {
	var c schema.Customer
	if err := s.ormDB.Where("id = ?", customerID).First(&c).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListCustomers returns the customers captured by the given sellers, newest
// first. An empty seller set returns everything.
func (s *RotafieldStore) ListCustomers(sellerIDs []string) ([]schema.Customer, error) {
	customers := make([]schema.Customer, 0)

	query := s.ormDB.Order("created_at desc")
	if len(sellerIDs) > 0 {
		query = query.Where("seller_id IN (?)", sellerIDs)
	}

	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}

	return customers, nil
}

// UpdateCustomer saves edits to an existing customer.
func (s *RotafieldStore) UpdateCustomer(customer schema.Customer) error {
	result := s.ormDB.Model(&schema.Customer{}).Where("id = ?", customer.ID).Updates(customer)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// EnrollCustomer flips a pending customer to enrolled.
func (s *RotafieldStore) EnrollCustomer(customerID uuid.UUID) error {
	result := s.ormDB.Model(&schema.Customer{}).
		Where("id = ? AND status = ?", customerID, schema.CustomerPending).
		Update("status", schema.CustomerEnrolled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
