package schema

import (
	"time"

	"github.com/google/uuid"
)

// CustomerStatus - enrollment state of a sale.
type CustomerStatus string

const (
	CustomerPending  CustomerStatus = "pending"
	CustomerEnrolled CustomerStatus = "enrolled"
)

// Customer is a sale captured during or after a visit. Downstream consumer of
// visit data; kept in postgres next to accounts.
type Customer struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primary_key" sql:"default:uuid_generate_v4()"`
	FullName         string         `json:"full_name" gorm:"not null"`
	DocumentID       string         `json:"document_id"`
	Email            string         `json:"email"`
	Phone            string         `json:"phone"`
	Address          string         `json:"address"`
	ChosenCourse     string         `json:"chosen_course"`
	EnrollmentFee    float64        `json:"enrollment_fee"`
	RecurringFee     float64        `json:"recurring_fee"`
	InstallmentCount int            `json:"installment_count"`
	Note             string         `json:"note"`
	Status           CustomerStatus `json:"status" gorm:"default:'pending'"`
	SellerID         string         `json:"seller_id" gorm:"index"`
	PointID          string         `json:"point_id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
