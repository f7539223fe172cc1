package stats

import (
	"time"

	"github.com/rotafield/rotafield-api/schema"
)

// ChangeRate returns the percentage change from old to new.
func ChangeRate(new, old float64) float64 {
	if old == 0 {
		if new == 0 {
			return float64(0)
		} else {
			return float64(100)
		}
	}

	return (new - old) / old * 100
}

// Summary is the dashboard rollup for one actor's visible visits.
type Summary struct {
	Total          int     `json:"total"`
	ToVisit        int     `json:"to_visit"`
	EnRoute        int     `json:"en_route"`
	Visited        int     `json:"visited"`
	Finalized      int     `json:"finalized"`
	FinalizedToday int     `json:"finalized_today"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Summarize counts a visit set by status. ConversionRate is the share of
// visits that reached finalized, in percent.
func Summarize(details []schema.VisitDetail, now time.Time) Summary {
	s := Summary{Total: len(details)}

	today := now.UTC().Truncate(24 * time.Hour)

	for _, d := range details {
		switch d.Status {
		case schema.StatusToVisit:
			s.ToVisit++
		case schema.StatusEnRoute:
			s.EnRoute++
		case schema.StatusVisited:
			s.Visited++
		case schema.StatusFinalized:
			s.Finalized++
			if d.CheckoutTime != nil && !d.CheckoutTime.UTC().Before(today) {
				s.FinalizedToday++
			}
		}
	}

	if s.Total > 0 {
		s.ConversionRate = float64(s.Finalized) / float64(s.Total) * 100
	}

	return s
}

// SalesSummary is the customer-side rollup.
type SalesSummary struct {
	Customers        int     `json:"customers"`
	Enrolled         int     `json:"enrolled"`
	Pending          int     `json:"pending"`
	EnrollmentFee    float64 `json:"enrollment_fee"`
	RecurringFee     float64 `json:"recurring_fee"`
	EnrollmentChange float64 `json:"enrollment_change"`
}

func startOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// SummarizeSales totals the captured customers and their fees.
// EnrollmentChange compares this month's enrollments against last month's.
// UpdatedAt stands in for the enrollment time; the status flip is the last
// write to an enrolled row.
func SummarizeSales(customers []schema.Customer, now time.Time) SalesSummary {
	s := SalesSummary{Customers: len(customers)}

	thisMonth := startOfMonth(now)
	lastMonth := startOfMonth(thisMonth.AddDate(0, 0, -1))

	var enrolledThisMonth, enrolledLastMonth float64
	for _, c := range customers {
		switch c.Status {
		case schema.CustomerEnrolled:
			s.Enrolled++
			s.EnrollmentFee += c.EnrollmentFee
			s.RecurringFee += c.RecurringFee

			updated := c.UpdatedAt.UTC()
			switch {
			case !updated.Before(thisMonth):
				enrolledThisMonth++
			case !updated.Before(lastMonth):
				enrolledLastMonth++
			}
		default:
			s.Pending++
		}
	}

	s.EnrollmentChange = ChangeRate(enrolledThisMonth, enrolledLastMonth)

	return s
}
