package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rotafield/rotafield-api/schema"
)

type changeRateTestCase struct {
	new                float64
	old                float64
	expectedChangeRate float64
}

func TestChangeRate(t *testing.T) {
	cases := []changeRateTestCase{
		{0, 0, 0},
		{10, 10, 0},
		{0, 10, -100},
		{10, 0, 100},
		{3, 5, -40},
		{3, 2, 50},
	}
	for _, c := range cases {
		if ChangeRate(c.new, c.old) != c.expectedChangeRate {
			t.Fatal()
		}
	}
}

func visitDetail(status schema.VisitStatus, checkout *time.Time) schema.VisitDetail {
	return schema.VisitDetail{
		Visit: schema.Visit{Status: status, CheckoutTime: checkout},
	}
}

func TestSummarizeCountsByStatus(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	today := now.Add(-2 * time.Hour)
	yesterday := now.Add(-26 * time.Hour)

	details := []schema.VisitDetail{
		visitDetail(schema.StatusToVisit, nil),
		visitDetail(schema.StatusToVisit, nil),
		visitDetail(schema.StatusEnRoute, nil),
		visitDetail(schema.StatusVisited, nil),
		visitDetail(schema.StatusFinalized, &today),
		visitDetail(schema.StatusFinalized, &yesterday),
	}

	s := Summarize(details, now)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 2, s.ToVisit)
	assert.Equal(t, 1, s.EnRoute)
	assert.Equal(t, 1, s.Visited)
	assert.Equal(t, 2, s.Finalized)
	assert.Equal(t, 1, s.FinalizedToday)
	assert.InDelta(t, 33.33, s.ConversionRate, 0.01)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, time.Now())

	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0.0, s.ConversionRate)
}

func TestSummarizeSales(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2024, 4, 20, 9, 0, 0, 0, time.UTC)

	customers := []schema.Customer{
		{Status: schema.CustomerEnrolled, EnrollmentFee: 150, RecurringFee: 99.9, UpdatedAt: thisMonth},
		{Status: schema.CustomerEnrolled, EnrollmentFee: 150, RecurringFee: 79.9, UpdatedAt: thisMonth},
		{Status: schema.CustomerEnrolled, EnrollmentFee: 150, RecurringFee: 59.9, UpdatedAt: lastMonth},
		{Status: schema.CustomerPending, EnrollmentFee: 150, RecurringFee: 99.9, UpdatedAt: thisMonth},
	}

	s := SummarizeSales(customers, now)

	assert.Equal(t, 4, s.Customers)
	assert.Equal(t, 3, s.Enrolled)
	assert.Equal(t, 1, s.Pending)
	assert.InDelta(t, 450, s.EnrollmentFee, 1e-9)
	assert.InDelta(t, 239.7, s.RecurringFee, 1e-9)

	// two enrollments this month against one last month
	assert.InDelta(t, 100, s.EnrollmentChange, 1e-9)
}

func TestSummarizeSalesFirstMonth(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

	s := SummarizeSales([]schema.Customer{
		{Status: schema.CustomerEnrolled, UpdatedAt: now.Add(-time.Hour)},
	}, now)

	assert.InDelta(t, 100, s.EnrollmentChange, 1e-9)

	s = SummarizeSales(nil, now)
	assert.InDelta(t, 0, s.EnrollmentChange, 1e-9)
}
