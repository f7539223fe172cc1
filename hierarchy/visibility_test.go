package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rotafield/rotafield-api/schema"
)

func strPtr(s string) *string { return &s }

var (
	admin    = Actor{ID: "admin-1", Role: schema.RoleAdmin}
	managerA = Actor{ID: "manager-a", Role: schema.RoleManager}
	managerB = Actor{ID: "manager-b", Role: schema.RoleManager}
	sellerA1 = Actor{ID: "seller-a1", Role: schema.RoleSeller, ManagerID: strPtr("manager-a")}
)

func profileOf(a Actor) schema.Profile {
	return schema.Profile{ID: a.ID, Role: a.Role, ManagerID: a.ManagerID, FullName: a.ID}
}

func visitOwnedBy(a Actor) schema.VisitDetail {
	assignee := profileOf(a)
	return schema.VisitDetail{
		Visit: schema.Visit{
			ID:         primitive.NewObjectID(),
			AssigneeID: a.ID,
			Status:     schema.StatusToVisit,
		},
		Assignee: &assignee,
	}
}

func TestAdminSeesEverything(t *testing.T) {
	for _, owner := range []Actor{admin, managerA, managerB, sellerA1} {
		assert.True(t, CanSee(admin, visitOwnedBy(owner)))
	}
}

func TestSellerSeesOnlyOwnVisits(t *testing.T) {
	assert.True(t, CanSee(sellerA1, visitOwnedBy(sellerA1)))
	assert.False(t, CanSee(sellerA1, visitOwnedBy(managerA)))
	assert.False(t, CanSee(sellerA1, visitOwnedBy(admin)))
}

func TestManagerSeesOwnAndTeamVisits(t *testing.T) {
	assert.True(t, CanSee(managerA, visitOwnedBy(managerA)))
	assert.True(t, CanSee(managerA, visitOwnedBy(sellerA1)))
	assert.False(t, CanSee(managerB, visitOwnedBy(sellerA1)))
	assert.False(t, CanSee(managerA, visitOwnedBy(managerB)))
}

func TestManagerCannotSeeVisitWithoutAssigneeProfile(t *testing.T) {
	// the join can miss when a profile was deleted; default closed
	orphan := schema.VisitDetail{
		Visit: schema.Visit{AssigneeID: "seller-a1"},
	}
	assert.False(t, CanSee(managerA, orphan))
}

func TestVisibleVisitsFilters(t *testing.T) {
	details := []schema.VisitDetail{
		visitOwnedBy(sellerA1),
		visitOwnedBy(managerA),
		visitOwnedBy(managerB),
	}

	visible := VisibleVisits(managerA, details)

	assert.Len(t, visible, 2)
	for _, d := range visible {
		assert.NotEqual(t, managerB.ID, d.AssigneeID)
	}
}

func TestFilterByManagerKeepsTeamOnly(t *testing.T) {
	details := []schema.VisitDetail{
		visitOwnedBy(sellerA1),
		visitOwnedBy(managerA),
		visitOwnedBy(managerB),
	}

	kept := FilterByManager(details, managerA.ID)

	assert.Len(t, kept, 2)
}

func TestAdminDistributesToManagersOnly(t *testing.T) {
	assert.NoError(t, CanTarget(admin, profileOf(managerA)))

	err := CanTarget(admin, profileOf(sellerA1))
	assert.IsType(t, &AuthorizationError{}, err)
}

func TestManagerDistributesToOwnSellersOnly(t *testing.T) {
	assert.NoError(t, CanTarget(managerA, profileOf(sellerA1)))

	err := CanTarget(managerB, profileOf(sellerA1))
	assert.IsType(t, &AuthorizationError{}, err)

	err = CanTarget(managerA, profileOf(managerB))
	assert.IsType(t, &AuthorizationError{}, err)
}

func TestSellerCannotDistribute(t *testing.T) {
	err := CanTarget(sellerA1, profileOf(sellerA1))
	assert.EqualError(t, err, "sellers cannot distribute routes")
}

func TestOnlyAdminTransfersTeams(t *testing.T) {
	assert.NoError(t, CanTransferTeam(admin))
	assert.Error(t, CanTransferTeam(managerA))
	assert.Error(t, CanTransferTeam(sellerA1))
}

func TestVisibleSellers(t *testing.T) {
	sellers := []schema.Profile{
		profileOf(sellerA1),
		{ID: "seller-b1", Role: schema.RoleSeller, ManagerID: strPtr("manager-b")},
	}

	assert.Len(t, VisibleSellers(admin, sellers), 2)

	teamA := VisibleSellers(managerA, sellers)
	assert.Len(t, teamA, 1)
	assert.Equal(t, "seller-a1", teamA[0].ID)

	assert.Empty(t, VisibleSellers(sellerA1, sellers))
}
