package hierarchy

import (
	"fmt"

	"github.com/rotafield/rotafield-api/schema"
)

// AuthorizationError - the actor's role or position in the hierarchy does not
// permit the requested action. Never partially applied.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return e.Reason
}

// Actor is the acting identity a visibility decision is made for.
type Actor struct {
	ID        string
	Role      schema.Role
	ManagerID *string
}

func ActorFromProfile(p schema.Profile) Actor {
	return Actor{
		ID:        p.ID,
		Role:      p.Role,
		ManagerID: p.ManagerID,
	}
}

// CanSee reports whether the actor may see (and act upon) a visit. Sellers
// see their own; managers see their own plus their direct reports'; admin
// sees everything.
func CanSee(actor Actor, v schema.VisitDetail) bool {
	switch actor.Role {
	case schema.RoleAdmin:
		return true
	case schema.RoleManager:
		if v.AssigneeID == actor.ID {
			return true
		}
		return v.Assignee != nil && v.Assignee.ManagerID != nil && *v.Assignee.ManagerID == actor.ID
	case schema.RoleSeller:
		return v.AssigneeID == actor.ID
	}
	return false
}

// VisibleVisits filters a candidate list down to what the actor may see. The
// same filter applies whether the actor is listing, picking a distribution
// target or reassigning a team.
func VisibleVisits(actor Actor, details []schema.VisitDetail) []schema.VisitDetail {
	visible := make([]schema.VisitDetail, 0, len(details))
	for _, d := range details {
		if CanSee(actor, d) {
			visible = append(visible, d)
		}
	}
	return visible
}

// FilterByManager keeps the visits attributed to one manager's team: visits
// owned by the manager or by any assignee reporting to them. Used by admin
// views to cross-filter the global set.
func FilterByManager(details []schema.VisitDetail, managerID string) []schema.VisitDetail {
	kept := make([]schema.VisitDetail, 0, len(details))
	for _, d := range details {
		if d.AssigneeID == managerID {
			kept = append(kept, d)
			continue
		}
		if d.Assignee != nil && d.Assignee.ManagerID != nil && *d.Assignee.ManagerID == managerID {
			kept = append(kept, d)
		}
	}
	return kept
}

// CanTarget decides whether the actor may distribute routes to the target:
// admin reaches managers only, managers reach their own sellers only.
func CanTarget(actor Actor, target schema.Profile) error {
	switch actor.Role {
	case schema.RoleAdmin:
		if target.Role != schema.RoleManager {
			return &AuthorizationError{Reason: "admin distributes to managers only"}
		}
		return nil
	case schema.RoleManager:
		if target.Role != schema.RoleSeller {
			return &AuthorizationError{Reason: "managers distribute to sellers only"}
		}
		if target.ManagerID == nil || *target.ManagerID != actor.ID {
			return &AuthorizationError{Reason: fmt.Sprintf("%s is not on your team", target.FullName)}
		}
		return nil
	}
	return &AuthorizationError{Reason: "sellers cannot distribute routes"}
}

// CanTransferTeam gates the bulk manager-to-manager reassignment.
func CanTransferTeam(actor Actor) error {
	if actor.Role != schema.RoleAdmin {
		return &AuthorizationError{Reason: "only admin can transfer a team"}
	}
	return nil
}

// VisibleSellers filters the live-tracking roster: managers see their direct
// reports, admin sees every seller.
func VisibleSellers(actor Actor, sellers []schema.Profile) []schema.Profile {
	switch actor.Role {
	case schema.RoleAdmin:
		return sellers
	case schema.RoleManager:
		kept := make([]schema.Profile, 0, len(sellers))
		for _, s := range sellers {
			if s.ManagerID != nil && *s.ManagerID == actor.ID {
				kept = append(kept, s)
			}
		}
		return kept
	}
	return []schema.Profile{}
}
