package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rotafield/rotafield-api/geo"
	"github.com/rotafield/rotafield-api/schema"
)

const (
	// DefaultGeofenceThresholdKm is how far from the point a check-in may
	// happen before a justification is demanded.
	DefaultGeofenceThresholdKm = 0.3

	// DefaultMinJustificationLen is the shortest acceptable justification.
	DefaultMinJustificationLen = 5
)

// nextStatus is the linear lifecycle chain. Finalized has no successor.
var nextStatus = map[schema.VisitStatus]schema.VisitStatus{
	schema.StatusToVisit: schema.StatusEnRoute,
	schema.StatusEnRoute: schema.StatusVisited,
	schema.StatusVisited: schema.StatusFinalized,
}

// Next returns the immediate successor of a status, and whether one exists.
func Next(s schema.VisitStatus) (schema.VisitStatus, bool) {
	n, ok := nextStatus[s]
	return n, ok
}

// Payload carries the transition-specific fields, discriminated by the
// transition being invoked rather than by ad hoc key presence.
type Payload interface {
	transitionPayload()
}

// CheckinPayload accompanies to_visit -> en_route. The navigation provider is
// a client hint only; it never gates the transition.
type CheckinPayload struct {
	NavigationProvider string
}

// ArrivalPayload accompanies en_route -> visited. Fix is the assignee's
// current GPS position; Justification is required only when the fix falls
// outside the geofence.
type ArrivalPayload struct {
	Fix           *geo.Coordinate
	Justification string
}

// FinalizePayload accompanies visited -> finalized.
type FinalizePayload struct {
	CollaboratorCount *int
	ResponsibleName   string
	Summary           string
}

func (CheckinPayload) transitionPayload()  {}
func (ArrivalPayload) transitionPayload()  {}
func (FinalizePayload) transitionPayload() {}

// Inputs is the server-state snapshot a transition decision depends on. The
// caller gathers it immediately before deciding; the machine itself never
// touches a store.
type Inputs struct {
	// AssigneeHasActiveRoute is true when the visit's assignee already has
	// another en_route visit. Checked against the assignee, not the
	// requester: a manager may act on behalf of a seller.
	AssigneeHasActiveRoute bool

	// POICoordinate is the visit's point coordinate, when known.
	POICoordinate *geo.Coordinate
}

// Patch is the mutation a successful transition produces. The persist step is
// separate so the decision stays pure.
type Patch struct {
	Status             schema.VisitStatus
	CheckinTime        *time.Time
	CheckoutTime       *time.Time
	CollaboratorCount  *int
	ResponsibleName    string
	Summary            string
	FraudJustification string
	ScheduledFor       *time.Time
}

// Apply writes the patch onto a visit, mirroring what the store persists.
func (p *Patch) Apply(v *schema.Visit) {
	if p.Status != "" {
		v.Status = p.Status
		v.Open = p.Status != schema.StatusFinalized
	}
	if p.CheckinTime != nil {
		v.CheckinTime = p.CheckinTime
	}
	if p.CheckoutTime != nil {
		v.CheckoutTime = p.CheckoutTime
	}
	if p.CollaboratorCount != nil {
		v.CollaboratorCount = p.CollaboratorCount
	}
	if p.ResponsibleName != "" {
		v.ResponsibleName = p.ResponsibleName
	}
	if p.Summary != "" {
		v.Summary = p.Summary
	}
	if p.FraudJustification != "" {
		v.FraudJustification = p.FraudJustification
	}
	if p.ScheduledFor != nil {
		v.ScheduledFor = p.ScheduledFor
	}
}

// Machine decides visit status transitions. Zero configuration gets the
// observed defaults.
type Machine struct {
	GeofenceThresholdKm float64
	MinJustificationLen int

	// now is swappable for tests.
	now func() time.Time
}

func NewMachine() Machine {
	return Machine{
		GeofenceThresholdKm: DefaultGeofenceThresholdKm,
		MinJustificationLen: DefaultMinJustificationLen,
		now:                 time.Now,
	}
}

// NewMachineFromConfig builds a machine from the geofence configuration keys,
// keeping the defaults for any key left unset.
func NewMachineFromConfig() Machine {
	m := NewMachine()
	if v := viper.GetFloat64("geofence.threshold_km"); v > 0 {
		m.GeofenceThresholdKm = v
	}
	if v := viper.GetInt("geofence.min_justification"); v > 0 {
		m.MinJustificationLen = v
	}
	return m
}

func (m Machine) clock() time.Time {
	if m.now == nil {
		return time.Now().UTC()
	}
	return m.now().UTC()
}

// Transition decides whether a visit may move to the target status and, if
// so, what to persist. Out-of-order targets are rejected, never coerced.
func (m Machine) Transition(v schema.Visit, target schema.VisitStatus, payload Payload, in Inputs) (*Patch, error) {
	if !target.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown status %q", target)}
	}

	next, ok := Next(v.Status)
	if !ok {
		return nil, &ValidationError{Reason: fmt.Sprintf("visit already %s", v.Status)}
	}
	if target != next {
		return nil, &ValidationError{Reason: fmt.Sprintf("%s is not reachable from %s", target, v.Status)}
	}

	switch target {
	case schema.StatusEnRoute:
		if _, ok := payload.(CheckinPayload); !ok {
			return nil, &ValidationError{Reason: "check-in payload required"}
		}
		if in.AssigneeHasActiveRoute {
			return nil, &ConflictError{Reason: "assignee already has a route in progress"}
		}
		now := m.clock()
		return &Patch{
			Status:      schema.StatusEnRoute,
			CheckinTime: &now,
		}, nil

	case schema.StatusVisited:
		p, ok := payload.(ArrivalPayload)
		if !ok {
			return nil, &ValidationError{Reason: "arrival payload required"}
		}
		patch := &Patch{Status: schema.StatusVisited}

		// Geofence gate: only when both coordinates are known. A missing
		// coordinate means the distance is unknown, which never blocks.
		if p.Fix != nil && in.POICoordinate != nil {
			d := geo.Distance(*p.Fix, *in.POICoordinate)
			if d > m.GeofenceThresholdKm {
				justification := strings.TrimSpace(p.Justification)
				if len(justification) < m.MinJustificationLen {
					return nil, &GeofenceError{DistanceKm: d, ThresholdKm: m.GeofenceThresholdKm}
				}
				patch.FraudJustification = justification
			}
		}
		return patch, nil

	case schema.StatusFinalized:
		p, ok := payload.(FinalizePayload)
		if !ok {
			return nil, &ValidationError{Reason: "finalize payload required"}
		}
		if p.CollaboratorCount == nil {
			return nil, &ValidationError{Reason: "collaborator count is required to finalize"}
		}
		if *p.CollaboratorCount < 0 {
			return nil, &ValidationError{Reason: "collaborator count must not be negative"}
		}
		now := m.clock()
		return &Patch{
			Status:            schema.StatusFinalized,
			CheckoutTime:      &now,
			CollaboratorCount: p.CollaboratorCount,
			ResponsibleName:   strings.TrimSpace(p.ResponsibleName),
			Summary:           strings.TrimSpace(p.Summary),
		}, nil
	}

	return nil, &ValidationError{Reason: fmt.Sprintf("%s is not a transition target", target)}
}

// Defer annotates a visit with a future scheduled date. Orthogonal to the
// status chain: allowed from to_visit and en_route, informational only.
func (m Machine) Defer(v schema.Visit, when time.Time) (*Patch, error) {
	switch v.Status {
	case schema.StatusToVisit, schema.StatusEnRoute:
	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("cannot defer a %s visit", v.Status)}
	}

	if !when.After(m.clock()) {
		return nil, &ValidationError{Reason: "scheduled date must be in the future"}
	}

	when = when.UTC()
	return &Patch{ScheduledFor: &when}, nil
}
