package domain

import (
	"fmt"
	"math"
	"time"
)

// TransitionInput carries everything a status change may need.
type TransitionInput struct {
	EventID       string
	ActorID       string
	AgentID       string // required when moving to ASSIGNED
	Notes         string
	Location      *Coordinates
	DeliveryProof string
	FailedReason  string
	CODCollected  *float64
	At            time.Time
}

// StatusChange is a validated, not yet persisted, transition. Stores apply it
// atomically against the shipment version it was planned from.
type StatusChange struct {
	From          ShipmentStatus
	To            ShipmentStatus
	AgentID       string
	DeliveredAt   *time.Time
	DeliveryProof string
	FailedReason  string
	COD           *CODRecord
	Event         TrackingEvent
	Effect        *AgentEffect
	At            time.Time
}

// PlanTransition validates moving s to next and returns the change to apply.
func (s *Shipment) PlanTransition(next ShipmentStatus, in TransitionInput) (*StatusChange, error) {
	if !s.Status.CanTransitionTo(next) {
		return nil, &InvalidTransitionError{From: s.Status, To: next}
	}

	at := in.At.UTC()
	change := &StatusChange{From: s.Status, To: next, At: at}

	switch next {
	case StatusAssigned:
		if in.AgentID == "" {
			return nil, NewValidationError("agent_id", "agent is required for assignment")
		}
		change.AgentID = in.AgentID
	case StatusFailed:
		if in.FailedReason == "" {
			return nil, NewValidationError("failed_reason", "failed_reason is required")
		}
		change.FailedReason = in.FailedReason
	case StatusDelivered:
		change.DeliveredAt = &at
		change.DeliveryProof = in.DeliveryProof
		if s.HasCOD() {
			if in.CODCollected == nil {
				return nil, NewValidationError("cod_collected", "cod_collected is required for cash-on-delivery shipments")
			}
			expected := *s.CODAmount
			collected := *in.CODCollected
			change.COD = &CODRecord{
				Expected:    expected,
				Collected:   collected,
				CollectedAt: at,
				Discrepancy: math.Abs(expected-collected) >= 0.005,
			}
		}
	}

	agentID := change.AgentID
	if agentID == "" {
		agentID = s.AgentID
	}
	change.Event = TrackingEvent{
		ID:          in.EventID,
		Type:        EventStatusChanged,
		Status:      next,
		Description: describeTransition(s.Status, next, in.Notes, change.FailedReason),
		Location:    in.Location,
		ActorID:     in.ActorID,
		RecordedAt:  at,
	}
	if next == StatusAssigned {
		change.Event.Type = EventAssigned
	}
	change.Effect = effectFor(s, next, agentID, in.EventID)
	return change, nil
}

// Apply mutates s with a change produced by PlanTransition.
func (s *Shipment) Apply(c *StatusChange) {
	s.Status = c.To
	if c.AgentID != "" {
		s.AgentID = c.AgentID
	}
	if c.DeliveredAt != nil {
		s.DeliveredAt = c.DeliveredAt
		s.DeliveryProof = c.DeliveryProof
	}
	if c.FailedReason != "" {
		s.FailedReason = c.FailedReason
	}
	if c.COD != nil {
		s.COD = c.COD
	}
	s.Events = append(s.Events, c.Event)
	if c.Effect != nil {
		s.PendingEffects = append(s.PendingEffects, *c.Effect)
	}
	s.UpdatedAt = c.At
	s.Version++
}

// effectFor returns the agent bookkeeping owed by a transition, or nil.
func effectFor(s *Shipment, next ShipmentStatus, agentID, eventID string) *AgentEffect {
	if agentID == "" {
		return nil
	}
	e := &AgentEffect{ID: eventID, AgentID: agentID, ShipmentID: s.ID}
	switch next {
	case StatusDelivered:
		e.TotalDelta = 1
		e.CompletedDelta = 1
		e.Earnings = s.Fee.Subtotal
		e.Release = true
	case StatusFailed:
		e.FailedDelta = 1
	case StatusCancelled, StatusReturned:
		e.Release = true
	default:
		return nil
	}
	return e
}

func describeTransition(from, to ShipmentStatus, notes, reason string) string {
	var msg string
	switch to {
	case StatusAssigned:
		msg = "Delivery agent assigned"
	case StatusPickedUp:
		if from == StatusFailed {
			msg = "Package picked up for another delivery attempt"
		} else {
			msg = "Package picked up from sender"
		}
	case StatusInTransit:
		msg = "Package in transit"
	case StatusOutForDelivery:
		msg = "Package out for delivery"
	case StatusDelivered:
		msg = "Package delivered"
	case StatusFailed:
		msg = fmt.Sprintf("Delivery attempt failed: %s", reason)
	case StatusCancelled:
		msg = "Shipment cancelled"
	case StatusReturning:
		msg = "Package returning to sender"
	case StatusReturned:
		msg = "Package returned to sender"
	default:
		msg = fmt.Sprintf("Status changed to %s", to)
	}
	if notes != "" {
		msg += " (" + notes + ")"
	}
	return msg
}

// CODResolution closes a recorded cash discrepancy.
type CODResolution struct {
	By   string
	Note string
	At   time.Time
}

// PlanCODResolution validates that s carries an open discrepancy.
func (s *Shipment) PlanCODResolution(by, note, eventID string, at time.Time) (CODResolution, TrackingEvent, error) {
	if s.COD == nil || !s.COD.Discrepancy {
		return CODResolution{}, TrackingEvent{}, NewValidationError("cod", "shipment has no COD discrepancy")
	}
	if s.COD.Resolved {
		return CODResolution{}, TrackingEvent{}, NewValidationError("cod", "COD discrepancy already resolved")
	}
	at = at.UTC()
	res := CODResolution{By: by, Note: note, At: at}
	desc := fmt.Sprintf("COD discrepancy resolved: expected %.2f, collected %.2f", s.COD.Expected, s.COD.Collected)
	if note != "" {
		desc += " (" + note + ")"
	}
	ev := TrackingEvent{
		ID:          eventID,
		Type:        EventCODResolved,
		Status:      s.Status,
		Description: desc,
		ActorID:     by,
		RecordedAt:  at,
	}
	return res, ev, nil
}

// ApplyCODResolution mutates s with a resolution from PlanCODResolution.
func (s *Shipment) ApplyCODResolution(r CODResolution, ev TrackingEvent) {
	at := r.At
	s.COD.Resolved = true
	s.COD.ResolvedBy = r.By
	s.COD.ResolvedAt = &at
	s.COD.Note = r.Note
	s.Events = append(s.Events, ev)
	s.UpdatedAt = at
	s.Version++
}
