package services

import (
	"time"

	"hotel-reservation/models"
)

type Event string

const (
	EventCreate         Event = "create"
	EventConfirmPayment Event = "confirm_payment"
	EventCheckIn        Event = "check_in"
	EventCheckOut       Event = "check_out"
	EventCancel         Event = "cancel"
	EventExpire         Event = "expire"
	EventOverride       Event = "override"
	EventReschedule     Event = "reschedule"
)

// Scope says whether a grant covers only the actor's own bookings.
type Scope int

const (
	ScopeOwner Scope = iota
	ScopeAny
)

type Grant struct {
	Role  Role
	Scope Scope
}

// Guards lists who may fire each event. Handlers never check roles themselves.
var Guards = map[Event][]Grant{
	EventCreate:         {{RoleCustomer, ScopeOwner}, {RoleManager, ScopeAny}},
	EventConfirmPayment: {{RoleCustomer, ScopeOwner}, {RoleManager, ScopeAny}, {RoleSystem, ScopeAny}},
	EventCheckIn:        {{RoleManager, ScopeAny}},
	EventCheckOut:       {{RoleManager, ScopeAny}},
	EventCancel:         {{RoleCustomer, ScopeOwner}, {RoleManager, ScopeAny}},
	EventExpire:         {{RoleSystem, ScopeAny}},
	EventOverride:       {{RoleManager, ScopeAny}},
	EventReschedule:     {{RoleCustomer, ScopeOwner}, {RoleManager, ScopeAny}},
}

type edge struct {
	from []models.BookingStatus
	to   models.BookingStatus
}

// transitions is the lifecycle graph. An empty "to" keeps the current status.
// Override is handled separately since its target is chosen by the caller.
var transitions = map[Event]edge{
	EventCreate:         {from: nil, to: models.BookingStatusPending},
	EventConfirmPayment: {from: []models.BookingStatus{models.BookingStatusPending}, to: models.BookingStatusConfirmed},
	EventCheckIn:        {from: []models.BookingStatus{models.BookingStatusConfirmed}, to: models.BookingStatusCheckedIn},
	EventCheckOut:       {from: []models.BookingStatus{models.BookingStatusCheckedIn}, to: models.BookingStatusCheckedOut},
	EventCancel:         {from: []models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}, to: models.BookingStatusCancelled},
	EventExpire:         {from: []models.BookingStatus{models.BookingStatusPending}, to: models.BookingStatusCancelled},
	EventReschedule:     {from: []models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}},
}

// TransitionRequest is one proposed lifecycle step for a booking. For create the
// booking is the unsaved draft.
type TransitionRequest struct {
	Event    Event
	Actor    Actor
	Booking  models.Booking
	Target   models.BookingStatus
	Location *time.Location
}

type Decision struct {
	Event          Event
	From           models.BookingStatus
	To             models.BookingStatus
	RefundEligible *bool
	Override       bool
}

// BlocksRoom reports whether the decision moves the booking into a room-holding
// status it did not hold before.
func (d Decision) BlocksRoom() bool {
	return d.To.HoldsRoom() && !d.From.HoldsRoom()
}

type StateMachine struct {
	Now           func() time.Time
	GraceWindow   time.Duration
	PendingExpiry time.Duration
}

func NewStateMachine(grace, pendingExpiry time.Duration) *StateMachine {
	return &StateMachine{Now: time.Now, GraceWindow: grace, PendingExpiry: pendingExpiry}
}

// Authorize evaluates the guard table for the event.
func Authorize(event Event, actor Actor, b models.Booking) error {
	grants, ok := Guards[event]
	if !ok {
		return validationf("unknown event %q", event)
	}
	for _, g := range grants {
		if g.Role != actor.Role {
			continue
		}
		switch {
		case g.Role == RoleManager:
			if actor.ManagesHotel(b.HotelID) {
				return nil
			}
		case g.Scope == ScopeAny:
			return nil
		case b.IsOwnedBy(actor.UserID):
			return nil
		}
	}
	return forbiddenf("%s may not %s booking %s", actor.Role, event, b.ReferenceCode)
}

// Decide validates a transition without touching storage. Any error leaves the
// booking as it was.
func (m *StateMachine) Decide(req TransitionRequest) (Decision, error) {
	b := req.Booking
	if err := Authorize(req.Event, req.Actor, b); err != nil {
		return Decision{}, err
	}
	if req.Event == EventOverride {
		return m.decideOverride(req)
	}

	e := transitions[req.Event]
	d := Decision{Event: req.Event, From: b.Status, To: e.to}
	if req.Event == EventCreate {
		d.From = ""
		return d, nil
	}
	if !statusIn(b.Status, e.from) {
		return Decision{}, invalidTransitionf("cannot %s a %s booking", req.Event, b.Status)
	}
	if d.To == "" {
		d.To = b.Status
	}

	now := m.now()
	switch req.Event {
	case EventCheckIn:
		today := StayDate(now.In(locationOrUTC(req.Location)))
		if today.Before(StayDate(b.CheckIn)) {
			return Decision{}, invalidTransitionf("check-in opens on %s", b.CheckIn.Format("2006-01-02"))
		}
	case EventCancel:
		d.RefundEligible = m.refundEligibility(b, req.Location, now)
	case EventExpire:
		if b.PaymentStatus == models.PaymentStatusPaid {
			return Decision{}, invalidTransitionf("booking %s is paid", b.ReferenceCode)
		}
		if now.Sub(b.CreatedAt) < m.PendingExpiry {
			return Decision{}, invalidTransitionf("booking %s has not expired yet", b.ReferenceCode)
		}
	}
	return d, nil
}

func (m *StateMachine) decideOverride(req TransitionRequest) (Decision, error) {
	b := req.Booking
	if !req.Target.IsValid() {
		return Decision{}, validationf("unknown status %q", req.Target)
	}
	if b.Status.IsTerminal() {
		return Decision{}, invalidTransitionf("booking %s is %s", b.ReferenceCode, b.Status)
	}
	if req.Target == b.Status {
		return Decision{}, invalidTransitionf("booking %s is already %s", b.ReferenceCode, b.Status)
	}
	if req.Target == models.BookingStatusPending && b.PaymentStatus == models.PaymentStatusPaid {
		return Decision{}, invalidTransitionf("paid booking %s cannot return to PENDING", b.ReferenceCode)
	}
	d := Decision{Event: EventOverride, From: b.Status, To: req.Target, Override: true}
	if req.Target == models.BookingStatusCancelled {
		d.RefundEligible = m.refundEligibility(b, req.Location, m.now())
	}
	return d, nil
}

// refundEligibility is nil for unconfirmed bookings. A confirmed booking
// cancelled less than GraceWindow before check-in loses its refund.
func (m *StateMachine) refundEligibility(b models.Booking, loc *time.Location, now time.Time) *bool {
	if b.Status != models.BookingStatusConfirmed && b.Status != models.BookingStatusCheckedIn {
		return nil
	}
	loc = locationOrUTC(loc)
	arrival := time.Date(b.CheckIn.Year(), b.CheckIn.Month(), b.CheckIn.Day(), 0, 0, 0, 0, loc)
	eligible := b.Status == models.BookingStatusConfirmed && arrival.Sub(now) >= m.GraceWindow
	return &eligible
}

func (m *StateMachine) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

func statusIn(s models.BookingStatus, set []models.BookingStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
