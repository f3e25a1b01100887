package services

import (
	"errors"
	"testing"
	"time"

	"hotel-reservation/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMachine(now time.Time) *StateMachine {
	m := NewStateMachine(48*time.Hour, 30*time.Minute)
	m.Now = func() time.Time { return now }
	return m
}

func sampleBooking(status models.BookingStatus) models.Booking {
	return models.Booking{
		ID:            11,
		HotelID:       1,
		CustomerID:    7,
		ReferenceCode: "BK-TEST",
		Status:        status,
		CheckIn:       date("2025-06-01"),
		CheckOut:      date("2025-06-03"),
		CreatedAt:     time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC),
	}
}

var (
	ownerActor    = Actor{UserID: 7, Role: RoleCustomer}
	intruderActor = Actor{UserID: 8, Role: RoleCustomer}
	managerActor  = Actor{UserID: 100, Role: RoleManager, HotelID: 1}
	outsiderActor = Actor{UserID: 101, Role: RoleManager, HotelID: 2}
	chainActor    = Actor{UserID: 102, Role: RoleManager}
)

func TestAuthorize(t *testing.T) {
	b := sampleBooking(models.BookingStatusPending)
	cases := []struct {
		event   Event
		actor   Actor
		allowed bool
	}{
		{EventCreate, ownerActor, true},
		{EventCreate, managerActor, true},
		{EventCreate, outsiderActor, false},
		{EventConfirmPayment, ownerActor, true},
		{EventConfirmPayment, intruderActor, false},
		{EventConfirmPayment, SystemActor(), true},
		{EventCheckIn, ownerActor, false},
		{EventCheckIn, managerActor, true},
		{EventCheckIn, chainActor, true},
		{EventCheckIn, outsiderActor, false},
		{EventCheckOut, SystemActor(), false},
		{EventCancel, ownerActor, true},
		{EventCancel, intruderActor, false},
		{EventCancel, SystemActor(), false},
		{EventExpire, SystemActor(), true},
		{EventExpire, managerActor, false},
		{EventOverride, managerActor, true},
		{EventOverride, ownerActor, false},
		{EventReschedule, ownerActor, true},
		{EventReschedule, intruderActor, false},
	}
	for _, tc := range cases {
		err := Authorize(tc.event, tc.actor, b)
		if tc.allowed {
			assert.NoError(t, err, "%s by %s/%d", tc.event, tc.actor.Role, tc.actor.UserID)
		} else {
			assert.True(t, errors.Is(err, ErrForbidden), "%s by %s/%d: %v", tc.event, tc.actor.Role, tc.actor.UserID, err)
		}
	}

	assert.True(t, errors.Is(Authorize("teleport", managerActor, b), ErrValidation))
}

func TestDecide_LegalTransitions(t *testing.T) {
	m := testMachine(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	cases := []struct {
		event Event
		actor Actor
		from  models.BookingStatus
		to    models.BookingStatus
	}{
		{EventConfirmPayment, ownerActor, models.BookingStatusPending, models.BookingStatusConfirmed},
		{EventCheckIn, managerActor, models.BookingStatusConfirmed, models.BookingStatusCheckedIn},
		{EventCheckOut, managerActor, models.BookingStatusCheckedIn, models.BookingStatusCheckedOut},
		{EventCancel, ownerActor, models.BookingStatusPending, models.BookingStatusCancelled},
		{EventCancel, managerActor, models.BookingStatusConfirmed, models.BookingStatusCancelled},
		{EventExpire, SystemActor(), models.BookingStatusPending, models.BookingStatusCancelled},
		{EventReschedule, ownerActor, models.BookingStatusConfirmed, models.BookingStatusConfirmed},
	}
	for _, tc := range cases {
		d, err := m.Decide(TransitionRequest{Event: tc.event, Actor: tc.actor, Booking: sampleBooking(tc.from)})
		require.NoError(t, err, "%s from %s", tc.event, tc.from)
		assert.Equal(t, tc.from, d.From)
		assert.Equal(t, tc.to, d.To)
		assert.False(t, d.Override)
	}
}

func TestDecide_IllegalTransitions(t *testing.T) {
	m := testMachine(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	cases := []struct {
		event Event
		from  models.BookingStatus
	}{
		{EventConfirmPayment, models.BookingStatusCheckedOut},
		{EventConfirmPayment, models.BookingStatusConfirmed},
		{EventCheckIn, models.BookingStatusPending},
		{EventCheckIn, models.BookingStatusCancelled},
		{EventCheckOut, models.BookingStatusConfirmed},
		{EventCancel, models.BookingStatusCheckedIn},
		{EventCancel, models.BookingStatusCancelled},
		{EventReschedule, models.BookingStatusCheckedIn},
	}
	for _, tc := range cases {
		_, err := m.Decide(TransitionRequest{Event: tc.event, Actor: managerActor, Booking: sampleBooking(tc.from)})
		assert.True(t, errors.Is(err, ErrInvalidTransition), "%s from %s: %v", tc.event, tc.from, err)
		assert.True(t, errors.Is(err, ErrConflict), "invalid transitions are conflicts too")
	}
}

func TestDecide_ForbiddenBeforeInvalid(t *testing.T) {
	m := testMachine(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	_, err := m.Decide(TransitionRequest{Event: EventCheckIn, Actor: ownerActor, Booking: sampleBooking(models.BookingStatusCancelled)})
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestDecide_CheckInOpensOnArrivalDay(t *testing.T) {
	b := sampleBooking(models.BookingStatusConfirmed)

	_, err := testMachine(time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC)).
		Decide(TransitionRequest{Event: EventCheckIn, Actor: managerActor, Booking: b})
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	_, err = testMachine(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)).
		Decide(TransitionRequest{Event: EventCheckIn, Actor: managerActor, Booking: b})
	assert.NoError(t, err)

	// 23:00 UTC on May 31 is already June 1 in Bangkok
	_, err = testMachine(time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC)).
		Decide(TransitionRequest{Event: EventCheckIn, Actor: managerActor, Booking: b, Location: time.FixedZone("ICT", 7*3600)})
	assert.NoError(t, err)
}

func TestDecide_CancelRefundEligibility(t *testing.T) {
	confirmed := sampleBooking(models.BookingStatusConfirmed)

	d, err := testMachine(time.Date(2025, 5, 29, 23, 0, 0, 0, time.UTC)).
		Decide(TransitionRequest{Event: EventCancel, Actor: ownerActor, Booking: confirmed})
	require.NoError(t, err)
	require.NotNil(t, d.RefundEligible)
	assert.True(t, *d.RefundEligible, "49h before arrival")

	d, err = testMachine(time.Date(2025, 5, 30, 1, 0, 0, 0, time.UTC)).
		Decide(TransitionRequest{Event: EventCancel, Actor: ownerActor, Booking: confirmed})
	require.NoError(t, err)
	require.NotNil(t, d.RefundEligible)
	assert.False(t, *d.RefundEligible, "47h before arrival")

	d, err = testMachine(time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC)).
		Decide(TransitionRequest{Event: EventCancel, Actor: ownerActor, Booking: confirmed})
	require.NoError(t, err)
	assert.True(t, *d.RefundEligible, "exactly the grace window is still eligible")

	d, err = testMachine(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)).
		Decide(TransitionRequest{Event: EventCancel, Actor: ownerActor, Booking: sampleBooking(models.BookingStatusPending)})
	require.NoError(t, err)
	assert.Nil(t, d.RefundEligible, "nothing to refund on an unpaid booking")
}

func TestDecide_Expire(t *testing.T) {
	created := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
	b := sampleBooking(models.BookingStatusPending)

	_, err := testMachine(created.Add(29*time.Minute)).
		Decide(TransitionRequest{Event: EventExpire, Actor: SystemActor(), Booking: b})
	assert.True(t, errors.Is(err, ErrInvalidTransition), "too early")

	_, err = testMachine(created.Add(30*time.Minute)).
		Decide(TransitionRequest{Event: EventExpire, Actor: SystemActor(), Booking: b})
	assert.NoError(t, err)

	b.PaymentStatus = models.PaymentStatusPaid
	_, err = testMachine(created.Add(time.Hour)).
		Decide(TransitionRequest{Event: EventExpire, Actor: SystemActor(), Booking: b})
	assert.True(t, errors.Is(err, ErrInvalidTransition), "paid bookings never expire")
}

func TestDecide_Override(t *testing.T) {
	m := testMachine(time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC))

	d, err := m.Decide(TransitionRequest{
		Event: EventOverride, Actor: managerActor, Booking: sampleBooking(models.BookingStatusPending),
		Target: models.BookingStatusConfirmed,
	})
	require.NoError(t, err)
	assert.True(t, d.Override)
	assert.True(t, d.BlocksRoom())

	d, err = m.Decide(TransitionRequest{
		Event: EventOverride, Actor: managerActor, Booking: sampleBooking(models.BookingStatusConfirmed),
		Target: models.BookingStatusCheckedIn,
	})
	require.NoError(t, err, "override skips the arrival-day guard")
	assert.False(t, d.BlocksRoom(), "already holding the room")

	d, err = m.Decide(TransitionRequest{
		Event: EventOverride, Actor: managerActor, Booking: sampleBooking(models.BookingStatusConfirmed),
		Target: models.BookingStatusCancelled,
	})
	require.NoError(t, err)
	require.NotNil(t, d.RefundEligible)
	assert.True(t, *d.RefundEligible)

	paid := sampleBooking(models.BookingStatusConfirmed)
	paid.PaymentStatus = models.PaymentStatusPaid
	rejected := []struct {
		name    string
		booking models.Booking
		target  models.BookingStatus
		want    error
	}{
		{"unknown target", sampleBooking(models.BookingStatusPending), "LOST", ErrValidation},
		{"same status", sampleBooking(models.BookingStatusPending), models.BookingStatusPending, ErrInvalidTransition},
		{"terminal", sampleBooking(models.BookingStatusCheckedOut), models.BookingStatusCheckedIn, ErrInvalidTransition},
		{"cancelled", sampleBooking(models.BookingStatusCancelled), models.BookingStatusConfirmed, ErrInvalidTransition},
		{"paid back to pending", paid, models.BookingStatusPending, ErrInvalidTransition},
	}
	for _, tc := range rejected {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Decide(TransitionRequest{Event: EventOverride, Actor: managerActor, Booking: tc.booking, Target: tc.target})
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	_, err = m.Decide(TransitionRequest{
		Event: EventOverride, Actor: ownerActor, Booking: sampleBooking(models.BookingStatusPending),
		Target: models.BookingStatusConfirmed,
	})
	assert.True(t, errors.Is(err, ErrForbidden))
}
