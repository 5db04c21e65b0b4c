package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	bookingserrors "parkspot/internal/bookings/errors"
	"parkspot/internal/bookings/repository"
	"parkspot/internal/bookings/scheduling"
	"parkspot/internal/bookings/validator"
	"parkspot/pkg/config"
	apperrors "parkspot/pkg/errors"
	"parkspot/pkg/locker"
	"parkspot/pkg/model"
	"parkspot/pkg/sanitizer"
)

// BookingService is the only writer of bookings. Every operation receives the
// authenticated caller explicitly.
type BookingService interface {
	Create(ctx context.Context, requester model.Requester, req *model.CreateBookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, requester model.Requester, id string) (*model.BookingDetails, error)
	ListForDriver(ctx context.Context, requester model.Requester) ([]*model.BookingDetails, error)
	Cancel(ctx context.Context, requester model.Requester, id string) (*model.Booking, error)
	ListBookedAndSuggestedSlots(ctx context.Context, spotID string) (*model.SpotSlots, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	spots     repository.SpotRepository
	users     repository.UserRepository
	locks     locker.Locker
	events    EventPublisher
	validator *validator.BookingValidator
	cfg       *config.Config
	loc       *time.Location
	now       func() time.Time
}

type Option func(*bookingService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *bookingService) { s.now = now }
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *bookingService) {
		if p != nil {
			s.events = p
		}
	}
}

func NewBookingService(
	repo repository.BookingRepository,
	spots repository.SpotRepository,
	users repository.UserRepository,
	locks locker.Locker,
	validator *validator.BookingValidator,
	cfg *config.Config,
	opts ...Option,
) BookingService {
	s := &bookingService{
		repo:      repo,
		spots:     spots,
		users:     users,
		locks:     locks,
		events:    NoopPublisher{},
		validator: validator,
		cfg:       cfg,
		loc:       cfg.Location,
		now:       time.Now,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *bookingService) Create(ctx context.Context, requester model.Requester, req *model.CreateBookingRequest) (*model.Booking, error) {
	if requester.UserID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	s.sanitize(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	interval, err := scheduling.ParseInterval(req.StartTime, req.EndTime, s.loc)
	if err != nil {
		s.cfg.Log.Warn("Booking interval rejected",
			"start_time", req.StartTime,
			"end_time", req.EndTime,
			"error", err,
		)
		return nil, apperrors.InvalidInterval("Invalid time range: end time must be after a valid start time")
	}

	spot, err := s.findSpot(ctx, req.SpotID)
	if err != nil {
		return nil, err
	}
	if !spot.IsAvailable {
		return nil, apperrors.SpotUnavailable("Parking spot is not available for booking")
	}

	leaseCtx, unlock, err := s.holdSpot(ctx, spot.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var booking *model.Booking
	err = s.repo.ExecuteTransaction(leaseCtx, func(txCtx context.Context) error {
		existing, err := s.repo.FindOverlapping(txCtx, spot.ID, interval.Start, interval.End)
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if conflict := scheduling.FindConflict(interval, existing); conflict != nil {
			return conflictError(conflict)
		}

		cost, err := scheduling.Price(interval, spot.PricePerHour)
		switch {
		case errors.Is(err, scheduling.ErrInvalidInterval):
			return apperrors.InvalidInterval("Invalid time range: end time must be after a valid start time")
		case err != nil:
			return apperrors.InvalidPrice("Parking spot has an invalid price", err)
		}

		booking = &model.Booking{
			DriverID:      requester.UserID,
			SpotID:        spot.ID,
			HostID:        spot.OwnerID,
			StartTime:     interval.Start.UTC().Truncate(time.Millisecond),
			EndTime:       interval.End.UTC().Truncate(time.Millisecond),
			TotalCost:     cost,
			Status:        model.StatusConfirmed,
			PaymentStatus: model.PaymentPaid,
			Notes:         req.Notes,
			CreatedAt:     s.now().UTC().Truncate(time.Millisecond),
		}
		if err := txCtx.Err(); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if leaseExpired(ctx, leaseCtx) {
			s.cfg.Log.Error("Booking not committed within the spot lock lease",
				"spot_id", spot.ID,
				"driver_id", requester.UserID,
				"lease", s.leaseBudget(),
				"error", err,
			)
			return nil, apperrors.Timeout("Booking could not be completed in time. Please try again.")
		}
		s.logFailure("Failed to create booking", err, "spot_id", spot.ID, "driver_id", requester.UserID)
		return nil, apperrors.AsAppError(err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"spot_id", booking.SpotID,
		"driver_id", booking.DriverID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
		"total_cost", booking.TotalCost,
	)
	s.publish(ctx, model.EventBookingCreated, booking)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, requester model.Requester, id string) (*model.BookingDetails, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	isParty := requester.UserID != "" && (booking.DriverID == requester.UserID || booking.HostID == requester.UserID)
	if !isParty && !requester.IsAdmin() {
		s.cfg.Log.Warn("Booking access denied", "id", booking.ID, "user_id", requester.UserID)
		return nil, apperrors.Forbidden("You are not allowed to view this booking")
	}

	var (
		spot     *model.Spot
		users    map[string]*model.User
		spotErr  error
		usersErr error
		wg       sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		spot, spotErr = s.spots.FindByID(ctx, booking.SpotID)
		if errors.Is(spotErr, bookingserrors.ErrSpotNotFound) {
			spot, spotErr = nil, nil
		}
	}()

	go func() {
		defer wg.Done()
		users, usersErr = s.users.FindByIDs(ctx, []string{booking.DriverID, booking.HostID})
	}()

	wg.Wait()
	if spotErr != nil {
		s.cfg.Log.Error("Failed to load booking spot", "id", booking.ID, "error", spotErr)
		return nil, apperrors.Internal("Failed to retrieve booking", spotErr)
	}
	if usersErr != nil {
		s.cfg.Log.Error("Failed to load booking users", "id", booking.ID, "error", usersErr)
		return nil, apperrors.Internal("Failed to retrieve booking", usersErr)
	}

	return &model.BookingDetails{
		Booking: booking,
		Spot:    spot.Summary(),
		Driver:  users[booking.DriverID].Summary(),
		Host:    users[booking.HostID].Summary(),
	}, nil
}

func (s *bookingService) ListForDriver(ctx context.Context, requester model.Requester) ([]*model.BookingDetails, error) {
	if requester.UserID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	bookings, err := s.repo.FindByDriver(ctx, requester.UserID)
	if err != nil {
		s.cfg.Log.Error("Failed to list driver bookings", "driver_id", requester.UserID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	details := make([]*model.BookingDetails, 0, len(bookings))
	if len(bookings) == 0 {
		return details, nil
	}

	spotIDs := make([]string, 0, len(bookings))
	hostIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		spotIDs = append(spotIDs, b.SpotID)
		hostIDs = append(hostIDs, b.HostID)
	}

	var (
		spots    map[string]*model.Spot
		hosts    map[string]*model.User
		spotsErr error
		hostsErr error
		wg       sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		spots, spotsErr = s.spots.FindByIDs(ctx, spotIDs)
	}()

	go func() {
		defer wg.Done()
		hosts, hostsErr = s.users.FindByIDs(ctx, hostIDs)
	}()

	wg.Wait()
	if spotsErr != nil {
		s.cfg.Log.Error("Failed to load spots for driver bookings", "driver_id", requester.UserID, "error", spotsErr)
		return nil, apperrors.Internal("Failed to retrieve bookings", spotsErr)
	}
	if hostsErr != nil {
		s.cfg.Log.Error("Failed to load hosts for driver bookings", "driver_id", requester.UserID, "error", hostsErr)
		return nil, apperrors.Internal("Failed to retrieve bookings", hostsErr)
	}

	for _, b := range bookings {
		var host *model.UserSummary
		if u := hosts[b.HostID]; u != nil {
			// hosts only expose their username here
			host = &model.UserSummary{ID: u.ID, Username: u.Username}
		}
		details = append(details, &model.BookingDetails{
			Booking: b,
			Spot:    spots[b.SpotID].Summary(),
			Host:    host,
		})
	}

	s.cfg.Log.Debug("Driver bookings listed", "driver_id", requester.UserID, "count", len(details))
	return details, nil
}

func (s *bookingService) Cancel(ctx context.Context, requester model.Requester, id string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	// hosts cannot cancel their guests' bookings
	isDriver := requester.UserID != "" && booking.DriverID == requester.UserID
	if !isDriver && !requester.IsAdmin() {
		s.cfg.Log.Warn("Booking cancellation denied", "id", booking.ID, "user_id", requester.UserID)
		return nil, apperrors.Forbidden("Only the driver who made the booking can cancel it")
	}

	if !booking.Status.CanTransitionTo(model.StatusCancelled) {
		return nil, alreadyTerminal(booking.Status)
	}

	// TODO: apply a cancellation window once hosts can configure one.

	leaseCtx, unlock, err := s.holdSpot(ctx, booking.SpotID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cancelled, err := s.repo.Cancel(leaseCtx, booking.ID, s.now())
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotCancellable) {
			// lost a race with another terminal transition
			return nil, alreadyTerminal(model.StatusCancelled)
		}
		if leaseExpired(ctx, leaseCtx) {
			return nil, apperrors.Timeout("Cancellation could not be completed in time. Please try again.")
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", booking.ID, "error", err)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	s.cfg.Log.Info("Booking cancelled successfully",
		"id", cancelled.ID,
		"spot_id", cancelled.SpotID,
		"cancelled_by", requester.UserID,
	)
	s.publish(ctx, model.EventBookingCancelled, cancelled)
	return cancelled, nil
}

func (s *bookingService) ListBookedAndSuggestedSlots(ctx context.Context, spotID string) (*model.SpotSlots, error) {
	spotID = sanitizer.SanitizeID(spotID)
	if spotID == "" {
		return nil, apperrors.MissingField("Spot ID is required", "spotId")
	}

	now := s.now()
	booked, err := s.repo.FindUpcomingBySpot(ctx, spotID, now)
	if err != nil {
		s.cfg.Log.Error("Failed to list booked slots", "spot_id", spotID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booked slots", err)
	}

	intervals := make([]scheduling.Interval, 0, len(booked))
	for _, b := range booked {
		intervals = append(intervals, scheduling.Interval{Start: b.StartTime, End: b.EndTime})
	}

	free := scheduling.SuggestSlots(now, s.loc, intervals, scheduling.MaxSuggestions)
	suggested := make([]model.SuggestedSlot, 0, len(free))
	for _, slot := range free {
		suggested = append(suggested, model.SuggestedSlot{Start: slot.Start, End: slot.End})
	}

	return &model.SpotSlots{
		BookedSlots:    booked,
		SuggestedSlots: suggested,
	}, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(req *model.CreateBookingRequest) {
	req.SpotID = sanitizer.SanitizeID(req.SpotID)
	req.StartTime = sanitizer.SanitizeTimestamp(req.StartTime)
	req.EndTime = sanitizer.SanitizeTimestamp(req.EndTime)
	req.Notes = sanitizer.SanitizeNotes(req.Notes)
}

func (s *bookingService) validate(req *model.CreateBookingRequest) error {
	err := s.validator.ValidateCreate(req)
	if err == nil {
		return nil
	}

	s.cfg.Log.Warn("Booking validation failed", "error", err)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		if missing := verrs.MissingFields(); len(missing) > 0 {
			return apperrors.MissingField(
				fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")),
				missing...,
			)
		}
		return apperrors.InvalidInput(err.Error())
	}
	return apperrors.Internal("Failed to validate booking", err)
}

func (s *bookingService) findSpot(ctx context.Context, id string) (*model.Spot, error) {
	spot, err := s.spots.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrSpotNotFound) {
			return nil, apperrors.NotFoundWithID("Parking spot", id)
		}
		s.cfg.Log.Error("Failed to load parking spot", "spot_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve parking spot", err)
	}
	return spot, nil
}

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	id = sanitizer.SanitizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to load booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) acquireSpotLock(ctx context.Context, spotID string) (locker.Release, error) {
	release, err := s.locks.Acquire(ctx, locker.SpotKey(spotID))
	if err == nil {
		return release, nil
	}

	switch {
	case errors.Is(err, locker.ErrLockHeld):
		s.cfg.Log.Warn("Spot lock busy", "spot_id", spotID)
		return nil, apperrors.Conflict("This spot is currently being booked by another request. Please try again.")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return nil, apperrors.Timeout("Timed out waiting for the spot to become available")
	default:
		s.cfg.Log.Error("Failed to acquire spot lock", "spot_id", spotID, "error", err)
		return nil, apperrors.Internal("Failed to acquire booking lock", err)
	}
}

// holdSpot takes the spot lock and returns a context that expires before the
// lock lease does. Writes made under the lock must use that context, so a
// slow write is aborted instead of committing after another writer has taken
// over the expired lock.
func (s *bookingService) holdSpot(ctx context.Context, spotID string) (context.Context, func(), error) {
	release, err := s.acquireSpotLock(ctx, spotID)
	if err != nil {
		return nil, nil, err
	}

	leaseCtx, cancel := context.WithTimeout(ctx, s.leaseBudget())
	return leaseCtx, func() {
		cancel()
		s.releaseSpotLock(ctx, spotID, release)
	}, nil
}

// leaseBudget is the lock TTL minus a fifth, kept back for the store round
// trip that granted the lock and for clock skew between instances.
func (s *bookingService) leaseBudget() time.Duration {
	ttl := s.cfg.LockTTL
	if ttl <= 0 {
		ttl = locker.DefaultTTL
	}
	return ttl - ttl/5
}

// leaseExpired reports whether leaseCtx ran out while the caller's own
// context was still live.
func leaseExpired(ctx, leaseCtx context.Context) bool {
	return ctx.Err() == nil && errors.Is(leaseCtx.Err(), context.DeadlineExceeded)
}

func (s *bookingService) releaseSpotLock(ctx context.Context, spotID string, release locker.Release) {
	if err := release(ctx); err != nil {
		s.cfg.Log.Warn("Failed to release spot lock", "spot_id", spotID, "error", err)
	}
}

// publish never fails the operation; the booking is already committed.
func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking) {
	event := model.NewBookingEvent(eventType, b, s.now().UTC())
	if err := s.events.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"type", eventType,
			"id", b.ID,
			"error", err,
		)
	}
}

func (s *bookingService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus >= 500 {
		s.cfg.Log.Error(msg, args...)
		return
	}
	s.cfg.Log.Warn(msg, args...)
}

func conflictError(existing *model.Booking) *apperrors.AppError {
	start := existing.StartTime.UTC().Format(time.RFC3339)
	end := existing.EndTime.UTC().Format(time.RFC3339)
	return apperrors.Conflict(fmt.Sprintf(
		"Slot already booked from %s to %s. Please choose a different time.", start, end,
	)).WithDetails(map[string]any{
		"startTime": start,
		"endTime":   end,
	})
}

func alreadyTerminal(status model.BookingStatus) *apperrors.AppError {
	return apperrors.AlreadyTerminal(fmt.Sprintf("Booking is already %s and cannot be cancelled", status))
}
