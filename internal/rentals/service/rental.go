package service

import (
	"context"
	"errors"
	rentalserrors "lockrent/internal/rentals/errors"
	"lockrent/internal/rentals/repository"
	"lockrent/internal/rentals/validator"
	"lockrent/pkg/config"
	apperrors "lockrent/pkg/errors"
	"lockrent/pkg/metrics"
	"lockrent/pkg/model"
	"lockrent/pkg/sanitizer"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	RetireModeDeleted  = "deleted"
	RetireModeDeferred = "deferred"
)

// EventPublisher is notified after an end-rental transaction commits.
type EventPublisher interface {
	PublishRentalEnded(ctx context.Context, rental *model.Rental, retired bool) error
}

type RentalService interface {
	EndRental(ctx context.Context, userID string, lockID string) (*model.EndRentalResult, error)
	GetLockStatus(ctx context.Context, userID string, lockID string) (model.LockStatus, error)
	ListRentals(ctx context.Context, userID string, limit int, offset int64) ([]*model.Rental, int64, error)
	// RetireLock removes an idle lock immediately. An active lock is flagged
	// and removed when its rental ends. The returned mode is RetireModeDeleted
	// or RetireModeDeferred.
	RetireLock(ctx context.Context, lockID string) (string, error)
	RegisterLock(ctx context.Context, lock *model.Lock) error
}

type Option func(*rentalService)

func WithClock(clock Clock) Option {
	return func(s *rentalService) { s.clock = clock }
}

func WithStatusValidator(v LockStatusValidator) Option {
	return func(s *rentalService) { s.status = v }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *rentalService) { s.publisher = p }
}

func WithMetrics(m *metrics.RentalMetrics) Option {
	return func(s *rentalService) { s.metrics = m }
}

type rentalService struct {
	locks        repository.LockRepository
	rentals      repository.RentalRepository
	validator    *validator.RentalValidator
	status       LockStatusValidator
	finalizer    RentalFinalizer
	secrets      SecretReleaser
	transitioner LockStateTransitioner
	publisher    EventPublisher
	metrics      *metrics.RentalMetrics
	clock        Clock
	cfg          *config.Config
}

func NewRentalService(
	locks repository.LockRepository,
	rentals repository.RentalRepository,
	validator *validator.RentalValidator,
	cfg *config.Config,
	opts ...Option,
) RentalService {
	s := &rentalService{
		locks:        locks,
		rentals:      rentals,
		validator:    validator,
		status:       NewLockStatusValidator(locks),
		finalizer:    NewRentalFinalizer(rentals),
		secrets:      NewSecretReleaser(locks),
		transitioner: NewLockStateTransitioner(locks),
		clock:        SystemClock,
		cfg:          cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *rentalService) EndRental(ctx context.Context, userID string, lockID string) (*model.EndRentalResult, error) {
	started := time.Now()
	req := &model.EndRentalRequest{
		UserID: sanitizer.SanitizeUserID(userID),
		LockID: sanitizer.SanitizeLockID(lockID),
	}
	if err := s.validator.ValidateEndRental(req); err != nil {
		s.metrics.ObserveEndRental(metrics.OutcomeInvalid, time.Since(started))
		s.cfg.Log.Warn("End rental validation failed", "lock_id", lockID, "error", err)
		return nil, apperrors.InvalidInput("Invalid end rental request").WithDetails(map[string]any{"errors": err})
	}

	var result *model.EndRentalResult
	err := s.locks.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		lock, err := s.status.Acquire(txCtx, req.UserID, req.LockID)
		if err != nil {
			return err
		}

		rental, err := s.finalizer.Finalize(txCtx, lock, s.clock())
		if err != nil {
			return err
		}

		secrets, err := s.secrets.Release(txCtx, lock)
		if err != nil {
			return err
		}

		retired, err := s.transitioner.Transition(txCtx, lock)
		if err != nil {
			return err
		}

		result = &model.EndRentalResult{
			LockID:  lock.ID,
			Rental:  rental,
			Retired: retired,
			Secrets: secrets,
		}
		return nil
	})
	if err != nil {
		appErr, outcome := mapEndRentalError(err, req.LockID)
		s.metrics.ObserveEndRental(outcome, time.Since(started))
		if outcome == metrics.OutcomeNotHeld {
			s.cfg.Log.Info("End rental refused, lock not held by caller", "lock_id", req.LockID, "user_id", req.UserID)
		} else {
			s.cfg.Log.Error("Failed to end rental", "lock_id", req.LockID, "user_id", req.UserID, "outcome", outcome, "error", err)
		}
		return nil, appErr
	}

	s.metrics.ObserveEndRental(metrics.OutcomeSuccess, time.Since(started))
	s.metrics.ObserveCharge(result.Rental.Duration, result.Rental.Cost)
	s.cfg.Log.Info("Rental ended successfully",
		"lock_id", result.LockID,
		"rental_id", result.Rental.ID,
		"user_id", result.Rental.UserID,
		"duration", result.Rental.Duration,
		"cost", result.Rental.Cost,
		"retired", result.Retired,
	)

	s.publishRentalEnded(ctx, result)
	return result, nil
}

func (s *rentalService) publishRentalEnded(ctx context.Context, result *model.EndRentalResult) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishRentalEnded(ctx, result.Rental, result.Retired)
	s.metrics.IncEvent(err == nil)
	if err != nil {
		s.cfg.Log.Error("Failed to publish rental ended event",
			"lock_id", result.LockID,
			"rental_id", result.Rental.ID,
			"error", err,
		)
	}
}

// mapEndRentalError converts a failed transaction into the caller-facing
// error and the metrics outcome label.
func mapEndRentalError(err error, lockID string) (*apperrors.AppError, string) {
	switch {
	case errors.Is(err, rentalserrors.ErrNotHeldByCaller):
		return apperrors.NotHeld(lockID), metrics.OutcomeNotHeld
	case errors.Is(err, rentalserrors.ErrLockWaitTimeout):
		return apperrors.Timeout("Timed out waiting for lock").WithCause(err), metrics.OutcomeTimeout
	case errors.Is(err, rentalserrors.ErrLockVanished),
		errors.Is(err, rentalserrors.ErrTransactionConflict),
		errors.Is(err, rentalserrors.ErrLockNotFound):
		return apperrors.Conflict("Lock was modified concurrently, retry the request").WithCause(err), metrics.OutcomeConflict
	case errors.Is(err, rentalserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid lock ID format"), metrics.OutcomeInvalid
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("End rental timed out").WithCause(err), metrics.OutcomeTimeout
	default:
		return apperrors.Internal("Failed to end rental", err), metrics.OutcomeError
	}
}

func (s *rentalService) GetLockStatus(ctx context.Context, userID string, lockID string) (model.LockStatus, error) {
	req := &model.LockStatusRequest{
		UserID: sanitizer.SanitizeUserID(userID),
		LockID: sanitizer.SanitizeLockID(lockID),
	}
	if err := s.validator.ValidateLockStatus(req); err != nil {
		return model.LockNotHeld, apperrors.InvalidInput("Invalid lock status request").WithDetails(map[string]any{"errors": err})
	}

	status, err := s.status.GetLockStatus(ctx, req.UserID, req.LockID)
	if err != nil {
		// A corrupt row has no valid holder.
		if errors.Is(err, rentalserrors.ErrCorruptLock) {
			s.cfg.Log.Warn("Lock record is corrupt, reporting not held", "lock_id", req.LockID, "error", err)
			return model.LockNotHeld, nil
		}
		s.cfg.Log.Error("Failed to read lock status", "lock_id", req.LockID, "error", err)
		return model.LockNotHeld, apperrors.Internal("Failed to read lock status", err)
	}
	return status, nil
}

func (s *rentalService) ListRentals(ctx context.Context, userID string, limit int, offset int64) ([]*model.Rental, int64, error) {
	userID = sanitizer.SanitizeUserID(userID)
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var rentals []*model.Rental
	var count int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.rentals.CountByUser(gctx, userID)
		if err != nil {
			s.cfg.Log.Error("Failed to count rentals", "user_id", userID, "error", err)
			return apperrors.Internal("Failed to count rentals", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rentals, err = s.rentals.FindByUser(gctx, userID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list rentals", "user_id", userID, "error", err)
			return apperrors.Internal("Failed to retrieve rentals", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return rentals, count, nil
}

func (s *rentalService) RetireLock(ctx context.Context, lockID string) (string, error) {
	req := &model.RetireLockRequest{LockID: sanitizer.SanitizeLockID(lockID)}
	if err := s.validator.ValidateRetire(req); err != nil {
		return "", apperrors.InvalidInput("Invalid retire request").WithDetails(map[string]any{"errors": err})
	}

	var mode string
	err := s.locks.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		lock, err := s.locks.FindByID(txCtx, req.LockID)
		if err != nil {
			return err
		}
		if !lock.IsActive() {
			mode = RetireModeDeleted
			return s.locks.Delete(txCtx, lock.ID, lock.Version)
		}
		mode = RetireModeDeferred
		if lock.Deleted {
			return nil
		}
		return s.locks.MarkRetired(txCtx, lock.ID, lock.Version)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to retire lock", "lock_id", req.LockID, "error", err)
		switch {
		case errors.Is(err, rentalserrors.ErrLockNotFound):
			return "", apperrors.NotFoundWithID("Lock", req.LockID)
		case errors.Is(err, rentalserrors.ErrTransactionConflict):
			return "", apperrors.Conflict("Lock was modified concurrently, retry the request").WithCause(err)
		case errors.Is(err, rentalserrors.ErrLockWaitTimeout):
			return "", apperrors.Timeout("Timed out waiting for lock").WithCause(err)
		default:
			return "", apperrors.Internal("Failed to retire lock", err)
		}
	}

	s.metrics.IncRetirement(mode)
	s.cfg.Log.Info("Lock retired", "lock_id", req.LockID, "mode", mode)
	return mode, nil
}

func (s *rentalService) RegisterLock(ctx context.Context, lock *model.Lock) error {
	lock.ID = sanitizer.SanitizeLockID(lock.ID)
	lock.Name = sanitizer.NormalizeName(lock.Name)
	lock.Station.Name = sanitizer.NormalizeName(lock.Station.Name)
	lock.URL = sanitizer.SanitizeURL(lock.URL)
	lock.MAC = sanitizer.SanitizeMAC(lock.MAC)
	lock.Version = 0

	if err := s.validator.ValidateLock(lock); err != nil {
		s.cfg.Log.Warn("Lock validation failed", "lock_id", lock.ID, "error", err)
		return apperrors.Validation("Invalid lock", map[string]any{"errors": err})
	}

	if err := s.locks.Create(ctx, lock); err != nil {
		s.cfg.Log.Error("Failed to register lock", "lock_id", lock.ID, "error", err)
		return apperrors.Internal("Failed to register lock", err)
	}

	s.cfg.Log.Info("Lock registered", "lock_id", lock.ID, "station_id", lock.Station.ID)
	return nil
}
