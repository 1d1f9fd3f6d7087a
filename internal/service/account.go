package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"credit-card-account/internal/account"
	"credit-card-account/internal/config"
	"credit-card-account/internal/logger"
	"credit-card-account/internal/model"
	"credit-card-account/internal/repository"
)

// AccountService serializes access to a single card account and journals
// every notification the account emits.
type AccountService struct {
	mu       sync.Mutex
	account  *account.Account
	journal  ActivityJournal
	tracer   trace.Tracer
	pageSize int
	version  uint64
	pending  []pendingEvent
}

// pendingEvent is a notification captured during the current operation,
// together with the account state at the moment it was delivered.
type pendingEvent struct {
	record      model.EventRecord
	balance     decimal.Decimal
	creditInUse bool
}

// NewAccountService creates a new account service and subscribes it to all
// five notification channels of acc.
func NewAccountService(acc *account.Account, journal ActivityJournal, pageSize int) *AccountService {
	s := &AccountService{
		account:  acc,
		journal:  journal,
		tracer:   otel.GetTracerProvider().Tracer("service"),
		pageSize: pageSize,
	}

	acc.OnMoneyAdded(func(amount decimal.Decimal) { s.capture(model.ActivityMoneyAdded, &amount) })
	acc.OnMoneySpent(func(amount decimal.Decimal) { s.capture(model.ActivityMoneySpent, &amount) })
	acc.OnCreditStarted(func() { s.capture(model.ActivityCreditStarted, nil) })
	acc.OnCreditLimitReached(func() { s.capture(model.ActivityCreditLimitReached, nil) })
	acc.OnPinChanged(func() { s.capture(model.ActivityPinChanged, nil) })

	return s
}

// GetAccount returns the current account snapshot
func (s *AccountService) GetAccount(ctx context.Context) *model.AccountResponse {
	_, span := s.tracer.Start(ctx, "Service:AccountService:GetAccount")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// Deposit adds money to the account
func (s *AccountService) Deposit(ctx context.Context, req *model.AmountRequest) (*model.OperationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "Service:AccountService:Deposit")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, fail(span, validationError(err))
	}
	span.SetAttributes(attribute.String("account.amount", req.Amount.String()))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.account.Deposit(*req.Amount)
	return s.commit(ctx), nil
}

// Spend withdraws money, drawing on credit when the balance is short
func (s *AccountService) Spend(ctx context.Context, req *model.AmountRequest) (*model.OperationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "Service:AccountService:Spend")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, fail(span, validationError(err))
	}
	span.SetAttributes(attribute.String("account.amount", req.Amount.String()))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.account.Spend(*req.Amount); err != nil {
		if errors.Is(err, account.ErrInsufficientFunds) {
			logger.FromContext(ctx).Warn("spend rejected",
				zap.String("amount", req.Amount.String()),
				zap.String("available", s.account.Available().String()),
			)
			return nil, fail(span, &ServiceError{
				Code:    model.ErrCodeInsufficientFunds,
				Message: "Insufficient funds",
				Err:     err,
			})
		}
		return nil, fail(span, err)
	}

	return s.commit(ctx), nil
}

// ChangePin replaces the card PIN
func (s *AccountService) ChangePin(ctx context.Context, req *model.ChangePinRequest) (*model.OperationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "Service:AccountService:ChangePin")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, fail(span, validationError(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.account.SetPin(*req.Pin)
	return s.commit(ctx), nil
}

// SetCreditLimit replaces the credit limit. The account emits no
// notification for this change.
func (s *AccountService) SetCreditLimit(ctx context.Context, req *model.CreditLimitRequest) (*model.AccountResponse, error) {
	ctx, span := s.tracer.Start(ctx, "Service:AccountService:SetCreditLimit")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, fail(span, validationError(err))
	}
	span.SetAttributes(attribute.String("account.credit_limit", req.CreditLimit.String()))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.account.SetCreditLimit(*req.CreditLimit)
	s.version++

	logger.FromContext(ctx).Info("credit limit changed",
		zap.String("credit_limit", req.CreditLimit.String()),
	)

	return s.snapshot(), nil
}

// ListActivity returns a newest-first page of the journal. A zero limit
// selects the configured page size.
func (s *AccountService) ListActivity(ctx context.Context, limit, offset int) (*model.ActivityPage, error) {
	ctx, span := s.tracer.Start(ctx, "Service:AccountService:ListActivity")
	defer span.End()

	if limit == 0 {
		limit = s.pageSize
	}
	if limit > config.MaxActivityPageSize {
		limit = config.MaxActivityPageSize
	}

	entries, err := s.journal.List(ctx, limit, offset)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidPage) {
			return nil, fail(span, &ServiceError{
				Code:    model.ErrCodeValidation,
				Message: "limit must be positive and offset cannot be negative",
				Err:     err,
			})
		}
		return nil, fail(span, err)
	}

	total, err := s.journal.Count(ctx)
	if err != nil {
		return nil, fail(span, err)
	}

	return &model.ActivityPage{
		Entries: entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// GetActivity retrieves one journal entry by ID
func (s *AccountService) GetActivity(ctx context.Context, id uuid.UUID) (*model.ActivityEntry, error) {
	ctx, span := s.tracer.Start(ctx, "Service:AccountService:GetActivity")
	defer span.End()

	entry, err := s.journal.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, fail(span, &ServiceError{
				Code:    model.ErrCodeNotFound,
				Message: "Activity entry not found",
				Err:     err,
			})
		}
		return nil, fail(span, err)
	}

	return entry, nil
}

// Health summarizes the account for the health endpoint.
func (s *AccountService) Health(ctx context.Context) (*model.AccountHealth, error) {
	s.mu.Lock()
	suffix := model.CardSuffix(s.account.CardNumber())
	listeners := s.account.ListenerCount()
	s.mu.Unlock()

	count, err := s.journal.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &model.AccountHealth{
		CardSuffix:      suffix,
		Listeners:       listeners,
		ActivityEntries: count,
	}, nil
}

func (s *AccountService) capture(kind model.ActivityKind, amount *decimal.Decimal) {
	s.pending = append(s.pending, pendingEvent{
		record:      model.EventRecord{Kind: kind, Amount: amount},
		balance:     s.account.Balance(),
		creditInUse: s.account.CreditInUse(),
	})
}

// commit finishes a mutating operation. Callers must hold s.mu.
func (s *AccountService) commit(ctx context.Context) *model.OperationResponse {
	s.version++
	return &model.OperationResponse{
		Account: *s.snapshot(),
		Events:  s.flush(ctx),
	}
}

// flush logs and journals the notifications captured since the last flush and
// returns them in delivery order.
func (s *AccountService) flush(ctx context.Context) []model.EventRecord {
	log := logger.FromContext(ctx)
	events := make([]model.EventRecord, 0, len(s.pending))

	for _, p := range s.pending {
		events = append(events, p.record)

		fields := []zap.Field{
			zap.String("event", string(p.record.Kind)),
			zap.String("balance", p.balance.String()),
			zap.Bool("credit_in_use", p.creditInUse),
		}
		if p.record.Amount != nil {
			fields = append(fields, zap.String("amount", p.record.Amount.String()))
		}
		log.Info("account notification", fields...)

		_, err := s.journal.Append(ctx, model.ActivityEntry{
			Kind:         p.record.Kind,
			Amount:       p.record.Amount,
			BalanceAfter: p.balance,
			CreditInUse:  p.creditInUse,
		})
		if err != nil {
			log.Error("failed to journal account notification", append(fields, zap.Error(err))...)
		}
	}

	s.pending = s.pending[:0]
	return events
}

func (s *AccountService) snapshot() *model.AccountResponse {
	a := s.account
	return &model.AccountResponse{
		CardNumber:  a.CardNumber(),
		Holder:      a.Holder(),
		Expiration:  a.Expiration().Format(config.ExpirationLayout),
		CreditLimit: a.CreditLimit(),
		Balance:     a.Balance(),
		Available:   a.Available(),
		CreditInUse: a.CreditInUse(),
		Version:     s.version,
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
