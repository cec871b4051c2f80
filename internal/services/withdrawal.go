package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"cashreward/internal/datastore"
	"cashreward/internal/models"
	"cashreward/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceWithdrawal struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig *ServiceConfig
}

func NewServiceWithdrawal(container *do.Injector) (*ServiceWithdrawal, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceWithdrawal{container, db, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceConfig}, nil
}

// checkWithdrawal runs the cheap request checks. The balance check here is
// advisory; the debit's guard is what actually protects the ledger.
func checkWithdrawal(amount, minimum, balance int64, method, payoutDetail string, methods []string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount < minimum {
		return ErrBelowMinimum
	}
	if strings.TrimSpace(payoutDetail) == "" {
		return ErrMissingPayoutDetail
	}

	supported := false
	for _, m := range methods {
		if strings.EqualFold(m, method) {
			supported = true
			break
		}
	}
	if !supported {
		return ErrUnsupportedMethod
	}

	if balance < amount {
		return ErrInsufficientBalance
	}

	return nil
}

func (service *ServiceWithdrawal) validateRequest(ctx context.Context, account *models.Account, amount int64, method, payoutDetail string) error {
	minWithdrawal, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_MIN_WITHDRAWAL, DEFAULT_MIN_WITHDRAWAL)
	methods, _ := service.serviceConfig.GetListConfig(ctx, CONFIG_PAYMENT_METHODS, DEFAULT_PAYMENT_METHODS)

	err := checkWithdrawal(amount, int64(minWithdrawal), account.Balance, method, payoutDetail, methods)
	switch err {
	case nil:
		return nil
	case ErrInsufficientBalance:
		return errorx.Wrap(err, errorx.Invalid)
	default:
		return errorx.Wrap(err, errorx.Validation)
	}
}

// RequestWithdrawal debits the balance and records a pending request. The
// debit and the insert commit together; a stale balance surfaces as
// ErrInsufficientBalance, never as a negative ledger.
func (service *ServiceWithdrawal) RequestWithdrawal(ctx context.Context, account *models.Account, amount int64, method, payoutDetail string) (*models.WithdrawalRequest, error) {
	if account.IsBlocked {
		return nil, errorx.Wrap(ErrAccountLocked, errorx.Authn)
	}

	if err := service.validateRequest(ctx, account, amount, method, payoutDetail); err != nil {
		return nil, err
	}

	mutex := service.rs.NewMutex(LockKeyAccount(account.ID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrTransactionConflict, errorx.Service)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	name := strings.TrimSpace(account.FirstName + " " + account.LastName)
	request := &models.WithdrawalRequest{
		ID:           uuid.NewString(),
		AccountID:    account.ID,
		AccountName:  name,
		Amount:       amount,
		Method:       method,
		PayoutDetail: payoutDetail,
		Status:       models.WithdrawalStatusPending,
	}

	err := datastore.DebitForWithdrawal(ctx, service.postgresDB, request)
	if err != nil {
		if errors.Is(err, datastore.ErrStaleWrite) {
			return nil, errorx.Wrap(ErrInsufficientBalance, errorx.Invalid)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	_ = service.cache.Delete(ctx, DBKeyAccount(account.ID))

	return request, nil
}

func (service *ServiceWithdrawal) History(ctx context.Context, accountID int64, page, limit int) ([]*models.WithdrawalRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}

	callback := func() ([]*models.WithdrawalRequest, error) {
		return datastore.GetWithdrawalsByAccount(ctx, service.readonlyPostgresDB, accountID, limit, (page-1)*limit)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyWithdrawalHistory(accountID, page, limit), CACHE_TTL_15_SECONDS, callback)
}

func (service *ServiceWithdrawal) PendingQueue(ctx context.Context, page, limit int) ([]*models.WithdrawalRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	return datastore.GetWithdrawalsByStatus(ctx, service.readonlyPostgresDB, models.WithdrawalStatusPending, limit, (page-1)*limit)
}

// Approve marks a pending request paid out.
func (service *ServiceWithdrawal) Approve(ctx context.Context, requestID string) (*models.WithdrawalRequest, error) {
	return service.transition(ctx, requestID, models.WithdrawalStatusApproved)
}

// Reject refuses a pending request and returns the held amount to the
// balance.
func (service *ServiceWithdrawal) Reject(ctx context.Context, requestID string) (*models.WithdrawalRequest, error) {
	request, err := service.transition(ctx, requestID, models.WithdrawalStatusRejected)
	if err != nil {
		return nil, err
	}

	if err := datastore.RefundWithdrawal(ctx, service.postgresDB, request.AccountID, request.Amount); err != nil {
		log.Printf("failed to refund withdrawal %s: %v\n", request.ID, err)
		return nil, errorx.Wrap(err, errorx.Service)
	}
	_ = service.cache.Delete(ctx, DBKeyAccount(request.AccountID))

	return request, nil
}

func (service *ServiceWithdrawal) transition(ctx context.Context, requestID string, status string) (*models.WithdrawalRequest, error) {
	mutex := service.rs.NewMutex(LockKeyWithdrawal(requestID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrTransactionConflict, errorx.Service)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	request, err := datastore.TransitionWithdrawal(ctx, service.postgresDB, requestID, status)
	if err != nil {
		if errors.Is(err, datastore.ErrStaleWrite) {
			return nil, errorx.Wrap(errors.New("request is not pending"), errorx.Invalid)
		}
		if datastore.IsNotFound(err) {
			return nil, errorx.Wrap(err, errorx.NotExist)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return request, nil
}
