package exchange

import (
	"Tukarin-Backend/entities"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	ExchangeRepository interface {
		// Transaction runs fn against a repository bound to one database
		// transaction. State transitions and their cascades run inside it.
		Transaction(ctx context.Context, fn func(txRepo ExchangeRepository) error) error

		CreateExchange(ctx context.Context, exchange *entities.Exchange) error
		SaveExchange(ctx context.Context, exchange *entities.Exchange) error
		GetExchangeByID(ctx context.Context, id string) (*entities.Exchange, error)
		// GetExchangeForUpdate loads the row under a row-level lock so that
		// concurrent transitions on the same exchange serialize.
		GetExchangeForUpdate(ctx context.Context, id string) (*entities.Exchange, error)

		FindApprovedPair(ctx context.Context, userID, toUserID, productID, toProductID string) (*entities.Exchange, error)
		FindPendingPair(ctx context.Context, userID, toUserID, productID, toProductID string) (*entities.Exchange, error)
		// FindConflictingForUpdate locks and returns every other live
		// exchange referencing one of the given products, ordered by pair
		// key so racing completion cascades acquire locks in the same order.
		FindConflictingForUpdate(ctx context.Context, excludeID string, productIDs []string) ([]*entities.Exchange, error)
		CountCompletedForProduct(ctx context.Context, productID string) (int64, error)

		GetUserExchanges(ctx context.Context, userID string) ([]*entities.Exchange, error)
		GetIncomingExchanges(ctx context.Context, userID string) ([]*entities.Exchange, error)
		GetOutgoingExchanges(ctx context.Context, userID string) ([]*entities.Exchange, error)
		GetProductExchanges(ctx context.Context, userID, productID string) ([]*entities.Exchange, error)
		GetApprovedExchangesForUser(ctx context.Context, userID string) ([]*entities.Exchange, error)
	}

	exchangeRepository struct {
		db *gorm.DB
	}
)

func NewExchangeRepository(db *gorm.DB) ExchangeRepository {
	return &exchangeRepository{db: db}
}

func (r *exchangeRepository) Transaction(ctx context.Context, fn func(txRepo ExchangeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&exchangeRepository{db: tx})
	})
}

func (r *exchangeRepository) CreateExchange(ctx context.Context, exchange *entities.Exchange) error {
	return r.db.WithContext(ctx).Create(exchange).Error
}

func (r *exchangeRepository) SaveExchange(ctx context.Context, exchange *entities.Exchange) error {
	return r.db.WithContext(ctx).Save(exchange).Error
}

func (r *exchangeRepository) GetExchangeByID(ctx context.Context, id string) (*entities.Exchange, error) {
	var exchange entities.Exchange
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Receiver").
		Preload("RequesterProduct").
		Preload("ReceiverProduct").
		Where("id = ?", id).
		First(&exchange).Error; err != nil {
		return nil, err
	}
	return &exchange, nil
}

func (r *exchangeRepository) GetExchangeForUpdate(ctx context.Context, id string) (*entities.Exchange, error) {
	var exchange entities.Exchange
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&exchange).Error; err != nil {
		return nil, err
	}
	return &exchange, nil
}

func pairCondition(db *gorm.DB, userID, toUserID, productID, toProductID string) *gorm.DB {
	return db.Where(
		db.Session(&gorm.Session{NewDB: true}).
			Where("user_id = ? AND to_user_id = ? AND product_id = ? AND to_product_id = ?",
				userID, toUserID, productID, toProductID).
			Or("user_id = ? AND to_user_id = ? AND product_id = ? AND to_product_id = ?",
				toUserID, userID, toProductID, productID),
	)
}

func (r *exchangeRepository) FindApprovedPair(ctx context.Context, userID, toUserID, productID, toProductID string) (*entities.Exchange, error) {
	var exchange entities.Exchange
	query := pairCondition(r.db.WithContext(ctx), userID, toUserID, productID, toProductID).
		Where("status = ?", entities.ExchangeStatusApprove)
	if err := query.First(&exchange).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &exchange, nil
}

func (r *exchangeRepository) FindPendingPair(ctx context.Context, userID, toUserID, productID, toProductID string) (*entities.Exchange, error) {
	var exchange entities.Exchange
	query := pairCondition(r.db.WithContext(ctx), userID, toUserID, productID, toProductID).
		Where("status = ?", entities.ExchangeStatusSubmission).
		Order("created_at DESC")
	if err := query.First(&exchange).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &exchange, nil
}

func (r *exchangeRepository) FindConflictingForUpdate(ctx context.Context, excludeID string, productIDs []string) ([]*entities.Exchange, error) {
	var exchanges []*entities.Exchange
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id != ?", excludeID).
		Where("status IN ?", entities.ActiveExchangeStatuses).
		Where("product_id IN ? OR to_product_id IN ?", productIDs, productIDs).
		Order("pair_key ASC").
		Find(&exchanges).Error; err != nil {
		return nil, err
	}
	return exchanges, nil
}

func (r *exchangeRepository) CountCompletedForProduct(ctx context.Context, productID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Exchange{}).
		Where("status = ?", entities.ExchangeStatusCompleted).
		Where("product_id = ? OR to_product_id = ?", productID, productID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *exchangeRepository) GetUserExchanges(ctx context.Context, userID string) ([]*entities.Exchange, error) {
	var exchanges []*entities.Exchange
	if err := r.db.WithContext(ctx).
		Preload("RequesterProduct").
		Preload("ReceiverProduct").
		Where("user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&exchanges).Error; err != nil {
		return nil, err
	}
	return exchanges, nil
}

func (r *exchangeRepository) GetIncomingExchanges(ctx context.Context, userID string) ([]*entities.Exchange, error) {
	var exchanges []*entities.Exchange
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Receiver").
		Preload("RequesterProduct").
		Preload("ReceiverProduct").
		Where("to_user_id = ? AND status = ?", userID, entities.ExchangeStatusSubmission).
		Order("created_at DESC").
		Find(&exchanges).Error; err != nil {
		return nil, err
	}
	return exchanges, nil
}

func (r *exchangeRepository) GetOutgoingExchanges(ctx context.Context, userID string) ([]*entities.Exchange, error) {
	var exchanges []*entities.Exchange
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Receiver").
		Preload("RequesterProduct").
		Preload("ReceiverProduct").
		Where("user_id = ? AND status = ?", userID, entities.ExchangeStatusSubmission).
		Order("created_at DESC").
		Find(&exchanges).Error; err != nil {
		return nil, err
	}
	return exchanges, nil
}

func (r *exchangeRepository) GetProductExchanges(ctx context.Context, userID, productID string) ([]*entities.Exchange, error) {
	var exchanges []*entities.Exchange
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Receiver").
		Preload("RequesterProduct").
		Preload("ReceiverProduct").
		Where("(user_id = ? AND product_id = ?) OR (to_user_id = ? AND to_product_id = ?)",
			userID, productID, userID, productID).
		Where("status = ?", entities.ExchangeStatusSubmission).
		Order("created_at DESC").
		Find(&exchanges).Error; err != nil {
		return nil, err
	}
	return exchanges, nil
}

func (r *exchangeRepository) GetApprovedExchangesForUser(ctx context.Context, userID string) ([]*entities.Exchange, error) {
	var exchanges []*entities.Exchange
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Receiver").
		Preload("RequesterProduct").
		Preload("ReceiverProduct").
		Where("user_id = ? OR to_user_id = ?", userID, userID).
		Where("status = ?", entities.ExchangeStatusApprove).
		Find(&exchanges).Error; err != nil {
		return nil, err
	}
	return exchanges, nil
}
