package contact

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/kontakt/internal/domain"
	"github.com/simp-lee/kontakt/internal/pkg"
	"github.com/simp-lee/kontakt/internal/query"
)

// contactRepository implements domain.ContactRepository using GORM.
type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new ContactRepository backed by the given GORM database.
func NewContactRepository(db *gorm.DB) domain.ContactRepository {
	return &contactRepository{db: db}
}

func byID(id uuid.UUID) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: domain.FieldContactID}, Value: id.String()}
}

// Create inserts a new contact into the database.
func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// GetByID retrieves a contact by its identifier.
func (r *contactRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	var contact domain.Contact
	if err := r.db.WithContext(ctx).Where(byID(id)).First(&contact).Error; err != nil {
		return nil, mapError(err)
	}
	return &contact, nil
}

// Update reads the contact, applies the mutation and writes every column back
// in a single transaction.
func (r *contactRepository) Update(ctx context.Context, id uuid.UUID, apply func(*domain.Contact)) (*domain.Contact, error) {
	var contact domain.Contact
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where(byID(id)).First(&contact).Error; err != nil {
			return err
		}
		apply(&contact)
		contact.ID = id
		return tx.Save(&contact).Error
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &contact, nil
}

// Delete removes a contact by identifier and returns it as it was stored.
func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	var contact domain.Contact
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where(byID(id)).First(&contact).Error; err != nil {
			return err
		}
		result := tx.Where(byID(id)).Delete(&domain.Contact{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &contact, nil
}

// Count returns the number of contacts matching filter.
func (r *contactRepository) Count(ctx context.Context, filter query.Predicate) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Contact{}).
		Scopes(pkg.Filter(filter)).
		Count(&total).Error
	if err != nil {
		return 0, mapError(err)
	}
	return total, nil
}

// Find returns the contacts matching q, sorted and windowed.
func (r *contactRepository) Find(ctx context.Context, q query.Query) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := r.db.WithContext(ctx).Model(&domain.Contact{}).
		Scopes(
			pkg.Filter(q.Filter),
			pkg.Sort(q.Sort),
			pkg.Paginate(q.Skip, q.Limit),
		).
		Find(&contacts).Error
	if err != nil {
		return nil, mapError(err)
	}
	return contacts, nil
}

// Ping checks that the database is reachable.
func (r *contactRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return mapError(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return domain.NewAppError(domain.CodeUnavailable, "database unreachable", err)
	}
	return nil
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewAppError(domain.CodeNotFound, "contact not found", err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "contact already exists", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return domain.NewAppError(domain.CodeUnavailable, "database unavailable", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
