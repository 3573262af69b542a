// Package store provides Ledger Store implementations: a GORM/Postgres store
// for production and a mutex-guarded in-memory store for tests and dev runs.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"banktrack/models"
	"banktrack/pkg/ledger"

	"gorm.io/gorm"
)

// Gorm implements ledger.Store on a *gorm.DB. Driver errors are translated
// to the domain taxonomy here so callers never parse SQL error text.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// isUniqueConstraintError sniffs driver duplicate-key failures. GORM does not
// expose a portable typed error for these across drivers.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func (s *Gorm) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *Gorm) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if notFound(err) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Gorm) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if notFound(err) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Gorm) TouchUser(ctx context.Context, id uint, seen time.Time) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_seen_at", seen).Error
}

// DeleteUser removes the user row and cascades to accounts and transactions
// in one store transaction, so a racing archival job either sees the user or
// does not — never a half-deleted state.
func (s *Gorm) DeleteUser(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledger.ErrNotFound
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", id).Delete(&models.Account{}).Error
	})
}

func (s *Gorm) ArchiveUsersInactiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("active = ? AND last_seen_at < ?", true, cutoff).
		Update("active", false)
	return res.RowsAffected, res.Error
}

func (s *Gorm) CreateBank(ctx context.Context, name string) error {
	var bank models.Bank
	err := s.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&bank, models.Bank{Name: name}).Error
	if err != nil && isUniqueConstraintError(err) {
		// lost a create race; the bank exists, which is all we wanted
		return nil
	}
	return err
}

func (s *Gorm) Banks(ctx context.Context) ([]models.Bank, error) {
	var banks []models.Bank
	err := s.db.WithContext(ctx).Order("created_at asc, name asc").Find(&banks).Error
	return banks, err
}

func (s *Gorm) BankExists(ctx context.Context, name string) (bool, error) {
	var cnt int64
	err := s.db.WithContext(ctx).Model(&models.Bank{}).Where("name = ?", name).Count(&cnt).Error
	return cnt > 0, err
}

func (s *Gorm) SumBalancesAtBank(ctx context.Context, bank string) (int64, error) {
	var sum int64
	err := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("bank_name = ?", bank).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&sum).Error
	return sum, err
}

func (s *Gorm) CreateAccount(ctx context.Context, a *models.Account) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateAccount
		}
		return err
	}
	return nil
}

func (s *Gorm) DeleteAccount(ctx context.Context, userID uint, bank string, typ models.AccountType) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND bank_name = ? AND type = ?", userID, bank, typ).Delete(&models.Account{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledger.ErrNotFound
		}
		return tx.Where("user_id = ? AND bank_name = ? AND account_type = ?", userID, bank, typ).
			Delete(&models.Transaction{}).Error
	})
}

func (s *Gorm) AccountsForUserAtBank(ctx context.Context, userID uint, bank string) ([]models.Account, error) {
	var accs []models.Account
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND bank_name = ?", userID, bank).
		Order("id asc").
		Find(&accs).Error
	return accs, err
}

func (s *Gorm) AccountBalance(ctx context.Context, userID uint, bank string, typ models.AccountType) (int64, error) {
	var acc models.Account
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND bank_name = ? AND type = ?", userID, bank, typ).
		First(&acc).Error
	if err != nil {
		if notFound(err) {
			return 0, ledger.ErrNotFound
		}
		return 0, err
	}
	return acc.Balance, nil
}

func (s *Gorm) AccountExists(ctx context.Context, userID uint, bank string, typ models.AccountType) (bool, error) {
	var cnt int64
	err := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("user_id = ? AND bank_name = ? AND type = ?", userID, bank, typ).
		Count(&cnt).Error
	return cnt > 0, err
}

func (s *Gorm) SumBalancesForUser(ctx context.Context, userID uint) (int64, error) {
	var sum int64
	err := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&sum).Error
	return sum, err
}

func (s *Gorm) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *Gorm) RecentTransactions(ctx context.Context, userID uint, bank string, typ models.AccountType, limit int) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND bank_name = ? AND account_type = ?", userID, bank, typ).
		Order("trans_at desc, id desc").
		Limit(limit).
		Find(&txns).Error
	return txns, err
}

func (s *Gorm) TransactionsBetween(ctx context.Context, userID uint, bank string, typ models.AccountType, from, to time.Time) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND bank_name = ? AND account_type = ? AND trans_at >= ? AND trans_at < ?",
			userID, bank, typ, from, to).
		Order("trans_at asc, id asc").
		Find(&txns).Error
	return txns, err
}
