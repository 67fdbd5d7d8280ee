package session

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// sessionRow is the relational layout of a [Record]. Secret hashes are stored
// hex-encoded so the column stays portable across drivers.
type sessionRow struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     int64     `gorm:"index;not null"`
	SecretHash string    `gorm:"size:64;not null"`
	ExpiresAt  time.Time `gorm:"index;not null"`
	Revoked    bool      `gorm:"not null;default:false"`
	DeviceInfo string    `gorm:"size:512"`
	OriginAddr string    `gorm:"size:64"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (sessionRow) TableName() string {
	return "sessions"
}

// SQLStore implements [Store] on a relational table through GORM. The revoke
// path relies on a conditional UPDATE (`revoked = true WHERE id = ? AND NOT
// revoked`) for its atomicity guarantee; read-committed isolation is enough.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore describes the newsqlstore operation and its observable behavior.
//
// NewSQLStore may return an error when input validation, dependency calls, or security checks fail.
// NewSQLStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates or updates the sessions table schema.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&sessionRow{}); err != nil {
		return fmt.Errorf("%w: migrate: %v", ErrUnavailable, err)
	}
	return nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SQLStore) Save(ctx context.Context, rec *Record) error {
	row := sessionRow{
		ID:         rec.ID,
		UserID:     rec.UserID,
		SecretHash: hex.EncodeToString(rec.SecretHash[:]),
		ExpiresAt:  rec.ExpiresAt,
		Revoked:    rec.Revoked,
		DeviceInfo: rec.DeviceInfo,
		OriginAddr: rec.OriginAddr,
		CreatedAt:  rec.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("%w: save: %v", ErrUnavailable, err)
	}
	return nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SQLStore) Get(ctx context.Context, userID int64, id string) (*Record, error) {
	var row sessionRow
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", ErrUnavailable, err)
	}
	return rowToRecord(&row)
}

// Revoke describes the revoke operation and its observable behavior.
//
// Revoke may return an error when input validation, dependency calls, or security checks fail.
// Revoke does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SQLStore) Revoke(ctx context.Context, userID int64, id string) (RevokeOutcome, error) {
	res := s.db.WithContext(ctx).
		Model(&sessionRow{}).
		Where("id = ? AND user_id = ? AND revoked = ?", id, userID, false).
		Update("revoked", true)
	if res.Error != nil {
		return RevokeNotFound, fmt.Errorf("%w: revoke: %v", ErrUnavailable, res.Error)
	}
	if res.RowsAffected == 1 {
		return RevokeDone, nil
	}

	// The conditional write matched nothing: either the row is gone or it was
	// already revoked. A second read distinguishes the two.
	var row sessionRow
	err := s.db.WithContext(ctx).
		Select("revoked").
		Where("id = ? AND user_id = ?", id, userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RevokeNotFound, nil
	}
	if err != nil {
		return RevokeNotFound, fmt.Errorf("%w: revoke: %v", ErrUnavailable, err)
	}
	return RevokeAlreadyRevoked, nil
}

// RevokeAllForUser describes the revokeallforuser operation and its observable behavior.
//
// RevokeAllForUser may return an error when input validation, dependency calls, or security checks fail.
// RevokeAllForUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SQLStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	err := s.db.WithContext(ctx).
		Model(&sessionRow{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("%w: revoke all: %v", ErrUnavailable, err)
	}
	return nil
}

// ListActive describes the listactive operation and its observable behavior.
//
// ListActive may return an error when input validation, dependency calls, or security checks fail.
// ListActive does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SQLStore) ListActive(ctx context.Context, userID int64) ([]*Record, error) {
	var rows []sessionRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND revoked = ? AND expires_at > ?", userID, false, time.Now()).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrUnavailable, err)
	}

	records := make([]*Record, 0, len(rows))
	for i := range rows {
		rec, err := rowToRecord(&rows[i])
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// DeleteExpired describes the deleteexpired operation and its observable behavior.
//
// DeleteExpired may return an error when input validation, dependency calls, or security checks fail.
// DeleteExpired does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SQLStore) DeleteExpired(ctx context.Context) (int, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&sessionRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: sweep: %v", ErrUnavailable, res.Error)
	}
	return int(res.RowsAffected), nil
}

// Ping describes the ping operation and its observable behavior.
//
// Ping may return an error when input validation, dependency calls, or security checks fail.
// Ping does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SQLStore) Ping(ctx context.Context) error {
	db, err := s.db.WithContext(ctx).DB()
	if err != nil {
		return fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}
	return nil
}

func rowToRecord(row *sessionRow) (*Record, error) {
	rawHash, err := hex.DecodeString(row.SecretHash)
	if err != nil || len(rawHash) != 32 {
		return nil, fmt.Errorf("corrupt session row %q: secret hash", row.ID)
	}
	rec := &Record{
		ID:         row.ID,
		UserID:     row.UserID,
		ExpiresAt:  row.ExpiresAt,
		Revoked:    row.Revoked,
		DeviceInfo: row.DeviceInfo,
		OriginAddr: row.OriginAddr,
		CreatedAt:  row.CreatedAt,
	}
	copy(rec.SecretHash[:], rawHash)
	return rec, nil
}

var _ Store = (*SQLStore)(nil)
