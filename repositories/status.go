//go:generate go run go.uber.org/mock/mockgen -source=status.go -destination=../mocks/mock_status_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chat-relay/domain"
	domainerrors "chat-relay/errors"
	"github.com/dgraph-io/badger/v4"
)

type IStatusRepository interface {
	SaveStatus(record domain.StatusRecord) error
	GetStatus(userID string) (domain.StatusRecord, error)
}

// StatusRepository persists the durable half of presence: a user's current
// status and last-seen timestamp. Channel presence records stay in memory;
// they die with the connection anyway.
type StatusRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewStatusRepository(db *badger.DB, log *slog.Logger) StatusRepository {
	return StatusRepository{db: db, log: log}
}

type diskStatus struct {
	Status   string    `json:"status"`
	LastSeen time.Time `json:"last_seen"`
}

func statusKey(userID string) []byte {
	return []byte(fmt.Sprintf("status:%s", userID))
}

func (r StatusRepository) SaveStatus(record domain.StatusRecord) error {
	bytes, err := json.Marshal(diskStatus{
		Status:   string(record.Status),
		LastSeen: record.LastSeen.UTC(),
	})
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(statusKey(record.UserID), bytes)
	})
}

// GetStatus returns the stored record, or ErrStatusNotFound for a user that
// never reported a status. Absent users are treated as offline by callers.
func (r StatusRepository) GetStatus(userID string) (domain.StatusRecord, error) {
	var disk diskStatus
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(statusKey(userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.StatusRecord{}, fmt.Errorf("%w: %s", domainerrors.ErrStatusNotFound, userID)
	}
	if err != nil {
		return domain.StatusRecord{}, err
	}

	status, err := domain.ParseStatus(disk.Status)
	if err != nil {
		r.log.Warn("Discarding corrupt status record", "user", userID, "raw", disk.Status)
		return domain.StatusRecord{}, fmt.Errorf("%w: %s", domainerrors.ErrStatusNotFound, userID)
	}
	return domain.StatusRecord{UserID: userID, Status: status, LastSeen: disk.LastSeen}, nil
}
