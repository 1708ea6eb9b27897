package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Randall0514/DormEase/internal/model"
)

// minPhotoReplace is the smallest new photo batch that fully replaces a
// stored list. Anything smaller keeps an existing non-empty list, because
// re-saving the setup form without re-selecting files must not wipe photos.
const minPhotoReplace = 4

type DormStore struct {
	db *sql.DB
}

func NewDormStore(db *sql.DB) *DormStore {
	return &DormStore{db: db}
}

func scanDorm(scanner interface{ Scan(...any) error }) (*model.Dorm, error) {
	var d model.Dorm
	var photos sql.NullString
	err := scanner.Scan(&d.ID, &d.UserID, &d.DormName, &d.Email, &d.Phone, &d.Price,
		&d.Address, &d.RoomCapacity, &photos, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if photos.Valid && photos.String != "" {
		if err := json.Unmarshal([]byte(photos.String), &d.PhotoURLs); err != nil {
			return nil, fmt.Errorf("decode photo urls: %w", err)
		}
	}
	return &d, nil
}

const dormCols = `id, user_id, dorm_name, email, phone, price, address, room_capacity, photo_urls, created_at, updated_at`

// GetByUserID returns the user's dorm profile, or nil if setup has not been
// completed yet.
func (s *DormStore) GetByUserID(userID int64) (*model.Dorm, error) {
	row := s.db.QueryRow(`SELECT `+dormCols+` FROM dorms WHERE user_id = ?`, userID)
	d, err := scanDorm(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dorm: %w", err)
	}
	return d, nil
}

// DormFields holds the scalar columns overwritten on every save.
type DormFields struct {
	DormName     string
	Email        string
	Phone        string
	Price        string
	Address      string
	RoomCapacity int
}

// Upsert writes or replaces the one dorm row for the user. Scalar fields are
// always overwritten and updated_at is refreshed. Photo URLs merge in two
// layers: fewer than minPhotoReplace new URLs keep an existing non-empty
// stored list, and at the write itself an empty list binds as NULL so the
// COALESCE leaves the stored value untouched.
func (s *DormStore) Upsert(userID int64, fields DormFields, photoURLs []string) (*model.Dorm, error) {
	if len(photoURLs) < minPhotoReplace {
		existing, err := s.GetByUserID(userID)
		if err != nil {
			return nil, err
		}
		if existing != nil && len(existing.PhotoURLs) > 0 {
			photoURLs = existing.PhotoURLs
		}
	}

	var photosArg any
	if len(photoURLs) > 0 {
		encoded, err := json.Marshal(photoURLs)
		if err != nil {
			return nil, fmt.Errorf("encode photo urls: %w", err)
		}
		photosArg = string(encoded)
	}

	_, err := s.db.Exec(
		`INSERT INTO dorms (user_id, dorm_name, email, phone, price, address, room_capacity, photo_urls, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     dorm_name = excluded.dorm_name,
		     email = excluded.email,
		     phone = excluded.phone,
		     price = excluded.price,
		     address = excluded.address,
		     room_capacity = excluded.room_capacity,
		     photo_urls = COALESCE(excluded.photo_urls, dorms.photo_urls),
		     updated_at = excluded.updated_at`,
		userID, fields.DormName, fields.Email, fields.Phone, fields.Price,
		fields.Address, fields.RoomCapacity, photosArg, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert dorm: %w", err)
	}
	return s.GetByUserID(userID)
}
