package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"example.com/progress/internal/domain"
	"example.com/progress/internal/events"
	"example.com/progress/internal/observability"
)

const photoColumns = `photo_id, tenant_id, client_id, photo_date, physical_slot, category, is_friday_photo,
        object_key, url, content_type, size_bytes, meal_type, exercise, rating, created_at`

// Create persists the photo row and records the outbox event inside a single
// transaction. A violation of the per-day slot uniqueness key surfaces as
// domain.ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, photo domain.ProgressPhoto) error {
	const stmt = `INSERT INTO progress_photos (photo_id, tenant_id, client_id, photo_date, physical_slot, category, is_friday_photo,
        object_key, url, content_type, size_bytes, meal_type, exercise, rating, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

	err := r.withTenantTx(ctx, photo.TenantID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, stmt,
			photo.ID,
			photo.TenantID,
			photo.ClientID,
			photo.Date,
			photo.PhysicalSlot,
			photo.Category,
			photo.IsFridayPhoto,
			photo.ObjectKey,
			photo.URL,
			photo.ContentType,
			photo.SizeBytes,
			nullIfEmpty(photo.Metadata.MealType),
			nullIfEmpty(photo.Metadata.Exercise),
			photo.Metadata.Rating,
			photo.CreatedAt,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domain.ErrSlotTaken
			}
			return err
		}

		dedupeKey := fmt.Sprintf("%s:photo.uploaded", photo.ID)
		return insertOutbox(ctx, tx, photo.TenantID, photo.ClientID, "progress_photo", photo.ID, "photo.uploaded", dedupeKey, events.PhotoUploaded{
			PhotoID:       photo.ID,
			TenantID:      photo.TenantID,
			ClientID:      photo.ClientID,
			Date:          photo.Date.Format("2006-01-02"),
			Category:      string(photo.Category),
			PhysicalSlot:  string(photo.PhysicalSlot),
			IsFridayPhoto: photo.IsFridayPhoto,
			URL:           photo.URL,
			UploadedAt:    photo.CreatedAt,
		})
	})
	if err != nil {
		return err
	}

	observability.RecordPhotoPersisted(photo.CreatedAt)
	return nil
}

// Get retrieves a photo by ID, or nil.
func (r *Repository) Get(ctx context.Context, tenantID, photoID string) (*domain.ProgressPhoto, error) {
	query := `SELECT ` + photoColumns + ` FROM progress_photos WHERE tenant_id=$1 AND photo_id=$2`

	var photo *domain.ProgressPhoto
	err := r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query, tenantID, photoID)
		var p domain.ProgressPhoto
		if err := scanPhoto(row, &p); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		photo = &p
		return nil
	})
	return photo, err
}

// Delete removes the photo row and records the outbox event. A missing row
// surfaces as domain.ErrPhotoNotFound.
func (r *Repository) Delete(ctx context.Context, tenantID, photoID string) error {
	const stmt = `DELETE FROM progress_photos WHERE tenant_id=$1 AND photo_id=$2 RETURNING client_id`

	return r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		var clientID string
		if err := tx.QueryRow(ctx, stmt, tenantID, photoID).Scan(&clientID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrPhotoNotFound
			}
			return err
		}

		dedupeKey := fmt.Sprintf("%s:photo.deleted", photoID)
		return insertOutbox(ctx, tx, tenantID, clientID, "progress_photo", photoID, "photo.deleted", dedupeKey, events.PhotoDeleted{
			PhotoID:    photoID,
			TenantID:   tenantID,
			ClientID:   clientID,
			OccurredAt: time.Now().UTC(),
		})
	})
}

// ListByDate returns all photos for one calendar day, oldest first.
func (r *Repository) ListByDate(ctx context.Context, tenantID, clientID string, date time.Time) ([]domain.ProgressPhoto, error) {
	query := `SELECT ` + photoColumns + ` FROM progress_photos
        WHERE tenant_id=$1 AND client_id=$2 AND photo_date=$3
        ORDER BY created_at ASC`

	return r.listPhotos(ctx, tenantID, query, tenantID, clientID, date)
}

// ListSince returns photos with photo_date >= since, newest first.
func (r *Repository) ListSince(ctx context.Context, tenantID, clientID string, since time.Time) ([]domain.ProgressPhoto, error) {
	query := `SELECT ` + photoColumns + ` FROM progress_photos
        WHERE tenant_id=$1 AND client_id=$2 AND photo_date >= $3
        ORDER BY photo_date DESC, created_at DESC`

	return r.listPhotos(ctx, tenantID, query, tenantID, clientID, since)
}

// ListFridayPhotos returns every Friday progress photo ever recorded for the
// client, newest first.
func (r *Repository) ListFridayPhotos(ctx context.Context, tenantID, clientID string) ([]domain.ProgressPhoto, error) {
	query := `SELECT ` + photoColumns + ` FROM progress_photos
        WHERE tenant_id=$1 AND client_id=$2 AND is_friday_photo
        ORDER BY photo_date DESC, created_at DESC`

	return r.listPhotos(ctx, tenantID, query, tenantID, clientID)
}

// ListRecent pages through photo history with a keyset cursor over
// (photo_date, created_at, photo_id).
func (r *Repository) ListRecent(ctx context.Context, tenantID, clientID string, cursor *domain.PhotoCursor, limit int) ([]domain.ProgressPhoto, *domain.PhotoCursor, error) {
	args := []interface{}{tenantID, clientID, limit}
	query := `SELECT ` + photoColumns + ` FROM progress_photos
        WHERE tenant_id=$1 AND client_id=$2`

	if cursor != nil {
		query += ` AND (photo_date, created_at, photo_id) < ($4, $5, $6)`
		args = append(args, cursor.Date, cursor.CreatedAt, cursor.ID)
	}

	query += ` ORDER BY photo_date DESC, created_at DESC, photo_id DESC LIMIT $3`

	photos, err := r.listPhotos(ctx, tenantID, query, args...)
	if err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.PhotoCursor
	if len(photos) == limit {
		last := photos[len(photos)-1]
		nextCursor = &domain.PhotoCursor{Date: last.Date, CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return photos, nextCursor, nil
}

func (r *Repository) listPhotos(ctx context.Context, tenantID, query string, args ...interface{}) ([]domain.ProgressPhoto, error) {
	var photos []domain.ProgressPhoto
	err := r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p domain.ProgressPhoto
			if err := scanPhoto(rows, &p); err != nil {
				return err
			}
			photos = append(photos, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func scanPhoto(row pgx.Row, p *domain.ProgressPhoto) error {
	var mealType, exercise *string
	if err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.ClientID,
		&p.Date,
		&p.PhysicalSlot,
		&p.Category,
		&p.IsFridayPhoto,
		&p.ObjectKey,
		&p.URL,
		&p.ContentType,
		&p.SizeBytes,
		&mealType,
		&exercise,
		&p.Metadata.Rating,
		&p.CreatedAt,
	); err != nil {
		return err
	}
	if mealType != nil {
		p.Metadata.MealType = *mealType
	}
	if exercise != nil {
		p.Metadata.Exercise = *exercise
	}
	return nil
}
