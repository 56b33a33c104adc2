package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/YusovID/donor-match-service/internal/apperrors"
	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/YusovID/donor-match-service/internal/geo"
	"github.com/jmoiron/sqlx"
)

var donorColumns = []string{
	"id", "name", "blood_type", "latitude", "longitude", "is_available",
	"last_donation_date", "response_probability", "created_at", "updated_at",
}

type DonorRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewDonorRepository(db *sqlx.DB, log *slog.Logger) *DonorRepository {
	return &DonorRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *DonorRepository) UpsertDonor(ctx context.Context, donor *domain.Donor) (*domain.Donor, error) {
	const op = "internal.repository.postgres.UpsertDonor"

	query, args, err := r.sq.Insert("donors").
		Columns("id", "name", "blood_type", "latitude", "longitude", "is_available", "last_donation_date", "response_probability").
		Values(donor.ID, donor.Name, donor.BloodType, donor.Latitude, donor.Longitude,
			donor.IsAvailable, donor.LastDonationDate, donor.ResponseProbability).
		Suffix(`
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            blood_type = EXCLUDED.blood_type,
            latitude = EXCLUDED.latitude,
            longitude = EXCLUDED.longitude,
            is_available = EXCLUDED.is_available,
            last_donation_date = EXCLUDED.last_donation_date,
            response_probability = EXCLUDED.response_probability,
            updated_at = NOW()
        RETURNING ` + columnList(donorColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build upsert query: %w", op, err)
	}

	var saved domain.Donor
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&saved); err != nil {
		if pqCode(err) == checkViolation {
			return nil, fmt.Errorf("%s: %w: %v", op, apperrors.ErrValidation, err)
		}

		return nil, fmt.Errorf("%s: failed to execute upsert: %w", op, err)
	}

	return &saved, nil
}

func (r *DonorRepository) SetAvailability(ctx context.Context, donorID string, isAvailable bool) (*domain.Donor, error) {
	const op = "internal.repository.postgres.SetAvailability"

	query, args, err := r.sq.Update("donors").
		Set("is_available", isAvailable).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": donorID}).
		Suffix("RETURNING " + columnList(donorColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	var donor domain.Donor
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&donor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: donor with id '%s'", op, apperrors.ErrNotFound, donorID)
		}

		return nil, fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	return &donor, nil
}

func (r *DonorRepository) GetDonorByID(ctx context.Context, donorID string) (*domain.Donor, error) {
	const op = "internal.repository.postgres.GetDonorByID"

	query, args, err := r.sq.Select(donorColumns...).
		From("donors").
		Where(sq.Eq{"id": donorID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var donor domain.Donor
	if err := r.db.GetContext(ctx, &donor, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: donor with id '%s'", op, apperrors.ErrNotFound, donorID)
		}

		return nil, fmt.Errorf("%s: failed to get donor: %w", op, err)
	}

	return &donor, nil
}

func (r *DonorRepository) GetDonorStats(ctx context.Context, donorID string) (*domain.DonorStats, error) {
	const op = "internal.repository.postgres.GetDonorStats"

	query, args, err := r.sq.Select(
		"(SELECT COUNT(*) FROM donations dn WHERE dn.donor_id = d.id) AS total_donations",
		`(SELECT COUNT(*) FROM donor_matches m
            JOIN blood_requests br ON br.id = m.request_id
            WHERE m.donor_id = d.id AND m.status = 'proposed'
              AND br.status IN ('pending', 'matching')) AS pending_requests`,
		"d.is_available",
	).
		From("donors d").
		Where(sq.Eq{"d.id": donorID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var stats domain.DonorStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: donor with id '%s'", op, apperrors.ErrNotFound, donorID)
		}

		return nil, fmt.Errorf("%s: failed to get donor stats: %w", op, err)
	}

	return &stats, nil
}

func (r *DonorRepository) FindCandidates(ctx context.Context, types []domain.BloodType, box geo.Box) ([]domain.Donor, error) {
	const op = "internal.repository.postgres.FindCandidates"

	if len(types) == 0 {
		return []domain.Donor{}, nil
	}

	queryBuilder := r.sq.Select(donorColumns...).
		From("donors").
		Where(sq.Eq{"blood_type": types, "is_available": true}).
		Where(sq.Expr("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat))

	if !box.FullLongitude() {
		queryBuilder = queryBuilder.Where(sq.Expr("longitude BETWEEN ? AND ?", box.MinLon, box.MaxLon))
	}

	query, args, err := queryBuilder.OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var donors []domain.Donor
	if err := r.db.SelectContext(ctx, &donors, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	if donors == nil {
		donors = []domain.Donor{}
	}

	return donors, nil
}
