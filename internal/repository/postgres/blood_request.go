package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/YusovID/donor-match-service/internal/apperrors"
	"github.com/YusovID/donor-match-service/internal/domain"
	"github.com/jmoiron/sqlx"
)

const defaultListLimit = 50

var requestColumns = []string{
	"id", "requester_id", "blood_type", "units_needed", "units_fulfilled", "urgency",
	"matched", "cancelled", "status", "hospital_name", "hospital_address", "latitude", "longitude",
	"patient_name", "notes", "ai_recommendation", "created_at", "updated_at",
}

var matchColumns = []string{
	"request_id", "donor_id", "rank", "donor_name", "blood_type", "distance_km",
	"compatibility_score", "is_available", "status", "decided_at",
}

type BloodRequestRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewBloodRequestRepository(db *sqlx.DB, log *slog.Logger) *BloodRequestRepository {
	return &BloodRequestRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *BloodRequestRepository) CreateRequest(ctx context.Context, tx *sqlx.Tx, req *domain.BloodRequest) error {
	const op = "internal.repository.postgres.CreateRequest"

	query, args, err := r.sq.Insert("blood_requests").
		Columns("id", "requester_id", "blood_type", "units_needed", "urgency", "hospital_name",
			"hospital_address", "latitude", "longitude", "patient_name", "notes", "ai_recommendation").
		Values(req.ID, req.RequesterID, req.BloodType, req.UnitsNeeded, req.Urgency, req.HospitalName,
			req.HospitalAddress, req.Latitude, req.Longitude, req.PatientName, req.Notes, req.AIRecommendation).
		Suffix("RETURNING units_fulfilled, matched, cancelled, status, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	err = tx.QueryRowxContext(ctx, query, args...).
		Scan(&req.UnitsFulfilled, &req.Matched, &req.Cancelled, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		switch pqCode(err) {
		case uniqueViolation:
			return fmt.Errorf("%s: %w: request with id '%s' already exists", op, apperrors.ErrValidation, req.ID)
		case checkViolation:
			return fmt.Errorf("%s: %w: %v", op, apperrors.ErrValidation, err)
		}

		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *BloodRequestRepository) InsertMatches(ctx context.Context, tx *sqlx.Tx, requestID string, matches []domain.DonorMatch) error {
	const op = "internal.repository.postgres.InsertMatches"

	if len(matches) == 0 {
		return nil
	}

	insertBuilder := r.sq.Insert("donor_matches").
		Columns("request_id", "donor_id", "rank", "donor_name", "blood_type", "distance_km",
			"compatibility_score", "is_available", "status")

	for _, m := range matches {
		insertBuilder = insertBuilder.Values(requestID, m.DonorID, m.Rank, m.DonorName, m.BloodType,
			m.DistanceKm, m.CompatibilityScore, m.IsAvailable, m.Status)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		switch pqCode(err) {
		case uniqueViolation:
			return fmt.Errorf("%s: %w: duplicate donor or rank for request '%s'", op, apperrors.ErrValidation, requestID)
		case foreignKeyViolation:
			return fmt.Errorf("%s: %w: matched donor does not exist", op, apperrors.ErrNotFound)
		}

		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *BloodRequestRepository) MarkMatched(ctx context.Context, tx *sqlx.Tx, requestID string) (*domain.BloodRequest, error) {
	const op = "internal.repository.postgres.MarkMatched"

	query, args, err := r.sq.Update("blood_requests").
		Set("matched", true).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": requestID}).
		Suffix("RETURNING " + columnList(requestColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	var req domain.BloodRequest
	if err := tx.QueryRowxContext(ctx, query, args...).StructScan(&req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: request with id '%s'", op, apperrors.ErrNotFound, requestID)
		}

		return nil, fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	return &req, nil
}

func (r *BloodRequestRepository) GetRequestByID(ctx context.Context, ext sqlx.ExtContext, requestID string) (*domain.BloodRequest, error) {
	const op = "internal.repository.postgres.GetRequestByID"

	query, args, err := r.sq.Select(requestColumns...).
		From("blood_requests").
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var req domain.BloodRequest
	if err := sqlx.GetContext(ctx, ext, &req, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: request with id '%s'", op, apperrors.ErrNotFound, requestID)
		}

		return nil, fmt.Errorf("%s: failed to get request: %w", op, err)
	}

	return &req, nil
}

func (r *BloodRequestRepository) GetRequestByIDWithLock(ctx context.Context, tx *sqlx.Tx, requestID string) (*domain.BloodRequest, error) {
	const op = "internal.repository.postgres.GetRequestByIDWithLock"

	query, args, err := r.sq.Select(requestColumns...).
		From("blood_requests").
		Where(sq.Eq{"id": requestID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var req domain.BloodRequest
	if err := tx.GetContext(ctx, &req, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: request with id '%s'", op, apperrors.ErrNotFound, requestID)
		}

		return nil, fmt.Errorf("%s: failed to get request with lock: %w", op, err)
	}

	return &req, nil
}

func (r *BloodRequestRepository) GetMatches(ctx context.Context, ext sqlx.ExtContext, requestID string) ([]domain.DonorMatch, error) {
	const op = "internal.repository.postgres.GetMatches"

	query, args, err := r.sq.Select(matchColumns...).
		From("donor_matches").
		Where(sq.Eq{"request_id": requestID}).
		OrderBy("rank").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var matches []domain.DonorMatch
	if err := sqlx.SelectContext(ctx, ext, &matches, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select matches: %w", op, err)
	}

	if matches == nil {
		matches = []domain.DonorMatch{}
	}

	return matches, nil
}

func (r *BloodRequestRepository) GetMatchesForRequests(ctx context.Context, requestIDs []string) (map[string][]domain.DonorMatch, error) {
	const op = "internal.repository.postgres.GetMatchesForRequests"

	result := make(map[string][]domain.DonorMatch, len(requestIDs))
	if len(requestIDs) == 0 {
		return result, nil
	}

	query, args, err := r.sq.Select(matchColumns...).
		From("donor_matches").
		Where(sq.Eq{"request_id": requestIDs}).
		OrderBy("request_id", "rank").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var matches []domain.DonorMatch
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select matches: %w", op, err)
	}

	for _, m := range matches {
		result[m.RequestID] = append(result[m.RequestID], m)
	}

	return result, nil
}

func (r *BloodRequestRepository) GetMatchForUpdate(ctx context.Context, tx *sqlx.Tx, requestID, donorID string) (*domain.DonorMatch, error) {
	const op = "internal.repository.postgres.GetMatchForUpdate"

	query, args, err := r.sq.Select(matchColumns...).
		From("donor_matches").
		Where(sq.Eq{"request_id": requestID, "donor_id": donorID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var match domain.DonorMatch
	if err := tx.GetContext(ctx, &match, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &apperrors.MatchNotFoundError{RequestID: requestID, DonorID: donorID}
		}

		return nil, fmt.Errorf("%s: failed to get match: %w", op, err)
	}

	return &match, nil
}

func (r *BloodRequestRepository) IncrementFulfilled(ctx context.Context, tx *sqlx.Tx, requestID string) (*domain.BloodRequest, error) {
	const op = "internal.repository.postgres.IncrementFulfilled"

	query, args, err := r.sq.Update("blood_requests").
		Set("units_fulfilled", sq.Expr("units_fulfilled + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": requestID, "cancelled": false}).
		Where("units_fulfilled < units_needed").
		Suffix("RETURNING " + columnList(requestColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	var req domain.BloodRequest
	if err := tx.QueryRowxContext(ctx, query, args...).StructScan(&req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrRequestAlreadySatisfied)
		}

		return nil, fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	return &req, nil
}

func (r *BloodRequestRepository) SetMatchStatus(
	ctx context.Context, tx *sqlx.Tx, requestID, donorID string, status domain.MatchStatus, decidedAt time.Time,
) error {
	const op = "internal.repository.postgres.SetMatchStatus"

	query, args, err := r.sq.Update("donor_matches").
		Set("status", status).
		Set("decided_at", decidedAt).
		Where(sq.Eq{"request_id": requestID, "donor_id": donorID, "status": domain.MatchStatusProposed}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	if rowsAffected, err := res.RowsAffected(); err == nil && rowsAffected == 0 {
		return &apperrors.AlreadyDecidedError{Status: "decided"}
	}

	return nil
}

func (r *BloodRequestRepository) CancelRequest(ctx context.Context, tx *sqlx.Tx, requestID string) (*domain.BloodRequest, error) {
	const op = "internal.repository.postgres.CancelRequest"

	query, args, err := r.sq.Update("blood_requests").
		Set("cancelled", true).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": requestID}).
		Suffix("RETURNING " + columnList(requestColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	var req domain.BloodRequest
	if err := tx.QueryRowxContext(ctx, query, args...).StructScan(&req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: request with id '%s'", op, apperrors.ErrNotFound, requestID)
		}

		return nil, fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	return &req, nil
}

func (r *BloodRequestRepository) CreateDonation(ctx context.Context, tx *sqlx.Tx, donation *domain.Donation) error {
	const op = "internal.repository.postgres.CreateDonation"

	query, args, err := r.sq.Insert("donations").
		Columns("id", "donor_id", "request_id", "blood_type", "status").
		Values(donation.ID, donation.DonorID, donation.RequestID, donation.BloodType, donation.Status).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&donation.CreatedAt); err != nil {
		if pqCode(err) == uniqueViolation {
			return &apperrors.AlreadyDecidedError{Status: string(domain.MatchStatusAccepted)}
		}

		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *BloodRequestRepository) AppendEvent(ctx context.Context, tx *sqlx.Tx, event domain.RequestEvent) error {
	const op = "internal.repository.postgres.AppendEvent"

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal event: %w", op, err)
	}

	query, args, err := r.sq.Insert("request_events").
		Columns("id", "request_id", "kind", "payload", "created_at").
		Values(event.ID, event.RequestID, event.Kind, payload, event.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *BloodRequestRepository) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.BloodRequest, error) {
	const op = "internal.repository.postgres.ListRequests"
	log := r.log.With(slog.String("op", op))

	queryBuilder := r.sq.Select(prefixed("r", requestColumns)...).
		From("blood_requests r")

	if filter.RequesterID != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"r.requester_id": filter.RequesterID})
	}

	if filter.Status != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"r.status": filter.Status})
	}

	if filter.DonorID != "" {
		queryBuilder = queryBuilder.Where(sq.Expr(
			"EXISTS (SELECT 1 FROM donor_matches m WHERE m.request_id = r.id AND m.donor_id = ?)", filter.DonorID,
		))
	}

	limit := filter.Limit
	if limit == 0 {
		limit = defaultListLimit
	}

	query, args, err := queryBuilder.
		OrderBy("r.created_at DESC", "r.id").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var requests []domain.BloodRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	if len(requests) == 0 {
		log.Debug("no requests matched the filter")
		return []domain.BloodRequest{}, nil
	}

	return requests, nil
}

func (r *BloodRequestRepository) GetStats(ctx context.Context) (*domain.Stats, error) {
	const op = "internal.repository.postgres.GetStats"

	query, args, err := r.sq.Select(
		"(SELECT COUNT(*) FROM donors) AS total_donors",
		"(SELECT COUNT(*) FROM donors WHERE is_available) AS available_donors",
		"COUNT(*) AS total_requests",
		"COUNT(*) FILTER (WHERE status IN ('pending', 'matching')) AS open_requests",
		"COUNT(*) FILTER (WHERE status = 'fulfilled') AS fulfilled_requests",
		"COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled_requests",
	).
		From("blood_requests").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var stats domain.Stats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &stats, nil
}

func columnList(columns []string) string {
	return strings.Join(columns, ", ")
}

func prefixed(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}

	return out
}
