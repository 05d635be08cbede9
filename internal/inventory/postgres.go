package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ent0n29/flightdesk/internal/booking"
)

const pgUniqueViolation = "23505"

// PostgresStore keeps offers and bookings in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cached_offers (
			offer_id TEXT PRIMARY KEY,
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			depart_ts TIMESTAMPTZ NOT NULL,
			arrive_ts TIMESTAMPTZ NOT NULL,
			airline TEXT NOT NULL,
			flight_no TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			currency TEXT NOT NULL DEFAULT 'INR',
			seats INTEGER NOT NULL DEFAULT 1,
			expires_at TIMESTAMPTZ NOT NULL,
			payload JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cached_offers_route ON cached_offers (origin, destination);`,
		`CREATE TABLE IF NOT EXISTS bookings (
			booking_id TEXT PRIMARY KEY,
			user_email TEXT NOT NULL,
			offer_id TEXT NOT NULL REFERENCES cached_offers (offer_id),
			passengers JSONB NOT NULL,
			total_amount DOUBLE PRECISION NOT NULL,
			currency TEXT NOT NULL DEFAULT 'INR',
			payment_status TEXT NOT NULL,
			status TEXT NOT NULL,
			food_preference BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_created ON bookings (user_email, created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

const offerColumns = `offer_id, origin, destination, depart_ts, arrive_ts, airline, flight_no, price, currency, seats, expires_at, payload`

func (s *PostgresStore) InsertOffer(ctx context.Context, o booking.Offer) error {
	payload, err := json.Marshal(o.Payload)
	if err != nil {
		return fmt.Errorf("encode offer payload: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO cached_offers (`+offerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.OfferID, o.Origin, o.Destination, o.DepartTS, o.ArriveTS, o.Airline, o.FlightNo,
		o.Price, o.Currency, o.Seats, o.ExpiresAt, payload,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateOffer
		}
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetOffer(ctx context.Context, offerID string) (booking.Offer, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM cached_offers WHERE offer_id = $1`, offerID)
	return scanOffer(row)
}

func (s *PostgresStore) FindOffer(ctx context.Context, offerID, origin, destination string) (booking.Offer, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM cached_offers
		 WHERE offer_id = $1 AND origin = $2 AND destination = $3`,
		offerID, strings.ToUpper(origin), strings.ToUpper(destination),
	)
	return scanOffer(row)
}

func (s *PostgresStore) CreateBooking(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	passengers, err := json.Marshal(b.Passengers)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("encode passengers: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var seats int
	err = tx.QueryRow(ctx,
		`SELECT seats, origin, destination FROM cached_offers WHERE offer_id = $1 FOR UPDATE`,
		b.OfferID,
	).Scan(&seats, &b.Origin, &b.Destination)
	if errors.Is(err, pgx.ErrNoRows) {
		return booking.Booking{}, booking.ErrOfferNotFound
	}
	if err != nil {
		return booking.Booking{}, fmt.Errorf("lock offer: %w", err)
	}
	if seats < len(b.Passengers) {
		return booking.Booking{}, booking.ErrInsufficientSeats
	}

	if _, err := tx.Exec(ctx,
		`UPDATE cached_offers SET seats = seats - $2 WHERE offer_id = $1`,
		b.OfferID, len(b.Passengers),
	); err != nil {
		return booking.Booking{}, fmt.Errorf("reserve seats: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO bookings (booking_id, user_email, offer_id, passengers, total_amount, currency, payment_status, status, food_preference, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.BookingID, b.UserEmail, b.OfferID, passengers, b.TotalAmount, b.Currency,
		b.PaymentStatus, b.Status, b.FoodPreference, b.CreatedAt,
	); err != nil {
		return booking.Booking{}, fmt.Errorf("insert booking: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return booking.Booking{}, fmt.Errorf("commit booking: %w", err)
	}
	return b, nil
}

const bookingSelect = `SELECT b.booking_id, b.user_email, b.offer_id, b.passengers, b.total_amount, b.currency,
	b.payment_status, b.status, b.food_preference, b.created_at, o.origin, o.destination
	FROM bookings b JOIN cached_offers o ON o.offer_id = b.offer_id`

func (s *PostgresStore) GetBooking(ctx context.Context, bookingID string) (booking.Booking, error) {
	rows, err := s.pool.Query(ctx, bookingSelect+` WHERE b.booking_id = $1`, bookingID)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	out, err := scanBookings(rows)
	if err != nil {
		return booking.Booking{}, err
	}
	if len(out) == 0 {
		return booking.Booking{}, booking.ErrBookingNotFound
	}
	return out[0], nil
}

func (s *PostgresStore) ListBookings(ctx context.Context, userEmail string) ([]booking.Booking, error) {
	rows, err := s.pool.Query(ctx,
		bookingSelect+` WHERE lower(b.user_email) = lower($1) ORDER BY b.created_at DESC`,
		userEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return scanBookings(rows)
}

func (s *PostgresStore) CancelBooking(ctx context.Context, bookingID string) (booking.Booking, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE bookings SET status = $2 WHERE booking_id = $1 AND status <> $2`,
		bookingID, booking.StatusCancelled,
	)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("cancel booking: %w", err)
	}
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return booking.Booking{}, err
	}
	if tag.RowsAffected() == 0 {
		return booking.Booking{}, booking.ErrBookingCancelled
	}
	return b, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanOffer(row pgx.Row) (booking.Offer, error) {
	var (
		o       booking.Offer
		payload []byte
	)
	err := row.Scan(&o.OfferID, &o.Origin, &o.Destination, &o.DepartTS, &o.ArriveTS, &o.Airline,
		&o.FlightNo, &o.Price, &o.Currency, &o.Seats, &o.ExpiresAt, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return booking.Offer{}, booking.ErrOfferNotFound
	}
	if err != nil {
		return booking.Offer{}, fmt.Errorf("scan offer: %w", err)
	}
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &o.Payload)
	}
	o.DepartTS, o.ArriveTS, o.ExpiresAt = o.DepartTS.UTC(), o.ArriveTS.UTC(), o.ExpiresAt.UTC()
	return o, nil
}

func scanBookings(rows pgx.Rows) ([]booking.Booking, error) {
	defer rows.Close()
	var out []booking.Booking
	for rows.Next() {
		var (
			b          booking.Booking
			passengers []byte
			createdAt  time.Time
		)
		if err := rows.Scan(&b.BookingID, &b.UserEmail, &b.OfferID, &passengers, &b.TotalAmount, &b.Currency,
			&b.PaymentStatus, &b.Status, &b.FoodPreference, &createdAt, &b.Origin, &b.Destination); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if err := json.Unmarshal(passengers, &b.Passengers); err != nil {
			return nil, fmt.Errorf("decode passengers: %w", err)
		}
		b.CreatedAt = createdAt.UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return out, nil
}
