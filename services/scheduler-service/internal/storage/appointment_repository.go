package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agendago/agendago/libs/db"
	"github.com/agendago/agendago/schedule"
)

const apptColumns = `id::text, slot_date::text, slot_time, customer_name, COALESCE(customer_email, ''), COALESCE(customer_cpf, '')`

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// EnsureSchema creates the tables and the unique slot index on startup.
// The unique index on (slot_date, slot_time) is what turns a double
// booking into a 23505 instead of a lost update.
func (r *AppointmentRepository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS appointments (
			id uuid PRIMARY KEY,
			slot_date date NOT NULL,
			slot_time text NOT NULL,
			customer_name text NOT NULL,
			customer_email text,
			customer_cpf text,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS appointments_slot_uq
			ON appointments (slot_date, slot_time)`,
		`CREATE TABLE IF NOT EXISTS users (
			id uuid PRIMARY KEY,
			name text NOT NULL,
			email text NOT NULL UNIQUE,
			password_hash text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}

func (r *AppointmentRepository) Create(ctx context.Context, appt schedule.Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, slot_date, slot_time, customer_name, customer_email, customer_cpf)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
	`, appt.ID, appt.Date, appt.Time, appt.Name, appt.Email, appt.CPF)
	return err
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (schedule.Appointment, error) {
	var appt schedule.Appointment
	err := r.pool.QueryRow(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE id = $1
	`, id).Scan(&appt.ID, &appt.Date, &appt.Time, &appt.Name, &appt.Email, &appt.CPF)
	if err != nil {
		return schedule.Appointment{}, err
	}
	return appt, nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *AppointmentRepository) List(ctx context.Context) ([]schedule.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		ORDER BY slot_date ASC, slot_time ASC
	`)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

// Between returns appointments with slot_date in [from, to], both ISO dates.
func (r *AppointmentRepository) Between(ctx context.Context, from, to string) ([]schedule.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE slot_date >= $1 AND slot_date <= $2
		ORDER BY slot_date ASC, slot_time ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func (r *AppointmentRepository) Search(ctx context.Context, query string) ([]schedule.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE customer_name ILIKE '%' || $1 || '%'
			OR customer_email ILIKE '%' || $1 || '%'
			OR customer_cpf ILIKE '%' || $1 || '%'
		ORDER BY slot_date ASC, slot_time ASC
	`, query)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func scanAppointments(rows pgx.Rows) ([]schedule.Appointment, error) {
	defer rows.Close()
	var appts []schedule.Appointment
	for rows.Next() {
		var appt schedule.Appointment
		if err := rows.Scan(&appt.ID, &appt.Date, &appt.Time, &appt.Name, &appt.Email, &appt.CPF); err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

// IsConflict reports a unique violation: the slot or email is taken.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
