package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/medoffice-ai-agent/internal/model"
)

// pgxDB is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type pgxDB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the production Store backed by pgx.
type PostgresStore struct {
	db     pgxDB
	tracer trace.Tracer
}

// NewPostgresStore creates a store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("store: pgx pool required")
	}
	return newPostgresStore(pool)
}

// NewPostgresStoreWithDB allows injecting mocks for tests.
func NewPostgresStoreWithDB(db pgxDB) *PostgresStore {
	return newPostgresStore(db)
}

func newPostgresStore(db pgxDB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("medoffice.internal.store"),
	}
}

const patientColumns = `id, name, phone, birthdate, email, created_at`

func (s *PostgresStore) UpsertPatient(ctx context.Context, p model.Patient) (model.Patient, error) {
	ctx, span := s.tracer.Start(ctx, "store.upsert_patient")
	defer span.End()

	var existing model.Patient
	err := s.db.QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patients
		 WHERE (phone <> '' AND phone = $1) OR (email <> '' AND lower(email) = lower($2))
		 LIMIT 1`,
		p.Phone, p.Email,
	).Scan(&existing.ID, &existing.Name, &existing.Phone, &existing.Birthdate, &existing.Email, &existing.CreatedAt)

	if err == nil {
		row := s.db.QueryRow(ctx,
			`UPDATE patients SET
				name = COALESCE(NULLIF($2, ''), name),
				phone = COALESCE(NULLIF($3, ''), phone),
				birthdate = COALESCE(NULLIF($4, ''), birthdate),
				email = COALESCE(NULLIF($5, ''), email)
			 WHERE id = $1
			 RETURNING `+patientColumns,
			existing.ID, p.Name, p.Phone, p.Birthdate, p.Email,
		)
		var updated model.Patient
		if err := row.Scan(&updated.ID, &updated.Name, &updated.Phone, &updated.Birthdate, &updated.Email, &updated.CreatedAt); err != nil {
			span.RecordError(err)
			return model.Patient{}, fmt.Errorf("store: update patient: %w", err)
		}
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		span.RecordError(err)
		return model.Patient{}, fmt.Errorf("store: lookup patient: %w", err)
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO patients (id, name, phone, birthdate, email, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.Phone, p.Birthdate, p.Email, p.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		return model.Patient{}, fmt.Errorf("store: insert patient: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) GetPatient(ctx context.Context, id uuid.UUID) (model.Patient, error) {
	var p model.Patient
	err := s.db.QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Phone, &p.Birthdate, &p.Email, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Patient{}, ErrNotFound
	}
	if err != nil {
		return model.Patient{}, fmt.Errorf("store: get patient: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	return s.queryDoctors(ctx,
		`SELECT id, name, specialty, calendar FROM doctors ORDER BY name`)
}

func (s *PostgresStore) FindDoctorsBySpecialty(ctx context.Context, specialty string) ([]model.Doctor, error) {
	return s.queryDoctors(ctx,
		`SELECT id, name, specialty, calendar FROM doctors WHERE lower(specialty) = lower($1) ORDER BY name`,
		specialty)
}

func (s *PostgresStore) queryDoctors(ctx context.Context, sql string, args ...any) ([]model.Doctor, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query doctors: %w", err)
	}
	defer rows.Close()

	var out []model.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate doctors: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetDoctor(ctx context.Context, id uuid.UUID) (model.Doctor, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, name, specialty, calendar FROM doctors WHERE id = $1`, id)
	d, err := scanDoctor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Doctor{}, ErrNotFound
	}
	if err != nil {
		return model.Doctor{}, err
	}
	return d, nil
}

func scanDoctor(row pgx.Row) (model.Doctor, error) {
	var d model.Doctor
	var calendarJSON []byte
	if err := row.Scan(&d.ID, &d.Name, &d.Specialty, &calendarJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Doctor{}, err
		}
		return model.Doctor{}, fmt.Errorf("store: scan doctor: %w", err)
	}
	if len(calendarJSON) > 0 {
		if err := json.Unmarshal(calendarJSON, &d.Calendar); err != nil {
			return model.Doctor{}, fmt.Errorf("store: decode doctor calendar: %w", err)
		}
	}
	return d, nil
}

const appointmentColumns = `id, patient_id, doctor_id, doctor_name, specialty, visit_date, visit_time, reason, status, created_at, updated_at`

func (s *PostgresStore) AppointmentsForDoctorDate(ctx context.Context, doctorID uuid.UUID, date string) ([]model.Appointment, error) {
	return s.queryAppointments(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
		 WHERE doctor_id = $1 AND visit_date = $2
		 ORDER BY visit_time`,
		doctorID, date)
}

func (s *PostgresStore) FindAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Appointment, error) {
	return s.queryAppointments(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
		 WHERE patient_id = $1
		 ORDER BY visit_date, visit_time`,
		patientID)
}

func (s *PostgresStore) queryAppointments(ctx context.Context, sql string, args ...any) ([]model.Appointment, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query appointments: %w", err)
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.DoctorName, &a.Specialty,
			&a.Date, &a.Time, &a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan appointment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate appointments: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) NextAppointmentSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRow(ctx, `SELECT nextval('appointment_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("store: next appointment seq: %w", err)
	}
	return seq, nil
}

func (s *PostgresStore) CreateAppointment(ctx context.Context, a model.Appointment) error {
	ctx, span := s.tracer.Start(ctx, "store.create_appointment")
	defer span.End()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.UpdatedAt = a.CreatedAt

	_, err := s.db.Exec(ctx,
		`INSERT INTO appointments (id, patient_id, doctor_id, doctor_name, specialty, visit_date, visit_time, reason, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.PatientID, a.DoctorID, a.DoctorName, a.Specialty, a.Date, a.Time, a.Reason, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isSlotConflict(err) {
			return ErrSlotTaken
		}
		span.RecordError(err)
		return fmt.Errorf("store: insert appointment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAppointment(ctx context.Context, id string) (model.Appointment, error) {
	var a model.Appointment
	err := s.db.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id,
	).Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.DoctorName, &a.Specialty,
		&a.Date, &a.Time, &a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Appointment{}, ErrNotFound
	}
	if err != nil {
		return model.Appointment{}, fmt.Errorf("store: get appointment: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) CancelAppointment(ctx context.Context, id string) (model.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "store.cancel_appointment")
	defer span.End()

	row := s.db.QueryRow(ctx,
		`UPDATE appointments SET status = $2, updated_at = $3
		 WHERE id = $1
		 RETURNING `+appointmentColumns,
		id, model.StatusCancelled, time.Now().UTC())

	var a model.Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.DoctorName, &a.Specialty,
		&a.Date, &a.Time, &a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Appointment{}, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return model.Appointment{}, fmt.Errorf("store: cancel appointment: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) RescheduleAppointment(ctx context.Context, id, newDate, newTime string) (model.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "store.reschedule_appointment")
	defer span.End()

	row := s.db.QueryRow(ctx,
		`UPDATE appointments SET visit_date = $2, visit_time = $3, status = $4, updated_at = $5
		 WHERE id = $1
		 RETURNING `+appointmentColumns,
		id, newDate, newTime, model.StatusRescheduled, time.Now().UTC())

	var a model.Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.DoctorName, &a.Specialty,
		&a.Date, &a.Time, &a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Appointment{}, ErrNotFound
	}
	if err != nil {
		if isSlotConflict(err) {
			return model.Appointment{}, ErrSlotTaken
		}
		span.RecordError(err)
		return model.Appointment{}, fmt.Errorf("store: reschedule appointment: %w", err)
	}
	return a, nil
}

// isSlotConflict detects the partial unique index on
// (doctor_id, visit_date, visit_time) WHERE status <> 'cancelled'.
func isSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "appointments_slot")
	}
	return false
}

var _ Store = (*PostgresStore)(nil)
