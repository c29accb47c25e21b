package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/medoffice-ai-agent/internal/model"
)

// MemoryStore is an in-memory Store used in tests and demo mode.
type MemoryStore struct {
	mu           sync.Mutex
	patients     map[uuid.UUID]model.Patient
	doctors      map[uuid.UUID]model.Doctor
	appointments map[string]model.Appointment
	slots        map[string]string // doctorID|date|time -> appointment id
	seq          int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patients:     make(map[uuid.UUID]model.Patient),
		doctors:      make(map[uuid.UUID]model.Doctor),
		appointments: make(map[string]model.Appointment),
		slots:        make(map[string]string),
	}
}

// AddDoctor registers a doctor. Intended for seeding and tests.
func (s *MemoryStore) AddDoctor(d model.Doctor) model.Doctor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	s.doctors[d.ID] = d
	return d
}

// SeedDemoDoctors populates sample providers with working calendars for the
// next `days` days starting at `from`.
func (s *MemoryStore) SeedDemoDoctors(from time.Time, days int) {
	seed := []struct {
		name      string
		specialty string
		times     []string
	}{
		{"Dr. Smith", "General Practitioner", []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}},
		{"Dr. Johnson", "Cardiologist", []string{"09:30", "10:30", "13:30", "15:30"}},
		{"Dr. Williams", "Dermatologist", []string{"09:00", "11:30", "14:00", "16:30"}},
		{"Dr. Brown", "Pediatrician", []string{"08:30", "10:00", "13:00", "15:00"}},
	}
	for _, d := range seed {
		calendar := make(map[string][]string, days)
		for i := 0; i < days; i++ {
			date := from.AddDate(0, 0, i).Format(model.DateLayout)
			calendar[date] = append([]string(nil), d.times...)
		}
		s.AddDoctor(model.Doctor{
			Name:      d.name,
			Specialty: d.specialty,
			Calendar:  calendar,
		})
	}
}

func (s *MemoryStore) UpsertPatient(ctx context.Context, p model.Patient) (model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.patients {
		if matchesContact(existing, p) {
			if p.Name != "" {
				existing.Name = p.Name
			}
			if p.Phone != "" {
				existing.Phone = p.Phone
			}
			if p.Email != "" {
				existing.Email = p.Email
			}
			if p.Birthdate != "" {
				existing.Birthdate = p.Birthdate
			}
			s.patients[id] = existing
			return existing, nil
		}
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.patients[p.ID] = p
	return p, nil
}

func matchesContact(existing, incoming model.Patient) bool {
	if incoming.Phone != "" && existing.Phone == incoming.Phone {
		return true
	}
	if incoming.Email != "" && strings.EqualFold(existing.Email, incoming.Email) {
		return true
	}
	return false
}

func (s *MemoryStore) GetPatient(ctx context.Context, id uuid.UUID) (model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[id]
	if !ok {
		return model.Patient{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) FindDoctorsBySpecialty(ctx context.Context, specialty string) ([]model.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Doctor
	for _, d := range s.doctors {
		if strings.EqualFold(d.Specialty, specialty) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetDoctor(ctx context.Context, id uuid.UUID) (model.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.doctors[id]
	if !ok {
		return model.Doctor{}, ErrNotFound
	}
	return d, nil
}

func (s *MemoryStore) AppointmentsForDoctorDate(ctx context.Context, doctorID uuid.UUID, date string) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Appointment
	for _, a := range s.appointments {
		if a.DoctorID == doctorID && a.Date == date {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (s *MemoryStore) FindAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Appointment
	for _, a := range s.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *MemoryStore) NextAppointmentSeq(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func (s *MemoryStore) CreateAppointment(ctx context.Context, a model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey(a.DoctorID, a.Date, a.Time)
	if _, taken := s.slots[key]; taken {
		return ErrSlotTaken
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.UpdatedAt = a.CreatedAt
	s.appointments[a.ID] = a
	s.slots[key] = a.ID
	return nil
}

func (s *MemoryStore) GetAppointment(ctx context.Context, id string) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) CancelAppointment(ctx context.Context, id string) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}
	delete(s.slots, slotKey(a.DoctorID, a.Date, a.Time))
	a.Status = model.StatusCancelled
	a.UpdatedAt = time.Now().UTC()
	s.appointments[id] = a
	return a, nil
}

func (s *MemoryStore) RescheduleAppointment(ctx context.Context, id, newDate, newTime string) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}

	newKey := slotKey(a.DoctorID, newDate, newTime)
	if holder, taken := s.slots[newKey]; taken && holder != id {
		return model.Appointment{}, ErrSlotTaken
	}

	delete(s.slots, slotKey(a.DoctorID, a.Date, a.Time))
	a.Date = newDate
	a.Time = newTime
	a.Status = model.StatusRescheduled
	a.UpdatedAt = time.Now().UTC()
	s.appointments[id] = a
	s.slots[newKey] = id
	return a, nil
}

func slotKey(doctorID uuid.UUID, date, t string) string {
	return doctorID.String() + "|" + date + "|" + t
}

var _ Store = (*MemoryStore)(nil)
