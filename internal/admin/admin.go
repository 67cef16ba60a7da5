// Package admin implements the CRUD surface for offices, counters and
// users. Deleting an office cascades to its counters but deliberately not to
// queued tickets; counter changes keep each office's counter count current.
package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jojosay/Local-Queue-Assistant/internal/models"
	"github.com/jojosay/Local-Queue-Assistant/internal/store"
)

var (
	ErrOfficeNotFound  = errors.New("office not found")
	ErrCounterNotFound = errors.New("counter not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidInput    = errors.New("invalid input")
)

type Service struct {
	store *store.Store
}

func New(s *store.Store) *Service {
	return &Service{store: s}
}

func (s *Service) ListOffices(ctx context.Context) ([]models.Office, error) {
	return s.store.ListOffices(ctx)
}

func (s *Service) CreateOffice(ctx context.Context, office models.Office) (models.Office, error) {
	office.Name = strings.TrimSpace(office.Name)
	if office.Name == "" {
		return models.Office{}, ErrInvalidInput
	}
	if office.OfficeID == "" {
		office.OfficeID = uuid.NewString()
	}
	if office.Status == "" {
		office.Status = models.OfficeActive
	}
	office.CounterCount = 0

	offices, err := s.store.ListOffices(ctx)
	if err != nil {
		return models.Office{}, err
	}
	offices = append(offices, office)
	if err := s.store.SaveOffices(ctx, offices); err != nil {
		return models.Office{}, err
	}
	return office, nil
}

func (s *Service) UpdateOffice(ctx context.Context, office models.Office) (models.Office, error) {
	offices, err := s.store.ListOffices(ctx)
	if err != nil {
		return models.Office{}, err
	}
	for i := range offices {
		if offices[i].OfficeID != office.OfficeID {
			continue
		}
		if name := strings.TrimSpace(office.Name); name != "" {
			offices[i].Name = name
		}
		offices[i].Address = office.Address
		if office.Status != "" {
			offices[i].Status = office.Status
		}
		if err := s.store.SaveOffices(ctx, offices); err != nil {
			return models.Office{}, err
		}
		return offices[i], nil
	}
	return models.Office{}, ErrOfficeNotFound
}

// DeleteOffice removes the office and every counter it owns. Queue tickets
// for the office are left in place; cleanup of those is not cascaded.
func (s *Service) DeleteOffice(ctx context.Context, officeID string) error {
	offices, err := s.store.ListOffices(ctx)
	if err != nil {
		return err
	}
	kept := offices[:0]
	found := false
	for _, office := range offices {
		if office.OfficeID == officeID {
			found = true
			continue
		}
		kept = append(kept, office)
	}
	if !found {
		return ErrOfficeNotFound
	}
	if err := s.store.SaveOffices(ctx, kept); err != nil {
		return err
	}

	counters, err := s.store.ListCounters(ctx)
	if err != nil {
		return err
	}
	keptCounters := counters[:0]
	for _, counter := range counters {
		if counter.OfficeID == officeID {
			// Drop the serving slot too so the display never shows a
			// counter that no longer exists.
			if err := s.store.ClearSlot(ctx, officeID, counter.CounterID); err != nil {
				return err
			}
			continue
		}
		keptCounters = append(keptCounters, counter)
	}
	return s.store.SaveCounters(ctx, keptCounters)
}

func (s *Service) ListCounters(ctx context.Context) ([]models.Counter, error) {
	return s.store.ListCounters(ctx)
}

func (s *Service) CreateCounter(ctx context.Context, counter models.Counter) (models.Counter, error) {
	counter.Name = strings.TrimSpace(counter.Name)
	if counter.Name == "" || counter.OfficeID == "" {
		return models.Counter{}, ErrInvalidInput
	}
	_, ok, err := s.store.GetOffice(ctx, counter.OfficeID)
	if err != nil {
		return models.Counter{}, err
	}
	if !ok {
		return models.Counter{}, ErrOfficeNotFound
	}
	if counter.CounterID == "" {
		counter.CounterID = uuid.NewString()
	}
	if counter.Type == "" {
		counter.Type = models.CounterGeneral
	}
	if counter.Status == "" {
		counter.Status = models.CounterOpen
	}
	counter.Priority = counter.Priority || counter.Type == models.CounterPriority

	counters, err := s.store.ListCounters(ctx)
	if err != nil {
		return models.Counter{}, err
	}
	counters = append(counters, counter)
	if err := s.store.SaveCounters(ctx, counters); err != nil {
		return models.Counter{}, err
	}
	if err := s.recountCounters(ctx, counters); err != nil {
		return models.Counter{}, err
	}
	return counter, nil
}

func (s *Service) UpdateCounter(ctx context.Context, counter models.Counter) (models.Counter, error) {
	counters, err := s.store.ListCounters(ctx)
	if err != nil {
		return models.Counter{}, err
	}
	for i := range counters {
		if counters[i].CounterID != counter.CounterID {
			continue
		}
		if name := strings.TrimSpace(counter.Name); name != "" {
			counters[i].Name = name
		}
		if counter.Type != "" {
			counters[i].Type = counter.Type
		}
		if counter.Status != "" {
			counters[i].Status = counter.Status
		}
		counters[i].Priority = counter.Priority || counters[i].Type == models.CounterPriority
		if err := s.store.SaveCounters(ctx, counters); err != nil {
			return models.Counter{}, err
		}
		return counters[i], nil
	}
	return models.Counter{}, ErrCounterNotFound
}

func (s *Service) DeleteCounter(ctx context.Context, counterID string) error {
	counters, err := s.store.ListCounters(ctx)
	if err != nil {
		return err
	}
	kept := counters[:0]
	found := false
	for _, counter := range counters {
		if counter.CounterID == counterID {
			found = true
			if err := s.store.ClearSlot(ctx, counter.OfficeID, counter.CounterID); err != nil {
				return err
			}
			continue
		}
		kept = append(kept, counter)
	}
	if !found {
		return ErrCounterNotFound
	}
	if err := s.store.SaveCounters(ctx, kept); err != nil {
		return err
	}
	return s.recountCounters(ctx, kept)
}

// recountCounters recomputes every office's counter count after a counter
// change.
func (s *Service) recountCounters(ctx context.Context, counters []models.Counter) error {
	offices, err := s.store.ListOffices(ctx)
	if err != nil {
		return err
	}
	counts := make(map[string]int, len(offices))
	for _, counter := range counters {
		counts[counter.OfficeID]++
	}
	for i := range offices {
		offices[i].CounterCount = counts[offices[i].OfficeID]
	}
	return s.store.SaveOffices(ctx, offices)
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *Service) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" || user.Password == "" {
		return models.User{}, ErrInvalidInput
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, existing := range users {
		if strings.EqualFold(existing.Username, user.Username) {
			return models.User{}, ErrUsernameTaken
		}
	}
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleStaff
	}
	users = append(users, user)
	if err := s.store.SaveUsers(ctx, users); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return models.User{}, err
	}
	for i := range users {
		if users[i].UserID != user.UserID {
			continue
		}
		if username := strings.TrimSpace(user.Username); username != "" {
			users[i].Username = username
		}
		if user.Password != "" {
			users[i].Password = user.Password
		}
		if user.Role != "" {
			users[i].Role = user.Role
		}
		users[i].OfficeID = user.OfficeID
		if err := s.store.SaveUsers(ctx, users); err != nil {
			return models.User{}, err
		}
		return users[i], nil
	}
	return models.User{}, ErrUserNotFound
}

func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return err
	}
	kept := users[:0]
	found := false
	for _, user := range users {
		if user.UserID == userID {
			found = true
			continue
		}
		kept = append(kept, user)
	}
	if !found {
		return ErrUserNotFound
	}
	return s.store.SaveUsers(ctx, kept)
}
