package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/repository"
)

// memStore is an in-memory repository set that mirrors the guards the
// postgres repositories enforce in SQL. Transactions are serialized and
// roll back by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID    int32
	equipment map[int32]domain.Equipment
	users     map[int32]domain.User
	rentals   map[int32]domain.Rental
}

func newMemStore() *memStore {
	return &memStore{
		equipment: map[int32]domain.Equipment{},
		users:     map[int32]domain.User{},
		rentals:   map[int32]domain.Rental{},
	}
}

func (s *memStore) repos() repository.Repos {
	return repository.Repos{
		Equipment: memEquipment{s},
		Users:     memUsers{s},
		Rentals:   memRentals{s},
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	equipment, users, rentals, nextID := cloneMap(s.equipment), cloneMap(s.users), cloneMap(s.rentals), s.nextID
	s.mu.Unlock()

	if err := fn(ctx, s.repos()); err != nil {
		s.mu.Lock()
		s.equipment, s.users, s.rentals, s.nextID = equipment, users, rentals, nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[V any](m map[int32]V) map[int32]V {
	out := make(map[int32]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) id() int32 {
	s.nextID++
	return s.nextID
}

func (s *memStore) rental(id int32) domain.Rental {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rentals[id]
}

type memEquipment struct{ s *memStore }

func (r memEquipment) Create(ctx context.Context, eq *domain.Equipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.equipment {
		if other.SerialNumber == eq.SerialNumber {
			return domain.ErrDuplicateSerial
		}
	}
	eq.ID = r.s.id()
	eq.CreatedOn = time.Now()
	r.s.equipment[eq.ID] = *eq
	return nil
}

func (r memEquipment) GetByID(ctx context.Context, id int32) (*domain.Equipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	eq, ok := r.s.equipment[id]
	if !ok {
		return nil, domain.NotFound("equipment", id)
	}
	return &eq, nil
}

func (r memEquipment) GetForUpdate(ctx context.Context, id int32) (*domain.Equipment, error) {
	return r.GetByID(ctx, id)
}

func (r memEquipment) Update(ctx context.Context, eq *domain.Equipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.equipment[eq.ID]; !ok {
		return domain.NotFound("equipment", eq.ID)
	}
	for id, other := range r.s.equipment {
		if id != eq.ID && other.SerialNumber == eq.SerialNumber {
			return domain.ErrDuplicateSerial
		}
	}
	r.s.equipment[eq.ID] = *eq
	return nil
}

func (r memEquipment) Delete(ctx context.Context, id int32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.equipment[id]; !ok {
		return domain.NotFound("equipment", id)
	}
	delete(r.s.equipment, id)
	for rid, rt := range r.s.rentals {
		if rt.EquipmentID == id {
			rt.EquipmentID = 0
			r.s.rentals[rid] = rt
		}
	}
	return nil
}

func (r memEquipment) AdjustStock(ctx context.Context, id int32, delta int32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	eq, ok := r.s.equipment[id]
	if !ok || eq.AvailableQuantity+delta < 0 {
		return repository.ErrNotApplied
	}
	eq.AvailableQuantity = min(eq.AvailableQuantity+delta, eq.TotalQuantity)
	r.s.equipment[id] = eq
	return nil
}

func (r memEquipment) Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Equipment
	for _, eq := range r.s.equipment {
		if filter.Search != "" && !strings.Contains(strings.ToLower(eq.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Category != "" && eq.Category != filter.Category {
			continue
		}
		if filter.Condition != "" && eq.Condition != filter.Condition {
			continue
		}
		out = append(out, eq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memEquipment) ListCategories(ctx context.Context) ([]string, error) {
	counts, _ := r.CountByCategory(ctx)
	out := make([]string, 0, len(counts))
	for _, c := range counts {
		out = append(out, c.Category)
	}
	return out, nil
}

func (r memEquipment) Availability(ctx context.Context, id *int32) ([]domain.Availability, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Availability
	for _, eq := range r.s.equipment {
		if id == nil || *id == eq.ID {
			out = append(out, domain.Availability{ID: eq.ID, AvailableQuantity: eq.AvailableQuantity})
		}
	}
	return out, nil
}

func (r memEquipment) CountByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byName := map[string]int32{}
	for _, eq := range r.s.equipment {
		byName[eq.Category]++
	}
	out := make([]domain.CategoryCount, 0, len(byName))
	for name, n := range byName {
		out = append(out, domain.CategoryCount{Category: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (r memEquipment) Count(ctx context.Context) (int32, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int32(len(r.s.equipment)), nil
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.taken(0, user) {
		return domain.ErrDuplicateIdentity
	}
	user.ID = r.s.id()
	user.CreatedOn = time.Now()
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) taken(self int32, user *domain.User) bool {
	for id, other := range r.s.users {
		if id != self && (other.Username == user.Username || other.Email == user.Email) {
			return true
		}
	}
	return false
}

func (r memUsers) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NotFound("user", id)
	}
	return &u, nil
}

func (r memUsers) GetForUpdate(ctx context.Context, id int32) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.NewError(domain.CodeNotFound, "user not found")
}

func (r memUsers) Update(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return domain.NotFound("user", user.ID)
	}
	if r.taken(user.ID, user) {
		return domain.ErrDuplicateIdentity
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) Delete(ctx context.Context, id int32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.NotFound("user", id)
	}
	delete(r.s.users, id)
	for rid, rt := range r.s.rentals {
		if rt.UserID == id {
			rt.UserID = 0
			r.s.rentals[rid] = rt
		}
	}
	return nil
}

func (r memUsers) List(ctx context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memUsers) CountByRole(ctx context.Context, role domain.Role) (int32, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int32
	for _, u := range r.s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type memRentals struct{ s *memStore }

func (r memRentals) Create(ctx context.Context, rental *domain.Rental) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rental.ID = r.s.id()
	r.s.rentals[rental.ID] = *rental
	return nil
}

func (r memRentals) GetActiveForUpdate(ctx context.Context, id int32, userID *int32) (*domain.Rental, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.rentals[id]
	if !ok || !rt.Status.Active() || (userID != nil && rt.UserID != *userID) {
		return nil, domain.ErrNotFoundOrAlreadyReturned
	}
	return &rt, nil
}

func (r memRentals) MarkReturned(ctx context.Context, id int32, returnDate time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.rentals[id]
	if !ok || !rt.Status.Active() {
		return repository.ErrNotApplied
	}
	rt.Status = domain.RentalStatusReturned
	rt.ReturnDate = &returnDate
	r.s.rentals[id] = rt
	return nil
}

func (r memRentals) MarkOverdue(ctx context.Context, today time.Time, userID *int32) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, rt := range r.s.rentals {
		if rt.Status != domain.RentalStatusRented || !rt.DueDate.Before(today) {
			continue
		}
		if userID != nil && rt.UserID != *userID {
			continue
		}
		rt.Status = domain.RentalStatusOverdue
		r.s.rentals[id] = rt
		n++
	}
	return n, nil
}

func (r memRentals) CountActiveByUser(ctx context.Context, userID int32) (int32, error) {
	return r.countActive(func(rt domain.Rental) bool { return rt.UserID == userID }), nil
}

func (r memRentals) CountActiveByEquipment(ctx context.Context, equipmentID int32) (int32, error) {
	return r.countActive(func(rt domain.Rental) bool { return rt.EquipmentID == equipmentID }), nil
}

func (r memRentals) countActive(match func(domain.Rental) bool) int32 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int32
	for _, rt := range r.s.rentals {
		if rt.Status.Active() && match(rt) {
			n++
		}
	}
	return n
}

func (r memRentals) ListOverdue(ctx context.Context) ([]domain.OverdueNotice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.OverdueNotice
	for _, rt := range r.s.rentals {
		if rt.Status != domain.RentalStatusOverdue {
			continue
		}
		u := r.s.users[rt.UserID]
		eq := r.s.equipment[rt.EquipmentID]
		out = append(out, domain.OverdueNotice{
			RentalID:      rt.ID,
			UserName:      u.Name,
			UserEmail:     u.Email,
			EquipmentName: eq.Name,
			Quantity:      rt.QuantityRented,
			DueDate:       rt.DueDate,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RentalID < out[j].RentalID })
	return out, nil
}
