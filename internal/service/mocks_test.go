package service_test

import (
	"context"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/mock"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/repository"
	"rentaltracker-backend/internal/security"
)

// fakeTx runs fn directly against the mocked repositories and records
// whether the transaction would have committed.
type fakeTx struct {
	repos     repository.Repos
	commits   int
	rollbacks int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	if err := fn(ctx, f.repos); err != nil {
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

type mocks struct {
	equipment *MockEquipmentRepo
	users     *MockUserRepo
	rentals   *MockRentalRepo
	reports   *MockReportRepo
	tx        *fakeTx
}

func newMocks() *mocks {
	m := &mocks{
		equipment: new(MockEquipmentRepo),
		users:     new(MockUserRepo),
		rentals:   new(MockRentalRepo),
		reports:   new(MockReportRepo),
	}
	m.tx = &fakeTx{repos: repository.Repos{
		Equipment: m.equipment,
		Users:     m.users,
		Rentals:   m.rentals,
		Reports:   m.reports,
	}}
	return m
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// MockEquipmentRepo
type MockEquipmentRepo struct {
	mock.Mock
}

func (m *MockEquipmentRepo) Create(ctx context.Context, eq *domain.Equipment) error {
	args := m.Called(ctx, eq)
	return args.Error(0)
}
func (m *MockEquipmentRepo) GetByID(ctx context.Context, id int32) (*domain.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) GetForUpdate(ctx context.Context, id int32) (*domain.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) Update(ctx context.Context, eq *domain.Equipment) error {
	args := m.Called(ctx, eq)
	return args.Error(0)
}
func (m *MockEquipmentRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockEquipmentRepo) AdjustStock(ctx context.Context, id int32, delta int32) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}
func (m *MockEquipmentRepo) Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockEquipmentRepo) Availability(ctx context.Context, id *int32) ([]domain.Availability, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Availability), args.Error(1)
}
func (m *MockEquipmentRepo) CountByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryCount), args.Error(1)
}
func (m *MockEquipmentRepo) Count(ctx context.Context) (int32, error) {
	args := m.Called(ctx)
	return args.Get(0).(int32), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetForUpdate(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserRepo) CountByRole(ctx context.Context, role domain.Role) (int32, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int32), args.Error(1)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetActiveForUpdate(ctx context.Context, id int32, userID *int32) (*domain.Rental, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) MarkReturned(ctx context.Context, id int32, returnDate time.Time) error {
	args := m.Called(ctx, id, returnDate)
	return args.Error(0)
}
func (m *MockRentalRepo) MarkOverdue(ctx context.Context, today time.Time, userID *int32) (int64, error) {
	args := m.Called(ctx, today, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockRentalRepo) CountActiveByUser(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockRentalRepo) CountActiveByEquipment(ctx context.Context, equipmentID int32) (int32, error) {
	args := m.Called(ctx, equipmentID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockRentalRepo) ListOverdue(ctx context.Context) ([]domain.OverdueNotice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OverdueNotice), args.Error(1)
}

// MockReportRepo
type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) StatusCounts(ctx context.Context, userID *int32) (domain.StatusCounts, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.StatusCounts), args.Error(1)
}
func (m *MockReportRepo) ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.RentalView, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalView), args.Error(1)
}
func (m *MockReportRepo) RecentRentals(ctx context.Context, limit int) ([]domain.RentalView, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalView), args.Error(1)
}
func (m *MockReportRepo) CurrentRentals(ctx context.Context, userID int32) ([]domain.RentalView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalView), args.Error(1)
}
func (m *MockReportRepo) RentalHistory(ctx context.Context, userID int32) ([]domain.RentalView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalView), args.Error(1)
}
func (m *MockReportRepo) ReturnTimeliness(ctx context.Context, userID int32) (int32, int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Get(1).(int32), args.Error(2)
}

// MockTokenManager
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateSessionToken(user *domain.User) (string, string, error) {
	args := m.Called(user)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *MockTokenManager) ValidateToken(token string) (*security.SessionClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.SessionClaims), args.Error(1)
}

// MockMailSender
type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rest.Response), args.Error(1)
}
