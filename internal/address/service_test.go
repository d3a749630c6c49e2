package address

import (
	"context"
	"testing"

	"ustat-be/internal/utils"
	"ustat-be/internal/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByUserID(ctx context.Context, userID uint) ([]*Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Address), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Address), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, addr *Address) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}

func (m *MockRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ClearDefault(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRepository) SetDefault(ctx context.Context, userID uint, addressID uuid.UUID) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

func userCtx(id uint) context.Context {
	return utils.SetUserContext(context.Background(), id, "user@ustat.ir", "Customer", false)
}

func validCreateInput() CreateAddressInput {
	return CreateAddressInput{
		Receiver:   "Sara Ahmadi",
		Phone:      "09121234567",
		Province:   "Tehran",
		City:       "Tehran",
		Street:     "Valiasr St, No 12",
		PostalCode: "1234567890",
	}
}

func TestAddressCreate(t *testing.T) {
	t.Run("RequiresAuth", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.Create(context.Background(), validCreateInput())

		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("RejectsBadPhoneAndPostal", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		input := validCreateInput()
		input.Phone = "12345"
		input.PostalCode = "abc"

		_, err := svc.Create(userCtx(1), input)

		fe, ok := validation.AsFieldErrors(err)
		require.True(t, ok)
		assert.True(t, fe.Has("phone"))
		assert.True(t, fe.Has("postal_code"))
	})

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*address.Address")).Return(nil)
		svc := NewService(repo)

		addr, err := svc.Create(userCtx(1), validCreateInput())

		require.NoError(t, err)
		assert.Equal(t, uint(1), addr.UserID)
		assert.True(t, addr.IsActive)
		assert.False(t, addr.IsDefault)
		repo.AssertExpectations(t)
	})

	t.Run("DefaultClearsPrevious", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ClearDefault", mock.Anything, uint(1)).Return(nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*address.Address")).Return(nil)
		svc := NewService(repo)

		input := validCreateInput()
		input.SetAsDefault = true

		addr, err := svc.Create(userCtx(1), input)

		require.NoError(t, err)
		assert.True(t, addr.IsDefault)
		repo.AssertExpectations(t)
	})
}

func TestAddressUpdate(t *testing.T) {
	t.Run("OwnershipEnforced", func(t *testing.T) {
		old := &Address{ID: uuid.New(), UserID: 99, IsActive: true}
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, old.ID).Return(old, nil)
		svc := NewService(repo)

		input := UpdateAddressInput{
			AddressID:  old.ID.String(),
			Receiver:   "Sara Ahmadi",
			Phone:      "09121234567",
			Province:   "Tehran",
			City:       "Tehran",
			Street:     "Valiasr St",
			PostalCode: "1234567890",
		}

		_, err := svc.Update(userCtx(1), input)

		assert.ErrorIs(t, err, ErrAddressNotFound)
	})

	t.Run("RetiresOldVersion", func(t *testing.T) {
		old := &Address{ID: uuid.New(), UserID: 1, IsActive: true}
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, old.ID).Return(old, nil)
		repo.On("Deactivate", mock.Anything, old.ID).Return(nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*address.Address")).Return(nil)
		svc := NewService(repo)

		input := UpdateAddressInput{
			AddressID:  old.ID.String(),
			Receiver:   "Sara Ahmadi",
			Phone:      "09121234567",
			Province:   "Fars",
			City:       "Shiraz",
			Street:     "Zand Blvd",
			PostalCode: "7134567890",
		}

		updated, err := svc.Update(userCtx(1), input)

		require.NoError(t, err)
		assert.NotEqual(t, old.ID, updated.ID)
		assert.Equal(t, "Shiraz", updated.City)
		repo.AssertExpectations(t)
	})

	t.Run("InvalidID", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.Update(userCtx(1), UpdateAddressInput{AddressID: "not-a-uuid"})

		fe, ok := validation.AsFieldErrors(err)
		require.True(t, ok)
		assert.True(t, fe.Has("address_id"))
	})
}

func TestAddressDelete(t *testing.T) {
	addr := &Address{ID: uuid.New(), UserID: 1, IsActive: true}

	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, addr.ID).Return(addr, nil)
	repo.On("Deactivate", mock.Anything, addr.ID).Return(nil)
	svc := NewService(repo)

	err := svc.Delete(userCtx(1), addr.ID)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSetDefaultAddress(t *testing.T) {
	addr := &Address{ID: uuid.New(), UserID: 1, IsActive: true}

	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, addr.ID).Return(addr, nil)
	repo.On("ClearDefault", mock.Anything, uint(1)).Return(nil)
	repo.On("SetDefault", mock.Anything, uint(1), addr.ID).Return(nil)
	svc := NewService(repo)

	err := svc.SetDefaultAddress(userCtx(1), addr.ID)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
