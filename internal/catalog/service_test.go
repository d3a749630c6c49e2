package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ustat-be/internal/utils"
	"ustat-be/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetDisplayItem(ctx context.Context, id uint) (*DisplayItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DisplayItem), args.Error(1)
}

func (m *MockRepository) CreateDisplayItem(ctx context.Context, item *DisplayItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) UpdateDisplayItem(ctx context.Context, item *DisplayItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) DeleteDisplayItem(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ListDisplayItems(ctx context.Context, itemType *ItemType) ([]*DisplayItem, error) {
	args := m.Called(ctx, itemType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*DisplayItem), args.Error(1)
}

func (m *MockRepository) GetVariant(ctx context.Context, id string) (*ItemVariant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ItemVariant), args.Error(1)
}

func (m *MockRepository) CreateVariant(ctx context.Context, v *ItemVariant) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockRepository) UpdateVariant(ctx context.Context, v *ItemVariant) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockRepository) DeleteVariant(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListShowcase(ctx context.Context, perType int) ([]*ItemVariant, error) {
	args := m.Called(ctx, perType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ItemVariant), args.Error(1)
}

func staffCtx() context.Context {
	return utils.SetUserContext(context.Background(), 1, "staff@ustat.ir", "Staff", true)
}

func customerCtx() context.Context {
	return utils.SetUserContext(context.Background(), 2, "user@ustat.ir", "Customer", false)
}

func validVariantParams() CreateItemVariantParams {
	return CreateItemVariantParams{
		DisplayItemID: 7,
		Name:          "Shiraz",
		Dimensions:    json.RawMessage(`{"length":220,"width":90,"height":85}`),
		Price:         4500000,
		Fabric:        "velvet",
		Color:         "green",
		WoodColor:     "walnut",
	}
}

func TestCreateDisplayItem(t *testing.T) {
	t.Run("RejectsNonStaff", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.CreateDisplayItem(customerCtx(), CreateDisplayItemParams{Type: TypeSofa, Name: "x"})

		assert.ErrorIs(t, err, ErrStaffOnly)
	})

	t.Run("RejectsUnknownType", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.CreateDisplayItem(staffCtx(), CreateDisplayItemParams{Type: "zz", Name: "x"})

		fe, ok := validation.AsFieldErrors(err)
		require.True(t, ok)
		assert.True(t, fe.Has("type"))
	})

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateDisplayItem", mock.Anything, mock.AnythingOfType("*catalog.DisplayItem")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*DisplayItem).ID = 12
			}).
			Return(nil)
		svc := NewService(repo)

		item, err := svc.CreateDisplayItem(staffCtx(), CreateDisplayItemParams{Type: TypeMirror, Name: "Ayneh"})

		require.NoError(t, err)
		assert.Equal(t, uint(12), item.ID)
		assert.Equal(t, TypeMirror, item.Type)
		repo.AssertExpectations(t)
	})
}

func TestCreateVariant(t *testing.T) {
	t.Run("RejectsNonStaff", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.CreateVariant(customerCtx(), validVariantParams())

		assert.ErrorIs(t, err, ErrStaffOnly)
	})

	t.Run("ParentNotFound", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetDisplayItem", mock.Anything, uint(7)).Return(nil, nil)
		svc := NewService(repo)

		_, err := svc.CreateVariant(staffCtx(), validVariantParams())

		assert.ErrorIs(t, err, ErrDisplayItemNotFound)
	})

	t.Run("RejectsBadDimensionsAndPrice", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetDisplayItem", mock.Anything, uint(7)).
			Return(&DisplayItem{ID: 7, Type: TypeSofa}, nil)
		svc := NewService(repo)

		params := validVariantParams()
		params.Dimensions = json.RawMessage(`{"length":0,"width":90,"height":85}`)
		params.Price = 0

		_, err := svc.CreateVariant(staffCtx(), params)

		fe, ok := validation.AsFieldErrors(err)
		require.True(t, ok)
		assert.True(t, fe.Has("dimensions"))
		assert.True(t, fe.Has("price"))
	})

	t.Run("InheritsParentType", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetDisplayItem", mock.Anything, uint(7)).
			Return(&DisplayItem{ID: 7, Type: TypeBedroom}, nil)
		repo.On("CreateVariant", mock.Anything, mock.AnythingOfType("*catalog.ItemVariant")).Return(nil)
		svc := NewService(repo)

		v, err := svc.CreateVariant(staffCtx(), validVariantParams())

		require.NoError(t, err)
		assert.Equal(t, TypeBedroom, v.Type)
		assert.NotEmpty(t, v.ID)
		repo.AssertExpectations(t)
	})
}

func TestUpdateVariant(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetVariant", mock.Anything, "missing").Return(nil, nil)
		svc := NewService(repo)

		_, err := svc.UpdateVariant(staffCtx(), UpdateItemVariantParams{ID: "missing"})

		assert.ErrorIs(t, err, ErrVariantNotFound)
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetVariant", mock.Anything, "v-1").
			Return(&ItemVariant{ID: "v-1", Name: "Old", Price: 100, Fabric: "linen"}, nil)
		repo.On("UpdateVariant", mock.Anything, mock.AnythingOfType("*catalog.ItemVariant")).Return(nil)
		svc := NewService(repo)

		newPrice := int64(250)
		v, err := svc.UpdateVariant(staffCtx(), UpdateItemVariantParams{ID: "v-1", Price: &newPrice})

		require.NoError(t, err)
		assert.Equal(t, int64(250), v.Price)
		assert.Equal(t, "Old", v.Name)
		assert.Equal(t, "linen", v.Fabric)
	})

	t.Run("RejectsNonPositivePrice", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetVariant", mock.Anything, "v-1").
			Return(&ItemVariant{ID: "v-1", Price: 100}, nil)
		svc := NewService(repo)

		bad := int64(-5)
		_, err := svc.UpdateVariant(staffCtx(), UpdateItemVariantParams{ID: "v-1", Price: &bad})

		fe, ok := validation.AsFieldErrors(err)
		require.True(t, ok)
		assert.True(t, fe.Has("price"))
	})
}

func TestDeleteVariant(t *testing.T) {
	t.Run("RejectsNonStaff", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		err := svc.DeleteVariant(customerCtx(), "v-1")

		assert.ErrorIs(t, err, ErrStaffOnly)
	})

	t.Run("PropagatesRepoError", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("DeleteVariant", mock.Anything, "v-1").Return(0, errors.New("db down"))
		svc := NewService(repo)

		err := svc.DeleteVariant(staffCtx(), "v-1")

		assert.EqualError(t, err, "db down")
	})
}

func TestShowcase(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListShowcase", mock.Anything, 5).
		Return([]*ItemVariant{{ID: "v-1"}, {ID: "v-2"}}, nil)
	svc := NewService(repo)

	vs, err := svc.Showcase(context.Background())

	require.NoError(t, err)
	assert.Len(t, vs, 2)
	repo.AssertExpectations(t)
}
