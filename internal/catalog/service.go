package catalog

import (
	"context"
	"encoding/json"

	"ustat-be/internal/logger"
	"ustat-be/internal/utils"
	"ustat-be/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	CreateDisplayItem(ctx context.Context, params CreateDisplayItemParams) (*DisplayItem, error)
	UpdateDisplayItem(ctx context.Context, id uint, itemType *ItemType, name *string) (*DisplayItem, error)
	DeleteDisplayItem(ctx context.Context, id uint) error

	CreateVariant(ctx context.Context, params CreateItemVariantParams) (*ItemVariant, error)
	UpdateVariant(ctx context.Context, params UpdateItemVariantParams) (*ItemVariant, error)
	DeleteVariant(ctx context.Context, id string) error

	GetVariant(ctx context.Context, id string) (*ItemVariant, error)
	ListDisplayItems(ctx context.Context, itemType *ItemType) ([]*DisplayItem, error)
	Showcase(ctx context.Context) ([]*ItemVariant, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

type dimensionBox struct {
	Length int `json:"length"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func validateDimensions(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	var box dimensionBox
	if err := json.Unmarshal(raw, &box); err != nil {
		return false
	}
	return box.Length > 0 && box.Width > 0 && box.Height > 0
}

func (s *service) CreateDisplayItem(ctx context.Context, params CreateDisplayItemParams) (*DisplayItem, error) {
	if !utils.IsStaffFromContext(ctx) {
		return nil, ErrStaffOnly
	}

	errs := validation.FieldErrors{}
	if !ValidItemTypes[params.Type] {
		errs.Add("type", "invalid display item type")
	}
	if params.Name == "" || len(params.Name) > 32 {
		errs.Add("name", "name must be 1-32 characters")
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	item := &DisplayItem{Type: params.Type, Name: params.Name}
	if err := s.repo.CreateDisplayItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *service) UpdateDisplayItem(ctx context.Context, id uint, itemType *ItemType, name *string) (*DisplayItem, error) {
	if !utils.IsStaffFromContext(ctx) {
		return nil, ErrStaffOnly
	}

	item, err := s.repo.GetDisplayItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrDisplayItemNotFound
	}

	errs := validation.FieldErrors{}
	if itemType != nil {
		if !ValidItemTypes[*itemType] {
			errs.Add("type", "invalid display item type")
		} else {
			item.Type = *itemType
		}
	}
	if name != nil {
		if *name == "" || len(*name) > 32 {
			errs.Add("name", "name must be 1-32 characters")
		} else {
			item.Name = *name
		}
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDisplayItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *service) DeleteDisplayItem(ctx context.Context, id uint) error {
	if !utils.IsStaffFromContext(ctx) {
		return ErrStaffOnly
	}
	return s.repo.DeleteDisplayItem(ctx, id)
}

func (s *service) CreateVariant(ctx context.Context, params CreateItemVariantParams) (*ItemVariant, error) {
	if !utils.IsStaffFromContext(ctx) {
		return nil, ErrStaffOnly
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateVariant"),
		zap.Uint("display_item_id", params.DisplayItemID),
	)

	parent, err := s.repo.GetDisplayItem(ctx, params.DisplayItemID)
	if err != nil {
		log.Error("failed to load display item", zap.Error(err))
		return nil, err
	}
	if parent == nil {
		return nil, ErrDisplayItemNotFound
	}

	errs := validation.FieldErrors{}
	if params.Name == "" || len(params.Name) > 32 {
		errs.Add("name", "name must be 1-32 characters")
	}
	if !validateDimensions(params.Dimensions) {
		errs.Add("dimensions", "length, width and height must be positive integers")
	}
	if params.Price < 1 {
		errs.Add("price", "price must be greater than zero")
	}
	if params.Fabric == "" {
		errs.Add("fabric", "fabric cannot be empty")
	}
	if params.Color == "" {
		errs.Add("color", "color cannot be empty")
	}
	if params.WoodColor == "" {
		errs.Add("wood_color", "wood color cannot be empty")
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	v := &ItemVariant{
		ID:              uuid.New().String(),
		DisplayItemID:   parent.ID,
		Type:            parent.Type,
		Name:            params.Name,
		Dimensions:      params.Dimensions,
		Price:           params.Price,
		Description:     params.Description,
		Fabric:          params.Fabric,
		Color:           params.Color,
		WoodColor:       params.WoodColor,
		Thumbnail:       params.Thumbnail,
		ShowInFirstPage: params.ShowInFirstPage,
	}

	if err := s.repo.CreateVariant(ctx, v); err != nil {
		log.Error("failed to create variant", zap.Error(err))
		return nil, err
	}

	log.Info("variant created", zap.String("variant_id", v.ID))
	return v, nil
}

func (s *service) UpdateVariant(ctx context.Context, params UpdateItemVariantParams) (*ItemVariant, error) {
	if !utils.IsStaffFromContext(ctx) {
		return nil, ErrStaffOnly
	}

	v, err := s.repo.GetVariant(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVariantNotFound
	}

	errs := validation.FieldErrors{}
	if params.Name != nil {
		if *params.Name == "" || len(*params.Name) > 32 {
			errs.Add("name", "name must be 1-32 characters")
		} else {
			v.Name = *params.Name
		}
	}
	if params.Dimensions != nil {
		if !validateDimensions(params.Dimensions) {
			errs.Add("dimensions", "length, width and height must be positive integers")
		} else {
			v.Dimensions = params.Dimensions
		}
	}
	if params.Price != nil {
		if *params.Price < 1 {
			errs.Add("price", "price must be greater than zero")
		} else {
			v.Price = *params.Price
		}
	}
	if params.Description != nil {
		v.Description = params.Description
	}
	if params.Fabric != nil {
		v.Fabric = *params.Fabric
	}
	if params.Color != nil {
		v.Color = *params.Color
	}
	if params.WoodColor != nil {
		v.WoodColor = *params.WoodColor
	}
	if params.ShowInFirstPage != nil {
		v.ShowInFirstPage = *params.ShowInFirstPage
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateVariant(ctx, v); err != nil {
		return nil, err
	}

	return v, nil
}

func (s *service) DeleteVariant(ctx context.Context, id string) error {
	if !utils.IsStaffFromContext(ctx) {
		return ErrStaffOnly
	}

	// The repository drops the parent display item when its last variant goes.
	_, err := s.repo.DeleteVariant(ctx, id)
	return err
}

func (s *service) GetVariant(ctx context.Context, id string) (*ItemVariant, error) {
	v, err := s.repo.GetVariant(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVariantNotFound
	}
	return v, nil
}

func (s *service) ListDisplayItems(ctx context.Context, itemType *ItemType) ([]*DisplayItem, error) {
	return s.repo.ListDisplayItems(ctx, itemType)
}

func (s *service) Showcase(ctx context.Context) ([]*ItemVariant, error) {
	return s.repo.ListShowcase(ctx, 5)
}
