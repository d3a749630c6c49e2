package catalog

import (
	"encoding/json"
	"time"
)

type ItemType string

const (
	TypeSofa        ItemType = "s"
	TypeBedroom     ItemType = "b"
	TypeTableChairs ItemType = "m"
	TypeCoffeeTable ItemType = "j"
	TypeMirror      ItemType = "c"
)

var ValidItemTypes = map[ItemType]bool{
	TypeSofa:        true,
	TypeBedroom:     true,
	TypeTableChairs: true,
	TypeCoffeeTable: true,
	TypeMirror:      true,
}

// DisplayItem is a catalog headline a customer browses; pricing lives on its
// variants.
type DisplayItem struct {
	ID        uint
	Type      ItemType
	Name      string
	CreatedAt time.Time
}

// ItemVariant is one purchasable configuration of a DisplayItem. Its fields
// are the pricing snapshot source for order lines.
type ItemVariant struct {
	ID              string
	DisplayItemID   uint
	Type            ItemType
	Name            string
	Dimensions      json.RawMessage
	Price           int64
	Description     *string
	Fabric          string
	Color           string
	WoodColor       string
	Thumbnail       *string
	ShowInFirstPage bool
	CreatedAt       time.Time
}

type CreateDisplayItemParams struct {
	Type ItemType
	Name string
}

type CreateItemVariantParams struct {
	DisplayItemID   uint
	Name            string
	Dimensions      json.RawMessage
	Price           int64
	Description     *string
	Fabric          string
	Color           string
	WoodColor       string
	Thumbnail       *string
	ShowInFirstPage bool
}

type UpdateItemVariantParams struct {
	ID              string
	Name            *string
	Dimensions      json.RawMessage
	Price           *int64
	Description     *string
	Fabric          *string
	Color           *string
	WoodColor       *string
	ShowInFirstPage *bool
}
