package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// CreateProductRequest carries the owner-supplied fields of a new product.
// The customization row is created alongside with defaults.
type CreateProductRequest struct {
	OwnerID     string `json:"-"`
	Name        string `json:"name" binding:"required"`
	URL         string `json:"url" binding:"required,url"`
	Description string `json:"description"`
}

type UpdateProductRequest struct {
	OwnerID     string       `json:"-"`
	ID          snowflake.ID `json:"-"`
	Name        string       `json:"name" binding:"required"`
	URL         string       `json:"url" binding:"required,url"`
	Description string       `json:"description"`
}

// UpdateCustomizationRequest replaces the banner presentation fields.
type UpdateCustomizationRequest struct {
	OwnerID         string       `json:"-"`
	ProductID       snowflake.ID `json:"-"`
	LocationMessage string       `json:"location_message" binding:"required"`
	BackgroundColor string       `json:"background_color" binding:"required"`
	TextColor       string       `json:"text_color" binding:"required"`
	FontSize        string       `json:"font_size" binding:"required"`
	BannerContainer string       `json:"banner_container" binding:"required"`
	IsSticky        bool         `json:"is_sticky"`
	ClassPrefix     string       `json:"class_prefix"`
}

type Service interface {
	List(ctx context.Context, ownerID string) ([]Product, error)
	Get(ctx context.Context, ownerID string, id snowflake.ID) (*Product, error)
	Count(ctx context.Context, ownerID string) (int64, error)
	Create(ctx context.Context, req CreateProductRequest) (*Product, error)
	Update(ctx context.Context, req UpdateProductRequest) (*Product, error)
	Delete(ctx context.Context, ownerID string, id snowflake.ID) error
	// DeleteAllForOwner removes every product of an owner, cascading to
	// customizations and views. Used by account deletion.
	DeleteAllForOwner(ctx context.Context, ownerID string) error

	GetCustomization(ctx context.Context, ownerID string, productID snowflake.ID) (*ProductCustomization, error)
	UpdateCustomization(ctx context.Context, req UpdateCustomizationRequest) (*ProductCustomization, error)
}

var (
	ErrNotFound         = errors.New("product_not_found")
	ErrQuotaExceeded    = errors.New("product_quota_exceeded")
	ErrPermissionDenied = errors.New("permission_denied")
)
