package domain

import (
	"context"
	"time"
)

type Application struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	AppURL      string    `json:"app_url" db:"app_url"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// AppFields are the user-editable columns of an Application.
type AppFields struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	AppURL      string `json:"app_url" validate:"required,http_url"`
	ImageURL    string `json:"image_url" validate:"omitempty,http_url"`
}

func (a Application) Fields() AppFields {
	return AppFields{
		Title:       a.Title,
		Description: a.Description,
		AppURL:      a.AppURL,
		ImageURL:    a.ImageURL,
	}
}

// ApplicationRepository lists in created_at descending order.
type ApplicationRepository interface {
	List(context.Context) ([]Application, error)
	GetByID(context.Context, string) (Application, error)
	Create(context.Context, AppFields) (Application, error)
	Update(context.Context, string, AppFields) (Application, error)
	Delete(context.Context, string) error
}
