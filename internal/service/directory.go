package service

import (
	"context"
	"errors"

	"github.com/bjarke-xyz/portfolio/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Directory is the apps collection as seen by the views. It keeps no state
// of its own; every call goes to the repository.
type Directory struct {
	repo     domain.ApplicationRepository
	validate *validator.Validate
	notifier domain.DirectoryNotifier
}

func NewDirectory(repo domain.ApplicationRepository, notifier domain.DirectoryNotifier) *Directory {
	return &Directory{
		repo:     repo,
		validate: newValidator(),
		notifier: notifier,
	}
}

// ListApps returns every app, newest first.
func (d *Directory) ListApps(ctx context.Context) ([]domain.Application, error) {
	apps, err := d.repo.List(ctx)
	if err != nil {
		return nil, domain.NewBackendError("failed to list apps", err)
	}
	return apps, nil
}

func (d *Directory) GetApp(ctx context.Context, id string) (domain.Application, error) {
	if !validID(id) {
		return domain.Application{}, domain.NewBackendError("app not found", domain.ErrNotFound)
	}
	app, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return app, backendError("failed to get app", err)
	}
	return app, nil
}

func (d *Directory) CreateApp(ctx context.Context, fields domain.AppFields) (domain.Application, error) {
	if err := validateStruct(d.validate, fields); err != nil {
		return domain.Application{}, err
	}
	app, err := d.repo.Create(ctx, fields)
	if err != nil {
		return domain.Application{}, domain.NewBackendError("failed to create app", err)
	}
	d.publish(domain.AppCreated, app.ID)
	return app, nil
}

func (d *Directory) UpdateApp(ctx context.Context, id string, fields domain.AppFields) (domain.Application, error) {
	if !validID(id) {
		return domain.Application{}, domain.NewBackendError("app not found", domain.ErrNotFound)
	}
	if err := validateStruct(d.validate, fields); err != nil {
		return domain.Application{}, err
	}
	app, err := d.repo.Update(ctx, id, fields)
	if err != nil {
		return domain.Application{}, backendError("failed to update app", err)
	}
	d.publish(domain.AppUpdated, app.ID)
	return app, nil
}

// DeleteApp fails with ErrNotFound when id does not exist.
func (d *Directory) DeleteApp(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.NewBackendError("app not found", domain.ErrNotFound)
	}
	if err := d.repo.Delete(ctx, id); err != nil {
		return backendError("failed to delete app", err)
	}
	d.publish(domain.AppDeleted, id)
	return nil
}

func (d *Directory) publish(t domain.DirectoryEventType, id string) {
	if d.notifier == nil {
		return
	}
	d.notifier.Publish(domain.DirectoryEvent{Type: t, ID: id})
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func backendError(msg string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewBackendError("app not found", err)
	}
	return domain.NewBackendError(msg, err)
}
