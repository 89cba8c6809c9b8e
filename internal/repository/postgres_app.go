package repository

import (
	"context"

	"github.com/bjarke-xyz/portfolio/internal/domain"
	"github.com/georgysavva/scany/v2/pgxscan"
)

type postgresAppRepository struct {
	conn Connection
}

func NewPostgresApp(conn Connection) domain.ApplicationRepository {
	return &postgresAppRepository{conn: conn}
}

const appColumns = "id, title, description, app_url, image_url, created_at, updated_at"

// List implements domain.ApplicationRepository.
func (p *postgresAppRepository) List(ctx context.Context) ([]domain.Application, error) {
	apps := make([]domain.Application, 0)
	err := pgxscan.Select(ctx, p.conn, &apps,
		"SELECT "+appColumns+" FROM apps ORDER BY created_at DESC, id DESC")
	if err != nil {
		return apps, err
	}
	return apps, nil
}

// GetByID implements domain.ApplicationRepository.
func (p *postgresAppRepository) GetByID(ctx context.Context, id string) (domain.Application, error) {
	var app domain.Application
	err := pgxscan.Get(ctx, p.conn, &app, "SELECT "+appColumns+" FROM apps WHERE id = $1", id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return app, domain.ErrNotFound
		}
		return app, err
	}
	return app, nil
}

// Create implements domain.ApplicationRepository.
func (p *postgresAppRepository) Create(ctx context.Context, fields domain.AppFields) (domain.Application, error) {
	var app domain.Application
	query := `
		INSERT INTO apps (title, description, app_url, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + appColumns
	err := pgxscan.Get(ctx, p.conn, &app, query,
		fields.Title, fields.Description, fields.AppURL, fields.ImageURL)
	return app, err
}

// Update implements domain.ApplicationRepository.
func (p *postgresAppRepository) Update(ctx context.Context, id string, fields domain.AppFields) (domain.Application, error) {
	var app domain.Application
	query := `
		UPDATE apps
		SET title = $1, description = $2, app_url = $3, image_url = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + appColumns
	err := pgxscan.Get(ctx, p.conn, &app, query,
		fields.Title, fields.Description, fields.AppURL, fields.ImageURL, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return app, domain.ErrNotFound
		}
		return app, err
	}
	return app, nil
}

// Delete implements domain.ApplicationRepository.
func (p *postgresAppRepository) Delete(ctx context.Context, id string) error {
	tag, err := p.conn.Exec(ctx, "DELETE FROM apps WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
