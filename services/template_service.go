package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davyaugustnurismail/ukk-sub001/internal/canvas"
)

// ErrTemplateNotFound is returned when no template matches the id within the
// caller's merchant scope.
var ErrTemplateNotFound = fmt.Errorf("template not found")

type TemplateService struct {
	db *pgxpool.Pool
}

func NewTemplateService(db *pgxpool.Pool) *TemplateService {
	return &TemplateService{db: db}
}

func (s *TemplateService) ListTemplates(ctx context.Context, merchantID string) ([]*canvas.Template, error) {
	query := `
		SELECT id, merchant_id, name, background_image, elements, is_active, created_at
		FROM sertifikat_templates
		WHERE merchant_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.Query(ctx, query, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*canvas.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *TemplateService) GetTemplate(ctx context.Context, id, merchantID string) (*canvas.Template, error) {
	query := `
		SELECT id, merchant_id, name, background_image, elements, is_active, created_at
		FROM sertifikat_templates
		WHERE id = $1 AND merchant_id = $2
	`
	row := s.db.QueryRow(ctx, query, id, merchantID)
	t, err := scanTemplate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) CreateTemplate(ctx context.Context, merchantID, name, backgroundImage string) (*canvas.Template, error) {
	t := &canvas.Template{
		ID:              uuid.New().String(),
		MerchantID:      merchantID,
		Name:            name,
		BackgroundImage: backgroundImage,
		Elements:        []canvas.Element{},
		IsActive:        true,
		CreatedAt:       time.Now(),
	}

	elementsJSON, err := json.Marshal(t.Elements)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO sertifikat_templates (id, merchant_id, name, background_image, elements, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := s.db.Exec(ctx, query, t.ID, t.MerchantID, t.Name, t.BackgroundImage, elementsJSON, t.IsActive, t.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return t, nil
}

// UpdateTemplate persists name, background, active flag and the full element
// list. The element list round-trips as one JSONB document; elements have no
// lifecycle outside their owning template.
func (s *TemplateService) UpdateTemplate(ctx context.Context, t *canvas.Template) error {
	elementsJSON, err := json.Marshal(t.Elements)
	if err != nil {
		return err
	}

	query := `
		UPDATE sertifikat_templates
		SET name = $3, background_image = $4, elements = $5, is_active = $6
		WHERE id = $1 AND merchant_id = $2
	`
	tag, err := s.db.Exec(ctx, query, t.ID, t.MerchantID, t.Name, t.BackgroundImage, elementsJSON, t.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, id, merchantID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM sertifikat_templates WHERE id = $1 AND merchant_id = $2`, id, merchantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// AddElement runs the session add operation against the stored template and
// persists the result.
func (s *TemplateService) AddElement(ctx context.Context, id, merchantID string, kind canvas.ElementType, el canvas.Element) (canvas.Element, error) {
	t, err := s.GetTemplate(ctx, id, merchantID)
	if err != nil {
		return canvas.Element{}, err
	}

	session := canvas.NewSession(t.Elements)
	added, err := session.AddElement(kind, el)
	if err != nil {
		return canvas.Element{}, err
	}

	t.Elements = session.Elements()
	if err := s.UpdateTemplate(ctx, t); err != nil {
		return canvas.Element{}, err
	}
	return added, nil
}

func (s *TemplateService) UpdateElement(ctx context.Context, id, merchantID, elementID string, patch canvas.ElementPatch) (canvas.Element, error) {
	t, err := s.GetTemplate(ctx, id, merchantID)
	if err != nil {
		return canvas.Element{}, err
	}

	session := canvas.NewSession(t.Elements)
	updated, err := session.UpdateElement(elementID, patch)
	if err != nil {
		return canvas.Element{}, err
	}

	t.Elements = session.Elements()
	if err := s.UpdateTemplate(ctx, t); err != nil {
		return canvas.Element{}, err
	}
	return updated, nil
}

func (s *TemplateService) RemoveElement(ctx context.Context, id, merchantID, elementID string) error {
	t, err := s.GetTemplate(ctx, id, merchantID)
	if err != nil {
		return err
	}

	session := canvas.NewSession(t.Elements)
	session.RemoveElement(elementID)
	t.Elements = session.Elements()
	return s.UpdateTemplate(ctx, t)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*canvas.Template, error) {
	var t canvas.Template
	var elementsJSON []byte
	if err := row.Scan(&t.ID, &t.MerchantID, &t.Name, &t.BackgroundImage, &elementsJSON, &t.IsActive, &t.CreatedAt); err != nil {
		return nil, err
	}
	if len(elementsJSON) > 0 {
		if err := json.Unmarshal(elementsJSON, &t.Elements); err != nil {
			return nil, fmt.Errorf("corrupt elements for template %s: %w", t.ID, err)
		}
	}
	return &t, nil
}
