package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/storage"
)

func (s *Store) LoadTemplate(ctx context.Context, userID string) (models.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.title, i.id, i.label
		FROM checklist_templates t
		LEFT JOIN checklist_template_items i
			ON i.user_id = t.user_id AND i.template_id = t.id
		WHERE t.user_id = ?
		ORDER BY t.position, i.position`, userID)
	if err != nil {
		return models.Template{}, apperrors.Unavailable("load template", err)
	}
	defer rows.Close()

	tmpl := models.Template{Sections: []models.ChecklistSection{}}
	for rows.Next() {
		var sectionID, title string
		var itemID, label sql.NullString
		if err := rows.Scan(&sectionID, &title, &itemID, &label); err != nil {
			return models.Template{}, apperrors.Unavailable("load template", err)
		}

		n := len(tmpl.Sections)
		if n == 0 || tmpl.Sections[n-1].ID != sectionID {
			tmpl.Sections = append(tmpl.Sections, models.ChecklistSection{
				ID:    sectionID,
				Title: title,
				Items: []models.ChecklistItem{},
			})
			n++
		}
		if itemID.Valid {
			sec := &tmpl.Sections[n-1]
			sec.Items = append(sec.Items, models.ChecklistItem{ID: itemID.String, Label: label.String})
		}
	}
	if err := rows.Err(); err != nil {
		return models.Template{}, apperrors.Unavailable("load template", err)
	}
	return tmpl, nil
}

func (s *Store) SaveTemplate(ctx context.Context, userID string, tmpl models.Template) (models.Template, error) {
	normalized, err := storage.NormalizeTemplate(tmpl)
	if err != nil {
		return models.Template{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Template{}, apperrors.Unavailable("save template", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM checklist_template_items WHERE user_id = ?", userID); err != nil {
		return models.Template{}, apperrors.Unavailable("clear template items", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM checklist_templates WHERE user_id = ?", userID); err != nil {
		return models.Template{}, apperrors.Unavailable("clear template", err)
	}

	for pos, sec := range normalized.Sections {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO checklist_templates (user_id, id, title, position) VALUES (?, ?, ?, ?)",
			userID, sec.ID, sec.Title, pos,
		); err != nil {
			return models.Template{}, apperrors.Unavailable(fmt.Sprintf("insert section %s", sec.ID), err)
		}
		for itemPos, item := range sec.Items {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO checklist_template_items (user_id, template_id, id, label, position) VALUES (?, ?, ?, ?, ?)",
				userID, sec.ID, item.ID, item.Label, itemPos,
			); err != nil {
				return models.Template{}, apperrors.Unavailable(fmt.Sprintf("insert item %s", item.ID), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Template{}, apperrors.Unavailable("save template", err)
	}
	return normalized, nil
}
