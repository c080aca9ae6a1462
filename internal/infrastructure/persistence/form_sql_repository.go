package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/HARIPRASAD-2003/form-builder/internal/domain/ports"
	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
	"github.com/HARIPRASAD-2003/form-builder/pkg/query"
)

var formColumns = []string{
	constants.ColumnID,
	constants.ColumnName,
	constants.ColumnDescription,
	constants.ColumnOwnerID,
	constants.ColumnFields,
	constants.ColumnCreatedAt,
	constants.ColumnUpdatedAt,
}

// SQLFormRepository stores forms in the form_definitions table.
// Field lists are kept as a JSON column so one row is one form.
type SQLFormRepository struct {
	db *sql.DB
}

var _ ports.FormRepository = (*SQLFormRepository)(nil)

func NewSQLFormRepository(db *sql.DB) *SQLFormRepository {
	return &SQLFormRepository{db: db}
}

func (r *SQLFormRepository) List(ctx context.Context, ownerID string) ([]models.Form, error) {
	q := query.From(constants.TableForms).
		Select(formColumns...).
		WhereEq(constants.ColumnOwnerID, ownerID).
		OrderBy(constants.ColumnCreatedAt, constants.SortDESC).
		Build()
	return r.queryForms(ctx, q)
}

func (r *SQLFormRepository) ListAll(ctx context.Context) ([]models.Form, error) {
	q := query.From(constants.TableForms).
		Select(formColumns...).
		OrderBy(constants.ColumnCreatedAt, constants.SortDESC).
		Build()
	return r.queryForms(ctx, q)
}

func (r *SQLFormRepository) Get(ctx context.Context, id string) (*models.Form, error) {
	q := query.From(constants.TableForms).
		Select(formColumns...).
		WhereEq(constants.ColumnID, id).
		Limit(1).
		Build()

	forms, err := r.queryForms(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return nil, errors.NewNotFoundError("Form", id)
	}
	return &forms[0], nil
}

// Save upserts the form row
func (r *SQLFormRepository) Save(ctx context.Context, form *models.Form) error {
	fields := form.Fields
	if fields == nil {
		fields = []models.Field{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return errors.NewInternalError("failed to encode form fields", err)
	}

	q := query.Insert(constants.TableForms, map[string]interface{}{
		constants.ColumnID:          form.ID,
		constants.ColumnName:        form.Name,
		constants.ColumnDescription: form.Description,
		constants.ColumnOwnerID:     form.OwnerID,
		constants.ColumnFields:      string(fieldsJSON),
		constants.ColumnCreatedAt:   form.CreatedAt.UTC(),
		constants.ColumnUpdatedAt:   form.UpdatedAt.UTC(),
	}).OnDuplicateKeyUpdate(
		constants.ColumnName,
		constants.ColumnDescription,
		constants.ColumnFields,
		constants.ColumnUpdatedAt,
	).Build()

	if _, err := r.db.ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return errors.NewInternalError("failed to save form", err)
	}
	return nil
}

func (r *SQLFormRepository) Delete(ctx context.Context, id string) error {
	q := query.Delete(constants.TableForms).WhereEq(constants.ColumnID, id).Build()

	res, err := r.db.ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return errors.NewInternalError("failed to delete form", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternalError("failed to delete form", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError("Form", id)
	}
	return nil
}

func (r *SQLFormRepository) queryForms(ctx context.Context, q query.QueryResult) ([]models.Form, error) {
	rows, err := r.db.QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, errors.NewInternalError("failed to query forms", err)
	}
	defer func() { _ = rows.Close() }()

	forms := make([]models.Form, 0)
	for rows.Next() {
		var (
			form        models.Form
			description sql.NullString
			fieldsJSON  []byte
		)
		if err := rows.Scan(
			&form.ID,
			&form.Name,
			&description,
			&form.OwnerID,
			&fieldsJSON,
			&form.CreatedAt,
			&form.UpdatedAt,
		); err != nil {
			return nil, errors.NewInternalError("failed to scan form", err)
		}
		form.Description = description.String
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &form.Fields); err != nil {
				return nil, errors.NewInternalError(fmt.Sprintf("corrupt fields for form %s", form.ID), err)
			}
		}
		if form.Fields == nil {
			form.Fields = []models.Field{}
		}
		forms = append(forms, form)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("failed to read forms", err)
	}
	return forms, nil
}
