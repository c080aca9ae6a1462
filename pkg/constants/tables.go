package constants

// Table and column names for the SQL form store
const (
	TableForms = "form_definitions"

	ColumnID          = "id"
	ColumnName        = "name"
	ColumnDescription = "description"
	ColumnOwnerID     = "owner_id"
	ColumnFields      = "fields"
	ColumnCreatedAt   = "created_at"
	ColumnUpdatedAt   = "updated_at"

	SortASC  = "ASC"
	SortDESC = "DESC"
)
