// Package query is a small fluent SQL builder for the MySQL/TiDB form store
package query

import (
	"fmt"
	"sort"
	"strings"
)

// QueryType represents the type of SQL query
type QueryType string

const (
	QueryTypeSelect QueryType = "SELECT"
	QueryTypeInsert QueryType = "INSERT"
	QueryTypeUpdate QueryType = "UPDATE"
	QueryTypeDelete QueryType = "DELETE"
)

// QueryResult represents the built SQL query and parameters
type QueryResult struct {
	SQL    string
	Params []interface{}
}

// Builder is a fluent SQL query builder
type Builder struct {
	queryType    QueryType
	table        string
	fields       []string
	whereClauses []string
	params       []interface{}
	orderBy      []string
	limit        *int
	values       map[string]interface{}
	upsert       []string // columns refreshed ON DUPLICATE KEY
}

// From creates a new SELECT query builder
func From(table string) *Builder {
	return &Builder{
		queryType: QueryTypeSelect,
		table:     table,
	}
}

// Insert creates a new INSERT query builder
func Insert(table string, data map[string]interface{}) *Builder {
	return &Builder{
		queryType: QueryTypeInsert,
		table:     table,
		values:    data,
	}
}

// Update creates a new UPDATE query builder
func Update(table string) *Builder {
	return &Builder{
		queryType: QueryTypeUpdate,
		table:     table,
		values:    make(map[string]interface{}),
	}
}

// Delete creates a new DELETE query builder
func Delete(table string) *Builder {
	return &Builder{
		queryType: QueryTypeDelete,
		table:     table,
	}
}

// Select specifies which columns to select
func (b *Builder) Select(fields ...string) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	for _, field := range fields {
		b.fields = append(b.fields, quote(field))
	}
	return b
}

// Where adds a WHERE condition
func (b *Builder) Where(condition string, value ...interface{}) *Builder {
	b.whereClauses = append(b.whereClauses, condition)
	b.params = append(b.params, value...)
	return b
}

// WhereEq adds a `column` = ? condition
func (b *Builder) WhereEq(column string, value interface{}) *Builder {
	return b.Where(fmt.Sprintf("%s = ?", quote(column)), value)
}

// Set sets values for UPDATE query
func (b *Builder) Set(data map[string]interface{}) *Builder {
	if b.queryType != QueryTypeUpdate {
		return b
	}
	b.values = data
	return b
}

// OnDuplicateKeyUpdate turns an INSERT into an upsert refreshing columns
func (b *Builder) OnDuplicateKeyUpdate(columns ...string) *Builder {
	if b.queryType != QueryTypeInsert {
		return b
	}
	b.upsert = append(b.upsert, columns...)
	return b
}

// OrderBy adds an ORDER BY term
func (b *Builder) OrderBy(field string, direction string) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	b.orderBy = append(b.orderBy, fmt.Sprintf("%s %s", quote(field), direction))
	return b
}

// Limit adds LIMIT clause
func (b *Builder) Limit(n int) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	b.limit = &n
	return b
}

// Build constructs the final SQL query
func (b *Builder) Build() QueryResult {
	var sql string
	var params []interface{}

	switch b.queryType {
	case QueryTypeSelect:
		sql = b.buildSelect()
		params = b.params

	case QueryTypeInsert:
		sql, params = b.buildInsert()

	case QueryTypeUpdate:
		sql, params = b.buildUpdate()

	case QueryTypeDelete:
		sql = b.buildDelete()
		params = b.params
	}

	return QueryResult{
		SQL:    sql,
		Params: params,
	}
}

func (b *Builder) buildSelect() string {
	var parts []string

	fields := "*"
	if len(b.fields) > 0 {
		fields = strings.Join(b.fields, ", ")
	}
	parts = append(parts, fmt.Sprintf("SELECT %s FROM `%s`", fields, b.table))

	if len(b.whereClauses) > 0 {
		parts = append(parts, fmt.Sprintf("WHERE %s", strings.Join(b.whereClauses, " AND ")))
	}
	if len(b.orderBy) > 0 {
		parts = append(parts, "ORDER BY "+strings.Join(b.orderBy, ", "))
	}
	if b.limit != nil {
		parts = append(parts, fmt.Sprintf("LIMIT %d", *b.limit))
	}

	return strings.Join(parts, " ")
}

func (b *Builder) buildInsert() (string, []interface{}) {
	keys := sortedKeys(b.values)
	cols := make([]string, len(keys))
	placeholders := make([]string, len(keys))
	params := make([]interface{}, len(keys))

	for i, key := range keys {
		cols[i] = quote(key)
		placeholders[i] = "?"
		params[i] = b.values[key]
	}

	sql := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s)",
		b.table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "))

	if len(b.upsert) > 0 {
		updates := make([]string, len(b.upsert))
		for i, col := range b.upsert {
			updates[i] = fmt.Sprintf("%s = VALUES(%s)", quote(col), quote(col))
		}
		sql += " ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")
	}

	return sql, params
}

func (b *Builder) buildUpdate() (string, []interface{}) {
	keys := sortedKeys(b.values)
	setClauses := make([]string, len(keys))
	params := make([]interface{}, 0, len(keys)+len(b.params))

	for i, key := range keys {
		setClauses[i] = fmt.Sprintf("%s = ?", quote(key))
		params = append(params, b.values[key])
	}

	sql := fmt.Sprintf("UPDATE `%s` SET %s", b.table, strings.Join(setClauses, ", "))

	if len(b.whereClauses) > 0 {
		sql += fmt.Sprintf(" WHERE %s", strings.Join(b.whereClauses, " AND "))
		params = append(params, b.params...)
	}

	return sql, params
}

func (b *Builder) buildDelete() string {
	sql := fmt.Sprintf("DELETE FROM `%s`", b.table)

	if len(b.whereClauses) > 0 {
		sql += fmt.Sprintf(" WHERE %s", strings.Join(b.whereClauses, " AND "))
	}

	return sql
}

// quote backticks a bare column name
func quote(col string) string {
	if col == "*" || strings.ContainsAny(col, "`.( ") {
		return col
	}
	return "`" + col + "`"
}

// Columns are emitted in sorted order so generated SQL is stable
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
