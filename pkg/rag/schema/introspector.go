package schema

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Column is one column of a structured-store table.
type Column struct {
	Name string
	Type string
}

// Table groups the columns of one table, in ordinal position order.
type Table struct {
	Name    string
	Columns []Column
}

// Schema is the structured store's catalog at one point in time.
type Schema struct {
	Tables []Table
}

// HasTable reports whether a table name exists in the schema (case-insensitive).
func (s *Schema) HasTable(name string) bool {
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

// Render serializes the schema for prompt injection:
//
//	Table: pharmacies
//	Columns: Pharmacie_Name (text), address (text), city (text)
func (s *Schema) Render() string {
	parts := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = fmt.Sprintf("%s (%s)", c.Name, c.Type)
		}
		parts = append(parts, fmt.Sprintf("Table: %s\nColumns: %s", t.Name, strings.Join(cols, ", ")))
	}
	return strings.Join(parts, "\n\n")
}

// Introspector reads the structured store's catalog on demand. It is stateless
// and never caches: every Describe call re-reads, tolerating schema drift
// between calls.
type Introspector struct {
	db *gorm.DB
}

func NewIntrospector(db *gorm.DB) *Introspector {
	return &Introspector{db: db}
}

// Describe reads table and column definitions from information_schema,
// grouped by table, ordered by table name then ordinal position.
func (i *Introspector) Describe(ctx context.Context) (*Schema, error) {
	type row struct {
		TableName  string
		ColumnName string
		DataType   string
	}
	var rows []row

	err := i.db.WithContext(ctx).
		Table("information_schema.columns").
		Select("table_name, column_name, data_type").
		Where("table_schema = ?", "public").
		Order("table_name, ordinal_position").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("introspect schema: %w", err)
	}

	schema := &Schema{}
	var current *Table
	for _, r := range rows {
		if current == nil || current.Name != r.TableName {
			schema.Tables = append(schema.Tables, Table{Name: r.TableName})
			current = &schema.Tables[len(schema.Tables)-1]
		}
		current.Columns = append(current.Columns, Column{Name: r.ColumnName, Type: r.DataType})
	}

	return schema, nil
}
