package mysql

import (
	"context"
	"strings"

	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
	"github.com/Masterminds/squirrel"
)

func (m *Adapter) CheckTableExists(ctx context.Context, tableName string) (bool, error) {
	query, args, err := m.qb.Select("COUNT(*)").From("information_schema.tables").
		Where(squirrel.Eq{"table_name": tableName}).
		Where("table_schema = DATABASE()").
		ToSql()
	if err != nil {
		return false, err
	}

	var count int
	if err := m.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (m *Adapter) columnsQuery(tableName string) (string, []interface{}, error) {
	return m.qb.
		Select("column_name", "column_type", "is_nullable", "column_key", "extra").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_name": tableName}).
		Where("table_schema = DATABASE()").
		OrderBy("ordinal_position").
		ToSql()
}

func (m *Adapter) GetTableColumns(ctx context.Context, tableName string) ([]types.SchemaColumn, error) {
	query, args, err := m.columnsQuery(tableName)
	if err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []types.SchemaColumn
	for rows.Next() {
		var column types.SchemaColumn
		var columnType, isNullable, columnKey, extra string

		if err := rows.Scan(&column.Name, &columnType, &isNullable, &columnKey, &extra); err != nil {
			return nil, err
		}

		column.RawType = columnType
		column.Type = m.MapColumnType(columnType)
		column.Nullable = isNullable == "YES"
		column.IsPrimary = columnKey == "PRI"
		column.IsAutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")

		columns = append(columns, column)
	}

	return columns, rows.Err()
}
