package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/factorygen/internal/database/common"
	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
)

func (s *Adapter) CheckTableExists(ctx context.Context, tableName string) (bool, error) {
	query, args, err := s.qb.Select("COUNT(*)").From("sqlite_master").
		Where("type = 'table'").Where("name = ?", tableName).ToSql()
	if err != nil {
		return false, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Adapter) GetTableColumns(ctx context.Context, tableName string) ([]types.SchemaColumn, error) {
	// PRAGMA doesn't take bind parameters
	if err := common.ValidateTableName(tableName); err != nil {
		return nil, err
	}

	autoIncrement, err := s.usesAutoincrementKeyword(ctx, tableName)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(\"%s\")", tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []types.SchemaColumn
	pkCount := 0
	for rows.Next() {
		var cid int
		var column types.SchemaColumn
		var dataType string
		var notNull int
		var defaultValue sql.NullString
		var pk int

		if err := rows.Scan(&cid, &column.Name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", tableName, err)
		}

		column.RawType = dataType
		column.Type = s.MapColumnType(dataType)
		column.Nullable = notNull == 0
		column.IsPrimary = pk > 0
		if column.IsPrimary {
			pkCount++
		}
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// A single INTEGER PRIMARY KEY column aliases the rowid and is assigned
	// automatically, with or without the AUTOINCREMENT keyword.
	if pkCount == 1 {
		for i := range columns {
			if columns[i].IsPrimary && (strings.EqualFold(common.BaseType(columns[i].RawType), "integer") || autoIncrement) {
				columns[i].IsAutoIncrement = true
			}
		}
	}

	return columns, nil
}

func (s *Adapter) usesAutoincrementKeyword(ctx context.Context, tableName string) (bool, error) {
	query, args, err := s.qb.Select("sql").From("sqlite_master").
		Where("type = 'table'").Where("name = ?", tableName).ToSql()
	if err != nil {
		return false, err
	}

	var ddl sql.NullString
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&ddl)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToUpper(ddl.String), "AUTOINCREMENT"), nil
}
