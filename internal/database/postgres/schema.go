package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

func (p *Adapter) CheckTableExists(ctx context.Context, tableName string) (bool, error) {
	// to_regclass parses its argument as an identifier, so mixed-case names
	// must arrive quoted.
	var exists bool
	err := p.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", pq.QuoteIdentifier(tableName)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (p *Adapter) columnsQuery(tableName string) (string, []interface{}, error) {
	return p.qb.
		Select(
			"c.column_name",
			"c.udt_name",
			"c.is_nullable",
			"c.column_default",
			"c.is_identity",
			"COALESCE(pk.is_primary, false)",
		).
		From("information_schema.columns c").
		LeftJoin(`(
			SELECT kcu.column_name, true AS is_primary
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON tc.constraint_name = kcu.constraint_name
				AND tc.table_schema = kcu.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_name = ?
				AND tc.table_schema = current_schema()
		) pk ON pk.column_name = c.column_name`, tableName).
		Where(squirrel.Eq{"c.table_name": tableName}).
		Where("c.table_schema = current_schema()").
		OrderBy("c.ordinal_position").
		ToSql()
}

func (p *Adapter) GetTableColumns(ctx context.Context, tableName string) ([]types.SchemaColumn, error) {
	query, args, err := p.columnsQuery(tableName)
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []types.SchemaColumn
	for rows.Next() {
		var column types.SchemaColumn
		var udtName, isNullable, isIdentity string
		var columnDefault sql.NullString

		if err := rows.Scan(&column.Name, &udtName, &isNullable, &columnDefault, &isIdentity, &column.IsPrimary); err != nil {
			return nil, err
		}

		column.RawType = udtName
		column.Type = p.MapColumnType(udtName)
		column.Nullable = isNullable == "YES"
		column.IsAutoIncrement = isIdentity == "YES" ||
			(columnDefault.Valid && strings.Contains(strings.ToLower(columnDefault.String), "nextval"))

		columns = append(columns, column)
	}

	return columns, rows.Err()
}
