package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/factorygen/internal/database/common"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Adapter struct {
	pool *pgxpool.Pool
	qb   squirrel.StatementBuilderType
}

// Canonical storage types keyed by udt_name / data_type.
var typeMap = map[string]string{
	"character varying": "string", "varchar": "string", "character": "string", "char": "string",
	"bpchar": "string", "citext": "string", "name": "string", "text": "text",
	"integer": "integer", "int": "integer", "int4": "integer", "serial": "integer", "serial4": "integer",
	"bigint": "bigint", "int8": "bigint", "bigserial": "bigint", "serial8": "bigint",
	"smallint": "smallint", "int2": "smallint", "smallserial": "smallint", "serial2": "smallint",
	"boolean": "boolean", "bool": "boolean",
	"timestamp with time zone": "datetimetz", "timestamptz": "datetimetz",
	"timestamp without time zone": "datetime", "timestamp": "datetime",
	"date": "date", "time": "time", "time without time zone": "time", "timetz": "time",
	"time with time zone": "time",
	"numeric": "decimal", "decimal": "decimal", "money": "decimal",
	"real": "float", "float4": "float", "double precision": "float", "float8": "float",
	"uuid": "guid", "json": "json", "jsonb": "json", "bytea": "blob",
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (p *Adapter) Connect(ctx context.Context, url string) error {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	// Introspection is a handful of sequential queries.
	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	p.pool = pool
	return nil
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Adapter) MapColumnType(dbType string) string {
	base := common.BaseType(dbType)
	// Array columns come back as "_int4", "_text", ...
	if len(base) > 1 && base[0] == '_' {
		return "simple_array"
	}
	return common.MapType(typeMap, base)
}
