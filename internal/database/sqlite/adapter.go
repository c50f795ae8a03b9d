package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/factorygen/internal/database/common"
	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

type Adapter struct {
	db   *sql.DB
	qb   squirrel.StatementBuilderType
	path string
}

// Canonical storage types keyed by declared type. SQLite accepts any type
// name, so the lookup falls back to affinity rules in MapColumnType.
var typeMap = map[string]string{
	"varchar": "string", "char": "string", "character": "string", "nvarchar": "string", "nchar": "string",
	"varying character": "string", "native character": "string", "clob": "text", "text": "text",
	"int": "integer", "integer": "integer", "mediumint": "integer", "int2": "smallint", "int8": "bigint",
	"bigint": "bigint", "smallint": "smallint", "tinyint": "smallint", "unsigned big int": "bigint",
	"real": "float", "double": "float", "double precision": "float", "float": "float",
	"numeric": "decimal", "decimal": "decimal",
	"boolean": "boolean", "bool": "boolean",
	"date": "date", "datetime": "datetime", "timestamp": "datetime", "time": "time",
	"blob": "blob", "json": "json", "uuid": "guid",
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (s *Adapter) Connect(ctx context.Context, url string) error {
	dbPath := strings.TrimPrefix(url, "sqlite://")
	dbPath = strings.TrimPrefix(dbPath, "sqlite3://")

	s.path = dbPath
	if idx := strings.Index(s.path, "?"); idx > 0 {
		s.path = s.path[:idx]
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// A single connection keeps ":memory:" databases alive across queries.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	s.db = db
	return nil
}

func (s *Adapter) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Adapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the underlying handle, mainly so tests can prepare fixtures.
func (s *Adapter) DB() *sql.DB {
	return s.db
}

func (s *Adapter) MapColumnType(dbType string) string {
	base := common.BaseType(dbType)
	if mapped, ok := typeMap[base]; ok {
		return mapped
	}

	// Affinity rules from the SQLite type docs, in their precedence order.
	upper := strings.ToUpper(base)
	switch {
	case strings.Contains(upper, "INT"):
		return "integer"
	case strings.Contains(upper, "CHAR"), strings.Contains(upper, "CLOB"):
		return "string"
	case strings.Contains(upper, "TEXT"):
		return "text"
	case upper == "" || strings.Contains(upper, "BLOB"):
		return "blob"
	case strings.Contains(upper, "REAL"), strings.Contains(upper, "FLOA"), strings.Contains(upper, "DOUB"):
		return "float"
	}
	return base
}
