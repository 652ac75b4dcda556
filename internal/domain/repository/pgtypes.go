package repository

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgtype"
)

// typeMap adapts pgx array types (TEXT[]) to database/sql scanning.
var typeMap = pgtype.NewMap()

func textArray(dst *[]string) sql.Scanner {
	return typeMap.SQLScanner(dst)
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
