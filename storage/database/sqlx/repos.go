package sqlxrepos

import (
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/techproject/core"
)

// ext exposes the sqlx side of an executor. Both *sqlx.DB and *sqlx.Tx
// satisfy it; anything else is a wiring error.
func ext(exec core.DBExecutor) sqlx.ExtContext {
	e, ok := exec.(sqlx.ExtContext)
	if !ok {
		panic("sqlxrepos: executor is not sqlx-aware")
	}
	return e
}
