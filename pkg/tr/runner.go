package tr

import (
	"context"

	"github.com/DRSN-tech/furniture-search/pkg/e"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// Runner выполняет функцию в транзакции PostgreSQL.
// Транзакция кладётся в контекст и достаётся репозиториями через TxFromCtx.
type Runner struct {
	db transaction.Transactional
}

func NewRunner(db transaction.Transactional) *Runner {
	return &Runner{db: db}
}

// WithinTx коммитит транзакцию, если fn завершилась без ошибки, иначе откатывает.
func (r *Runner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	const op = "Runner.WithinTx"

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, r.db)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(WithTx(ctx, tx.Transaction())); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
