package tr

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/moomingle/go-backend/pkg/e"
)

// TxFromCtx достаёт pgx.Tx, положенный в контекст транзакционной обёрткой.
// Репозитории зовут его вместо прямого обращения к пулу, когда операция
// обязана выполняться внутри открытой транзакции.
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value("tx").(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}
