package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Carts() CartRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// Tx内のFindCartはカート行をロックする。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
