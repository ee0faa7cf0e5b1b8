package mocks

import (
	"context"

	"hotelops/infras/postgres"
)

type transactorImpl struct {
}

// RunInTx implements postgres.Transactor.
func (t *transactorImpl) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func NewTransactor() postgres.Transactor {
	return &transactorImpl{}
}
