package mongo

import (
	"context"
	"fmt"
	apperrors "slotter/pkg/errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionFunc runs inside a transaction. Repository calls made with the
// given ctx join the session it carries.
type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

// ExecuteTransaction commits fn's writes atomically. WithTransaction retries fn on
// transient errors such as write conflicts, so fn must be safe to re-run.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// InTransaction reports whether ctx carries an active session.
func InTransaction(ctx context.Context) bool {
	return mongo.SessionFromContext(ctx) != nil
}

// WithTimeout bounds ctx by timeout unless it already carries a session, whose
// context must reach the driver unwrapped. An earlier caller deadline is kept.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if InTransaction(ctx) {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}
