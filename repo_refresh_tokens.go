package auth

import (
	"context"
	"database/sql"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RefreshTokens persists the single active refresh credential per user.
type RefreshTokens interface {
	repository.Repository[*RefreshToken]

	// Rotate atomically replaces the user's refresh token: any existing row
	// is deleted and a fresh opaque token inserted inside one transaction,
	// so concurrent calls for the same user still converge on a single row.
	Rotate(ctx context.Context, userID string, ttl time.Duration) (*RefreshToken, error)

	// GetByToken returns the row holding the opaque token value, or a
	// record-not-found error.
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)

	// DeleteByUser removes the user's refresh token if one exists. Deleting
	// an absent row is not an error.
	DeleteByUser(ctx context.Context, userID string) error

	// SweepExpired deletes every row whose expiry is before now and returns
	// the number of rows removed. Intended for the background sweeper, not
	// the request path.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

type refreshTokens struct {
	repository.Repository[*RefreshToken]
	db       *bun.DB
	timeFunc func() time.Time
}

var _ RefreshTokens = (*refreshTokens)(nil)

type RefreshTokensOption func(*refreshTokens)

// WithRefreshTokensTimeFunc overrides the clock used for expiry stamps.
func WithRefreshTokensTimeFunc(fn func() time.Time) RefreshTokensOption {
	return func(r *refreshTokens) {
		if fn != nil {
			r.timeFunc = fn
		}
	}
}

func NewRefreshTokensRepository(db *bun.DB, opts ...RefreshTokensOption) RefreshTokens {
	repo := repository.NewRepository[*RefreshToken](db, repository.ModelHandlers[*RefreshToken]{
		NewRecord: func() *RefreshToken { return &RefreshToken{} },
		GetID: func(t *RefreshToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *RefreshToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	tokens := &refreshTokens{
		Repository: repo,
		db:         db,
		timeFunc:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(tokens)
		}
	}

	return tokens
}

func (r *refreshTokens) Rotate(ctx context.Context, userID string, ttl time.Duration) (*RefreshToken, error) {
	now := r.timeFunc()
	record := &RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(ttl),
		CreatedAt: &now,
	}

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*RefreshToken)(nil)).
			Where("?TableAlias.user_id = ?", userID).
			Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewInsert().Model(record).Exec(ctx)
		return err
	})

	if err != nil {
		return nil, err
	}

	return record, nil
}

func (r *refreshTokens) GetByToken(ctx context.Context, token string) (*RefreshToken, error) {
	record := &RefreshToken{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (r *refreshTokens) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)
	return err
}

func (r *refreshTokens) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("?TableAlias.expires_at < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	count, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report affected rows; the sweep still ran.
		return 0, nil
	}

	return count, nil
}
