package license

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"

	"github.com/wpbr/reviewproxy/pkg/pg"
)

// querier is the subset of *pgxpool.Pool the provider needs.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresProvider reads statuses from the licenses table. Missing and
// expired rows are inactive.
type PostgresProvider struct {
	db    querier
	clock clockwork.Clock
}

func NewPostgresProvider(db querier, clock clockwork.Clock) *PostgresProvider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PostgresProvider{db: db, clock: clock}
}

const selectLicense = `SELECT status, expires_at FROM licenses WHERE license_key = $1`

func (p *PostgresProvider) LicenseStatus(ctx context.Context, token string) (Status, error) {
	var (
		status    string
		expiresAt *time.Time
	)
	err := p.db.QueryRow(ctx, selectLicense, token).Scan(&status, &expiresAt)
	if pg.IsNotFoundError(err) {
		return StatusInactive, nil
	}
	if err != nil {
		return StatusUnknown, errors.Join(ErrProvider, err)
	}
	if expiresAt != nil && !p.clock.Now().Before(*expiresAt) {
		return StatusInactive, nil
	}
	return ParseStatus(status), nil
}
