package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/studyroom/core"
)

type kvRepository struct {
	db    *sqlx.DB
	quota int64
}

var _ core.KVStore = (*kvRepository)(nil) // interface compliance check

// NewKVRepository returns a KVStore persisted in the kv_entries table.
// The quota bounds len(name) + len(value) summed over the whole table.
func NewKVRepository(db *sqlx.DB, quota int64) *kvRepository {
	return &kvRepository{db: db, quota: quota}
}

// trapNoRowsErr maps "no rows" err to core.ErrKeyNotFound
func (repo kvRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return core.ErrKeyNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo kvRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	q := repo.db.Rebind(`SELECT value FROM kv_entries WHERE name = ?`)
	if err := repo.db.GetContext(ctx, &value, q, key); err != nil {
		return nil, repo.trapNoRowsErr(err, "selecting kv entry")
	}
	return value, nil
}

func (repo kvRepository) Set(ctx context.Context, key string, value []byte) (err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if repo.quota > 0 {
		var used int64
		q := tx.Rebind(`SELECT COALESCE(SUM(LENGTH(name) + LENGTH(value)), 0) FROM kv_entries WHERE name <> ?`)
		if err = tx.GetContext(ctx, &used, q, key); err != nil {
			return errors.Wrap(err, "computing storage usage")
		}
		if err = core.CheckQuota(key, used, int64(len(key)+len(value)), repo.quota); err != nil {
			return err
		}
	}

	q := tx.Rebind(`INSERT INTO kv_entries (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if _, err = tx.ExecContext(ctx, q, key, value, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "upserting kv entry")
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing kv entry")
	}
	return nil
}

func (repo kvRepository) Delete(ctx context.Context, key string) error {
	q := repo.db.Rebind(`DELETE FROM kv_entries WHERE name = ?`)
	if _, err := repo.db.ExecContext(ctx, q, key); err != nil {
		return errors.Wrap(err, "deleting kv entry")
	}
	return nil
}
