// Package storage opens the configured key-value medium.
package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/studyroom/core"
	"github.com/trezcool/studyroom/storage/database"
	inmemdb "github.com/trezcool/studyroom/storage/database/inmem"
	sqlxrepos "github.com/trezcool/studyroom/storage/database/sqlx"
	s3store "github.com/trezcool/studyroom/storage/objectstore/s3"
)

// Open returns the medium selected by conf.Medium and a func releasing it.
func Open(ctx context.Context, conf core.StorageConfig) (core.KVStore, func() error, error) {
	noop := func() error { return nil }

	switch conf.Medium {
	case core.MediumInMem, "":
		db, err := inmemdb.Open(conf.Quota)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening in-memory storage")
		}
		return db, noop, nil

	case core.MediumSQL:
		db, err := database.Open(ctx, conf.SQL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening SQL storage")
		}
		return sqlxrepos.NewKVRepository(db, conf.Quota), db.Close, nil

	case core.MediumS3:
		client, err := s3store.New(ctx, conf.S3, conf.Quota)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening S3 storage")
		}
		return client, noop, nil

	default:
		return nil, nil, errors.Errorf("unknown storage medium %q", conf.Medium)
	}
}
