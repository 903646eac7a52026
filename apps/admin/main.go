package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/studyroom/core"
	"github.com/trezcool/studyroom/core/note"
	logsvc "github.com/trezcool/studyroom/services/logger"
	"github.com/trezcool/studyroom/storage"
	"github.com/trezcool/studyroom/storage/database"
	sqlxrepos "github.com/trezcool/studyroom/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage. The sql medium is opened here so that `migrate` can reach the database.
	var (
		db      *sqlx.DB
		kv      core.KVStore
		closeKV func() error
		err     error
	)
	if conf.Storage.Medium == core.MediumSQL {
		db, err = database.Open(context.Background(), conf.Storage.SQL)
		if err != nil {
			logger.Fatal("setting up storage", err)
		}
		kv, closeKV = sqlxrepos.NewKVRepository(db, conf.Storage.Quota), db.Close
	} else {
		kv, closeKV, err = storage.Open(context.Background(), conf.Storage)
		if err != nil {
			logger.Fatal("setting up storage", err)
		}
	}

	validate, translator := core.NewValidator()
	note.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		lib: note.NewLibrary(note.LibraryDeps{
			KV:         kv,
			Conf:       conf.Notes,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
		}),
		db:  db,
		out: os.Stdout,
	}
	err = cli.run(os.Args)
	if cerr := closeKV(); cerr != nil {
		logger.Error("closing storage", cerr)
	}
	if err != nil {
		if err != errHelp {
			var vErr *core.ValidationError
			if errors.As(err, &vErr) {
				logger.Info("error: " + vErr.Message())
			} else {
				logger.Error("error", err)
			}
		}
		os.Exit(1)
	}
}
