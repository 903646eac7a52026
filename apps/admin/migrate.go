package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/studyroom/storage/database"
)

var (
	gooseRunFunc = database.RunMigrations // mockable

	errNoSQLStorage = errors.New("migrate needs the sql storage medium")
)

func (cli *commandLine) migrate(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(cli.out, "Usage: migrate COMMAND [ARGS...]")
		fmt.Fprintln(cli.out, "Commands: up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version")
		return errHelp
	}
	if cli.db == nil {
		return errNoSQLStorage
	}
	return gooseRunFunc(context.Background(), cli.db, args[0], args[1:]...)
}
