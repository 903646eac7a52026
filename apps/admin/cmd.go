package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/studyroom/core"
	"github.com/trezcool/studyroom/core/note"
)

var (
	confirmFunc = confirmOnTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	lib *note.Library
	db  *sqlx.DB // nil unless the storage medium is sql
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  list -email EMAIL [-name NAME] [-subject SUBJECT] - list the user's notes")
	fmt.Fprintln(cli.out, "  upload -email EMAIL -title TITLE -file PATH [-subject SUBJECT] - upload a file as a new note")
	fmt.Fprintln(cli.out, "  view -email EMAIL -id ID [-out PATH] - write the viewer page of a note")
	fmt.Fprintln(cli.out, "  delete -email EMAIL -id ID [-yes] - delete a note, after confirmation")
	fmt.Fprintln(cli.out, "  usage -email EMAIL - print the storage used by the user's notes")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...] - run a goose command (up, down, status...) on the sql storage")
	fmt.Fprintln(cli.out, "Without -email, the guest library is used.")
}

// sessionFlags registers the identity flags on `fs`.
func sessionFlags(fs *flag.FlagSet) func() core.Session {
	email := fs.String("email", "", "The user's email. Selects the library.")
	name := fs.String("name", "", "The user's display name.")
	return func() core.Session {
		return core.NewSession(*name, *email)
	}
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listSess := sessionFlags(listCmd)
	listSubject := listCmd.String("subject", note.FilterAll, "Only list notes of this subject.")

	uploadCmd := flag.NewFlagSet("upload", flag.ExitOnError)
	uploadSess := sessionFlags(uploadCmd)
	uploadTitle := uploadCmd.String("title", "", "The note's title.")
	uploadSubject := uploadCmd.String("subject", "", "The note's subject.")
	uploadFile := uploadCmd.String("file", "", "Path of the file to upload.")

	viewCmd := flag.NewFlagSet("view", flag.ExitOnError)
	viewSess := sessionFlags(viewCmd)
	viewID := viewCmd.Int64("id", 0, "The note's id.")
	viewOut := viewCmd.String("out", "", "Write the page to this file instead of the standard output.")

	deleteCmd := flag.NewFlagSet("delete", flag.ExitOnError)
	deleteSess := sessionFlags(deleteCmd)
	deleteID := deleteCmd.Int64("id", 0, "The note's id.")
	deleteYes := deleteCmd.Bool("yes", false, "Do not ask for confirmation.")

	usageCmd := flag.NewFlagSet("usage", flag.ExitOnError)
	usageSess := sessionFlags(usageCmd)

	switch args[1] {
	case "list":
		if err := listCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.list(listSess(), *listSubject)

	case "upload":
		if err := uploadCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.upload(uploadSess(), *uploadTitle, *uploadSubject, *uploadFile)

	case "view":
		if err := viewCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *viewID == 0 {
			viewCmd.Usage()
			return errHelp
		}
		return cli.view(viewSess(), *viewID, *viewOut)

	case "delete":
		if err := deleteCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deleteID == 0 {
			deleteCmd.Usage()
			return errHelp
		}
		confirm := confirmFunc
		if *deleteYes {
			confirm = func(string) bool { return true }
		}
		return cli.delete(deleteSess(), *deleteID, confirm)

	case "usage":
		if err := usageCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.usage(usageSess())

	case "migrate":
		return cli.migrate(args[2:])

	default:
		cli.printUsage()
		return errHelp
	}
}

// confirmOnTerminal asks `prompt` on the terminal. It never confirms when stdin is not a terminal.
func confirmOnTerminal(prompt string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	fmt.Printf("%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
