package main

import (
	"database/sql"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/taskit/backend/core"
	"github.com/taskit/backend/core/user"
	"github.com/taskit/backend/storage/database/dummy"
)

const testPassword = "flotilla-navigator-52"

func setup(t *testing.T) (*commandLine, user.Repository) {
	t.Helper()

	db := dummydb.Open()
	usrRepo := dummydb.NewUserRepository(db)

	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	return &commandLine{
		usrRepo: usrRepo,
		usrSvc:  user.NewService(usrRepo, validate, 30*24*time.Hour),
	}, usrRepo
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create requires a NAME argument")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create requires a NAME argument"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "classroom", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, usrRepo := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(testPassword), nil }

	args := []string{"admin", "adduser", "-first", "Awa", "-last", "Traore", "-idnumber", "T-001"}
	if err := cli.run(args); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	usr, err := usrRepo.GetUserByIDNumber("T-001")
	if err != nil {
		t.Fatalf("GetUserByIDNumber() failed: %v", err)
	}
	if usr.Role != user.RoleTeacher {
		t.Errorf("Role = %q; want %q", usr.Role, user.RoleTeacher)
	}
	if !usr.CheckPassword(testPassword) {
		t.Error("password was not set")
	}

	// running again updates the existing user's password
	newPwd := testPassword + "-rotated"
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(newPwd), nil }
	if err := cli.run(args); err != nil {
		t.Fatalf("cli.run() failed on rerun: %v", err)
	}
	usr, err = usrRepo.GetUserByIDNumber("T-001")
	if err != nil {
		t.Fatalf("GetUserByIDNumber() failed: %v", err)
	}
	if !usr.CheckPassword(newPwd) {
		t.Error("rerun did not rotate the password")
	}

	// missing flags print usage
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(testPassword), nil }
	if err := cli.run([]string{"admin", "adduser", "-first", "Awa"}); err != errHelp {
		t.Errorf("cli.run() error = %v, want %v", err, errHelp)
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, usrRepo := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(testPassword), nil }
	if err := cli.run([]string{"admin", "adduser", "-first", "Sekou", "-last", "Keita", "-idnumber", "S-001", "-role", "student"}); err != nil {
		t.Fatalf("seeding user failed: %v", err)
	}

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "idnumber but no password", args: []string{"resetpassword", "-idnumber", "S-001"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-idnumber", "lol"}, extra: extra{pwd: "whatever-1"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-idnumber", "S-001"}, extra: extra{pwd: "fresh-password-19"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				usr, err := usrRepo.GetUserByIDNumber("S-001")
				if err != nil {
					t.Fatalf("GetUserByIDNumber() failed: %v", err)
				}
				if !usr.CheckPassword(tt.extra.(extra).pwd) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
