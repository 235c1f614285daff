package main

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/shule/core/user"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	return &commandLine{
		usrSvc: user.NewService(usrRepo),
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_migratedb(t *testing.T) {
	cli := setup(t)

	var called bool
	migrateFunc = func(db *sqlx.DB) error {
		called = true
		return nil
	}

	if err := cli.run([]string{"admin", "migratedb"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !called {
		t.Error("migration not run")
	}
}

func Test_commandLine_createAdmin(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "missing flags", args: []string{"createadmin"}, wantErr: errHelp},
		{name: "name but no email", args: []string{"createadmin", "-name", "Boss"}, wantErr: errHelp},
		{name: "empty password", args: []string{"createadmin", "-name", "Boss", "-email", "boss@test.cd"}, wantErr: errHelp},
		{name: "ok", args: []string{"createadmin", "-name", "Boss", "-email", "boss@test.cd"}, pwd: "s3cr3t-pwd"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			usr, err := usrRepo.GetUserByEmail(context.Background(), "boss@test.cd")
			if err != nil {
				t.Fatalf("GetUserByEmail() failed: %v", err)
			}
			if usr.Role != user.RoleAdminOwner {
				t.Errorf("Role = %s, want %s", usr.Role, user.RoleAdminOwner)
			}
			if err := usr.CheckPassword("s3cr3t-pwd"); err != nil {
				t.Errorf("CheckPassword() failed: %v", err)
			}
		})
	}
}
