package main

import (
	"github.com/pkg/errors"

	"github.com/taskit/backend/core"
	"github.com/taskit/backend/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(first, last, idNumber, role, pwd string) error {
	idNumber = core.CleanString(idNumber)

	usr, err := cli.usrRepo.GetUserByIDNumber(idNumber)
	if err == nil {
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		return cli.usrRepo.UpdateUser(usr)
	}
	if errors.Cause(err) != user.ErrNotFound {
		return err
	}

	_, token, _, err := cli.usrSvc.Signup(user.Signup{
		FirstName:       first,
		LastName:        last,
		IDNumber:        idNumber,
		Password:        pwd,
		PasswordConfirm: pwd,
		Role:            role,
	})
	if err != nil {
		return err
	}
	// the bootstrap session has no caller to hand it to
	return cli.usrSvc.Logout(token)
}
