package main

import (
	"github.com/taskit/backend/core"
)

func (cli *commandLine) resetPassword(idNumber, pwd string) error {
	usr, err := cli.usrRepo.GetUserByIDNumber(core.CleanString(idNumber))
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	return cli.usrRepo.UpdateUser(usr)
}
