package httpserver

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/personauth/internal/common"
	"github.com/dmitrijs2005/personauth/internal/server/models"
)

type createPersonRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type updatePersonRequest struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func validateCreate(req createPersonRequest) error {
	if blank(req.Login) {
		return invalid("login must not be blank")
	}
	if blank(req.Password) {
		return invalid("password must not be blank")
	}
	return nil
}

func validateUpdate(req updatePersonRequest) error {
	if err := validateID(req.ID); err != nil {
		return err
	}
	return validateCreate(createPersonRequest{Login: req.Login, Password: req.Password})
}

func validateDelete(id int64) error {
	return validateID(id)
}

func validatePartialUpdate(patch models.PersonPatch) error {
	if err := validateID(patch.ID); err != nil {
		return err
	}
	if patch.Login != nil && blank(*patch.Login) {
		return invalid("login must not be blank")
	}
	if patch.Password != nil && blank(*patch.Password) {
		return invalid("password must not be blank")
	}
	return nil
}

func validateLogin(req loginRequest) error {
	if blank(req.Login) || blank(req.Password) {
		return invalid("login and password are required")
	}
	return nil
}

func validateID(id int64) error {
	if id < 1 {
		return invalid("id must be positive, got %d", id)
	}
	return nil
}
