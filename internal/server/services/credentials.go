package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/personauth/internal/common"
	"github.com/dmitrijs2005/personauth/internal/server/models"
)

// Credential is what an authentication layer needs to verify a login.
type Credential struct {
	Identifier  string
	Secret      string
	Authorities []string
}

// PersonFinder is the lookup CredentialService depends on. PersonService
// implements it.
type PersonFinder interface {
	FindByLogin(ctx context.Context, login string) (*models.Person, error)
}

type CredentialService struct {
	persons PersonFinder
}

func NewCredentialService(persons PersonFinder) *CredentialService {
	return &CredentialService{persons: persons}
}

// LoadCredentials projects the person with login into a Credential.
// Unknown logins yield common.ErrUnknownIdentity.
func (s *CredentialService) LoadCredentials(ctx context.Context, login string) (*Credential, error) {
	p, err := s.persons.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %s", common.ErrUnknownIdentity, login)
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	return &Credential{
		Identifier:  p.Login,
		Secret:      p.Password,
		Authorities: []string{},
	}, nil
}
