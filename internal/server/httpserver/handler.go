package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/personauth/internal/common"
	"github.com/dmitrijs2005/personauth/internal/server/models"
	"github.com/gorilla/mux"
)

func decode(r *http.Request, v any, strict bool) error {
	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(v)
}

// isUnknownField reports whether a decode error came from
// DisallowUnknownFields. encoding/json has no typed error for it.
func isUnknownField(err error) bool {
	return strings.HasPrefix(err.Error(), "json: unknown field ")
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalid("id %q is not an integer", raw)
	}
	return id, nil
}

func (s *HTTPServer) findAll(w http.ResponseWriter, r *http.Request) {
	persons, err := s.persons.FindAll(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, persons)
}

func (s *HTTPServer) findByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	p, err := s.persons.FindByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *HTTPServer) create(w http.ResponseWriter, r *http.Request) {
	var req createPersonRequest
	if err := decode(r, &req, false); err != nil {
		s.writeServiceError(w, r, invalid("malformed body: %v", err))
		return
	}
	if err := validateCreate(req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	created, err := s.persons.Create(r.Context(), &models.Person{Login: req.Login, Password: hash})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Person created", "id", created.ID, "login", created.Login)
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) update(w http.ResponseWriter, r *http.Request) {
	var req updatePersonRequest
	if err := decode(r, &req, false); err != nil {
		s.writeServiceError(w, r, invalid("malformed body: %v", err))
		return
	}
	if err := validateUpdate(req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	ok, err := s.persons.Update(r.Context(), &models.Person{ID: req.ID, Login: req.Login, Password: hash})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !ok {
		writeFailed(w, msgUpdateFailed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := validateDelete(id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	ok, err := s.persons.Delete(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !ok {
		writeFailed(w, msgDeleteFailed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) partialUpdate(w http.ResponseWriter, r *http.Request) {
	var patch models.PersonPatch
	if err := decode(r, &patch, true); err != nil {
		if isUnknownField(err) {
			s.logger.Warn(r.Context(), "patch rejected", "error", fmt.Errorf("%w: %v", common.ErrMergeIncompatible, err))
			writeFailed(w, msgPatchFailed)
			return
		}
		s.writeServiceError(w, r, invalid("malformed body: %v", err))
		return
	}
	if err := validatePartialUpdate(patch); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		patch.Password = &hash
	}

	ok, err := s.persons.PartialUpdate(r.Context(), patch)
	if errors.Is(err, common.ErrMergeIncompatible) {
		writeFailed(w, msgPatchFailed)
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !ok {
		writeFailed(w, msgPatchFailed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req, false); err != nil {
		s.writeServiceError(w, r, invalid("malformed body: %v", err))
		return
	}
	if err := validateLogin(req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	cred, err := s.credentials.LoadCredentials(r.Context(), req.Login)
	if errors.Is(err, common.ErrUnknownIdentity) {
		writeError(w, http.StatusUnauthorized, typeUnauthorized, msgUnauthorized)
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !s.hasher.Compare(cred.Secret, req.Password) {
		s.logger.Warn(r.Context(), "wrong password", "login", req.Login)
		writeError(w, http.StatusUnauthorized, typeUnauthorized, msgUnauthorized)
		return
	}

	token, err := s.tokens.Issue(cred.Identifier)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
