// Package identity validates the data identifying the person taking a test.
package identity

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/digita/internal/model"
)

// ErrMissing is returned when no identity was provided at all.
var ErrMissing = errors.New("dados do participante ausentes")

const (
	minName      = 2
	maxName      = 100
	maxEmail     = 255
	minMatricula = 4
	maxMatricula = 10
	cpfDigits    = 11
)

// Normalize trims every field and strips CPF formatting.
func Normalize(u model.UserData) model.UserData {
	return model.UserData{
		Name:       strings.Join(strings.Fields(u.Name), " "),
		Email:      strings.TrimSpace(u.Email),
		Matricula:  strings.TrimSpace(u.Matricula),
		ExternalID: digitsOnly(u.ExternalID),
	}
}

// Validate checks a normalized identity and reports every invalid field.
func Validate(u model.UserData) error {
	if u == (model.UserData{}) {
		return ErrMissing
	}
	var errs []error
	if n := utf8.RuneCountInString(u.Name); n < minName {
		errs = append(errs, fmt.Errorf("nome deve ter pelo menos %d caracteres", minName))
	} else if n > maxName {
		errs = append(errs, errors.New("nome muito longo"))
	}
	if err := validateEmail(u.Email); err != nil {
		errs = append(errs, err)
	}
	switch {
	case u.Matricula != "":
		if !allDigits(u.Matricula) || len(u.Matricula) < minMatricula || len(u.Matricula) > maxMatricula {
			errs = append(errs, fmt.Errorf("matrícula deve conter apenas números (%d-%d dígitos)", minMatricula, maxMatricula))
		}
	case u.ExternalID != "":
		if !allDigits(u.ExternalID) || len(u.ExternalID) != cpfDigits {
			errs = append(errs, fmt.Errorf("CPF deve conter %d dígitos", cpfDigits))
		}
	default:
		errs = append(errs, errors.New("informe a matrícula ou o CPF"))
	}
	return errors.Join(errs...)
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email inválido")
	}
	if len(email) > maxEmail {
		return errors.New("email muito longo")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return errors.New("email inválido")
	}
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
