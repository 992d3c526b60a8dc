package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/digita/internal/model"
)

func valid() model.UserData {
	return model.UserData{Name: "Maria Oliveira", Email: "maria.oliveira@exemplo.com", Matricula: "654321"}
}

func TestValidateAcceptsMatricula(t *testing.T) {
	assert.NoError(t, Validate(valid()))
}

func TestValidateAcceptsCPF(t *testing.T) {
	u := Normalize(model.UserData{Name: " Ana  Souza ", Email: "ana@exemplo.com", ExternalID: "123.456.789-09"})
	assert.Equal(t, "Ana Souza", u.Name)
	assert.Equal(t, "12345678909", u.ExternalID)
	assert.NoError(t, Validate(u))
	assert.Equal(t, "CPF", u.IdentifierLabel())
	assert.Equal(t, "12345678909", u.Identifier())
}

func TestValidateMissing(t *testing.T) {
	assert.True(t, errors.Is(Validate(model.UserData{}), ErrMissing))
}

func TestValidateFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.UserData)
		want   string
	}{
		{"short name", func(u *model.UserData) { u.Name = "M" }, "nome deve ter pelo menos 2 caracteres"},
		{"bad email", func(u *model.UserData) { u.Email = "maria" }, "email inválido"},
		{"email without domain dot", func(u *model.UserData) { u.Email = "maria@exemplo" }, "email inválido"},
		{"display name email", func(u *model.UserData) { u.Email = "Maria <maria@exemplo.com>" }, "email inválido"},
		{"letters in matricula", func(u *model.UserData) { u.Matricula = "12ab" }, "matrícula deve conter apenas números (4-10 dígitos)"},
		{"long matricula", func(u *model.UserData) { u.Matricula = "12345678901" }, "matrícula deve conter apenas números (4-10 dígitos)"},
		{"no identifier", func(u *model.UserData) { u.Matricula = "" }, "informe a matrícula ou o CPF"},
		{"short cpf", func(u *model.UserData) { u.Matricula = ""; u.ExternalID = "1234" }, "CPF deve conter 11 dígitos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid()
			tt.mutate(&u)
			err := Validate(u)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	err := Validate(model.UserData{Name: "M", Email: "x", Matricula: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nome")
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "matrícula")
}
