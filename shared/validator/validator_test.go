package validator_test

import (
	"net/http"
	"strings"
	"testing"

	"hotelops/shared/failure"
	"hotelops/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type category string

func (c category) IsValid() bool {
	return c == "linen" || c == "minibar"
}

type itemRequest struct {
	Name     string   `json:"name" validate:"required,notblank"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Stock    int      `json:"stock" validate:"gte=0"`
	Category category `json:"category" validate:"required,enum"`
	Day      string   `json:"day" validate:"omitempty,day"`
}

func TestValidateStruct(t *testing.T) {
	valid := itemRequest{Name: "Bath towel", Stock: 10, Category: "linen", Day: "2025-03-01"}

	tests := []struct {
		name    string
		mutate  func(r *itemRequest)
		wantMsg string
	}{
		{name: "valid", mutate: func(*itemRequest) {}},
		{name: "missing name", mutate: func(r *itemRequest) { r.Name = "" }, wantMsg: "name is required"},
		{name: "blank name", mutate: func(r *itemRequest) { r.Name = "   " }, wantMsg: "name must not be blank"},
		{name: "negative stock", mutate: func(r *itemRequest) { r.Stock = -1 }, wantMsg: "stock must be greater than or equal to 0"},
		{name: "unknown category", mutate: func(r *itemRequest) { r.Category = "weapons" }, wantMsg: "category has an unsupported value"},
		{name: "bad day", mutate: func(r *itemRequest) { r.Day = "03/01/2025" }, wantMsg: "day must be a date formatted as YYYY-MM-DD"},
		{name: "bad email", mutate: func(r *itemRequest) { r.Email = "nope" }, wantMsg: "email must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := valid
			tt.mutate(&data)

			err := validator.ValidateStruct(&data)
			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
			assert.Equal(t, failure.ReasonValidation, failure.GetReason(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		name    string
		field   any
		tag     string
		wantErr bool
	}{
		{name: "uuid", field: "1b4e28ba-2fa1-11d2-883f-00163b6a3c5e", tag: "uuid"},
		{name: "not uuid", field: "room-101", tag: "uuid", wantErr: true},
		{name: "day", field: "2025-12-31", tag: "day"},
		{name: "not day", field: "2025-13-01", tag: "day", wantErr: true},
		{name: "oneof", field: "approved", tag: "oneof=approved rejected"},
		{name: "not oneof", field: "maybe", tag: "oneof=approved rejected", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, tt.tag)

			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"Bath towel","stock":3,"category":"linen"}`},
		{name: "invalid field", body: `{"name":"Bath towel","stock":3,"category":"weapons"}`, wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
		{name: "empty", body: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data itemRequest
			err := validator.Validate(strings.NewReader(tt.body), &data)

			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}
