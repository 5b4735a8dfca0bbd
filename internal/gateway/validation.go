package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type userBody struct {
	Name  string `json:"name" validate:"required,notblank"`
	Email string `json:"email" validate:"required,email"`
}

type userPatchBody struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type itemBody struct {
	Name        string `json:"name" validate:"required,notblank"`
	Description string `json:"description" validate:"required,notblank"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitempty,gt=0"`
}

type itemPatchBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type commentBody struct {
	Text string `json:"text" validate:"required,notblank"`
}

type requestBody struct {
	Description string `json:"description" validate:"required,notblank"`
}

// bookingBody is checked field by field and then as a whole for the time window.
type bookingBody struct {
	ItemID int64            `json:"itemId" validate:"required,gt=0"`
	Start  models.Timestamp `json:"start"`
	End    models.Timestamp `json:"end"`
}

// Validator checks payloads before they reach the core server.
type Validator struct {
	validate *validator.Validate
	now      domain.Clock
}

func NewValidator(now domain.Clock) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(), now: now}
	v.validate.RegisterTagNameFunc(jsonFieldName)
	_ = v.validate.RegisterValidation("notblank", validators.NotBlank)
	v.validate.RegisterStructValidation(v.bookingWindow, bookingBody{})
	return v
}

// Body decodes raw into dst and validates it. Unknown fields are ignored.
func (v *Validator) Body(raw []byte, dst any) error {
	if len(raw) == 0 {
		return domain.Validation("request body is required")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return domain.Validation("invalid JSON body: %s", err.Error())
	}
	return v.Struct(dst)
}

func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Validation("%s", err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return domain.Validation("%s", strings.Join(msgs, "; "))
}

func (v *Validator) bookingWindow(sl validator.StructLevel) {
	b := sl.Current().Interface().(bookingBody)
	now := v.now()

	switch {
	case b.Start.IsZero():
		sl.ReportError(b.Start, "start", "Start", "required", "")
	case b.Start.Before(now):
		sl.ReportError(b.Start, "start", "Start", "future_or_present", "")
	}
	switch {
	case b.End.IsZero():
		sl.ReportError(b.End, "end", "End", "required", "")
	case !b.Start.IsZero() && !b.End.After(b.Start.Time):
		sl.ReportError(b.End, "end", "End", "after_start", "")
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "future_or_present":
		return fmt.Sprintf("%s must not be in the past", fe.Field())
	case "after_start":
		return fmt.Sprintf("%s must be after start", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
