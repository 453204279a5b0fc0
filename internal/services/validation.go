package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"book-order-service/internal/domain"

	"github.com/go-playground/validator/v10"
)

// MaxQuantity is the largest number of copies a single order may ask for.
const MaxQuantity = 5

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

type SubmitOrderInput struct {
	FirstName        string              `json:"firstName" validate:"required"`
	LastName         string              `json:"lastName" validate:"required"`
	Email            string              `json:"email" validate:"required,simpleemail"`
	Phone            string              `json:"phone" validate:"required"`
	Address          string              `json:"address" validate:"required"`
	City             string              `json:"city" validate:"required"`
	PostalCode       string              `json:"postalCode" validate:"required"`
	DeliveryLocation domain.DeliveryZone `json:"deliveryLocation" validate:"required,oneof=nairobi kenya"`
	Edition          domain.Edition      `json:"edition" validate:"oneof=paperback hardback"`
	Quantity         int                 `json:"quantity" validate:"min=1,max=5"`
}

// normalize trims every text field and applies the order form defaults: a
// paperback edition and a single copy.
func (in SubmitOrderInput) normalize() SubmitOrderInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.DeliveryLocation = domain.DeliveryZone(strings.TrimSpace(string(in.DeliveryLocation)))
	in.Edition = domain.Edition(strings.TrimSpace(string(in.Edition)))
	if in.Edition == "" {
		in.Edition = domain.EditionPaperback
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	return in
}

type PaymentInput struct {
	MpesaCode  string `json:"mpesaCode" validate:"required"`
	MpesaPhone string `json:"mpesaPhone" validate:"required"`
}

func (in PaymentInput) normalize() PaymentInput {
	in.MpesaCode = strings.TrimSpace(in.MpesaCode)
	in.MpesaPhone = strings.TrimSpace(in.MpesaPhone)
	return in
}

var requiredMessages = map[string]string{
	"firstName":        "First name is required",
	"lastName":         "Last name is required",
	"email":            "Email is required",
	"phone":            "Phone number is required",
	"address":          "Address is required",
	"city":             "City is required",
	"postalCode":       "Postal code is required",
	"deliveryLocation": "Delivery location is required",
	"mpesaCode":        "M-Pesa confirmation code is required",
	"mpesaPhone":       "M-Pesa phone number is required",
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if msg, ok := requiredMessages[fe.Field()]; ok {
			return msg
		}
		return fe.Field() + " is required"
	case "simpleemail":
		return "Please enter a valid email address"
	case "oneof":
		switch fe.Field() {
		case "deliveryLocation":
			return "Please choose Nairobi or rest of Kenya delivery"
		case "edition":
			return "Please choose paperback or hardback"
		}
	case "min", "max":
		if fe.Field() == "quantity" {
			return "Quantity must be between 1 and 5"
		}
	}
	return "Invalid value"
}

func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		ve.Fields[fe.Field()] = fieldMessage(fe)
	}
	return ve
}
