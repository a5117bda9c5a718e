package lib

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/ecode"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks s against its validate tags and reports the first failing
// field as a ValidationError.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ecode.Wrap(ecode.Validation, "Invalid request", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return ecode.ValidationError(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return ecode.ValidationError(fmt.Sprintf("%s must be a valid email", fe.Field()))
	default:
		return ecode.ValidationError(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}

// ParseID converts a path parameter into an ObjectID.
func ParseID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return id, ecode.ValidationError("Invalid " + what + " id")
	}
	return id, nil
}
