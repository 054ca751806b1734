package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var fieldNames = map[string]string{
	"Email":          "email",
	"Password":       "password",
	"Name":           "name",
	"Phone":          "phone",
	"ProfilePicture": "profile picture",
	"Title":          "title",
	"Price":          "price",
	"Area":           "area",
}

// bindMessage turns a binding failure into a message fit for the client.
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fieldMessage(verrs[0])
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("Invalid value for %s", typeErr.Field)
	}

	return "Invalid request"
}

func fieldMessage(fe validator.FieldError) string {
	name, ok := fieldNames[fe.Field()]
	if !ok {
		name = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s is required", name)
	case "email":
		return "Please enter a valid email"
	case "url", "uri":
		return fmt.Sprintf("The %s must be a valid URL", name)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("The %s must be at most %s characters", name, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must not be negative", name)
	default:
		return fmt.Sprintf("Invalid %s", name)
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
}
