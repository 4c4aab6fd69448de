package service

import (
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Package for custom validations
var (
	validate *validator.Validate
	once     sync.Once
)

// Activity types the streak engine recognizes. "test" is reserved for the
// diagnostic endpoint.
var activityTypes = map[string]struct{}{
	"message-sent":  {},
	"board-edited":  {},
	"drawing-added": {},
	"room-joined":   {},
	"room-created":  {},
	"test":          {},
}

func IsRecognizedActivityType(activityType string) bool {
	_, ok := activityTypes[activityType]
	return ok
}

func InitValidator() {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("alphanum_underscore", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			for i, char := range value {
				// Cannot be started with a digit or underscore
				if i == 0 && (unicode.IsDigit(char) || char == '_') {
					return false
				}
				// Digits, letters or underscore
				if !unicode.IsLetter(char) && !unicode.IsDigit(char) && char != '_' {
					return false
				}
			}
			return true
		})
		validate.RegisterValidation("activity_type", func(fl validator.FieldLevel) bool {
			return IsRecognizedActivityType(fl.Field().String())
		})
	})
}
