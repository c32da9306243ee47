package service

import (
	"errors"
	"fmt"
	"strings"

	"flutter/internal/model"

	"github.com/go-playground/validator/v10"
)

type CreatePostRequest struct {
	User   string `validate:"required"`
	Post   string `validate:"required"`
	Avatar string `validate:"required,avatar"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// registration only fails on an empty tag or a nil func
	_ = v.RegisterValidation("avatar", func(fl validator.FieldLevel) bool {
		return model.Avatar(fl.Field().String()).Valid()
	})
	return v
}

func validateCreatePost(req CreatePostRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return fmt.Errorf("%w: %s", ErrMissingParams, strings.ToLower(fe.Field()))
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownAvatar, req.Avatar)
}
