package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// shapeValidator checks decoded payloads against their `validate` tags.
type shapeValidator struct {
	v *validator.Validate
}

func newShapeValidator() *shapeValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report wire names so failures read like the payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &shapeValidator{v: v}
}

// Check validates out, descending into slices, arrays and maps of structs.
// Values with no struct inside carry no tags and always pass.
func (s *shapeValidator) Check(out any) error {
	return s.check(reflect.ValueOf(out))
}

func (s *shapeValidator) check(rv reflect.Value) error {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		if err := s.v.Struct(rv.Interface()); err != nil {
			return describe(err)
		}
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			if err := s.check(rv.Index(i)); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if err := s.check(iter.Value()); err != nil {
				return fmt.Errorf("[%v]: %w", iter.Key(), err)
			}
		}
	}
	return nil
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
