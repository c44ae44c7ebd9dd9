package api

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var errInvalidType = errors.New("invalid type")

// Binder parses a single form or query value into the receiver.
type Binder interface {
	Bind(value string) error
}

// Bind populates dest, a pointer to a struct, from the request. A JSON body
// is decoded into dest when the Content-Type is application/json; otherwise
// the body and query string are parsed as a form and matched to fields by
// their form tag, defaulting to the lowercased field name. Fields whose
// addresses implement Binder parse their own values. Empty form values leave
// the destination field untouched.
func Bind(r *http.Request, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return errors.Wrap(errInvalidType, "destination must be a pointer to a struct")
	}
	v = v.Elem()

	if strings.HasPrefix(r.Header.Get("Content-Type"), contentTypeJSON) {
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
				return errors.Wrap(err, "could not decode body")
			}
		}
	} else if err := r.ParseForm(); err != nil {
		return errors.Wrap(err, "could not parse form")
	}

	structType := v.Type()
	for i := 0; i < structType.NumField(); i++ {
		name := structType.Field(i).Tag.Get("form")
		if name == "" {
			name = strings.ToLower(structType.Field(i).Name)
		}
		value := r.Form.Get(name)
		if value == "" {
			continue
		}
		if err := bindField(v.Field(i), value); err != nil {
			return errors.Wrapf(err, "could not bind field %q", name)
		}
	}
	return nil
}

func bindField(field reflect.Value, value string) error {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		field = field.Elem()
	}
	if binder, ok := field.Addr().Interface().(Binder); ok {
		return binder.Bind(value)
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return errors.Wrapf(errInvalidType, "unsupported field type %s", field.Kind())
	}
	return nil
}
