package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrUndeclaredStatus はルートが定義していないステータスコードを受け取ったことを示します。
var ErrUndeclaredStatus = errors.New("api: undeclared response status")

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeResponse はルート定義に従ってレスポンスボディを T にデコードし、検証します。
// ステータスが未定義の場合、宣言された型と T が異なる場合、JSONが壊れている場合、
// validate タグに違反する場合はエラーを返します。
func DecodeResponse[T any](r Route, status int, body []byte) (T, error) {
	var out T

	declared, ok := r.Responses[status]
	if !ok {
		return out, fmt.Errorf("%w: %s returned %d", ErrUndeclaredStatus, r.Name, status)
	}
	if want, got := reflect.TypeOf(declared), reflect.TypeOf(out); want != got {
		return out, fmt.Errorf("api: %s %d declares %v, decoded as %v", r.Name, status, want, got)
	}

	if _, isEmpty := declared.(NoContent); isEmpty {
		if len(strings.TrimSpace(string(body))) != 0 {
			return out, fmt.Errorf("api: %s %d: expected empty body", r.Name, status)
		}
		return out, nil
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("api: %s %d: decode: %w", r.Name, status, err)
	}
	if err := Validate(out); err != nil {
		return out, fmt.Errorf("api: %s %d: %w", r.Name, status, err)
	}
	return out, nil
}

// Validate は構造体、または構造体のスライスを validate タグで検証します。
func Validate(v any) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := Validate(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case reflect.Struct:
		return validate.Struct(v)
	case reflect.Pointer:
		if rv.IsNil() {
			return errors.New("nil value")
		}
		return Validate(rv.Elem().Interface())
	default:
		return nil
	}
}

// NewValidationError はバインド時のエラーを400レスポンスのボディに変換します。
// 最初のフィールドエラーのみを使用し、フィールド名は target の json タグ名に変換します。
// バリデーター由来でないエラー（JSONの構文エラーなど）は field なしのメッセージになります。
func NewValidationError(err error, target any) ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ValidationError{Message: "invalid request body"}
	}

	fe := fieldErrs[0]
	field := jsonFieldName(target, fe.StructField())
	return ValidationError{
		Message: validationMessage(field, fe),
		Field:   field,
	}
}

// jsonFieldName は構造体フィールド名に対応する json タグ名を返します。
func jsonFieldName(target any, structField string) string {
	t := reflect.TypeOf(target)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return structField
	}
	f, ok := t.FieldByName(structField)
	if !ok {
		return structField
	}
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return structField
}

func validationMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", field, fe.Tag())
	}
}

// IsValidInterval は interval がローソク足で指定可能な時間足かを返します。
func IsValidInterval(interval string) bool {
	return slices.Contains(CandleIntervals, interval)
}
