package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// jpCountryCode is the E.164 country calling code of Japan.
const jpCountryCode = 81

// jpNationalNumber is the general national number pattern for Japan. Numbers must match it
// after the trunk prefix is stripped.
var jpNationalNumber = regexp.MustCompile(`^(?:00[1-9]\d{6,14}|[257-9]\d{9}|(?:00|[1-9]\d\d)\d{6})$`)

var (
	registerOnce sync.Once
	registerErr  error
)

// Issue is one entry of a 400 response. Path holds object keys and array indexes.
type Issue struct {
	Message string `json:"message"`
	Path    []any  `json:"path"`
}

// IsJapanesePhoneNumber reports whether s is a valid Japanese phone number in national or
// international (+81) notation.
func IsJapanesePhoneNumber(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	num, err := phonenumbers.Parse(s, "JP")
	if err != nil || num.GetCountryCode() != jpCountryCode {
		return false
	}
	return jpNationalNumber.MatchString(phonenumbers.GetNationalSignificantNumber(num))
}

// RegisterValidations installs the jpphone tag and json field naming on gin's validator.
// Safe to call more than once.
func RegisterValidations() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		registerErr = v.RegisterValidation("jpphone", func(fl validator.FieldLevel) bool {
			return IsJapanesePhoneNumber(fl.Field().String())
		})
	})
	return registerErr
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Messages follow the Japanese locale of the public API.
const (
	msgRequired      = "必須"
	msgIDRequired    = "IDは必須です。"
	msgInvalidPhone  = "利用できない電話番号が入力されました。"
	msgInvalidEmail  = "メールアドレスの形式で入力してください。"
	msgInvalidJSON   = "JSONの形式が正しくありません。"
	msgEmptyBody     = "リクエストボディが空です。"
	msgInvalidBody   = "リクエストボディが不正です。"
	msgStringTooLong = "%s文字以下の文字列である必要があります。"
	msgStringShort   = "%s文字以上の文字列である必要があります。"
	msgNumberGreater = "%sより大きな数値である必要があります。"
	msgInvalidType   = "%sでの入力を期待していますが、%sが入力されました。"
	msgInvalidRule   = "入力値が不正です。"
)

// jsonTypeNames maps decoder type descriptions to the names used in messages.
var jsonTypeNames = map[string]string{
	"number": "数値",
	"string": "文字列",
	"bool":   "真偽値",
	"array":  "配列",
	"object": "オブジェクト",
	"null":   "null",
}

// bindJSON decodes and validates the request body into obj. It returns nil on success.
func bindJSON(c *gin.Context, obj any) []Issue {
	err := c.ShouldBindBodyWithJSON(obj)
	if err == nil {
		return nil
	}
	var body []byte
	if raw, ok := c.Get(gin.BodyBytesKey); ok {
		body, _ = raw.([]byte)
	}
	return bindingIssues(err, body)
}

// bindingIssues converts a JSON binding error into response issues. body is the raw request
// body, used to restore array indexes that decode errors do not report.
func bindingIssues(err error, body []byte) []Issue {
	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &validationErrs):
		issues := make([]Issue, 0, len(validationErrs))
		for _, fe := range validationErrs {
			issues = append(issues, Issue{
				Message: issueMessage(fe),
				Path:    namespacePath(fe.Namespace()),
			})
		}
		return issues
	case errors.As(err, &typeErr):
		return []Issue{{
			Message: fmt.Sprintf(msgInvalidType, jsonTypeName(typeErr.Type), typeName(typeErr.Value)),
			Path:    typeErrorPath(body, typeErr),
		}}
	case errors.As(err, &syntaxErr):
		return []Issue{{Message: msgInvalidJSON, Path: []any{}}}
	case errors.Is(err, io.EOF):
		return []Issue{{Message: msgEmptyBody, Path: []any{}}}
	default:
		return []Issue{{Message: msgInvalidBody, Path: []any{}}}
	}
}

func typeName(jsonType string) string {
	if name, ok := jsonTypeNames[jsonType]; ok {
		return name
	}
	return jsonType
}

// jsonTypeName names the JSON type a Go destination accepts.
func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return typeName("number")
	case reflect.String:
		return typeName("string")
	case reflect.Bool:
		return typeName("bool")
	case reflect.Slice, reflect.Array:
		return typeName("array")
	default:
		return typeName("object")
	}
}

// typeErrorPath returns the full path of the value rejected by the decoder. Field carries only
// object keys, so the body is walked to find the value at those keys whose end offset is
// closest to the reported one.
func typeErrorPath(body []byte, typeErr *json.UnmarshalTypeError) []any {
	var keys []string
	if typeErr.Field != "" {
		keys = strings.Split(typeErr.Field, ".")
	}
	w := &pathWalker{
		dec:    json.NewDecoder(bytes.NewReader(body)),
		keys:   keys,
		offset: typeErr.Offset,
	}
	if err := w.value(nil); err != nil || w.best == nil {
		return dottedPath(typeErr.Field)
	}
	return w.best
}

type pathWalker struct {
	dec    *json.Decoder
	keys   []string
	offset int64
	best   []any
	dist   int64
}

func (w *pathWalker) value(path []any) error {
	tok, err := w.dec.Token()
	if err != nil {
		return err
	}
	w.consider(path, w.dec.InputOffset())

	switch tok {
	case json.Delim('{'):
		for w.dec.More() {
			keyTok, err := w.dec.Token()
			if err != nil {
				return err
			}
			key, _ := keyTok.(string)
			if err := w.value(append(path, key)); err != nil {
				return err
			}
		}
		_, err = w.dec.Token()
		return err
	case json.Delim('['):
		for i := 0; w.dec.More(); i++ {
			if err := w.value(append(path, i)); err != nil {
				return err
			}
		}
		_, err = w.dec.Token()
		return err
	}
	return nil
}

func (w *pathWalker) consider(path []any, offset int64) {
	if !sameKeys(path, w.keys) {
		return
	}
	dist := offset - w.offset
	if dist < 0 {
		dist = -dist
	}
	if w.best == nil || dist < w.dist {
		w.best = append([]any{}, path...)
		w.dist = dist
	}
}

// sameKeys reports whether the object keys of path, ignoring array indexes, equal keys.
func sameKeys(path []any, keys []string) bool {
	n := 0
	for _, p := range path {
		key, ok := p.(string)
		if !ok {
			continue
		}
		if n >= len(keys) || keys[n] != key {
			return false
		}
		n++
	}
	return n == len(keys)
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "min":
		return fmt.Sprintf(msgStringShort, fe.Param())
	case "max":
		return fmt.Sprintf(msgStringTooLong, fe.Param())
	case "gt":
		return fmt.Sprintf(msgNumberGreater, fe.Param())
	case "email":
		return msgInvalidEmail
	case "jpphone":
		return msgInvalidPhone
	default:
		return msgInvalidRule
	}
}

// namespacePath turns "ProfileCreateRequest.contacts[0].phoneNumber" into
// ["contacts", 0, "phoneNumber"]. The leading struct name is dropped.
func namespacePath(namespace string) []any {
	segments := strings.Split(namespace, ".")
	if len(segments) > 0 {
		segments = segments[1:]
	}

	path := make([]any, 0, len(segments))
	for _, segment := range segments {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			path = append(path, name)
		}
		for rest != "" {
			var key string
			key, rest, _ = strings.Cut(rest, "]")
			path = append(path, pathElement(key))
			rest = strings.TrimPrefix(rest, "[")
		}
	}
	return path
}

// dottedPath splits an encoding/json field path such as "user.id".
func dottedPath(field string) []any {
	if field == "" {
		return []any{}
	}
	parts := strings.Split(field, ".")
	path := make([]any, len(parts))
	for i, part := range parts {
		path[i] = pathElement(part)
	}
	return path
}

func pathElement(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}
