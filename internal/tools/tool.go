// Package tools implements the functions the chat model can call. Each tool
// derives its JSON Schema from a Go argument struct, validates the model's
// arguments against it and runs one store operation on behalf of the session
// found in the context.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/ahmetk3436/medassist/internal/clinic"
	"github.com/ahmetk3436/medassist/internal/session"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

var ErrUnauthenticated = errors.New("Unauthorized")

// ValidationError wraps a schema, decode or validator failure. The tool's
// effect never runs when one is returned.
type ValidationError struct {
	Tool string
	Err  error
}

func (e *ValidationError) Error() string {
	var fieldErrs validator.ValidationErrors
	if errors.As(e.Err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, describeField(fe))
		}
		return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(msgs, "; "))
	}
	return fmt.Sprintf("invalid arguments for %s: %v", e.Tool, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "isotime":
		return fe.Field() + " must be an ISO 8601 date or timestamp"
	case "datetime":
		return fmt.Sprintf("%s must match %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// Tool is one callable function exposed to the model.
type Tool interface {
	Name() string
	Definition() openai.Tool
	Call(ctx context.Context, args json.RawMessage) (Result, error)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("isotime", func(fl validator.FieldLevel) bool {
		_, err := ParseTime(fl.Field().String())
		return err == nil
	})
	return v
}

// Validator exposes the shared instance so HTTP handlers validate request
// bodies with the same rules as tool arguments.
func Validator() *validator.Validate { return validate }

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 and the zone-less ISO forms models tend to
// produce. Zone-less values are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

type tool[In any] struct {
	name   string
	def    openai.Tool
	schema *jsonschema.Definition
	run    func(ctx context.Context, in In) (Result, error)
}

// define builds a Tool whose schema is generated from In. Arguments are
// checked against the schema, decoded into In and then validated by struct
// tags before run is called.
func define[In any](name, description string, run func(ctx context.Context, in In) (Result, error)) Tool {
	var zero In
	schema, err := jsonschema.GenerateSchemaForType(zero)
	if err != nil {
		panic(fmt.Sprintf("tools: schema for %s: %v", name, err))
	}
	return &tool[In]{
		name:   name,
		schema: schema,
		run:    run,
		def: openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        name,
				Description: description,
				Parameters:  schema,
			},
		},
	}
}

func (t *tool[In]) Name() string            { return t.name }
func (t *tool[In]) Definition() openai.Tool { return t.def }

func (t *tool[In]) Call(ctx context.Context, raw json.RawMessage) (Result, error) {
	args := strings.TrimSpace(string(raw))
	if args == "" || args == "null" {
		args = "{}"
	}

	var in In
	if err := t.schema.Unmarshal(args, &in); err != nil {
		return nil, &ValidationError{Tool: t.name, Err: err}
	}
	if err := validate.Struct(in); err != nil {
		return nil, &ValidationError{Tool: t.name, Err: err}
	}
	return t.run(ctx, in)
}

// owned resolves the caller from the context. Tools built on it never run
// without a session.
func owned[In any](fn func(ctx context.Context, userID uuid.UUID, in In) (Result, error)) func(context.Context, In) (Result, error) {
	return func(ctx context.Context, in In) (Result, error) {
		sess := session.FromContext(ctx)
		if sess == nil || sess.UserID == uuid.Nil {
			return nil, ErrUnauthenticated
		}
		return fn(ctx, sess.UserID, in)
	}
}

// recordRef is implemented by argument structs that address one owned row.
type recordRef interface {
	recordID() uint
}

// ownedUpdate builds a tool that applies one compound-filtered update to a
// row of T and wraps the fresh row in a Result.
func ownedUpdate[T any, In recordRef](
	store *clinic.Store,
	name, description, entity string,
	updates func(In) (map[string]interface{}, error),
	wrap func(*T) Result,
) Tool {
	return define(name, description, owned(func(ctx context.Context, userID uuid.UUID, in In) (Result, error) {
		fields, err := updates(in)
		if err != nil {
			return nil, &ValidationError{Tool: name, Err: err}
		}
		row, err := clinic.UpdateOwned[T](ctx, store.DB(), entity, in.recordID(), userID, fields)
		if err != nil {
			return nil, err
		}
		return wrap(row), nil
	}))
}

func mustTime(s string) time.Time {
	t, _ := ParseTime(s)
	return t
}
