package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/tilewm/internal/types"
)

// NameKey is the params field carrying the command name
const NameKey = "command"

var (
	// ErrInvalidCommand is wrapped by every decode and validation failure
	ErrInvalidCommand = errors.New("invalid command")
	ErrUnknownCommand = fmt.Errorf("%w: unknown name", ErrInvalidCommand)
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("windowstate", func(fl validator.FieldLevel) bool {
		return types.WindowState(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("tilingdirection", func(fl validator.FieldLevel) bool {
		return types.TilingDirection(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("direction", func(fl validator.FieldLevel) bool {
		_, ok := types.ParseDirection(fl.Field().String())
		return ok
	})
	validate.RegisterStructValidation(validateAddMonitor, AddMonitor{})
}

func validateAddMonitor(sl validator.StructLevel) {
	m := sl.Current().Interface().(AddMonitor)
	if m.Rect.Width <= 0 {
		sl.ReportError(m.Rect.Width, "rect.width", "Width", "gt", "0")
	}
	if m.Rect.Height <= 0 {
		sl.ReportError(m.Rect.Height, "rect.height", "Height", "gt", "0")
	}
}

// Validate checks a command's fields
func Validate(cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("%w: nil command", ErrInvalidCommand)
	}
	if err := validate.Struct(cmd); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s: %s failed %q check (value %v)", ErrInvalidCommand, cmd.Name(), fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %s: %v", ErrInvalidCommand, cmd.Name(), err)
	}
	return nil
}

// Decode parses and validates a command from its JSON form, an object
// holding the name under "command" next to the command's fields.
func Decode(data []byte) (Command, error) {
	var head struct {
		Command Name `json:"command"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	newCommand, ok := registry[head.Command]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, head.Command)
	}

	cmd := newCommand()
	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCommand, head.Command, err)
	}
	if err := Validate(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// FromParams decodes a command from request params
func FromParams(params map[string]interface{}) (Command, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return Decode(data)
}

// ToParams renders a command as request params
func ToParams(cmd Command) (map[string]interface{}, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", cmd.Name(), err)
	}
	params := make(map[string]interface{})
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", cmd.Name(), err)
	}
	params[NameKey] = string(cmd.Name())
	return params, nil
}

// Encode renders a command in the form Decode reads
func Encode(cmd Command) ([]byte, error) {
	params, err := ToParams(cmd)
	if err != nil {
		return nil, err
	}
	return json.Marshal(params)
}
