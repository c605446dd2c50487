package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/yourusername/tilewm/internal/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("windowstate", func(fl validator.FieldLevel) bool {
		return types.WindowState(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("tilingdirection", func(fl validator.FieldLevel) bool {
		return types.TilingDirection(fl.Field().String()).Valid()
	})
}

// Validator returns the shared validator with the window manager's custom tags
func Validator() *validator.Validate {
	return validate
}

// Validate checks the configuration for errors and compiles window rules
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}

	// Validate workspaces
	names := make(map[string]bool)
	for i, ws := range c.Workspaces {
		if names[ws.Name] {
			return fmt.Errorf("workspace %d: duplicate name: %s", i, ws.Name)
		}
		names[ws.Name] = true
	}

	// Validate window rules
	for i := range c.WindowRules {
		rule := &c.WindowRules[i]
		if err := rule.compile(); err != nil {
			return fmt.Errorf("windowRule %d: %w", i, err)
		}
		for _, denied := range rule.Deny {
			if denied == types.StateTiling {
				return fmt.Errorf("windowRule %d: tiling cannot be denied", i)
			}
			if denied == rule.InitialState {
				return fmt.Errorf("windowRule %d: initial state %s is also denied", i, denied)
			}
		}
		if rule.Workspace != "" && len(c.Workspaces) > 0 && !names[rule.Workspace] {
			return fmt.Errorf("windowRule %d: unknown workspace: %s", i, rule.Workspace)
		}
	}

	// Validate monitor rules
	monitors := make(map[string]bool)
	for i, rule := range c.MonitorRules {
		if monitors[rule.Monitor] {
			return fmt.Errorf("monitorRule %d: duplicate monitor: %s", i, rule.Monitor)
		}
		monitors[rule.Monitor] = true
	}

	return nil
}
