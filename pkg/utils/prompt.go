package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"

	"github.com/picogrid/swarm-canvas/pkg/simulation"
)

// EnvPrefix prefixes every environment override read by the CLI
const EnvPrefix = "SWARM_"

// isTerminal reports whether stdin can answer prompts
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Interactive reports whether parameters may be prompted for
func Interactive() bool {
	if os.Getenv(EnvPrefix+"SKIP_PROMPTS") == "true" {
		return false
	}
	return isTerminal()
}

// EnvKey returns the environment variable overriding a parameter
func EnvKey(name string) string {
	return EnvPrefix + strings.ToUpper(name)
}

// PromptForParameters resolves every parameter. Values in provided win,
// then SWARM_<NAME> environment variables, then interactive answers and
// finally manifest defaults.
func PromptForParameters(params []simulation.Parameter, provided map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	interactive := Interactive()

	for _, param := range params {
		value, err := resolveParameter(param, provided, interactive)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", param.Name, err)
		}
		if value != nil {
			result[param.Name] = value
		}
	}

	return result, nil
}

func resolveParameter(param simulation.Parameter, provided map[string]interface{}, interactive bool) (interface{}, error) {
	if v, ok := provided[param.Name]; ok {
		return param.Coerce(v)
	}

	if envValue := os.Getenv(EnvKey(param.Name)); envValue != "" {
		parsed, err := param.Coerce(envValue)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvKey(param.Name), err)
		}
		if !interactive {
			return parsed, nil
		}
		// Environment values become the suggested answer
		param.Default = parsed
	}

	if interactive {
		return promptForParameter(param)
	}

	if param.Default != nil {
		return param.Coerce(param.Default)
	}
	if param.Required {
		return nil, fmt.Errorf("required parameter %s not provided and no default available", param.Name)
	}
	return nil, nil
}

// promptForParameter prompts for a single parameter
func promptForParameter(param simulation.Parameter) (interface{}, error) {
	switch param.Type {
	case simulation.TypeString:
		if len(param.Options) > 0 {
			return promptSelect(param)
		}
		return promptInput(param)
	case simulation.TypeBoolean:
		return promptBoolean(param)
	case simulation.TypeInteger, simulation.TypeFloat, simulation.TypeDuration:
		return promptInput(param)
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

func defaultString(param simulation.Parameter) string {
	if param.Default == nil {
		return ""
	}
	v, err := param.Coerce(param.Default)
	if err != nil {
		return fmt.Sprintf("%v", param.Default)
	}
	if d, ok := v.(time.Duration); ok {
		return d.String()
	}
	return fmt.Sprintf("%v", v)
}

// promptInput asks for free text and validates it through Coerce
func promptInput(param simulation.Parameter) (interface{}, error) {
	message := param.Description
	if param.Type == simulation.TypeDuration {
		message += " (e.g., 5m, 1h30m, 30s)"
	}

	prompt := &survey.Input{
		Message: message,
		Default: defaultString(param),
	}

	validators := []survey.Validator{func(val interface{}) error {
		str, _ := val.(string)
		if str == "" && !param.Required {
			return nil
		}
		_, err := param.Coerce(str)
		return err
	}}
	if param.Required {
		validators = append([]survey.Validator{survey.Required}, validators...)
	}

	var result string
	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.ComposeValidators(validators...))); err != nil {
		return nil, err
	}
	if result == "" {
		return nil, nil
	}
	return param.Coerce(result)
}

func promptSelect(param simulation.Parameter) (interface{}, error) {
	prompt := &survey.Select{
		Message: param.Description,
		Options: param.Options,
	}
	if def := defaultString(param); def != "" {
		prompt.Default = def
	}

	var result string
	if err := survey.AskOne(prompt, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func promptBoolean(param simulation.Parameter) (interface{}, error) {
	defaultBool := false
	if param.Default != nil {
		if v, err := param.Coerce(param.Default); err == nil {
			defaultBool = v.(bool)
		}
	}

	prompt := &survey.Confirm{
		Message: param.Description,
		Default: defaultBool,
	}

	var result bool
	if err := survey.AskOne(prompt, &result); err != nil {
		return nil, err
	}
	return result, nil
}
