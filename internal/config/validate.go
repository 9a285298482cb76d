package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/alexanderramin/taskflow/internal/identity"
	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// Validate performs structural validation of the configuration. It does not
// contact any service.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		c.validateServices(),
		criterio.Run("timeout_ms", c.TimeoutMs, positive),
		criterio.Run("max_retries", c.MaxRetries, nonNegative),
		criterio.Run("operator_id", c.OperatorID, optionalOperatorID),
		criterio.Run("locale", c.Locale, languageTag),
		criterio.Run("log.level", c.Log.Level, logLevel),
	)
}

func (c *Config) validateServices() error {
	var errs criterio.FieldErrorsBuilder
	for _, svc := range []struct{ field, url string }{
		{"services.sprints", c.Services.Sprints},
		{"services.tasks", c.Services.Tasks},
		{"services.projects", c.Services.Projects},
		{"services.notifications", c.Services.Notifications},
	} {
		if err := serviceURL(svc.url); err != nil {
			errs = errs.Append(svc.field, err)
		}
	}
	return errs.ToError()
}

func serviceURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}

func positive(n int) error {
	if n <= 0 {
		return fmt.Errorf("must be positive, got %d", n)
	}
	return nil
}

func nonNegative(n int) error {
	if n < 0 {
		return fmt.Errorf("must not be negative, got %d", n)
	}
	return nil
}

func optionalOperatorID(id string) error {
	if id == "" {
		return nil
	}
	return identity.Validate(id)
}

func languageTag(tag string) error {
	if tag == "" {
		return nil
	}
	if _, err := language.Parse(tag); err != nil {
		return fmt.Errorf("unknown locale %q", tag)
	}
	return nil
}

func logLevel(level string) error {
	if level == "" {
		return nil
	}
	if _, err := zerolog.ParseLevel(level); err != nil {
		return fmt.Errorf("unknown log level %q", level)
	}
	return nil
}
