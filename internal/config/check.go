package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

var outputModes = map[string]bool{"plain": true, "markdown": true, "pretty": true, "json": true}

// CheckConfigValidity reports every problem found, joined into one error.
func CheckConfigValidity(v *viper.Viper) error {
	var errs []error

	if err := checkURL(v.GetString("base_url")); err != nil {
		errs = append(errs, fmt.Errorf("base_url %w", err))
	}
	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if out := v.GetString("output"); !outputModes[out] {
		errs = append(errs, fmt.Errorf("output must be one of plain, markdown, pretty, json (got %q)", out))
	}
	switch p := v.GetString("session.provider"); p {
	case "none", "keyring":
	case "config":
		if strings.TrimSpace(v.GetString("session.sid")) == "" && !anyProjectSID(v) {
			errs = append(errs, errors.New("session.sid is required when session.provider is config"))
		}
	default:
		errs = append(errs, fmt.Errorf("session.provider must be none, keyring or config (got %q)", p))
	}
	for _, key := range []string{"api.timeout_seconds", "pretty.word_wrap", "search.limit", "book.image_height"} {
		if v.GetInt(key) <= 0 {
			errs = append(errs, fmt.Errorf("%s must be greater than 0", key))
		}
	}
	if v.GetInt("cache.max_age_minutes") < 0 {
		errs = append(errs, errors.New("cache.max_age_minutes must not be negative"))
	}
	if strings.TrimSpace(v.GetString("book.tag")) == "" {
		errs = append(errs, errors.New("book.tag is required"))
	}
	for name := range v.GetStringMap("projects") {
		if u := v.GetString("projects." + name + ".base_url"); u != "" {
			if err := checkURL(u); err != nil {
				errs = append(errs, fmt.Errorf("project %s base_url %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

func checkURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("is not a valid http(s) url: %q", s)
	}
	return nil
}

func anyProjectSID(v *viper.Viper) bool {
	for name := range v.GetStringMap("projects") {
		if v.GetString("projects."+name+".sid") != "" {
			return true
		}
	}
	return false
}
