package config

import "github.com/pkg/errors"

func errorf(typeMethod, format string, a ...interface{}) error {
	return errors.Errorf("github.com/nicolagi/annodiff/internal/config."+typeMethod+": "+format, a...)
}
