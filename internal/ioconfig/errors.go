package ioconfig

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/vetcare/vetdb/pkg/errcode"
)

// LoadError is returned when a configuration source cannot be read.
func LoadError(path string, err error) error {
	msg := `Cannot load configuration from <em>%s</em>

<em>How to fix:</em>
  1. Check YAML syntax of the file
  2. Remove the file to get a fresh documented copy`

	return &gn.Error{
		Code: errcode.ConfigLoadError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("load config %s: %w", path, err),
	}
}
