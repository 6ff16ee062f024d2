package config

import (
	"fmt"
	"strings"

	"github.com/yalp/jsonpath"

	"github.com/frame-go/cachekit/copy"
	"github.com/frame-go/cachekit/errors"
	"github.com/frame-go/cachekit/utils"
)

// TypeAssertionError describes type assertion error, used to generate type convertion errors
type TypeAssertionError struct {
	Value      interface{}
	TargetType string
}

// Error returns type convertion error
func (e TypeAssertionError) Error() string {
	return fmt.Sprintf("type_assertion_error:%s->%s", utils.GetTypeName(e.Value), e.TargetType)
}

// StringMap defines config map type
type StringMap map[string]interface{}

// ToRawMap converts config to raw map[string]interface{}
func (m StringMap) ToRawMap() map[string]interface{} {
	return m
}

// ToStruct converts config to generic interface, copying all config values.
// Fields missing in the map keep their current value in targetObj.
func (m StringMap) ToStruct(targetObj interface{}) error {
	return copy.JsonDeepCopy(targetObj, m.ToRawMap())
}

// ToStructWithValidation converts config object to config map with field values validation
func (m StringMap) ToStructWithValidation(targetObj interface{}) error {
	err := m.ToStruct(targetObj)
	if err != nil {
		return errors.Wrap(err, "deep_copy_config_error")
	}
	return validate(targetObj)
}

// Get returns the raw value of config by path
func (m StringMap) Get(path string) (interface{}, error) {
	return jsonpath.Read(m.ToRawMap(), regularizePath(path))
}

// GetString returns a string value of config by path
func (m StringMap) GetString(path string) (string, error) {
	rawValue, err := m.Get(path)
	if err != nil {
		return "", err
	}
	value, ok := rawValue.(string)
	if !ok {
		return "", TypeAssertionError{rawValue, "string"}
	}
	return value, nil
}

// GetInt returns an int value of config by path.
// Values decoded from json arrive as float64 and are accepted when integral.
func (m StringMap) GetInt(path string) (int, error) {
	rawValue, err := m.Get(path)
	if err != nil {
		return 0, err
	}
	switch value := rawValue.(type) {
	case int:
		return value, nil
	case int64:
		return int(value), nil
	case float64:
		if value == float64(int(value)) {
			return int(value), nil
		}
	}
	return 0, TypeAssertionError{rawValue, "int"}
}

// GetStringMap returns a map value of config by path
func (m StringMap) GetStringMap(path string) (StringMap, error) {
	rawValue, err := m.Get(path)
	if err != nil {
		return nil, err
	}
	value, ok := rawValue.(map[string]interface{})
	if !ok {
		return nil, TypeAssertionError{rawValue, "StringMap"}
	}
	return value, nil
}

// Child returns the map stored under key, matched case-insensitively as viper does
func (m StringMap) Child(key string) (StringMap, bool) {
	rawValue, ok := m[key]
	if !ok {
		rawValue, ok = m[strings.ToLower(key)]
	}
	if !ok {
		return nil, false
	}
	switch value := rawValue.(type) {
	case map[string]interface{}:
		return value, true
	case StringMap:
		return value, true
	}
	return nil, false
}

func regularizePath(path string) string {
	if strings.HasPrefix(path, "$") {
		return path
	}
	return "$." + path
}
