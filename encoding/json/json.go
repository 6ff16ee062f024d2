// Package json is a drop-in for encoding/json backed by json-iterator.
package json

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/frame-go/cachekit/utils"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	Marshal       = api.Marshal
	MarshalIndent = api.MarshalIndent
	Unmarshal     = api.Unmarshal
)

func MarshalString(v interface{}) (string, error) {
	bs, err := api.Marshal(v)
	if err != nil {
		return "", err
	}
	return utils.BytesToString(bs), nil
}

// MarshalIndentString renders v with two space indentation, as printed by cachectl
func MarshalIndentString(v interface{}) (string, error) {
	bs, err := api.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return utils.BytesToString(bs), nil
}

func UnmarshalString(data string, v interface{}) error {
	return api.Unmarshal(utils.StringToBytes(data), v)
}
