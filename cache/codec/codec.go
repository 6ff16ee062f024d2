// Package codec encodes cache values. Scalars are stored as their decimal or string form
// so counters stay compatible with server side increments; other values use msgpack.
package codec

import (
	"reflect"
	"strconv"

	"github.com/vmihailenco/msgpack"

	"github.com/frame-go/cachekit/utils"
)

// Marshal returns a []byte representing the passed value
func Marshal(value any) ([]byte, error) {
	if b, ok := value.([]byte); ok {
		return b, nil
	}

	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.AppendInt(nil, v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.AppendUint(nil, v.Uint(), 10), nil
	case reflect.Float32:
		return strconv.AppendFloat(nil, v.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.AppendFloat(nil, v.Float(), 'g', -1, 64), nil
	case reflect.Bool:
		return strconv.AppendBool(nil, v.Bool()), nil
	case reflect.String:
		return []byte(v.String()), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Bytes(), nil
		}
	}

	return msgpack.Marshal(value)
}

// Unmarshal decodes data produced by Marshal into ptr
func Unmarshal(data []byte, ptr any) error {
	if b, ok := ptr.(*[]byte); ok {
		*b = append((*b)[:0], data...)
		return nil
	}

	if v := reflect.ValueOf(ptr); v.Kind() == reflect.Ptr && !v.IsNil() {
		switch p := v.Elem(); p.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			i, err := strconv.ParseInt(utils.BytesToString(data), 10, p.Type().Bits())
			if err != nil {
				return err
			}
			p.SetInt(i)
			return nil

		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			i, err := strconv.ParseUint(utils.BytesToString(data), 10, p.Type().Bits())
			if err != nil {
				return err
			}
			p.SetUint(i)
			return nil

		case reflect.Float32, reflect.Float64:
			f, err := strconv.ParseFloat(utils.BytesToString(data), p.Type().Bits())
			if err != nil {
				return err
			}
			p.SetFloat(f)
			return nil

		case reflect.Bool:
			b, err := strconv.ParseBool(utils.BytesToString(data))
			if err != nil {
				return err
			}
			p.SetBool(b)
			return nil

		case reflect.String:
			p.SetString(string(data))
			return nil

		case reflect.Slice:
			if p.Type().Elem().Kind() == reflect.Uint8 {
				p.SetBytes(append([]byte(nil), data...))
				return nil
			}
		}
	}

	return msgpack.Unmarshal(data, ptr)
}
