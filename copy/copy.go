package copy

import (
	"github.com/frame-go/cachekit/encoding/json"
	"github.com/frame-go/cachekit/errors"
)

const (
	errorNilPointer = "src_or_dst_cannot_be_nil"
	errorEncoding   = "encoding_failed_during_deep_copy"
	errorDecoding   = "decoding_failed_during_deep_copy"
)

// Notes on deep copy methods:
// 1. always need to pass Ptr for dst, otherwise copy will fail.
// 2. dst need to be a Ptr to be concrete type, instead of interface{}, since json serialization does not hold type info.
// 3. for struct, only supports exported fields.

// JsonDeepCopy copies src into dst through a json round trip
func JsonDeepCopy(dst interface{}, src interface{}) error {
	if dst == nil || src == nil {
		return errors.New(errorNilPointer)
	}

	encodedBytes, err := json.Marshal(src)
	if err != nil {
		return errors.Wrap(err, errorEncoding)
	}
	if err := json.Unmarshal(encodedBytes, dst); err != nil {
		return errors.Wrap(err, errorDecoding)
	}

	return nil
}
