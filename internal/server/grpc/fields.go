package grpc

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"
)

// fieldReader pulls typed values out of a request struct. Missing or null
// fields read as zero values. The first type mismatch is kept in err.
type fieldReader struct {
	fields map[string]*structpb.Value
	err    error
}

func newFieldReader(s *structpb.Struct) *fieldReader {
	return &fieldReader{fields: s.GetFields()}
}

func (r *fieldReader) value(name string) *structpb.Value {
	v, ok := r.fields[name]
	if !ok {
		return nil
	}
	if _, null := v.GetKind().(*structpb.Value_NullValue); null {
		return nil
	}
	return v
}

func (r *fieldReader) fail(name, want string) {
	if r.err == nil {
		r.err = fmt.Errorf("field %s: expected %s", name, want)
	}
}

func (r *fieldReader) String(name string) string {
	v := r.value(name)
	if v == nil {
		return ""
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		r.fail(name, "string")
		return ""
	}
	return s.StringValue
}

func (r *fieldReader) Number(name string) float64 {
	v := r.value(name)
	if v == nil {
		return 0
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		r.fail(name, "number")
		return 0
	}
	return n.NumberValue
}

func (r *fieldReader) Int(name string) int64 {
	n := r.Number(name)
	if n != math.Trunc(n) {
		r.fail(name, "integer")
		return 0
	}
	return int64(n)
}

func (r *fieldReader) Strings(name string) []string {
	v := r.value(name)
	if v == nil {
		return nil
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		r.fail(name, "list of strings")
		return nil
	}
	out := make([]string, 0, len(list.ListValue.GetValues()))
	for _, item := range list.ListValue.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			r.fail(name, "list of strings")
			return nil
		}
		out = append(out, s.StringValue)
	}
	return out
}

func stringList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
