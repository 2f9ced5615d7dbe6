package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator delimits cache key segments.
const KeySeparator = "::"

// maxKeyLength caps the raw key size before segments are folded into a
// digest. Browse filters serialize into long composites and shared backends
// reject or mangle oversized keys.
const maxKeyLength = 200

// KeySerializer builds a cache key from an operation name plus its arguments.
// Implementations must be pure: identical inputs yield identical keys, and
// semantically equal arguments (for example maps with different insertion
// order) must serialize identically.
type KeySerializer interface {
	SerializeKey(operation string, args ...any) string
}

// defaultKeySerializer canonicalizes arguments with reflection: map keys are
// sorted, struct fields are walked in declaration order, slices recursively.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer returns the canonical key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

func (s *defaultKeySerializer) SerializeKey(operation string, args ...any) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, operation)

	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}

	key := strings.Join(parts, KeySeparator)
	if len(key) <= maxKeyLength {
		return key
	}
	// Keep the operation segment readable and fold the rest into a digest so
	// related keys still group under a common prefix.
	return operation + KeySeparator + "x" + strconv.FormatUint(xxhash.Sum64String(key), 16)
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	rt := reflect.TypeOf(v)

	switch rt.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())

	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return s.serializeSeq("slice", rv)

	case reflect.Array:
		return s.serializeSeq("array", rv)

	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.serializeMap(rv)

	case reflect.Struct:
		return s.serializeStruct(rv, rt)

	case reflect.Func, reflect.Chan:
		// Pointer identity is the best we can do; stable within a process.
		return fmt.Sprintf("%s:%p", rt.Kind(), v)

	case reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	}

	if isBasicKind(rt.Kind()) {
		return fmt.Sprintf("%v", v)
	}

	return s.jsonFallback(v)
}

func (s *defaultKeySerializer) serializeSeq(label string, rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = s.serializeValue(rv.Index(i).Interface())
	}
	return fmt.Sprintf("%s[%d]:{%s}", label, len(parts), strings.Join(parts, ","))
}

// serializeMap emits key=value pairs ordered by the serialized key so maps
// with different insertion order produce identical cache keys.
func (s *defaultKeySerializer) serializeMap(rv reflect.Value) string {
	type pair struct{ k, v string }

	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, pair{
			k: s.serializeValue(iter.Key().Interface()),
			v: s.serializeValue(iter.Value().Interface()),
		})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })

	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.k + "=" + p.v
	}
	return fmt.Sprintf("map[%d]:{%s}", len(out), strings.Join(out, ","))
}

func (s *defaultKeySerializer) serializeStruct(rv reflect.Value, rt reflect.Type) string {
	parts := make([]string, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if !fv.CanInterface() {
			continue
		}
		parts = append(parts, field.Name+":"+s.serializeValue(fv.Interface()))
	}
	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}

func isBasicKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

// jsonFallback keeps key generation going for types reflection cannot walk.
func (s *defaultKeySerializer) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "fallback:" + reflect.TypeOf(v).String()
	}
	return "json:" + string(data)
}
