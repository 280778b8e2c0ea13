package velocity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
)

// ValueFromJSON decodes a JSON document into a Value. Integral numbers
// become integer Numbers; null becomes the empty string.
func ValueFromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("failed to decode JSON value: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("failed to decode JSON value: trailing data")
	}
	return FromGo(raw)
}

// FromJSON decodes a JSON object into a Context.
func FromJSON(data []byte) (Context, error) {
	v, err := ValueFromJSON(data)
	if err != nil {
		return nil, err
	}
	fields, ok := v.AsObject()
	if !ok {
		return nil, fmt.Errorf("context JSON must be an object, got %s", v.Kind())
	}
	return Context(fields), nil
}

// ContextFromStruct converts a struct or map into a Context using its JSON
// encoding, so `json` struct tags control the key names.
func ContextFromStruct(obj interface{}) (Context, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to encode context source: %w", err)
	}
	return FromJSON(data)
}

// FromGo converts a Go value into a Value. Supported inputs are the types
// produced by encoding/json plus Go numeric types, slices and string-keyed
// maps. Other types go through their JSON encoding.
func FromGo(in interface{}) (Value, error) {
	switch v := in.(type) {
	case nil:
		return StringValue(""), nil
	case Value:
		return v, nil
	case string:
		return StringValue(v), nil
	case bool:
		return BoolValue(v), nil
	case int:
		return IntValue(int64(v)), nil
	case int8:
		return IntValue(int64(v)), nil
	case int16:
		return IntValue(int64(v)), nil
	case int32:
		return IntValue(int64(v)), nil
	case int64:
		return IntValue(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return FloatValue(float64(v)), nil
		}
		return IntValue(int64(v)), nil
	case uint8:
		return IntValue(int64(v)), nil
	case uint16:
		return IntValue(int64(v)), nil
	case uint32:
		return IntValue(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return FloatValue(float64(v)), nil
		}
		return IntValue(int64(v)), nil
	case float32:
		return FloatValue(float64(v)), nil
	case float64:
		return FloatValue(v), nil
	case json.Number:
		return numberValue(string(v))
	case []interface{}:
		items := make([]Value, len(v))
		for i, item := range v {
			converted, err := FromGo(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = converted
		}
		return ArrayValue(items...), nil
	case map[string]interface{}:
		fields := make(map[string]Value, len(v))
		for k, item := range v {
			converted, err := FromGo(item)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			fields[k] = converted
		}
		return ObjectValue(fields), nil
	case map[string]Value:
		return ObjectValue(v), nil
	case []Value:
		return ArrayValue(v...), nil
	}

	rv := reflect.ValueOf(in)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		items := make([]Value, rv.Len())
		for i := range items {
			converted, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = converted
		}
		return ArrayValue(items...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		fields := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			converted, err := FromGo(iter.Value().Interface())
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", iter.Key().String(), err)
			}
			fields[iter.Key().String()] = converted
		}
		return ObjectValue(fields), nil
	}

	data, err := json.Marshal(in)
	if err != nil {
		return Value{}, fmt.Errorf("unsupported value of type %T: %w", in, err)
	}
	return ValueFromJSON(data)
}

func numberValue(s string) (Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return FloatValue(f), nil
}
