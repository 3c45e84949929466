package mcp

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// argumentGetter is satisfied by mcp.CallToolRequest.
type argumentGetter interface {
	GetArguments() map[string]any
}

// bindArguments decodes tool arguments into target using json tags. Some
// clients send every argument as a string, so JSON-encoded arrays and objects
// inside strings are decoded before binding.
func bindArguments[T any](request argumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(request.GetArguments())
}

func jsonStringHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Slice:
		if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
			return data, nil
		}
		out := reflect.New(to)
		if err := json.Unmarshal([]byte(raw), out.Interface()); err == nil {
			return out.Elem().Interface(), nil
		}
	case reflect.Map, reflect.Struct:
		if !strings.HasPrefix(raw, "{") || !strings.HasSuffix(raw, "}") {
			return data, nil
		}
		var out any
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return out, nil
		}
	}
	return data, nil
}
