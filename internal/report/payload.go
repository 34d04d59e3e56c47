package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"myfxreport/internal/pkg/maputil"
)

// ErrMalformedPayload is returned when the request body is not a JSON object of the
// expected shape. It is the only input condition the calculator treats as an error.
var ErrMalformedPayload = errors.New("malformed report payload")

// payloadSchemaJSON only constrains the envelope; every field inside is tolerated.
const payloadSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "account_info": {"type": ["object", "null"]},
    "trade_data": {"type": ["object", "null"]}
  }
}`

var payloadSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("payload.json", strings.NewReader(payloadSchemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("payload.json")
})

// TradeBucket is one named entry of trade_data, kept in document order.
type TradeBucket struct {
	Name  string
	Value any
}

// Payload is the decoded request envelope.
type Payload struct {
	AccountInfo map[string]any
	TradeData   []TradeBucket
}

// DecodePayload parses a request body. An empty body decodes to an empty payload.
func DecodePayload(raw []byte) (Payload, error) {
	out := Payload{AccountInfo: map[string]any{}}
	body := bytes.TrimSpace(raw)
	if len(body) == 0 {
		return out, nil
	}
	if !gjson.ValidBytes(body) {
		return Payload{}, fmt.Errorf("%w: body is not valid JSON", ErrMalformedPayload)
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return Payload{}, fmt.Errorf("%w: root must be an object", ErrMalformedPayload)
	}
	doc, _ := resultValue(parsed).(map[string]any)
	schema, err := payloadSchema()
	if err != nil {
		return Payload{}, fmt.Errorf("compile payload schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if info, ok := maputil.Map(doc, "account_info"); ok {
		out.AccountInfo = info
	}
	// Buckets follow the document order of their first occurrence; a repeated key
	// replaces the earlier value in place, as for any other object.
	if trades := parsed.Get("trade_data"); trades.IsObject() {
		seen := make(map[string]int)
		trades.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if idx, ok := seen[name]; ok {
				out.TradeData[idx].Value = resultValue(value)
				return true
			}
			seen[name] = len(out.TradeData)
			out.TradeData = append(out.TradeData, TradeBucket{Name: name, Value: resultValue(value)})
			return true
		})
	}
	return out, nil
}

// resultValue converts r like gjson's Value but keeps numbers as json.Number, so
// integer tickets wider than a float64 mantissa survive.
func resultValue(r gjson.Result) any {
	switch {
	case r.IsObject():
		m := make(map[string]any)
		r.ForEach(func(key, value gjson.Result) bool {
			m[key.String()] = resultValue(value)
			return true
		})
		return m
	case r.IsArray():
		items := make([]any, 0)
		r.ForEach(func(_, value gjson.Result) bool {
			items = append(items, resultValue(value))
			return true
		})
		return items
	case r.Type == gjson.Number:
		return json.Number(strings.TrimSpace(r.Raw))
	default:
		return r.Value()
	}
}
