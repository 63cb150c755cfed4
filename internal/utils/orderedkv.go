package utils

import (
	"bytes"
	"encoding/json"
	"sort"
)

type OrderedKV[T any] struct {
	Value T
	Order int64
}

type OrderedKVMap[T any] map[string]OrderedKV[T]

// Zip pairs keys with values positionally. Keys beyond the end of
// values map to the zero value.
func Zip[T any](keys []string, values []T) OrderedKVMap[T] {
	om := make(OrderedKVMap[T], len(keys))
	for i, k := range keys {
		var v T
		if i < len(values) {
			v = values[i]
		}
		om[k] = OrderedKV[T]{Value: v, Order: int64(i)}
	}
	return om
}

func (om OrderedKVMap[T]) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(om))
	for k := range om {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return om[keys[i]].Order < om[keys[j]].Order
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valueBytes, err := json.Marshal(om[k].Value)
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
