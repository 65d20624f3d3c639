package model

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // shared codec

var null = []byte("null")

// ID is an opaque restaurant identifier. The API sends it either as a JSON
// string or a JSON number; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts a string, a number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*id = ID(strconv.FormatInt(n, 10))
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return &strconv.NumError{Func: "ID", Num: string(data), Err: strconv.ErrSyntax}
	}
	// 1, 1.0 and 1e0 name the same record.
	*id = ID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// OptionalInt is an integer that may be absent. It encodes as null when absent.
type OptionalInt struct {
	Value int
	Valid bool
}

// Some returns a present OptionalInt.
func Some(v int) OptionalInt { return OptionalInt{Value: v, Valid: true} }

// Get returns the value and whether it is present.
func (o OptionalInt) Get() (int, bool) { return o.Value, o.Valid }

// MarshalJSON encodes the value or null.
func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return null, nil
	}
	return []byte(strconv.Itoa(o.Value)), nil
}

// UnmarshalJSON never fails on a well-formed JSON value: anything that is not
// a finite number (or a string holding one) decodes as absent.
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	*o = OptionalInt{}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil //nolint:nilerr // malformed scores are treated as unknown
	}

	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	*o = Some(int(math.Round(f)))
	return nil
}

// UnmarshalJSON decodes an inspection without ever failing on field types.
// A non-object value decodes as the zero summary, and a field holding
// anything but a string (or, for score, a number) decodes as absent.
func (s *InspectionSummary) UnmarshalJSON(data []byte) error {
	*s = InspectionSummary{}

	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil //nolint:nilerr // malformed inspections are treated as unknown
	}

	s.Date = text(raw["date"])
	s.Grade = text(raw["grade"])
	s.Summary = text(raw["summary"])
	s.ViolationCode = text(raw["violation_code"])
	s.Action = text(raw["action"])
	s.CriticalFlag = text(raw["critical_flag"])
	if score, ok := raw["score"]; ok {
		_ = s.Score.UnmarshalJSON(score)
	}
	return nil
}

// Empty reports whether no field of the inspection is set.
func (s *InspectionSummary) Empty() bool {
	return s == nil || *s == InspectionSummary{}
}

func text(data jsoniter.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return ""
	}
	return v
}
