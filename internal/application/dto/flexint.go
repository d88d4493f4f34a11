package dto

import (
	"strconv"
	"strings"
)

// FlexInt acepta un entero como número JSON o como string ("12", " 7", "3.5").
// Toma el prefijo entero; cualquier otro valor queda en 0.
type FlexInt int64

// UnmarshalJSON implementa json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*f = FlexInt(leadingInt(s))
	return nil
}

// Int64 devuelve el valor como int64.
func (f FlexInt) Int64() int64 { return int64(f) }

func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
