package helper

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrorMap mengubah validator.ValidationErrors → map field → pesan.
// ok=false kalau err bukan error validasi.
func ValidationErrorMap(err error) (map[string][]string, bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}

	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		field := toSnake(fe.Field())
		var msg string
		switch fe.Tag() {
		case "required":
			msg = field + " wajib diisi"
		case "gte", "min":
			msg = field + " minimal " + fe.Param()
		case "lte", "max":
			msg = field + " maksimal " + fe.Param()
		case "gt":
			msg = field + " harus lebih dari " + fe.Param()
		case "oneof":
			msg = field + " harus salah satu dari " + fe.Param()
		default:
			msg = "format " + field + " tidak valid"
		}
		out[field] = append(out[field], msg)
	}
	return out, true
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
