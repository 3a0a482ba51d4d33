package validate

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/corray333/littlelemon/internal/service/svcerr"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator. Field errors are reported under
// their json or schema names.
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "schema"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}

			return f.Name
		})
	})

	return instance
}

// Struct validates v.
func Struct(v any) error {
	return Validator().Struct(v)
}

// NewDecoder returns a query-string decoder that ignores parameters it does not know.
func NewDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return decoder
}

// PathID parses a positive integer URL parameter. Anything else is reported
// as not found, since no resource can live at that path.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, svcerr.NotFound("no resource at %q", raw)
	}

	return id, nil
}
