package utils

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	// csrf token and submit buttons travel with every form
	d.IgnoreUnknownKeys(true)
	d.ZeroEmpty(true)
	return d
}

// DecodeForm parses the request form (urlencoded or multipart) into dst.
func DecodeForm(r *http.Request, dst any) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
			return fmt.Errorf("parse multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}

	if err := formDecoder.Decode(dst, withoutBlanks(r.PostForm)); err != nil {
		return fmt.Errorf("decode form: %w", err)
	}
	return nil
}

// withoutBlanks drops inputs that were submitted empty. The decoder allocates
// pointer fields before looking at the value, so a blank input would
// otherwise turn an optional number into a pointer to zero.
func withoutBlanks(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for key, vals := range values {
		for _, v := range vals {
			if v != "" {
				out[key] = vals
				break
			}
		}
	}
	return out
}

// DecodeQuery reads the URL query string into dst.
func DecodeQuery(r *http.Request, dst any) error {
	if err := formDecoder.Decode(dst, r.URL.Query()); err != nil {
		return fmt.Errorf("decode query: %w", err)
	}
	return nil
}

// FormErrors maps a DecodeForm failure to field -> message. Values that
// could not be converted (a word in a number field) are reported per field.
func FormErrors(err error) map[string]string {
	errs := make(map[string]string)

	var multi schema.MultiError
	if errors.As(err, &multi) {
		for key, fieldErr := range multi {
			var conv schema.ConversionError
			if errors.As(fieldErr, &conv) {
				errs[conv.Key] = "Invalid value"
				continue
			}
			errs[key] = "Invalid value"
		}
	}
	if len(errs) == 0 {
		errs["form"] = "The form could not be read"
	}
	return errs
}

// MaxUploadSize bounds in-memory multipart parsing for service images.
const MaxUploadSize = 8 << 20

// ClientIP returns the caller address without port. Behind a trusted proxy
// middleware.RealIP has already folded the forwarded address into RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
