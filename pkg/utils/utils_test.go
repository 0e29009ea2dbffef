package utils

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

type sampleForm struct {
	Email string `schema:"email" validate:"required,email"`
	Date  string `schema:"date" validate:"required,datetime=2006-01-02"`
	Count int    `schema:"count" validate:"gte=1"`
}

func TestValidateStructUsesFormFieldNames(t *testing.T) {
	errs := ValidateStruct(sampleForm{Email: "nope", Date: "15/10/2026"})
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %v", errs)
	}
	if errs["email"] != "Invalid email format" {
		t.Fatalf("unexpected email message %q", errs["email"])
	}
	if errs["date"] != "Must be a date (YYYY-MM-DD)" {
		t.Fatalf("unexpected date message %q", errs["date"])
	}
	if errs["count"] != "Must be at least 1" {
		t.Fatalf("unexpected count message %q", errs["count"])
	}

	if got := FormatValidationErrors(errs); !strings.HasPrefix(got, "count: ") {
		t.Fatalf("expected sorted output, got %q", got)
	}

	if errs := ValidateStruct(sampleForm{Email: "a@b.co", Date: "2026-10-15", Count: 2}); errs != nil {
		t.Fatalf("expected valid form, got %v", errs)
	}
}

func TestDecodeFormIgnoresUnknownKeys(t *testing.T) {
	form := url.Values{
		"email":              {"a@b.co"},
		"date":               {"2026-10-15"},
		"count":              {"3"},
		"gorilla.csrf.Token": {"token"},
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var dst sampleForm
	if err := DecodeForm(r, &dst); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dst.Email != "a@b.co" || dst.Count != 3 {
		t.Fatalf("unexpected decode %+v", dst)
	}
}

func TestDecodeFormLeavesBlankNumbersUnset(t *testing.T) {
	type priceForm struct {
		Price *float64 `schema:"price" validate:"required,gte=0"`
	}

	decode := func(value string) priceForm {
		form := url.Values{"price": {value}}
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		var dst priceForm
		if err := DecodeForm(r, &dst); err != nil {
			t.Fatalf("decode %q: %v", value, err)
		}
		return dst
	}

	blank := decode("")
	if blank.Price != nil {
		t.Fatalf("blank price decoded to %v", *blank.Price)
	}
	if errs := ValidateStruct(blank); errs["price"] != "This field is required" {
		t.Fatalf("expected required error, got %v", errs)
	}

	zero := decode("0")
	if zero.Price == nil || *zero.Price != 0 {
		t.Fatalf("explicit zero lost: %+v", zero)
	}
	if errs := ValidateStruct(zero); errs != nil {
		t.Fatalf("zero price must be valid, got %v", errs)
	}
}

func TestDeriveKeyIsStableAndPurposeBound(t *testing.T) {
	secret := strings.Repeat("s", 32)
	a, err := DeriveKey(secret, KeyPurposeSessionHash, 32)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	b, _ := DeriveKey(secret, KeyPurposeSessionHash, 32)
	c, _ := DeriveKey(secret, KeyPurposeCSRF, 32)
	if len(a) != 32 || !bytes.Equal(a, b) {
		t.Fatalf("expected stable 32 byte key")
	}
	if bytes.Equal(a, c) {
		t.Fatalf("expected different keys per purpose")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{
		API:     APIConfig{BaseURL: "http://backend"},
		Session: SessionConfig{Driver: SessionDriverCookie, Secret: strings.Repeat("x", 32)},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg.Session.Secret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected short secret to fail")
	}

	cfg.Session.Secret = strings.Repeat("x", 32)
	cfg.Session.Driver = SessionDriverPostgres
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected postgres without DB_HOST to fail")
	}

	cfg.Session.Driver = "memcached"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown driver to fail")
	}
}

func TestProxyPrefixes(t *testing.T) {
	sec := SecurityConfig{TrustedProxies: []string{"", " 10.0.0.0/8 ", "127.0.0.1", "::1"}}
	prefixes, err := sec.ProxyPrefixes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prefixes) != 3 {
		t.Fatalf("expected 3 prefixes, got %v", prefixes)
	}
	if prefixes[1].Bits() != 32 || prefixes[2].Bits() != 128 {
		t.Fatalf("bare addresses must be single-host prefixes, got %v", prefixes)
	}

	sec.TrustedProxies = []string{"proxy.internal"}
	if _, err := sec.ProxyPrefixes(); err == nil {
		t.Fatal("expected a host name to be rejected")
	}
}

func TestAppConfigLocationFallsBack(t *testing.T) {
	if loc := (AppConfig{Timezone: "Not/AZone"}).Location(); loc == nil {
		t.Fatalf("expected fallback location")
	}
	if loc := (AppConfig{Timezone: "UTC"}).Location(); loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %s", loc)
	}
}

func TestFormErrorsReportsBadNumbers(t *testing.T) {
	type serviceForm struct {
		Name  string  `schema:"name"`
		Price float64 `schema:"price"`
	}

	body := url.Values{"name": {"Wash"}, "price": {"cheap"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var form serviceForm
	err := DecodeForm(req, &form)
	if err == nil {
		t.Fatal("expected conversion error")
	}

	errs := FormErrors(err)
	if errs["price"] == "" {
		t.Fatalf("expected price error, got %v", errs)
	}
}
