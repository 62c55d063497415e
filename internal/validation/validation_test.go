package validation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidator_LatestRequestCodes(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{"valid code", "USD", true},
		{"valid code EUR", "EUR", true},
		{"empty", "", false},
		{"too short", "US", false},
		{"too long", "USDX", false},
		{"lowercase", "usd", false},
		{"mixed case", "Usd", false},
		{"digits", "U5D", false},
		{"all digits", "123", false},
		{"symbols", "U$D", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := v.Check(LatestRequest{Code: tt.code})
			if tt.valid && violations != nil {
				t.Errorf("Check(%q) = %v, want no violations", tt.code, violations)
			}
			if !tt.valid && len(violations) == 0 {
				t.Errorf("Check(%q) = no violations, want rejection", tt.code)
			}
		})
	}
}

func TestValidator_ConvertRequestRestrictedCurrencies(t *testing.T) {
	v := New()
	amount := decimal.NewFromInt(10)

	// The restricted set is matched case-insensitively, even though a
	// lowercase code already fails the format rule.
	restricted := []string{"TRY", "PLN", "THB", "MXN"}
	for _, code := range restricted {
		t.Run("base "+code, func(t *testing.T) {
			violations := v.Check(ConvertRequest{BaseCode: code, TargetCode: "USD", Amount: amount})
			if len(violations) == 0 {
				t.Errorf("Check(base=%s) = no violations, want rejection", code)
			}
		})
		t.Run("target "+code, func(t *testing.T) {
			violations := v.Check(ConvertRequest{BaseCode: "USD", TargetCode: code, Amount: amount})
			if len(violations) == 0 {
				t.Errorf("Check(target=%s) = no violations, want rejection", code)
			}
		})
	}

	violations := v.Check(ConvertRequest{BaseCode: "USD", TargetCode: "EUR", Amount: amount})
	if violations != nil {
		t.Errorf("Check(USD->EUR) = %v, want no violations", violations)
	}
}

func TestValidator_ConvertRequestAmounts(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		amount string
		valid  bool
	}{
		{"boundary exactly minimum", "0.001", true},
		{"below minimum", "0.0009", false},
		{"zero", "0", false},
		{"negative", "-10", false},
		{"one", "1", true},
		{"large", "1000000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			if err != nil {
				t.Fatalf("decimal.NewFromString(%q) error = %v", tt.amount, err)
			}
			violations := v.Check(ConvertRequest{BaseCode: "USD", TargetCode: "EUR", Amount: amount})
			if tt.valid && violations != nil {
				t.Errorf("Check(amount=%s) = %v, want no violations", tt.amount, violations)
			}
			if !tt.valid && len(violations) == 0 {
				t.Errorf("Check(amount=%s) = no violations, want rejection", tt.amount)
			}
		})
	}
}

func TestValidator_ConvertRequestReportsAllViolations(t *testing.T) {
	v := New()

	violations := v.Check(ConvertRequest{BaseCode: "usd", TargetCode: "TRY", Amount: decimal.Zero})
	if len(violations) < 3 {
		t.Fatalf("Check() = %d violations, want at least 3: %v", len(violations), violations)
	}

	fields := make(map[string]bool)
	for _, violation := range violations {
		fields[violation.Field] = true
	}
	for _, field := range []string{"baseCode", "targetCode", "amount"} {
		if !fields[field] {
			t.Errorf("Check() missing violation for field %q: %v", field, violations)
		}
	}
}

func TestValidator_HistoryRequestValidatesCodeOnly(t *testing.T) {
	v := New()

	// Inverted date range is deliberately accepted; ordering is the
	// upstream's concern.
	begin := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if violations := v.Check(HistoryRequest{BeginDate: begin, EndDate: end, Code: "USD"}); violations != nil {
		t.Errorf("Check(inverted dates) = %v, want no violations", violations)
	}

	if violations := v.Check(HistoryRequest{BeginDate: begin, EndDate: end, Code: "usd"}); len(violations) == 0 {
		t.Error("Check(lowercase code) = no violations, want rejection")
	}

	// Restricted currencies are allowed outside conversion requests.
	if violations := v.Check(HistoryRequest{BeginDate: begin, EndDate: end, Code: "TRY"}); violations != nil {
		t.Errorf("Check(history TRY) = %v, want no violations", violations)
	}
}

func TestValidator_LatestRequestAllowsRestrictedCurrencies(t *testing.T) {
	v := New()

	if violations := v.Check(LatestRequest{Code: "TRY"}); violations != nil {
		t.Errorf("Check(latest TRY) = %v, want no violations", violations)
	}
}
