package usecase

import (
	"testing"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name          string
		quantity      string
		wantAmbiguous bool
	}{
		{
			name:          "weight with kg",
			quantity:      "2 kg",
			wantAmbiguous: false,
		},
		{
			name:          "weight with g",
			quantity:      "500 g",
			wantAmbiguous: false,
		},
		{
			name:          "weight without space",
			quantity:      "500g",
			wantAmbiguous: false,
		},
		{
			name:          "volume in liters",
			quantity:      "1 l",
			wantAmbiguous: false,
		},
		{
			name:          "volume in ml",
			quantity:      "330ml",
			wantAmbiguous: false,
		},
		{
			name:          "piece count",
			quantity:      "3 pcs",
			wantAmbiguous: false,
		},
		{
			name:          "cyrillic piece count",
			quantity:      "6 бр",
			wantAmbiguous: false,
		},
		{
			name:          "bare number",
			quantity:      "7",
			wantAmbiguous: false,
		},
		{
			name:          "decimal with dot",
			quantity:      "1.5 kg",
			wantAmbiguous: false,
		},
		{
			name:          "decimal with comma",
			quantity:      "0,5 l",
			wantAmbiguous: false,
		},
		{
			name:          "uppercase input is normalized",
			quantity:      "2 KG",
			wantAmbiguous: false,
		},
		{
			name:          "surrounding whitespace is trimmed",
			quantity:      "  500 g  ",
			wantAmbiguous: false,
		},
		{
			name:          "range is ambiguous",
			quantity:      "2-3 kg",
			wantAmbiguous: true,
		},
		{
			name:          "size adjective is ambiguous",
			quantity:      "large",
			wantAmbiguous: true,
		},
		{
			name:          "prose is ambiguous",
			quantity:      "family pack",
			wantAmbiguous: true,
		},
		{
			name:          "unknown unit is ambiguous",
			quantity:      "2 boxes",
			wantAmbiguous: true,
		},
		{
			name:          "trailing text is ambiguous",
			quantity:      "500 g approx",
			wantAmbiguous: true,
		},
		{
			name:          "empty string is ambiguous",
			quantity:      "",
			wantAmbiguous: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuantity(tt.quantity)
			if got.IsAmbiguous != tt.wantAmbiguous {
				t.Errorf("ParseQuantity(%q).IsAmbiguous = %v, want %v", tt.quantity, got.IsAmbiguous, tt.wantAmbiguous)
			}
		})
	}
}
