package wallet

import "testing"

func TestParseDataAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2GB", 2},
		{"1.5GB", 1.5},
		{".5GB", 0.5},
		{"10 GB", 10},
		{"GB2", 2},
		{"abcGB", 0},
		{"", 0},
		{"garbage", 0},
		{"1.2.3GB", 1.2},
		{"..5", 0},
		{"data: 3GB bonus", 3},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseDataAmount(tt.in); got != tt.want {
				t.Errorf("ParseDataAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"BING-AB12CD34", true},
		{"12345678", true},
		{"short", false},
		{"", false},
		{"       a      ", false}, // padding does not count
	}

	for _, tt := range tests {
		if got := IsValidCode(tt.code); got != tt.want {
			t.Errorf("IsValidCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
