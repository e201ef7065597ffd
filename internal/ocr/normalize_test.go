package ocr

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf and tabs", "a\r\nb\t\tc", "a\nb c"},
		{"fullwidth folded", "合計：ＮＴ＄１２，０００", "合計:NT$12,000"},
		{"fullwidth at", "user＠example.com", "user@example.com"},
		{"han gaps joined", "分 潤 乙 方 新 台 幣", "分潤乙方新台幣"},
		{"latin spaces kept", "test . user (at) example.com", "test . user (at) example.com"},
		{"blank lines collapsed", "a\n  \n\n\n\nb", "a\n\nb"},
		{"box noise dropped", "a\n-----\nb", "a\n\nb"},
		{"ideographic space", "單價　1,200", "單價 1,200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
