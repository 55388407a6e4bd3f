// internal/app/membership/codes_test.go
package membership

import (
	"strings"
	"testing"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), CodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("code %q contains %q, outside the alphabet", code, c)
			}
		}
		seen[code] = true
	}
	// 100 codes over a 32^8 space colliding would mean rand is broken.
	if len(seen) < 100 {
		t.Errorf("saw %d distinct codes out of 100", len(seen))
	}
}
