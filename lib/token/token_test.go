package token

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	token := New("registration")
	if !strings.HasPrefix(token, "registration_") {
		t.Errorf("token has wrong prefix: %s", token)
	} else if len(token) != len("registration_")+tokenLength {
		t.Errorf("token has wrong length: %s", token)
	}
}

func TestRandStrUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 128; i++ {
		s := RandStr()
		if seen[s] {
			t.Errorf("duplicate random string: %s", s)
		}
		seen[s] = true
	}
}
