package langmeta

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"ru", "Russian"},
		{"pt-BR", "Portuguese (Brazil)"},
		{"pt_BR", "Portuguese (Brazil)"},
		{"PT-br", "Portuguese (Brazil)"},
		{"fr-FR", "French"},
		{"DE", "German"},
		{"tlh", "tlh"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := Resolve(tt.code).Name; got != tt.want {
				t.Errorf("Resolve(%q).Name = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestRegistryComplete(t *testing.T) {
	for code, m := range Registry {
		if m.Name == "" || m.Native == "" {
			t.Errorf("registry entry %q missing names: %+v", code, m)
		}
	}
}
