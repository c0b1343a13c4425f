package gateway

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Run("Production", func(t *testing.T) {
		ep, err := Resolve(EnvironmentProduction)
		if err != nil {
			t.Fatalf("Resolve(Production) failed: %v", err)
		}
		if ep.Host != ProductionHost {
			t.Errorf("Host = %q, want %q", ep.Host, ProductionHost)
		}
		if ep.Addr() == "" {
			t.Error("Addr() is empty")
		}
	})

	t.Run("Sandbox", func(t *testing.T) {
		ep, err := Resolve(EnvironmentSandbox)
		if err != nil {
			t.Fatalf("Resolve(Sandbox) failed: %v", err)
		}
		if ep.Host != SandboxHost {
			t.Errorf("Host = %q, want %q", ep.Host, SandboxHost)
		}
	})

	t.Run("Stable", func(t *testing.T) {
		first, _ := Resolve(EnvironmentSandbox)
		second, _ := Resolve(EnvironmentSandbox)
		if first != second {
			t.Errorf("Resolve not stable: %v != %v", first, second)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := Resolve(Environment(42))
		if !errors.Is(err, ErrUnknownEnvironment) {
			t.Errorf("err = %v, want ErrUnknownEnvironment", err)
		}
	})
}

func TestEndpointString(t *testing.T) {
	ep, err := Resolve(EnvironmentProduction)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := "tls://gateway.push.pushgate.net:2195"
	if ep.String() != want {
		t.Errorf("String() = %q, want %q", ep.String(), want)
	}
}

func TestEnvironmentValid(t *testing.T) {
	if !EnvironmentProduction.Valid() {
		t.Error("Production should be valid")
	}
	if !EnvironmentSandbox.Valid() {
		t.Error("Sandbox should be valid")
	}
	if Environment(7).Valid() {
		t.Error("Environment(7) should not be valid")
	}
}

func TestParseEnvironment(t *testing.T) {
	cases := []struct {
		in      string
		want    Environment
		wantErr bool
	}{
		{"production", EnvironmentProduction, false},
		{"PROD", EnvironmentProduction, false},
		{"sandbox", EnvironmentSandbox, false},
		{"Dev", EnvironmentSandbox, false},
		{"staging", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		env, err := ParseEnvironment(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownEnvironment) {
				t.Errorf("ParseEnvironment(%q) err = %v, want ErrUnknownEnvironment", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEnvironment(%q) failed: %v", tc.in, err)
			continue
		}
		if env != tc.want {
			t.Errorf("ParseEnvironment(%q) = %v, want %v", tc.in, env, tc.want)
		}
	}
}
