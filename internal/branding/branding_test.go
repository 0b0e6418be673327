package branding

import "testing"

func TestEmbeddedValues(t *testing.T) {
	if got := CLIName(); got != "pkglink" {
		t.Errorf("CLIName() = %q, want %q", got, "pkglink")
	}
	if got := HomeDir(); got != ".pkglink" {
		t.Errorf("HomeDir() = %q, want %q", got, ".pkglink")
	}
}

func TestEnvVar(t *testing.T) {
	if got := EnvVar("global_prefix"); got != "PKGLINK_GLOBAL_PREFIX" {
		t.Errorf("EnvVar() = %q, want %q", got, "PKGLINK_GLOBAL_PREFIX")
	}
}
