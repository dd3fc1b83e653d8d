package cmd

import (
	"testing"
)

func TestCommandTree(t *testing.T) {
	tests := []struct {
		parent string
		subs   []string
	}{
		{"auth", []string{"login", "logout", "status"}},
		{"workers", []string{"list", "get", "create", "update", "delete", "start", "stop", "pause", "resume"}},
		{"activity", []string{"list", "summary", "feed"}},
		{"integrations", []string{"providers", "credentials", "connect", "callback", "revoke"}},
		{"config", []string{"show"}},
	}

	for _, tt := range tests {
		parent, _, err := rootCmd.Find([]string{tt.parent})
		if err != nil {
			t.Fatalf("command %q not registered: %v", tt.parent, err)
		}

		for _, sub := range tt.subs {
			found := false
			for _, c := range parent.Commands() {
				if c.Name() == sub {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("%s is missing subcommand %s", tt.parent, sub)
			}
		}
	}

	if _, _, err := rootCmd.Find([]string{"version"}); err != nil {
		t.Errorf("version command not registered: %v", err)
	}
}

func TestGlobalFlags(t *testing.T) {
	if rootCmd.PersistentFlags().Lookup("json") == nil {
		t.Error("--json flag should be registered on the root command")
	}
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag should be registered on the root command")
	}
}
