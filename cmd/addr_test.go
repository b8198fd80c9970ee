package cmd

import "testing"

func TestParseServeAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"default", nil, "127.0.0.1:8080", false},
		{"positional", []string{":9000"}, ":9000", false},
		{"flag", []string{"--addr", "localhost:9001"}, "localhost:9001", false},
		{"single dash flag", []string{"-addr", "127.0.0.1:9002"}, "127.0.0.1:9002", false},
		{"missing port", []string{"localhost"}, "", true},
		{"port out of range", []string{":99999"}, "", true},
		{"non-numeric port", []string{":http"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseServeAddr(tt.args, "127.0.0.1:8080")
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseServeAddr(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseServeAddr(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestValidateAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"127.0.0.1:8080", false},
		{"localhost:3000", false},
		{":8080", false},
		{":0", false},
		{"[::1]:8080", false},
		{"no-port", true},
		{":-1", true},
		{":70000", true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			t.Parallel()
			if err := validateAddr(tt.addr); (err != nil) != tt.wantErr {
				t.Errorf("validateAddr(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
		})
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	if err := Execute([]string{"bogus"}); err == nil {
		t.Error("Execute(bogus) should fail")
	}
}

func TestExecuteHelp(t *testing.T) {
	if err := Execute([]string{"help"}); err != nil {
		t.Errorf("Execute(help) error = %v", err)
	}
}
