package main

import (
	"testing"

	"github.com/yourusername/tilewm/internal/command"
	"github.com/yourusername/tilewm/internal/types"
)

func TestParseMonitors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []types.Rect
		wantErr bool
	}{
		{
			name:  "size only",
			args: []string{"DP-1=1920x1080"},
			want:  []types.Rect{{Width: 1920, Height: 1080}},
		},
		{
			name:  "with position",
			args: []string{"DP-1=2560x1440", "HDMI-1=1920x1080+2560+0"},
			want:  []types.Rect{{Width: 2560, Height: 1440}, {X: 2560, Width: 1920, Height: 1080}},
		},
		{name: "missing name", args: []string{"=1920x1080"}, wantErr: true},
		{name: "missing size", args: []string{"DP-1"}, wantErr: true},
		{name: "bad size", args: []string{"DP-1=widexhigh"}, wantErr: true},
		{name: "zero size", args: []string{"DP-1=0x0"}, wantErr: true},
		{name: "half position", args: []string{"DP-1=10x10+5"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMonitors(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMonitors() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseMonitors() returned %d monitors, want %d", len(got), len(tt.want))
			}
			for i, m := range got {
				if m.Rect != tt.want[i] {
					t.Errorf("monitor %d rect = %+v, want %+v", i, m.Rect, tt.want[i])
				}
				if m.Primary != (i == 0) {
					t.Errorf("monitor %d primary = %v", i, m.Primary)
				}
			}
		})
	}
}

func TestCommandParams(t *testing.T) {
	params, err := commandParams(
		[]string{"manage_window", `{"handle": 1, "title": "from json"}`},
		[]string{"title=from flag", "handle=42", "state=floating"},
	)
	if err != nil {
		t.Fatalf("commandParams() error = %v", err)
	}

	cmd, err := command.FromParams(params)
	if err != nil {
		t.Fatalf("FromParams() error = %v", err)
	}
	m, ok := cmd.(*command.ManageWindow)
	if !ok {
		t.Fatalf("FromParams() = %T, want *command.ManageWindow", cmd)
	}
	if m.Handle != 42 || m.Title != "from flag" || m.State != types.StateFloating {
		t.Errorf("ManageWindow = %+v", m)
	}
}

func TestCommandParamsErrors(t *testing.T) {
	if _, err := commandParams([]string{"focus", "[1,2]"}, nil); err == nil {
		t.Error("expected error for non-object JSON")
	}
	if _, err := commandParams([]string{"focus"}, []string{"novalue"}); err == nil {
		t.Error("expected error for --set without '='")
	}
}
