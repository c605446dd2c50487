package types

import "testing"

func TestRectCenter(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want Point
	}{
		{
			name: "origin rect",
			rect: Rect{X: 0, Y: 0, Width: 100, Height: 100},
			want: Point{X: 50, Y: 50},
		},
		{
			name: "offset rect",
			rect: Rect{X: 100, Y: 200, Width: 50, Height: 80},
			want: Point{X: 125, Y: 240},
		},
		{
			name: "zero size",
			rect: Rect{X: 10, Y: 20, Width: 0, Height: 0},
			want: Point{X: 10, Y: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rect.Center()
			if got.X != tt.want.X || got.Y != tt.want.Y {
				t.Errorf("Center() = (%v, %v), want (%v, %v)", got.X, got.Y, tt.want.X, tt.want.Y)
			}
		})
	}
}

func TestRectOverlap(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	if got := a.Overlap(Rect{X: 50, Y: 50, Width: 100, Height: 100}); got != 2500 {
		t.Errorf("Overlap() = %v, want 2500", got)
	}
	if got := a.Overlap(Rect{X: 200, Y: 0, Width: 10, Height: 10}); got != 0 {
		t.Errorf("Overlap() disjoint = %v, want 0", got)
	}
}

func TestParseWindowState(t *testing.T) {
	tests := []struct {
		in      string
		want    WindowState
		wantErr bool
	}{
		{"tiling", StateTiling, false},
		{"floating", StateFloating, false},
		{"minimized", StateMinimized, false},
		{"fullscreen", StateFullscreen, false},
		{"Tiling", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWindowState(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWindowState(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseWindowState(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWindowStateIsTiling(t *testing.T) {
	for _, s := range AllWindowStates {
		if got, want := s.IsTiling(), s == StateTiling; got != want {
			t.Errorf("%s.IsTiling() = %v, want %v", s, got, want)
		}
	}
}

func TestTilingDirectionInverse(t *testing.T) {
	if TilingHorizontal.Inverse() != TilingVertical {
		t.Errorf("horizontal inverse = %s, want vertical", TilingHorizontal.Inverse())
	}
	if TilingVertical.Inverse() != TilingHorizontal {
		t.Errorf("vertical inverse = %s, want horizontal", TilingVertical.Inverse())
	}
	if _, err := ParseTilingDirection("diagonal"); err == nil {
		t.Error("ParseTilingDirection(diagonal) should fail")
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input  string
		want   Direction
		wantOK bool
	}{
		{"left", DirLeft, true},
		{"right", DirRight, true},
		{"up", DirUp, true},
		{"down", DirDown, true},
		{"sideways", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDirection(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDirection(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseDirection(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDirectionAxis(t *testing.T) {
	tests := []struct {
		dir     Direction
		axis    TilingDirection
		forward bool
	}{
		{DirLeft, TilingHorizontal, false},
		{DirRight, TilingHorizontal, true},
		{DirUp, TilingVertical, false},
		{DirDown, TilingVertical, true},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			if got := tt.dir.TilingDirection(); got != tt.axis {
				t.Errorf("TilingDirection() = %v, want %v", got, tt.axis)
			}
			if got := tt.dir.Forward(); got != tt.forward {
				t.Errorf("Forward() = %v, want %v", got, tt.forward)
			}
		})
	}
}
