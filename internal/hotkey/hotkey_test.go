package hotkey

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		accel   string
		want    Accelerator
		wantErr bool
	}{
		{"Ctrl+Alt+R", Accelerator{Mods: ModCtrl | ModAlt, Key: "R"}, false},
		{"option+space", Accelerator{Mods: ModAlt, Key: "Space"}, false},
		{"Cmd+Shift+5", Accelerator{Mods: ModSuper | ModShift, Key: "5"}, false},
		{" ctrl + r ", Accelerator{Mods: ModCtrl, Key: "R"}, false},
		{"R", Accelerator{}, true},
		{"Hyper+R", Accelerator{}, true},
		{"Ctrl+F12", Accelerator{}, true},
		{"Ctrl+", Accelerator{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.accel, func(t *testing.T) {
			got, err := Parse(tt.accel)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.accel, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.accel, got, tt.want)
			}
		})
	}
}

func TestOnPress(t *testing.T) {
	calls := 0
	cb := OnPress(func() { calls++ })

	cb(true)
	cb(false)
	cb(true)

	if calls != 2 {
		t.Fatalf("expected 2 calls on press only, got %d", calls)
	}
}
