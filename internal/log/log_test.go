package log

import "testing"

func TestInit(t *testing.T) {
	for _, debug := range []bool{true, false} {
		if err := Init(debug); err != nil {
			t.Fatalf("Init(%v): %v", debug, err)
		}
		if GetSugaredLogger() == nil || GetZapLogger() == nil {
			t.Fatalf("Init(%v) left the logger unset", debug)
		}
		Named("wavelet").Debugw("initialized", "debug", debug)
		Sync()
	}
}
