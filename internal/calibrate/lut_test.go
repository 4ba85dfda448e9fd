package calibrate

import (
	"testing"
)

func rampLevels() []uint8 {
	levels := make([]uint8, 11)
	for i := range levels {
		levels[i] = uint8(255.0 - float64(i)*(255.0-20.0)/10.0)
	}
	return levels
}

func TestBuildChannelLUTIdentityWhenObservedMatchesExpected(t *testing.T) {
	expected := rampLevels()
	observed := make([]float64, len(expected))
	for i, e := range expected {
		observed[i] = float64(e)
	}

	lut := BuildChannelLUT(observed, expected)

	// Every sample point must map to itself.
	for i, e := range expected {
		if got := lut[e]; got != e {
			t.Errorf("sample %d: lut[%d] = %d, want %d", i, e, got, e)
		}
	}

	// The curve must be monotone non-decreasing for an increasing ramp.
	for i := 1; i < 256; i++ {
		if lut[i] < lut[i-1] {
			t.Fatalf("curve not monotone at %d: %d < %d", i, lut[i], lut[i-1])
		}
	}
}

func TestBuildChannelLUTClamping(t *testing.T) {
	lut := BuildChannelLUT([]float64{100, 200}, []uint8{50, 250})

	for i := 0; i <= 100; i++ {
		if lut[i] != 50 {
			t.Fatalf("lut[%d] = %d, want clamp to 50", i, lut[i])
		}
	}
	for i := 200; i < 256; i++ {
		if lut[i] != 250 {
			t.Fatalf("lut[%d] = %d, want clamp to 250", i, lut[i])
		}
	}

	// Midpoint interpolates halfway.
	if lut[150] != 150 {
		t.Errorf("lut[150] = %d, want 150", lut[150])
	}
}

func TestBuildChannelLUTFlatRampCollapsesToConstant(t *testing.T) {
	// Overexposed photo: every ramp patch reads the same value.
	expected := rampLevels()
	observed := make([]float64, len(expected))
	for i := range observed {
		observed[i] = 252.0
	}

	lut := BuildChannelLUT(observed, expected)
	for i := range lut {
		if lut[i] != expected[0] {
			t.Fatalf("lut[%d] = %d, want constant %d", i, lut[i], expected[0])
		}
	}
}

func TestBuildChannelLUTEmptyInputIsIdentity(t *testing.T) {
	lut := BuildChannelLUT(nil, nil)
	for i := range lut {
		if lut[i] != uint8(i) {
			t.Fatalf("lut[%d] = %d, want identity", i, lut[i])
		}
	}
}

func TestDegenerate(t *testing.T) {
	if !Degenerate(nil) {
		t.Error("empty samples should be degenerate")
	}
	if !Degenerate([]float64{128, 128.2, 127.9}) {
		t.Error("sub-unit range should be degenerate")
	}
	if Degenerate([]float64{20, 255}) {
		t.Error("full-range ramp should not be degenerate")
	}
}
