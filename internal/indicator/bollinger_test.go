package indicator

import "testing"

func TestBollingerBands_Known(t *testing.T) {
	// mean 5, population standard deviation 2
	prices := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	bands := BollingerBands(prices, 8, 2)

	if len(bands.Middle) != 1 {
		t.Fatalf("expected 1 value, got %d", len(bands.Middle))
	}
	if bands.Middle[0] != 5 || bands.Upper[0] != 9 || bands.Lower[0] != 1 {
		t.Errorf("bands = %f/%f/%f, want 9/5/1", bands.Upper[0], bands.Middle[0], bands.Lower[0])
	}
}

func TestBollingerBands_Symmetric(t *testing.T) {
	bands := BollingerBands(randomWalk(11, 60), 20, 2)

	if len(bands.Middle) != 41 {
		t.Fatalf("expected 41 values, got %d", len(bands.Middle))
	}
	for i := range bands.Middle {
		up := bands.Upper[i] - bands.Middle[i]
		down := bands.Middle[i] - bands.Lower[i]
		if !almostEqual(up, down, 1e-9) || up < 0 {
			t.Errorf("bands[%d] not symmetric: +%f -%f", i, up, down)
		}
	}
}

func TestBollingerBands_FlatHasZeroWidth(t *testing.T) {
	bands := BollingerBands(repeat(2000, 25), 20, 2)
	for i := range bands.Middle {
		if bands.Upper[i] != 2000 || bands.Lower[i] != 2000 {
			t.Errorf("bands[%d] = %f/%f, want zero width", i, bands.Upper[i], bands.Lower[i])
		}
	}
}

func TestBollingerBands_NotEnoughData(t *testing.T) {
	bands := BollingerBands(ramp(1, 1, 19), 20, 2)
	if len(bands.Middle) != 0 {
		t.Errorf("expected empty bands, got %d", len(bands.Middle))
	}
}
