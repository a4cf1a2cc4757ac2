package scale

import (
	"math"
	"testing"

	"github.com/matzehuels/barscene/pkg/errors"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSpecs(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   BarSpecs
	}{
		{
			name:   "relative default",
			params: DefaultParams(),
			want:   BarSpecs{Thickness: Size{1, 1}, Spacing: Size{4, 4}},
		},
		{
			name:   "relative thin bars",
			params: Params{ThicknessRatio: 2, Spacing: Size{0.5, 0}, SpacingRelative: true},
			want:   BarSpecs{Thickness: Size{1, 0.5}, Spacing: Size{3, 1}},
		},
		{
			name:   "absolute spacing",
			params: Params{ThicknessRatio: 1, Spacing: Size{0.25, 1}},
			want:   BarSpecs{Thickness: Size{1, 1}, Spacing: Size{2.5, 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Specs(tt.params); got != tt.want {
				t.Errorf("Specs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMaxSceneSizePenalizesAspectRatio(t *testing.T) {
	wide := MaxSceneSize(5, 100)
	square := MaxSceneSize(10, 10)

	if !(wide < 2*math.Sqrt(100*5)) {
		t.Errorf("MaxSceneSize(5,100) = %v, want < %v", wide, 2*math.Sqrt(500))
	}
	if !approx(wide, 10) {
		t.Errorf("MaxSceneSize(5,100) = %v, want 10", wide)
	}
	if !approx(square, 20) {
		t.Errorf("MaxSceneSize(10,10) = %v, want 20", square)
	}
	if MaxSceneSize(0, 3) != 0 {
		t.Error("empty grid should have no scene size")
	}
}

func TestRecompute(t *testing.T) {
	s, ok := Recompute(2, 2, DefaultParams())
	if !ok {
		t.Fatal("Recompute(2,2) not ok")
	}
	// rowWidth = 2*4*0.5 = 4, maxScene = 4, scaleFactor = min(2*1, 2*1) = 2
	if !approx(s.RowWidth, 4) || !approx(s.ColumnDepth, 4) {
		t.Errorf("extents = %v x %v, want 4 x 4", s.RowWidth, s.ColumnDepth)
	}
	if !approx(s.ScaleFactor, 2) {
		t.Errorf("ScaleFactor = %v, want 2", s.ScaleFactor)
	}
	if !approx(s.XScale, 0.5) || !approx(s.ZScale, 0.5) {
		t.Errorf("bar scale = %v x %v, want 0.5 x 0.5", s.XScale, s.ZScale)
	}
	if !approx(s.XScaleFactor, 2) || !approx(s.ZScaleFactor, 2) {
		t.Errorf("scene factors = %v x %v, want 2 x 2", s.XScaleFactor, s.ZScaleFactor)
	}
}

func TestRecomputeSeriesMargin(t *testing.T) {
	p := DefaultParams()
	p.SeriesMargin = Size{Width: 0.5, Height: 0.25}
	s, ok := Recompute(2, 2, p)
	if !ok {
		t.Fatal("Recompute not ok")
	}
	if !approx(s.XScale, 0.25) {
		t.Errorf("XScale = %v, want 0.25", s.XScale)
	}
	if !approx(s.ZScale, 0.375) {
		t.Errorf("ZScale = %v, want 0.375", s.ZScale)
	}
}

func TestRecomputeDegenerate(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		params     Params
	}{
		{"no rows", 0, 4, DefaultParams()},
		{"no columns", 4, 0, DefaultParams()},
		{"zero thickness", 3, 3, Params{ThicknessRatio: 0, Spacing: Size{1, 1}}},
		{"negative thickness", 3, 3, Params{ThicknessRatio: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Recompute(tt.rows, tt.cols, tt.params); ok {
				t.Error("degenerate input should not be ok")
			}
		})
	}
}

func TestCalculatorKeepsPreviousScale(t *testing.T) {
	var c Calculator
	if _, ok := c.Current(); ok {
		t.Fatal("fresh calculator should have no scale")
	}
	if !c.Update(3, 4, DefaultParams()) {
		t.Fatal("Update(3,4) failed")
	}
	before, _ := c.Current()
	if c.Update(0, 4, DefaultParams()) {
		t.Fatal("Update(0,4) should fail")
	}
	after, ok := c.Current()
	if !ok || after != before {
		t.Errorf("degenerate update replaced scale: %+v -> %+v", before, after)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{"defaults", func(*Params) {}, false},
		{"zero thickness", func(p *Params) { p.ThicknessRatio = 0 }, true},
		{"nan thickness", func(p *Params) { p.ThicknessRatio = math.NaN() }, true},
		{"negative spacing", func(p *Params) { p.Spacing.Width = -1 }, true},
		{"margin of one", func(p *Params) { p.SeriesMargin.Width = 1 }, true},
		{"negative margin", func(p *Params) { p.SeriesMargin.Height = -0.1 }, true},
		{"inf floor", func(p *Params) { p.FloorLevel = math.Inf(1) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}
