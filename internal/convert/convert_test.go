package convert

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/san-kum/ltisim/internal/matx"
	"gonum.org/v1/gonum/mat"
)

var approx = cmpopts.EquateApprox(0, 1e-10)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		num     [][]float64
		den     []float64
		wantNum [][]float64
		wantDen []float64
	}{
		{"monic", [][]float64{{1, 2}}, []float64{1, 3}, [][]float64{{1, 2}}, []float64{1, 3}},
		{"scaled", [][]float64{{2, 4}}, []float64{2, 6}, [][]float64{{1, 2}}, []float64{1, 3}},
		{"leading den zeros", [][]float64{{1}}, []float64{0, 2, 1}, [][]float64{{0.5}}, []float64{1, 0.5}},
		{"leading num zeros", [][]float64{{0, 0, 1}}, []float64{1, 1}, [][]float64{{1}}, []float64{1, 1}},
		{"all zero num", [][]float64{{0, 0}}, []float64{1, 1}, [][]float64{{0}}, []float64{1, 1}},
		{"ragged rows", [][]float64{{1, 1}, {2}}, []float64{1, 2}, [][]float64{{1, 1}, {0, 2}}, []float64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			num, den, err := Normalize(tt.num, tt.den)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if diff := cmp.Diff(tt.wantNum, num, approx); diff != "" {
				t.Errorf("num mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantDen, den, approx); diff != "" {
				t.Errorf("den mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	cases := []struct {
		num [][]float64
		den []float64
	}{
		{[][]float64{{1}}, nil},
		{[][]float64{{1}}, []float64{0, 0}},
		{nil, []float64{1}},
		{[][]float64{{}}, []float64{1}},
	}
	for _, c := range cases {
		if _, _, err := Normalize(c.num, c.den); !errors.Is(err, ErrDegenerate) {
			t.Errorf("Normalize(%v, %v): expected ErrDegenerate, got %v", c.num, c.den, err)
		}
	}
}

func TestTF2SS(t *testing.T) {
	a, b, c, d, err := TF2SS([][]float64{{1, 3, 3}}, []float64{1, 2, 1})
	if err != nil {
		t.Fatalf("TF2SS failed: %v", err)
	}
	checks := []struct {
		name      string
		got, want *mat.Dense
	}{
		{"A", a, mat.NewDense(2, 2, []float64{-2, -1, 1, 0})},
		{"B", b, mat.NewDense(2, 1, []float64{1, 0})},
		{"C", c, mat.NewDense(1, 2, []float64{1, 2})},
		{"D", d, mat.NewDense(1, 1, []float64{1})},
	}
	for _, ch := range checks {
		if !mat.EqualApprox(ch.got, ch.want, 1e-12) {
			t.Errorf("%s =\n%v\nwant\n%v", ch.name, mat.Formatted(ch.got), mat.Formatted(ch.want))
		}
	}
}

func TestTF2SSStaticGain(t *testing.T) {
	a, b, c, d, err := TF2SS([][]float64{{3}}, []float64{2})
	if err != nil {
		t.Fatalf("TF2SS failed: %v", err)
	}
	if a.At(0, 0) != 0 || b.At(0, 0) != 0 || c.At(0, 0) != 0 {
		t.Error("static gain should realize with zero dynamics")
	}
	if d.At(0, 0) != 1.5 {
		t.Errorf("D = %v, want 1.5", d.At(0, 0))
	}
}

func TestTF2SSImproper(t *testing.T) {
	if _, _, _, _, err := TF2SS([][]float64{{1, 0, 0}}, []float64{1, 1}); !errors.Is(err, ErrImproper) {
		t.Errorf("expected ErrImproper, got %v", err)
	}
}

func TestSS2TFRoundTrip(t *testing.T) {
	wantNum := [][]float64{{0, 1, 0.5}}
	wantDen := []float64{1, -0.3, 0.02}

	a, b, c, d, err := TF2SS(wantNum, wantDen)
	if err != nil {
		t.Fatalf("TF2SS failed: %v", err)
	}
	num, den, err := SS2TF(a, b, c, d, 0)
	if err != nil {
		t.Fatalf("SS2TF failed: %v", err)
	}
	if diff := cmp.Diff(wantDen, den, approx); diff != "" {
		t.Errorf("den mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantNum, num, approx); diff != "" {
		t.Errorf("num mismatch (-want +got):\n%s", diff)
	}
}

func TestSS2TFMultiOutput(t *testing.T) {
	a := mat.NewDense(1, 1, []float64{0.5})
	b := mat.NewDense(1, 2, []float64{1, 2})
	c := mat.NewDense(2, 1, []float64{1, 3})

	num, den, err := SS2TF(a, b, c, nil, 1)
	if err != nil {
		t.Fatalf("SS2TF failed: %v", err)
	}
	if diff := cmp.Diff([]float64{1, -0.5}, den, approx); diff != "" {
		t.Errorf("den mismatch (-want +got):\n%s", diff)
	}
	want := [][]float64{{0, 2}, {0, 6}}
	if diff := cmp.Diff(want, num, approx); diff != "" {
		t.Errorf("num mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := SS2TF(a, b, c, nil, 2); !errors.Is(err, ErrDimension) {
		t.Errorf("expected ErrDimension for input out of range, got %v", err)
	}
}

func TestTF2ZPKAndBack(t *testing.T) {
	zeros, poles, gains, err := TF2ZPK([][]float64{{2, -1}}, []float64{1, -0.25, -0.125})
	if err != nil {
		t.Fatalf("TF2ZPK failed: %v", err)
	}
	if len(zeros) != 1 || len(zeros[0]) != 1 || cmplx.Abs(zeros[0][0]-0.5) > 1e-12 {
		t.Errorf("zeros = %v, want [[0.5]]", zeros)
	}
	if gains[0] != 2 {
		t.Errorf("gain = %v, want 2", gains[0])
	}
	if len(poles) != 2 {
		t.Fatalf("poles = %v", poles)
	}
	for _, p := range poles {
		if cmplx.Abs(p-0.5) > 1e-12 && cmplx.Abs(p+0.25) > 1e-12 {
			t.Errorf("unexpected pole %v", p)
		}
	}

	num, den, err := ZPK2TF(zeros, poles, gains)
	if err != nil {
		t.Fatalf("ZPK2TF failed: %v", err)
	}
	if diff := cmp.Diff([][]float64{{2, -1}}, num, approx); diff != "" {
		t.Errorf("num mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, -0.25, -0.125}, den, approx); diff != "" {
		t.Errorf("den mismatch (-want +got):\n%s", diff)
	}
}

func TestZPK2TFComplex(t *testing.T) {
	_, _, err := ZPK2TF([][]complex128{{1i}}, []complex128{0.5}, []float64{1})
	if !errors.Is(err, ErrComplex) {
		t.Errorf("expected ErrComplex, got %v", err)
	}
}

func TestZPKStateSpaceRoundTrip(t *testing.T) {
	zeros := [][]complex128{{-0.5}}
	poles := []complex128{complex(0.2, 0.4), complex(0.2, -0.4)}
	gains := []float64{3}

	a, b, c, d, err := ZPK2SS(zeros, poles, gains)
	if err != nil {
		t.Fatalf("ZPK2SS failed: %v", err)
	}
	z, p, k, err := SS2ZPK(a, b, c, d, 0)
	if err != nil {
		t.Fatalf("SS2ZPK failed: %v", err)
	}
	if math.Abs(k[0]-3) > 1e-10 {
		t.Errorf("gain = %v, want 3", k[0])
	}
	if len(z[0]) != 1 || cmplx.Abs(z[0][0]+0.5) > 1e-10 {
		t.Errorf("zeros = %v", z)
	}
	for _, want := range poles {
		found := false
		for _, got := range p {
			if cmplx.Abs(got-want) < 1e-10 {
				found = true
			}
		}
		if !found {
			t.Errorf("pole %v missing from %v", want, p)
		}
	}
}

func TestABCDNormalize(t *testing.T) {
	a := mat.NewDense(2, 2, nil)
	b := mat.NewDense(2, 1, nil)
	c := mat.NewDense(1, 2, nil)

	_, _, _, d, err := ABCDNormalize(a, b, c, nil)
	if err != nil {
		t.Fatalf("ABCDNormalize failed: %v", err)
	}
	if r, cc := d.Dims(); r != 1 || cc != 1 {
		t.Errorf("D dims = %dx%d, want 1x1", r, cc)
	}

	bad := []struct {
		name       string
		a, b, c, d mat.Matrix
	}{
		{"non-square A", mat.NewDense(2, 1, nil), b, c, nil},
		{"B rows", a, mat.NewDense(3, 1, nil), c, nil},
		{"C cols", a, b, mat.NewDense(1, 3, nil), nil},
		{"D shape", a, b, c, mat.NewDense(2, 1, nil)},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, _, err := ABCDNormalize(tt.a, tt.b, tt.c, tt.d); !errors.Is(err, ErrDimension) {
				t.Errorf("expected ErrDimension, got %v", err)
			}
		})
	}

	if _, _, _, _, err := ABCDNormalize(nil, b, c, nil); !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate for nil A, got %v", err)
	}
}

func TestCont2DiscreteFirstOrder(t *testing.T) {
	a := mat.NewDense(1, 1, []float64{-1})
	b := mat.NewDense(1, 1, []float64{1})
	c := mat.NewDense(1, 1, []float64{1})
	d := mat.NewDense(1, 1, []float64{0})
	dt := 0.1
	e := math.Exp(-dt)

	tests := []struct {
		method         Method
		ad, bd, cd, dd float64
	}{
		{ZOH, e, 1 - e, 1, 0},
		{Impulse, e, e * dt, 1, dt},
		{Bilinear, 0.95 / 1.05, 0.1 / 1.05, 1 / 1.05, 0.05 / 1.05},
		{Tustin, 0.95 / 1.05, 0.1 / 1.05, 1 / 1.05, 0.05 / 1.05},
		{Euler, 0.9, 0.1, 1, 0},
		{BackwardDiff, 1 / 1.1, 0.1 / 1.1, 1 / 1.1, 0.1 / 1.1},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			ad, bd, cd, dd, err := Cont2Discrete(a, b, c, d, dt, tt.method, 0)
			if err != nil {
				t.Fatalf("Cont2Discrete failed: %v", err)
			}
			got := []float64{ad.At(0, 0), bd.At(0, 0), cd.At(0, 0), dd.At(0, 0)}
			want := []float64{tt.ad, tt.bd, tt.cd, tt.dd}
			if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCont2DiscreteFOHIntegrator(t *testing.T) {
	one := matx.Full(1, 1, 1)
	dt := 0.5

	ad, bd, cd, dd, err := Cont2Discrete(matx.Zeros(1, 1), one, one, matx.Zeros(1, 1), dt, FOH, 0)
	if err != nil {
		t.Fatalf("Cont2Discrete failed: %v", err)
	}
	got := []float64{ad.At(0, 0), bd.At(0, 0), cd.At(0, 0), dd.At(0, 0)}
	want := []float64{1, dt, 1, dt / 2}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCont2DiscreteErrors(t *testing.T) {
	one := matx.Full(1, 1, 1)
	if _, _, _, _, err := Cont2Discrete(one, one, one, one, 0, ZOH, 0); !errors.Is(err, ErrSamplePeriod) {
		t.Errorf("expected ErrSamplePeriod, got %v", err)
	}
	if _, _, _, _, err := Cont2Discrete(one, one, one, one, 1, "nope", 0); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
	if _, _, _, _, err := Cont2Discrete(one, one, one, one, 1, GBT, 2); !errors.Is(err, ErrAlpha) {
		t.Errorf("expected ErrAlpha, got %v", err)
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("")
	if err != nil || m != ZOH {
		t.Errorf("ParseMethod(\"\") = %v, %v", m, err)
	}
	if m, err := ParseMethod("tustin"); err != nil || m != Tustin {
		t.Errorf("ParseMethod(tustin) = %v, %v", m, err)
	}
	if _, err := ParseMethod("rk4"); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
}
