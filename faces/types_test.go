package faces

import "testing"

func filled(v float32) (e Encoding) {
	for i := range e {
		e[i] = v
	}
	return
}

func TestEncoding_Matches(t *testing.T) {
	a := filled(0.1)
	near := filled(0.1)
	near[0] = 0.5 // 0.4^2 = 0.16
	far := filled(0.2) // 128 * 0.01 = 1.28

	tests := []struct {
		name  string
		other Encoding
		maxSq float64
		want  bool
	}{
		{"identical", a, 0.36, true},
		{"near", near, 0.36, true},
		{"near strict", near, 0.11, false},
		{"far", far, 0.36, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Matches(&tt.other, tt.maxSq); got != tt.want {
				t.Errorf("Matches() = %v, want %v (distance %v)", got, tt.want, a.DistanceSq(&tt.other))
			}
		})
	}
}

func TestEncodingFrom(t *testing.T) {
	if _, err := EncodingFrom(make([]float32, 10)); err != ErrInvalidEncoding {
		t.Errorf("EncodingFrom(short) error = %v, want ErrInvalidEncoding", err)
	}
	values := make([]float32, EncodingSize)
	values[127] = 3
	e, err := EncodingFrom(values)
	if err != nil || e[127] != 3 {
		t.Errorf("EncodingFrom() = %v, %v", e[127], err)
	}
}
