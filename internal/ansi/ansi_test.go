package ansi

import "testing"

func TestPaint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		enabled bool
		codes   []string
		want    string
	}{
		{name: "disabled", enabled: false, codes: []string{Red}, want: "x"},
		{name: "no codes", enabled: true, want: "x"},
		{name: "single", enabled: true, codes: []string{Red}, want: Red + "x" + Reset},
		{name: "stacked", enabled: true, codes: []string{Bold, Green}, want: Bold + Green + "x" + Reset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Paint(tt.enabled, "x", tt.codes...); got != tt.want {
				t.Errorf("Paint = %q, want %q", got, tt.want)
			}
		})
	}
}
