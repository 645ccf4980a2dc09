package snapshot

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yndnr/pixmesh-go/internal/core/domain"
)

func TestEncodeDecode(t *testing.T) {
	grid := domain.NewGrid(3, 2)
	grid[1][2] = "#ff0000"

	data, err := Encode(NewDocument(3, 2, grid))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if doc.Width != 3 || doc.Height != 2 {
		t.Errorf("Decode() dims = %dx%d, want 3x2", doc.Width, doc.Height)
	}
	if diff := cmp.Diff(grid, doc.Pixels); diff != "" {
		t.Errorf("Decode() pixels mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"width":`},
		{"missing pixels", `{"width":1,"height":1}`},
		{"row count mismatch", `{"width":1,"height":2,"pixels":[["#ffffff"]]}`},
		{"row width mismatch", `{"width":2,"height":1,"pixels":[["#ffffff"]]}`},
		{"bad color", `{"width":1,"height":1,"pixels":[["red"]]}`},
		{"wrong type", `{"width":"1","height":1,"pixels":[["#ffffff"]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("Decode() error = %v, want ErrCorrupt", err)
			}
		})
	}
}
