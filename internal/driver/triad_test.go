package driver

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tracktum/go-attitude/internal/linalg"
)

// TestTriadMatchesReferenceOrientation pins the row convention of
// main.py's orthonormalize(), which returns block([[ex, ey, ez]]).T --
// ex, ey, ez as rows, not columns.
func TestTriadMatchesReferenceOrientation(t *testing.T) {
	g := linalg.NewVec3(0, 0, 1)
	m := linalg.NewVec3(1, 0, 0)

	got := triad(g, m)

	want := linalg.NewMat3(
		0, 1, 0,
		1, 0, 0,
		0, 0, -1,
	)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			require.InDelta(t, want.At(i, j), got.At(i, j), 1e-9)
		}
	}
}
