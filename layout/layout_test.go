package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"repo-orbit/model"
)

func TestPosition(t *testing.T) {
	origin := model.Vec3{}
	tests := []struct {
		name   string
		index  int
		depth  int
		parent model.Vec3
		want   model.Vec3
	}{
		{"first sibling", 0, 0, origin, model.Vec3{X: 0, Y: 0, Z: 0}},
		{"last column", 4, 0, origin, model.Vec3{X: 20, Y: 0, Z: 0}},
		{"wraps to second row", 5, 0, origin, model.Vec3{X: 0, Y: 5, Z: 0}},
		{"second row second column", 6, 0, origin, model.Vec3{X: 5, Y: 5, Z: 0}},
		{"third row", 12, 0, origin, model.Vec3{X: 10, Y: 10, Z: 0}},
		{"depth one", 0, 1, origin, model.Vec3{X: 0, Y: 0, Z: -4}},
		{"offset parent", 1, 2, model.Vec3{X: 10, Y: 5, Z: -4}, model.Vec3{X: 15, Y: 5, Z: -12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Position(tt.index, tt.depth, tt.parent))
		})
	}
}

func TestPositionIsPure(t *testing.T) {
	parent := model.Vec3{X: 3, Y: -2, Z: -8}
	for i := 0; i < 20; i++ {
		assert.Equal(t, Position(i, 3, parent), Position(i, 3, parent))
	}
}

func TestSiblings(t *testing.T) {
	assert.Nil(t, Siblings(0, 0, model.Vec3{}))

	positions := Siblings(7, 0, model.Vec3{})
	assert.Len(t, positions, 7)

	rows := map[float64]int{}
	for _, p := range positions {
		rows[p.Y]++
		assert.Equal(t, 0.0, p.Z)
	}
	assert.Equal(t, map[float64]int{0: 5, 5: 2}, rows)
}

func BenchmarkSiblings(b *testing.B) {
	parent := model.Vec3{X: 5, Y: 5, Z: -4}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Siblings(200, 3, parent)
	}
}
