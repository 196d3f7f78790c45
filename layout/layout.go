// Package layout places sibling groups of the repository tree on a grid.
//
// Each sibling group is laid out five wide, wrapping to new rows upwards, and
// every tree level recedes along -z.
package layout

import "repo-orbit/model"

const (
	// Columns is the width of a sibling group's grid
	Columns = 5
	// NodeSpacing is the horizontal and vertical distance between siblings
	NodeSpacing = 5.0
	// LevelSpacing is the depth offset per tree level
	LevelSpacing = 4.0
)

// Position returns the scene position of the sibling at index within a group
// at the given depth whose parent sits at parent.
func Position(index, depth int, parent model.Vec3) model.Vec3 {
	return model.Vec3{
		X: parent.X + float64(index%Columns)*NodeSpacing,
		Y: parent.Y + float64(index/Columns)*NodeSpacing,
		Z: parent.Z - float64(depth)*LevelSpacing,
	}
}

// Siblings lays out a whole group of count siblings.
func Siblings(count, depth int, parent model.Vec3) []model.Vec3 {
	if count <= 0 {
		return nil
	}
	positions := make([]model.Vec3, count)
	for i := range positions {
		positions[i] = Position(i, depth, parent)
	}
	return positions
}
