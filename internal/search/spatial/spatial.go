// Package spatial implements the axis-aligned bounding-box predicate used to
// filter candidates by their stored coordinates.
package spatial

// Box is an axis-aligned bounding box: west/east bound longitude, south/north
// bound latitude.
type Box struct {
	West  float64 `json:"west"`
	East  float64 `json:"east"`
	South float64 `json:"south"`
	North float64 `json:"north"`
}

// Intersects reports whether the two boxes overlap. Two boxes intersect iff
// each pair of opposing bounds overlaps; touching edges count as overlap.
func Intersects(query, doc Box) bool {
	return query.West <= doc.East &&
		doc.West <= query.East &&
		query.South <= doc.North &&
		doc.South <= query.North
}
