package visualization

import "math"

// normalizePositions scales positions to fit within bounds
func normalizePositions(positions map[int64]Position, width, height, padding float64) map[int64]Position {
	if len(positions) == 0 {
		return positions
	}

	// Find bounds
	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64

	for _, pos := range positions {
		minX = math.Min(minX, pos.X)
		maxX = math.Max(maxX, pos.X)
		minY = math.Min(minY, pos.Y)
		maxY = math.Max(maxY, pos.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY

	targetWidth := width - 2*padding
	targetHeight := height - 2*padding

	normalized := make(map[int64]Position, len(positions))
	for nodeID, pos := range positions {
		// A flat axis is centred rather than stretched
		x, y := width/2, height/2
		if rangeX >= 0.01 {
			x = padding + ((pos.X-minX)/rangeX)*targetWidth
		}
		if rangeY >= 0.01 {
			y = padding + ((pos.Y-minY)/rangeY)*targetHeight
		}
		normalized[nodeID] = Position{X: x, Y: y}
	}

	return normalized
}
