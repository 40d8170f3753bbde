// seehuhn.de/go/pagerender - a tiled page renderer
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package scene

import "math"

// Zoom levels are grouped into buckets on a logarithmic scale.  Bucket k
// covers the zoom factors closest to threshold^k, and a scene flattened
// for one zoom level can be displayed at every zoom level of the same
// bucket without exceeding the flatness tolerance by more than the
// factor threshold.

// ZoomBucket returns the bucket of the given zoom factor.
// The threshold must be greater than 1.
func ZoomBucket(zoom, threshold float64) int {
	if !(zoom > 0) || !(threshold > 1) {
		return 0
	}
	return int(math.Round(math.Log(zoom) / math.Log(threshold)))
}

// BucketZoom returns the canonical zoom factor of a bucket.  Rasterizing
// at the canonical zoom makes the result depend on the bucket only.
func BucketZoom(bucket int, threshold float64) float64 {
	if !(threshold > 1) {
		return 1
	}
	return math.Pow(threshold, float64(bucket))
}

// NeedsReflatten reports whether geometry flattened at zoom from must be
// rebuilt before it is displayed at zoom to.
func NeedsReflatten(from, to, threshold float64) bool {
	return ZoomBucket(from, threshold) != ZoomBucket(to, threshold)
}
