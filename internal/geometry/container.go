/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import "math"

// DefaultGridSize is the snapping grid in page units.
const DefaultGridSize = 30.0

// Container layout constants. A container is a fixed-width card whose height
// grows with its rows and is always a whole number of grid cells.
const (
	ContainerWidth        = 360.0
	ContainerHeaderHeight = 60.0
	ContainerRowHeight    = 30.0
	ContainerBottomMargin = 30.0
	ContainerHeightUnit   = 30.0
	DropZoneMargin        = 20.0
)

// ContainerHeight is the derived height of a container holding rows children.
func ContainerHeight(rows int) float64 {
	if rows < 0 {
		rows = 0
	}
	raw := ContainerHeaderHeight + float64(rows)*ContainerRowHeight + ContainerBottomMargin
	return math.Ceil(raw/ContainerHeightUnit) * ContainerHeightUnit
}

// ContainerRect is the footprint of a container anchored at its top-left corner.
func ContainerRect(anchor Pt, rows int) Rect {
	return Rect{X: anchor.X, Y: anchor.Y, W: ContainerWidth, H: ContainerHeight(rows)}
}

// DropZoneRect is the footprint inset by DropZoneMargin; a released leaf must
// land inside it to be absorbed by the container.
func DropZoneRect(anchor Pt, rows int) Rect {
	return ContainerRect(anchor, rows).Inset(DropZoneMargin, DropZoneMargin)
}
