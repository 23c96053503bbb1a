/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "funcards/internal/geometry"

// Names of the two pages every installation starts with. Data written by the
// first release of the app is migrated onto pages with these names.
const (
	MechanismPageName  = "Mechanism"
	AppearancePageName = "Appearance"
)

// DefaultPages is the starter dataset installed when no stored data exists.
func DefaultPages() []Page {
	mechanism := NewPage(MechanismPageName)
	mechanism.WrapperBlocks = []WrapperBlock{
		NewWrapperBlock(geometry.P(180, 180), "Block A", "Block A (back)", GroupFunction,
			NewWrappedBlock(geometry.Pt{}, "A-1", "A-1 (back)", GroupFunction),
			NewWrappedBlock(geometry.Pt{}, "A-2", "A-2 (back)", GroupFunction),
		),
		NewWrapperBlock(geometry.P(570, 180), "Block B", "Block B (back)", GroupComponent,
			NewWrappedBlock(geometry.Pt{}, "B-1", "B-1 (back)", GroupComponent),
			NewWrappedBlock(geometry.Pt{}, "B-2", "B-2 (back)", GroupComponent),
		),
	}
	mechanism.WrappedBlocks = []WrappedBlock{
		NewWrappedBlock(geometry.P(120, 120), "Content 1", "Back 1", GroupOther),
		NewWrappedBlock(geometry.P(300, 150), "Content 2", "Back 2", GroupStack),
	}
	return []Page{mechanism, NewPage(AppearancePageName)}
}
